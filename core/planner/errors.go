package planner

import "fmt"

// ConfigurationError reports invalid scheduling input: a negative
// capacity, a record missing its identity, or duplicate ids. Planning
// aborts with no partial output.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "planner: configuration: " + e.Reason
}

// GeometryError reports an out-of-range or non-finite coordinate. The
// whole planning call aborts rather than silently skipping a record; a
// partially built plan would hide the data problem from the caller.
type GeometryError struct {
	Entity string // id of the record carrying the bad coordinate
	Err    error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("planner: geometry for %s: %v", e.Entity, e.Err)
}

func (e *GeometryError) Unwrap() error { return e.Err }
