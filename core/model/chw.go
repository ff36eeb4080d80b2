package model

import "fmt"

// CHW represents a community health worker available for a day of visits.
type CHW struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Location        Coordinates `json:"location"` // home base for the day
	MaxVisitsPerDay int         `json:"max_visits_per_day"`

	// Transport is descriptive only ("moto", "bicycle", "foot"); the
	// scheduler never consults it.
	Transport string `json:"transport,omitempty"`

	// Phone receives route notifications. Empty disables notify for
	// this worker.
	Phone string `json:"phone,omitempty"`
}

// Validate checks that the worker record can be scheduled.
func (c CHW) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("chw record is missing an id")
	}
	return nil
}
