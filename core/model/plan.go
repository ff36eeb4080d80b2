package model

// DepotID is the virtual start marker shared by every route. Each worker
// physically starts from their own coordinates; the marker only names the
// position in sequences and blocked-edge pairs.
const DepotID = "DEPOT"

// Route is one worker's ordered visit assignment for the day.
type Route struct {
	VehicleID string   `json:"vehicle_id"`
	CHWName   string   `json:"chw_name"`
	Sequence  []string `json:"sequence"` // DepotID followed by mother IDs in visit order
	Km        float64  `json:"km"`       // cumulative penalized distance, rounded to 2 decimals
	Capacity  int      `json:"capacity"` // effective capacity the route was planned against
}

// Visits returns the number of assigned visits, excluding the depot marker.
func (r Route) Visits() int {
	if len(r.Sequence) == 0 {
		return 0
	}
	return len(r.Sequence) - 1
}

// RoutePlan is the scheduling outcome for one day.
type RoutePlan struct {
	Routes   []Route  `json:"routes"`
	Unserved []string `json:"unserved"` // mother IDs left unassigned, sorted ascending
}

// Served returns the total number of assigned visits across all routes.
func (p RoutePlan) Served() int {
	n := 0
	for _, r := range p.Routes {
		n += r.Visits()
	}
	return n
}

// BlockedEdge marks a leg between two points as flooded or unsafe.
// The pair is unordered; A and B are mother IDs or DepotID.
type BlockedEdge struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Normalized returns the pair in lexicographic order so that
// {a,b} and {b,a} describe the same edge.
func (e BlockedEdge) Normalized() (string, string) {
	if e.A <= e.B {
		return e.A, e.B
	}
	return e.B, e.A
}
