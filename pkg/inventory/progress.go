package inventory

import "time"

// Status enumerates the discovery session lifecycle states from spec.md §4.5.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Progress is an immutable snapshot of a session's advancement. The worker
// publishes a new Progress value on every update; readers never see a
// partially-written record.
type Progress struct {
	Status          Status      `json:"status"`
	RegionsScanned  int         `json:"regionsScanned"`
	TotalRegions    int         `json:"totalRegions"`
	ServicesScanned int         `json:"servicesScanned"`
	TotalServices   int         `json:"totalServices"`
	ResourcesFound  int         `json:"resourcesFound"`
	CurrentRegion   string      `json:"currentRegion,omitempty"`
	CurrentService  string      `json:"currentService,omitempty"`
	Errors          []ScanError `json:"errors"`
	StartedAt       time.Time   `json:"startedAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// Clone returns a deep-enough copy safe to hand to a reader concurrently
// with further mutation of the original.
func (p Progress) Clone() Progress {
	out := p
	out.Errors = append([]ScanError(nil), p.Errors...)
	return out
}

// ProgressFunc is the caller-supplied, non-blocking progress observer passed
// to StartDiscovery. The worker never awaits its return.
type ProgressFunc func(Progress)
