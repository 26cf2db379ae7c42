package model

// Status is a coarse, advisory indicator of backend availability
type Status int

const (
	StatusUnknown Status = iota
	StatusOnline
	StatusDegraded
	StatusOffline
)

// HealthyIndicator is the status value reported by a healthy backend
const HealthyIndicator = "healthy"

// StatusFromIndicator maps the status field of a health response
func StatusFromIndicator(indicator string) Status {
	if indicator == HealthyIndicator {
		return StatusOnline
	}
	return StatusDegraded
}

func (x Status) String() string {
	switch x {
	case StatusOnline:
		return "Online"
	case StatusDegraded:
		return "Issues detected"
	case StatusOffline:
		return "Offline"
	default:
		return "Checking..."
	}
}
