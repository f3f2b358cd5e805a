package viewport

import "github.com/UnknownOlympus/pinpoint/internal/models"

// Phase is the controller's position in one resolution cycle.
type Phase int

const (
	PhaseIdle        Phase = iota // nothing pending
	PhaseInMotion                 // raw viewport changes are arriving
	PhaseClassifying              // a settle is being tagged
	PhaseResolving                // a lookup for the current region is outstanding
)

func (p Phase) String() string {
	switch p {
	case PhaseInMotion:
		return "in_motion"
	case PhaseClassifying:
		return "classifying"
	case PhaseResolving:
		return "resolving"
	default:
		return "idle"
	}
}

// MarshalText lets Phase render as its name in JSON.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is a read-only view of the controller.
type State struct {
	Region  models.Region `json:"region"`
	Address string        `json:"address"`
	Phase   Phase         `json:"phase"`
	Moving  bool          `json:"moving"`
}
