package models

// Origin tells whether a settled viewport change was caused by code or by the user.
type Origin int

const (
	// OriginUserGesture marks a settle caused by the user dragging or zooming the map.
	OriginUserGesture Origin = iota
	// OriginProgrammatic marks a settle caused by an animated move requested by code.
	OriginProgrammatic
)

func (o Origin) String() string {
	if o == OriginProgrammatic {
		return "programmatic"
	}
	return "user_gesture"
}

// ViewportChangeEvent is a settled viewport change tagged with its origin.
type ViewportChangeEvent struct {
	Region Region
	Origin Origin
}
