package recoil

// State is the aggregate animation state of one spring: AtRest when no
// submitted animation is outstanding, Active otherwise.
type State int

const (
	AtRest State = iota
	Active
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	default:
		return "at-rest"
	}
}

// stateChannelBuffer bounds the channel returned by Changes. Sends to a full
// channel are dropped rather than blocking the event thread.
const stateChannelBuffer = 16
