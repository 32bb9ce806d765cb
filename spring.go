package recoil

import (
	"time"

	"github.com/google/uuid"
)

// Default spring parameters. Tuned for a brisk settle with a slight
// overshoot at 60fps.
const (
	DefaultTension  = 342.0
	DefaultFriction = 30.0
	DefaultMass     = 1.0
)

// Spring drives a property toward a destination with damped-oscillator
// motion. It owns no physics: each destination change builds a Descriptor
// and hands it to the compositor under a fresh id, then tracks outstanding
// ids so it can report an aggregate AtRest/Active state.
//
// All methods, and the completion callbacks the compositor delivers, are
// expected to run on one event thread. There is no locking.
type Spring[T Animatable[T]] struct {
	// Physical parameters, consulted at emission time only. Changing them
	// does not affect animations already in flight.
	Tension  float64
	Friction float64
	Mass     float64

	// SuggestedDuration, when non-zero, overrides the compositor's natural
	// settling time for subsequent emissions.
	SuggestedDuration time.Duration

	prop       *Prop[T]
	compositor Compositor[T]

	initialVelocity T
	hasVelocity     bool
	destination     T
	hasDestination  bool

	enabled bool
	stopped bool

	active    map[string]struct{}
	state     State
	observers []func(State)
	channels  []chan State
}

// NewSpring binds a spring to the property it animates and the compositor
// that runs the interpolation. The spring starts disabled and at rest.
func NewSpring[T Animatable[T]](prop *Prop[T], compositor Compositor[T]) *Spring[T] {
	return &Spring[T]{
		Tension:    DefaultTension,
		Friction:   DefaultFriction,
		Mass:       DefaultMass,
		prop:       prop,
		compositor: compositor,
		active:     make(map[string]struct{}),
	}
}

// Enable arms the spring and immediately attempts an emission. No effect if
// already enabled.
func (s *Spring[T]) Enable() {
	if s.enabled {
		return
	}
	s.enabled = true
	s.checkAndEmit()
}

// Disable cancels every outstanding animation, clears the activation set,
// and disarms the spring. The stopped flag is untouched. No effect if
// already disabled.
func (s *Spring[T]) Disable() {
	if !s.enabled {
		return
	}
	s.cancelAll()
	s.enabled = false
}

// Start clears the stopped flag and attempts an emission. Only meaningful
// after Stop; otherwise a no-op.
func (s *Spring[T]) Start() {
	if !s.stopped {
		return
	}
	s.stopped = false
	s.checkAndEmit()
}

// Stop suspends the simulation: sets the stopped flag and cancels every
// outstanding animation, independent of the enabled flag. No effect if
// already stopped.
func (s *Spring[T]) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	s.cancelAll()
}

// SetDestination stores the target value and attempts an emission. While
// the spring is disabled or stopped the destination is merely retained.
func (s *Spring[T]) SetDestination(v T) {
	s.destination = v
	s.hasDestination = true
	s.checkAndEmit()
}

// Destination reports the stored target, if any.
func (s *Spring[T]) Destination() (T, bool) {
	return s.destination, s.hasDestination
}

// SetInitialVelocity stores the velocity handed to the compositor on the
// next emission. In-flight animations are unaffected.
func (s *Spring[T]) SetInitialVelocity(v T) {
	s.initialVelocity = v
	s.hasVelocity = true
}

// ClearInitialVelocity reverts to a zero launch velocity.
func (s *Spring[T]) ClearInitialVelocity() {
	var zero T
	s.initialVelocity = zero
	s.hasVelocity = false
}

func (s *Spring[T]) Enabled() bool {
	return s.enabled
}

func (s *Spring[T]) Stopped() bool {
	return s.stopped
}

// State reports the aggregate animation state.
func (s *Spring[T]) State() State {
	return s.state
}

// ActiveCount reports how many submitted animations are still outstanding.
func (s *Spring[T]) ActiveCount() int {
	return len(s.active)
}

// Subscribe registers a callback invoked on every aggregate state change.
// Callbacks run on the event thread, inside whichever call caused the
// transition.
func (s *Spring[T]) Subscribe(fn func(State)) {
	if fn == nil {
		return
	}
	s.observers = append(s.observers, fn)
}

// Changes returns a channel that receives aggregate state transitions. The
// channel is buffered; transitions are dropped, not blocked on, if the
// consumer falls behind.
func (s *Spring[T]) Changes() <-chan State {
	ch := make(chan State, stateChannelBuffer)
	s.channels = append(s.channels, ch)
	return ch
}

// checkAndEmit submits one animation when the spring is armed, running, and
// has a destination. The model value snaps to the destination immediately;
// only the display value animates.
func (s *Spring[T]) checkAndEmit() {
	if !s.enabled || s.stopped || !s.hasDestination {
		return
	}

	id := uuid.NewString()
	desc := Descriptor[T]{
		From:     s.prop.Display(),
		To:       s.destination,
		Tension:  s.Tension,
		Friction: s.Friction,
		Mass:     s.Mass,
		Duration: s.SuggestedDuration,
	}
	s.prop.setModel(s.destination)

	s.active[id] = struct{}{}
	s.setState(Active)

	var velocity T
	if s.hasVelocity {
		velocity = s.initialVelocity
	}
	s.compositor.Submit(id, desc, velocity, func() {
		delete(s.active, id)
		if len(s.active) == 0 {
			s.setState(AtRest)
		}
	})
}

func (s *Spring[T]) cancelAll() {
	for id := range s.active {
		s.compositor.Remove(id)
	}
	clear(s.active)
	s.setState(AtRest)
}

func (s *Spring[T]) setState(next State) {
	if s.state == next {
		return
	}
	s.state = next
	for _, fn := range s.observers {
		fn(next)
	}
	for _, ch := range s.channels {
		select {
		case ch <- next:
		default:
		}
	}
}
