package recoil

import "time"

// Descriptor carries everything a compositor needs to run one spring
// animation: the endpoints, the physical parameters, and the duration after
// which the animation is considered complete. A zero Duration asks the
// compositor to use the spring's natural settling time.
type Descriptor[T Animatable[T]] struct {
	From     T
	To       T
	Tension  float64
	Friction float64
	Mass     float64
	Duration time.Duration
}

// Compositor performs the damped-oscillator interpolation over time. The
// spring controller treats it as a black box: animations are submitted under
// an opaque id, complete exactly once via the callback, and can be removed
// synchronously before that. A compositor never reports failure.
type Compositor[T Animatable[T]] interface {
	Submit(id string, desc Descriptor[T], velocity T, onComplete func())
	Remove(id string)
}

// Prop is an animated property. It keeps two values: the model value, which
// snaps to the destination the moment an animation is emitted, and the
// display value, which the compositor moves frame by frame. Renderers read
// Display; everything else reads Value.
type Prop[T Animatable[T]] struct {
	model   T
	display T
}

func NewProp[T Animatable[T]](initial T) *Prop[T] {
	return &Prop[T]{model: initial, display: initial}
}

// Value returns the model value.
func (p *Prop[T]) Value() T {
	return p.model
}

// Display returns the presentation value the compositor is interpolating.
// Equal to Value when no animation is in flight.
func (p *Prop[T]) Display() T {
	return p.display
}

// Set assigns both the model and display values directly, without animating.
func (p *Prop[T]) Set(v T) {
	p.model = v
	p.display = v
}

func (p *Prop[T]) setModel(v T) {
	p.model = v
}

func (p *Prop[T]) setDisplay(v T) {
	p.display = v
}
