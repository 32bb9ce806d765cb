package recoil

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

const (
	defaultFPS = 60

	// restAmplitude is the relative envelope amplitude below which a spring
	// counts as settled when no duration is suggested.
	restAmplitude = 1e-3

	minSettlingDuration = 50 * time.Millisecond
	maxSettlingDuration = 10 * time.Second
)

type engineAnimation struct {
	spring     harmonica.Spring
	pos        []float64
	vel        []float64
	target     []float64
	remaining  time.Duration
	onComplete func()
}

// Engine is a frame-stepped Compositor. The host drives it from its render
// loop; each Step advances every in-flight animation and writes the
// interpolated value back to the property's display layer. Overlapping
// animations coexist and are applied in submission order, so the most recent
// one wins the display each tick.
//
// Like the spring controller, the engine assumes a single event thread.
type Engine[T Animatable[T]] struct {
	prop *Prop[T]

	fps  int
	tick time.Duration
	acc  time.Duration

	anims map[string]*engineAnimation
	order []string
}

// NewEngine creates an engine animating prop at the given frame rate.
// fps <= 0 falls back to 60.
func NewEngine[T Animatable[T]](prop *Prop[T], fps int) *Engine[T] {
	if fps <= 0 {
		fps = defaultFPS
	}
	return &Engine[T]{
		prop:  prop,
		fps:   fps,
		tick:  time.Second / time.Duration(fps),
		anims: make(map[string]*engineAnimation),
	}
}

// FPS reports the engine's fixed integration rate.
func (e *Engine[T]) FPS() int {
	return e.fps
}

// Active reports how many animations are in flight.
func (e *Engine[T]) Active() int {
	return len(e.anims)
}

func (e *Engine[T]) Submit(id string, desc Descriptor[T], velocity T, onComplete func()) {
	duration := desc.Duration
	if duration == 0 {
		duration = SettlingDuration(desc.Tension, desc.Friction, desc.Mass)
	}
	omega, zeta := springShape(desc.Tension, desc.Friction, desc.Mass)

	from := desc.From.Components()
	to := desc.To.Components()
	vel := velocity.Components()
	if len(vel) < len(from) {
		vel = append(vel, make([]float64, len(from)-len(vel))...)
	}

	e.anims[id] = &engineAnimation{
		spring:     harmonica.NewSpring(harmonica.FPS(e.fps), omega, zeta),
		pos:        from,
		vel:        vel,
		target:     to,
		remaining:  duration,
		onComplete: onComplete,
	}
	e.order = append(e.order, id)
}

// Remove cancels an animation synchronously. The completion callback does
// not fire. Unknown ids are ignored.
func (e *Engine[T]) Remove(id string) {
	if _, ok := e.anims[id]; !ok {
		return
	}
	delete(e.anims, id)
	e.dropFromOrder(id)
}

// Step advances the engine by dt of wall-clock time, running as many whole
// integration ticks as fit. Completion callbacks fire synchronously, in
// submission order, after all positions for the tick are written.
func (e *Engine[T]) Step(dt time.Duration) {
	if dt < 0 {
		return
	}
	e.acc += dt
	for e.acc >= e.tick {
		e.acc -= e.tick
		e.runTick()
	}
}

func (e *Engine[T]) runTick() {
	if len(e.order) == 0 {
		return
	}

	var completed []string
	var zero T
	for _, id := range e.order {
		a, ok := e.anims[id]
		if !ok {
			continue
		}
		for i := range a.pos {
			a.pos[i], a.vel[i] = a.spring.Update(a.pos[i], a.vel[i], a.target[i])
		}
		a.remaining -= e.tick
		if a.remaining <= 0 {
			copy(a.pos, a.target)
			completed = append(completed, id)
		}
		e.prop.setDisplay(zero.FromComponents(a.pos))
	}

	for _, id := range completed {
		a := e.anims[id]
		delete(e.anims, id)
		e.dropFromOrder(id)
		if a.onComplete != nil {
			a.onComplete()
		}
	}
}

func (e *Engine[T]) dropFromOrder(id string) {
	for i, v := range e.order {
		if v == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			return
		}
	}
}

// SettlingDuration approximates the natural settling time of a damped
// harmonic oscillator with the given tension (stiffness), friction
// (damping), and mass: the time for the response envelope to decay below a
// small relative amplitude. The result is clamped to a sane range so
// degenerate parameters cannot wedge an animation open forever.
func SettlingDuration(tension, friction, mass float64) time.Duration {
	omega, zeta := springShape(tension, friction, mass)

	var rate float64
	switch {
	case zeta <= 0:
		rate = 0
	case zeta < 1:
		rate = zeta * omega
	default:
		// Overdamped: decay is governed by the slower real root.
		rate = omega * (zeta - math.Sqrt(zeta*zeta-1))
	}
	if rate <= 0 {
		return maxSettlingDuration
	}

	seconds := -math.Log(restAmplitude) / rate
	settle := time.Duration(seconds * float64(time.Second))
	if settle < minSettlingDuration {
		return minSettlingDuration
	}
	if settle > maxSettlingDuration {
		return maxSettlingDuration
	}
	return settle
}

// springShape converts tension/friction/mass to the angular frequency and
// damping ratio harmonica integrates with. Non-positive tension or mass
// falls back to the defaults.
func springShape(tension, friction, mass float64) (omega, zeta float64) {
	if tension <= 0 {
		tension = DefaultTension
	}
	if mass <= 0 {
		mass = DefaultMass
	}
	if friction < 0 {
		friction = 0
	}
	omega = math.Sqrt(tension / mass)
	zeta = friction / (2 * math.Sqrt(tension*mass))
	return omega, zeta
}
