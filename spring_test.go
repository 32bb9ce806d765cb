package recoil

import (
	"testing"
	"time"
)

type fakeSubmission struct {
	id       string
	desc     Descriptor[Point]
	velocity Point
	done     func()
}

type fakeCompositor struct {
	submitted []fakeSubmission
	removed   []string
}

func (f *fakeCompositor) Submit(id string, desc Descriptor[Point], velocity Point, onComplete func()) {
	f.submitted = append(f.submitted, fakeSubmission{id: id, desc: desc, velocity: velocity, done: onComplete})
}

func (f *fakeCompositor) Remove(id string) {
	f.removed = append(f.removed, id)
}

func newTestSpring() (*Spring[Point], *Prop[Point], *fakeCompositor) {
	prop := NewProp(Point{})
	comp := &fakeCompositor{}
	return NewSpring[Point](prop, comp), prop, comp
}

func TestEnableWithoutDestinationStaysAtRest(t *testing.T) {
	s, _, comp := newTestSpring()

	s.Enable()

	if s.State() != AtRest {
		t.Errorf("expected at-rest, got %v", s.State())
	}
	if len(comp.submitted) != 0 {
		t.Errorf("expected no submissions, got %d", len(comp.submitted))
	}
}

func TestEnableIsIdempotent(t *testing.T) {
	s, _, comp := newTestSpring()
	s.Enable()
	s.SetDestination(Point{X: 5, Y: 5})

	s.Enable()
	s.Enable()

	if len(comp.submitted) != 1 {
		t.Errorf("expected 1 submission after repeated Enable, got %d", len(comp.submitted))
	}
}

func TestSetDestinationEmitsWhenEnabled(t *testing.T) {
	s, prop, comp := newTestSpring()
	s.Enable()

	s.SetDestination(Point{X: 10, Y: 10})

	if len(comp.submitted) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(comp.submitted))
	}
	if s.State() != Active {
		t.Errorf("expected active, got %v", s.State())
	}
	if s.ActiveCount() != 1 {
		t.Errorf("expected 1 tracked id, got %d", s.ActiveCount())
	}
	if got := prop.Value(); got != (Point{X: 10, Y: 10}) {
		t.Errorf("model value should snap to destination, got %+v", got)
	}
	if got := prop.Display(); got != (Point{}) {
		t.Errorf("display value should not snap, got %+v", got)
	}
	desc := comp.submitted[0].desc
	if desc.From != (Point{}) || desc.To != (Point{X: 10, Y: 10}) {
		t.Errorf("unexpected endpoints: from %+v to %+v", desc.From, desc.To)
	}
	if desc.Tension != DefaultTension || desc.Friction != DefaultFriction || desc.Mass != DefaultMass {
		t.Errorf("descriptor should carry current parameters, got %+v", desc)
	}
}

func TestSetDestinationWhileDisabledIsInert(t *testing.T) {
	s, prop, comp := newTestSpring()

	s.SetDestination(Point{X: 3, Y: 4})

	if len(comp.submitted) != 0 {
		t.Errorf("expected no submissions while disabled, got %d", len(comp.submitted))
	}
	if s.State() != AtRest {
		t.Errorf("expected at-rest, got %v", s.State())
	}
	if got := prop.Value(); got != (Point{}) {
		t.Errorf("model value must not change without emission, got %+v", got)
	}

	// Arming afterwards picks the retained destination up.
	s.Enable()
	if len(comp.submitted) != 1 {
		t.Errorf("expected emission on Enable with retained destination, got %d", len(comp.submitted))
	}
}

func TestDisableCancelsAndRests(t *testing.T) {
	s, _, comp := newTestSpring()
	s.Enable()
	s.SetDestination(Point{X: 1, Y: 2})
	id := comp.submitted[0].id

	s.Disable()

	if s.State() != AtRest {
		t.Errorf("expected at-rest after Disable, got %v", s.State())
	}
	if s.ActiveCount() != 0 {
		t.Errorf("activation set should be empty, got %d", s.ActiveCount())
	}
	if len(comp.removed) != 1 || comp.removed[0] != id {
		t.Errorf("expected removal of %s, got %v", id, comp.removed)
	}

	// Second Disable is a silent no-op.
	s.Disable()
	if len(comp.removed) != 1 {
		t.Errorf("repeated Disable should not cancel again, got %v", comp.removed)
	}
}

func TestOverlappingEmissionsTrackIndependently(t *testing.T) {
	s, _, comp := newTestSpring()
	s.Enable()

	s.SetDestination(Point{X: 1})
	s.SetDestination(Point{X: 2})
	s.SetDestination(Point{X: 3})

	if len(comp.submitted) != 3 {
		t.Fatalf("expected 3 submissions, got %d", len(comp.submitted))
	}
	seen := map[string]bool{}
	for _, sub := range comp.submitted {
		if seen[sub.id] {
			t.Errorf("duplicate animation id %s", sub.id)
		}
		seen[sub.id] = true
	}
	if s.ActiveCount() != 3 {
		t.Errorf("expected 3 tracked ids, got %d", s.ActiveCount())
	}

	comp.submitted[0].done()
	comp.submitted[1].done()
	if s.State() != Active {
		t.Errorf("expected active while one animation remains, got %v", s.State())
	}
	comp.submitted[2].done()
	if s.State() != AtRest {
		t.Errorf("expected at-rest after all completions, got %v", s.State())
	}
}

func TestStopCancelsRegardlessOfEnabled(t *testing.T) {
	s, _, comp := newTestSpring()
	s.Enable()
	s.SetDestination(Point{X: 7})

	s.Stop()

	if !s.Enabled() {
		t.Error("Stop must not touch the enabled flag")
	}
	if s.State() != AtRest || s.ActiveCount() != 0 {
		t.Errorf("expected at-rest with empty set, got %v/%d", s.State(), s.ActiveCount())
	}
	if len(comp.removed) != 1 {
		t.Errorf("expected 1 removal, got %d", len(comp.removed))
	}

	s.Stop()
	if len(comp.removed) != 1 {
		t.Error("repeated Stop should be a no-op")
	}
}

func TestStartAfterStopReemits(t *testing.T) {
	s, _, comp := newTestSpring()
	s.Enable()
	s.SetDestination(Point{X: 7})
	s.Stop()

	s.Start()

	if len(comp.submitted) != 2 {
		t.Errorf("expected re-emission on Start, got %d submissions", len(comp.submitted))
	}
	if s.State() != Active {
		t.Errorf("expected active, got %v", s.State())
	}

	// Start without a preceding Stop does nothing.
	s.Start()
	if len(comp.submitted) != 2 {
		t.Error("Start while running should be a no-op")
	}
}

func TestSetDestinationWhileStoppedIsRetained(t *testing.T) {
	s, _, comp := newTestSpring()
	s.Enable()
	s.Stop()

	s.SetDestination(Point{X: 4, Y: 4})
	if len(comp.submitted) != 0 {
		t.Fatalf("expected no emission while stopped, got %d", len(comp.submitted))
	}

	s.Start()
	if len(comp.submitted) != 1 {
		t.Errorf("expected emission on Start, got %d", len(comp.submitted))
	}
}

func TestInitialVelocityConsultedAtEmissionOnly(t *testing.T) {
	s, _, comp := newTestSpring()
	s.Enable()
	s.SetDestination(Point{X: 1})

	if got := comp.submitted[0].velocity; got != (Point{}) {
		t.Errorf("expected zero launch velocity, got %+v", got)
	}

	s.SetInitialVelocity(Point{X: 40})
	if got := comp.submitted[0].velocity; got != (Point{}) {
		t.Errorf("velocity change must not affect in-flight animation, got %+v", got)
	}

	s.SetDestination(Point{X: 2})
	if got := comp.submitted[1].velocity; got != (Point{X: 40}) {
		t.Errorf("expected stored velocity at emission, got %+v", got)
	}

	s.ClearInitialVelocity()
	s.SetDestination(Point{X: 3})
	if got := comp.submitted[2].velocity; got != (Point{}) {
		t.Errorf("expected zero velocity after clear, got %+v", got)
	}
}

func TestSuggestedDurationCarriedInDescriptor(t *testing.T) {
	s, _, comp := newTestSpring()
	s.SuggestedDuration = 250 * time.Millisecond
	s.Enable()
	s.SetDestination(Point{X: 1})

	if got := comp.submitted[0].desc.Duration; got != 250*time.Millisecond {
		t.Errorf("expected suggested duration in descriptor, got %v", got)
	}
}

func TestSubscribeSeesTransitions(t *testing.T) {
	s, _, comp := newTestSpring()
	var transitions []State
	s.Subscribe(func(st State) {
		transitions = append(transitions, st)
	})

	s.Enable()
	s.SetDestination(Point{X: 10, Y: 10})
	comp.submitted[0].done()

	want := []State{Active, AtRest}
	if len(transitions) != len(want) {
		t.Fatalf("expected %d transitions, got %v", len(want), transitions)
	}
	for i, st := range want {
		if transitions[i] != st {
			t.Errorf("transition %d: expected %v, got %v", i, st, transitions[i])
		}
	}
}

func TestChangesChannelReceivesTransitions(t *testing.T) {
	s, _, comp := newTestSpring()
	ch := s.Changes()

	s.Enable()
	s.SetDestination(Point{X: 1})
	comp.submitted[0].done()

	if got := <-ch; got != Active {
		t.Errorf("expected active, got %v", got)
	}
	if got := <-ch; got != AtRest {
		t.Errorf("expected at-rest, got %v", got)
	}
}

func TestChangesDropsWhenChannelFull(t *testing.T) {
	s, _, comp := newTestSpring()
	ch := s.Changes()
	s.Enable()

	// Two transitions per round trip; never drained, so the buffer fills
	// and later transitions must be dropped rather than blocked on.
	rounds := stateChannelBuffer
	for i := 0; i < rounds; i++ {
		s.SetDestination(Point{X: float64(i)})
		comp.submitted[len(comp.submitted)-1].done()
	}

	if s.State() != AtRest {
		t.Fatalf("expected at-rest after %d round trips, got %v", rounds, s.State())
	}
	if len(ch) != stateChannelBuffer {
		t.Fatalf("expected a full buffer of %d, got %d", stateChannelBuffer, len(ch))
	}
	// The buffered values are the earliest transitions, in order.
	if got := <-ch; got != Active {
		t.Errorf("expected first buffered transition active, got %v", got)
	}
	if got := <-ch; got != AtRest {
		t.Errorf("expected second buffered transition at-rest, got %v", got)
	}
}

// The walkthrough from the drawing-board: disabled spring, no destination.
// Enable keeps it at rest; a destination change registers exactly one
// animation; its completion returns the spring to rest.
func TestEnableThenDestinationThenCompletion(t *testing.T) {
	s, _, comp := newTestSpring()

	s.Enable()
	if s.State() != AtRest {
		t.Fatalf("expected at-rest after Enable, got %v", s.State())
	}

	s.SetDestination(Point{X: 10, Y: 10})
	if len(comp.submitted) != 1 {
		t.Fatalf("expected exactly one animation, got %d", len(comp.submitted))
	}
	if s.State() != Active {
		t.Fatalf("expected active, got %v", s.State())
	}

	comp.submitted[0].done()
	if s.State() != AtRest {
		t.Errorf("expected at-rest after completion, got %v", s.State())
	}
}
