package recoil

// Animatable is the capability bound for value types a spring can drive.
// The compositor interpolates one float64 track per component; a value
// flattens itself into components and rebuilds from them. The zero value of
// an implementing type must mean "all components zero" so it can stand in
// for a zero initial velocity.
type Animatable[T any] interface {
	Components() []float64
	FromComponents(comps []float64) T
}

// Scalar animates a single float64.
type Scalar float64

func (s Scalar) Components() []float64 {
	return []float64{float64(s)}
}

func (Scalar) FromComponents(comps []float64) Scalar {
	if len(comps) == 0 {
		return 0
	}
	return Scalar(comps[0])
}

// Point animates a position on a plane. In a terminal UI the components are
// fractional cell coordinates; the renderer rounds at draw time.
type Point struct {
	X float64
	Y float64
}

func (p Point) Components() []float64 {
	return []float64{p.X, p.Y}
}

func (Point) FromComponents(comps []float64) Point {
	var p Point
	if len(comps) > 0 {
		p.X = comps[0]
	}
	if len(comps) > 1 {
		p.Y = comps[1]
	}
	return p
}
