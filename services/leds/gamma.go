package leds

// DriveMax is the top of the linear drive range every profile works in.
const DriveMax = 255

// GammaCurve selects the perceptual correction applied by Gamma.
type GammaCurve uint8

const (
	// GammaCubic is the fitted polynomial y = 0.1x + 0.3x² + 0.6x³.
	GammaCubic GammaCurve = iota
	// GammaLinear passes the drive value through unchanged (scaled to top).
	GammaLinear
)

func (c GammaCurve) String() string {
	switch c {
	case GammaCubic:
		return "cubic"
	case GammaLinear:
		return "linear"
	default:
		return "unknown"
	}
}

// Gamma maps a linear drive value in [0,DriveMax] onto an output duty count
// in [0,top]. The table is filled once by NewGamma and only read afterwards,
// so Map is safe to call from the tick context.
type Gamma struct {
	top uint16
	lut [DriveMax + 1]float32
}

// NewGamma precomputes the lookup table for the given output resolution.
func NewGamma(top uint16, curve GammaCurve) *Gamma {
	g := &Gamma{top: top}
	for i := range g.lut {
		x := float32(i) / DriveMax
		y := x
		if curve == GammaCubic {
			y = 0.1*x + 0.3*x*x + 0.6*x*x*x
		}
		g.lut[i] = y * float32(top)
	}
	g.lut[DriveMax] = float32(top) // the fit sums to 1 only up to rounding
	return g
}

// Top is the largest count Map can return.
func (g *Gamma) Top() uint16 { return g.top }

// Map corrects value, applies the master scale in [0,1] and truncates to a
// duty count. A zero or negative value or scale yields 0; any other input
// yields at least 1 so a lit channel never goes dark through truncation.
func (g *Gamma) Map(value, scale float32) uint16 {
	if value <= 0 || scale <= 0 || g.top == 0 {
		return 0
	}
	var y float32
	if value >= DriveMax {
		y = g.lut[DriveMax]
	} else {
		i := int(value)
		f := value - float32(i)
		y = g.lut[i] + (g.lut[i+1]-g.lut[i])*f
	}
	if scale < 1 {
		y *= scale
	}
	if y >= float32(g.top) {
		return g.top
	}
	d := uint16(y)
	if d == 0 {
		d = 1
	}
	return d
}
