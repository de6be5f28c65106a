package physics

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// swayField is a smooth noise force along a rope, so idle ropes drift
// instead of hanging perfectly straight
type swayField struct {
	noise     opensimplex.Noise
	amplitude float64
	frequency float64
}

func newSwayField(seed int64, amplitude, frequency float64) *swayField {
	if frequency <= 0 {
		frequency = DefaultRopeConfig().SwayFrequency
	}
	return &swayField{
		noise:     opensimplex.New(seed),
		amplitude: amplitude,
		frequency: frequency,
	}
}

// at returns the force magnitude for interior point i at time t
func (s *swayField) at(i int, t float64) float64 {
	return s.noise.Eval2(float64(i)*0.45, t*s.frequency) * s.amplitude
}
