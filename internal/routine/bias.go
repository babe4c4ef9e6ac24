package routine

// Bias functions map the raw in-cycle position onto the value the update
// hook receives. Leaf clients with fancier easing pass their own via
// WithBias; these cover the common cases.

// Linear is the identity bias.
func Linear(t float64) float64 { return t }

// EaseIn accelerates from zero.
func EaseIn(t float64) float64 { return t * t }

// EaseOut decelerates into one.
func EaseOut(t float64) float64 { return t * (2 - t) }

// SmoothStep eases both ends.
func SmoothStep(t float64) float64 { return t * t * (3 - 2*t) }
