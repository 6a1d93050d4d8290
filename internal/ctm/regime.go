package ctm

// Regime is the qualitative dynamical regime derived from the composite
// chaos meter. It is a closed set: switches over Regime should enumerate
// every value.
type Regime int

const (
	RegimeStable Regime = iota
	RegimeWeak
	RegimeModerate
	RegimeStrong
	RegimeHyperchaotic
)

// Canonical CTM banding. The analyzed material carried two disagreeing
// bandings for the lower bands; this one is kept because it is the only
// banding consistent with the reference scenario (b=0.19 classifying as
// moderate chaos). See DESIGN.md.
const (
	thresholdWeak     = 0.05
	thresholdModerate = 0.15
	thresholdStrong   = 0.25
	thresholdHyper    = 0.90
)

// Classify maps a CTM value in [0,1] to its regime band.
func Classify(ctm float64) Regime {
	switch {
	case ctm < thresholdWeak:
		return RegimeStable
	case ctm < thresholdModerate:
		return RegimeWeak
	case ctm < thresholdStrong:
		return RegimeModerate
	case ctm < thresholdHyper:
		return RegimeStrong
	default:
		return RegimeHyperchaotic
	}
}

func (r Regime) String() string {
	switch r {
	case RegimeStable:
		return "stable-focus"
	case RegimeWeak:
		return "weak-chaos"
	case RegimeModerate:
		return "moderate-chaos"
	case RegimeStrong:
		return "strong-chaos"
	case RegimeHyperchaotic:
		return "hyperchaotic"
	default:
		return "unknown"
	}
}
