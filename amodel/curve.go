package amodel

import (
	"bitbucket.org/Davydov/ancgeno/agg"
)

// CurvePoint is the observed and the fitted heterozygote proportion
// at a frequency.
type CurvePoint struct {
	Freq     float64 `json:"freq"`
	Observed float64 `json:"observed"`
	Fitted   float64 `json:"fitted"`
}

// Curve returns the observed proportion of heterozygotes (NaN for
// bins without informative sites) and the model fit for every bin.
func Curve(c *agg.Counts, m Model) []CurvePoint {
	obs := c.Proportions()
	fit := m.Fitted(c.Freqs)
	res := make([]CurvePoint, c.Len())
	for i, x := range c.Freqs {
		res[i] = CurvePoint{Freq: x, Observed: obs[i], Fitted: fit[i]}
	}
	return res
}

// AIC returns the Akaike information criterion of a model with the
// log likelihood lnL.
func AIC(m Model, lnL float64) float64 {
	return 2*float64(len(m.GetFloatParameters())) - 2*lnL
}
