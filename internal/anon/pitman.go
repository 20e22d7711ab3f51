package anon

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

// pitmanEvaluations caps the likelihood evaluations of one fit.
const pitmanEvaluations = 2000

// pitmanRisk fits the Pitman sampling model to the class size histogram of
// n records and returns the estimated fraction of a population of size
// population that is unique. ok is false when the fit fails.
func pitmanRisk(hist []sizeCount, n int, population int64) (risk float64, ok bool) {
	theta, alpha, ok := fitPitman(hist, n)
	if !ok {
		return 0, false
	}
	uniques := pitmanUniques(theta, alpha, float64(population))
	if math.IsNaN(uniques) || math.IsInf(uniques, 0) {
		return 0, false
	}
	return math.Min(1, uniques/float64(population)), true
}

// pitmanUniques is the expected number of singleton classes among size
// records drawn from a Pitman(theta, alpha) partition.
func pitmanUniques(theta, alpha, size float64) float64 {
	lg1, _ := math.Lgamma(theta + 1)
	lg2, _ := math.Lgamma(theta + alpha)
	return math.Exp(lg1 - lg2 + alpha*math.Log(size))
}

// fitPitman returns maximum likelihood estimates of theta and alpha.
// The search runs over unconstrained coordinates mapped onto
// 0 < alpha < 1 and theta > -alpha.
func fitPitman(hist []sizeCount, n int) (theta, alpha float64, ok bool) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			theta, alpha := pitmanParams(x)
			return -pitmanLogLikelihood(hist, n, theta, alpha)
		},
	}
	settings := &optimize.Settings{FuncEvaluations: pitmanEvaluations}
	// An evaluation limit still leaves the best simplex vertex in res.
	res, err := optimize.Minimize(problem, []float64{0, 0}, settings, &optimize.NelderMead{})
	if res == nil || math.IsNaN(res.F) || math.IsInf(res.F, 0) {
		return 0, 0, false
	}
	if err != nil && res.Status != optimize.FunctionEvaluationLimit {
		return 0, 0, false
	}
	theta, alpha = pitmanParams(res.X)
	return theta, alpha, true
}

func pitmanParams(x []float64) (theta, alpha float64) {
	a := clampFloat(x[0], -30, 30)
	b := clampFloat(x[1], -30, 30)
	alpha = 1 / (1 + math.Exp(-a))
	theta = math.Exp(b) - alpha
	return theta, alpha
}

// pitmanLogLikelihood is the log probability of the observed partition of
// n records under the Pitman sampling formula.
func pitmanLogLikelihood(hist []sizeCount, n int, theta, alpha float64) float64 {
	u := 0
	for _, h := range hist {
		u += h.classes
	}
	lgamma := func(x float64) float64 {
		v, _ := math.Lgamma(x)
		return v
	}

	// prod_{i=1}^{u-1} (theta + i*alpha)
	ll := float64(u-1)*math.Log(alpha) + lgamma(theta/alpha+float64(u)) - lgamma(theta/alpha+1)
	// prod_{i=1}^{n-1} (theta + i)
	ll -= lgamma(theta+float64(n)) - lgamma(theta+1)
	// prod over classes of prod_{k=1}^{size-1} (k - alpha)
	base := lgamma(1 - alpha)
	for _, h := range hist {
		ll += float64(h.classes) * (lgamma(float64(h.size)-alpha) - base)
	}
	return ll
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
