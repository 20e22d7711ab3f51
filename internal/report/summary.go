// Package report aggregates result logs: per-configuration means and
// standard deviations, averaged utility traces and charts of both.
package report

import (
	"gonum.org/v1/gonum/stat"

	"github.com/roach88/latticebench/internal/resultlog"
)

// Group identifies the rows averaged together.
type Group struct {
	PrivacyModel    string `json:"privacy_model"`
	Algorithm       string `json:"algorithm"`
	Dataset         string `json:"dataset"`
	TimeLimit       int    `json:"time_limit"`
	TuningParameter string `json:"tuning_parameter"`
	TuningValue     string `json:"tuning_value"`
}

// Summary holds the statistics of one group. Times are in seconds; the
// standard deviations are population deviations.
type Summary struct {
	Group
	Runs        int     `json:"runs"`
	TimeMean    float64 `json:"time_mean"`
	TimeStd     float64 `json:"time_std"`
	UtilityMean float64 `json:"utility_mean"`
	UtilityStd  float64 `json:"utility_std"`
}

func groupOf(r resultlog.Row) Group {
	return Group{
		PrivacyModel:    r.PrivacyModel,
		Algorithm:       r.Algorithm,
		Dataset:         r.Dataset,
		TimeLimit:       r.TimeLimit,
		TuningParameter: r.TuningParameter,
		TuningValue:     r.TuningValue,
	}
}

// Summarize groups rows by configuration, in order of first appearance,
// and computes time and external utility statistics per group.
func Summarize(rows []resultlog.Row) []Summary {
	var order []Group
	times := map[Group][]float64{}
	utilities := map[Group][]float64{}
	for _, r := range rows {
		g := groupOf(r)
		if _, ok := times[g]; !ok {
			order = append(order, g)
		}
		times[g] = append(times[g], seconds(r.Time))
		utilities[g] = append(utilities[g], r.ExternalUtility)
	}

	out := make([]Summary, 0, len(order))
	for _, g := range order {
		s := Summary{Group: g, Runs: len(times[g])}
		s.TimeMean, s.TimeStd = stat.PopMeanStdDev(times[g], nil)
		s.UtilityMean, s.UtilityStd = stat.PopMeanStdDev(utilities[g], nil)
		out = append(out, s)
	}
	return out
}

func seconds(ms int64) float64 {
	return float64(ms) / 1000
}
