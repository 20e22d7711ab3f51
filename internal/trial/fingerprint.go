package trial

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// DomainTrial separates trial fingerprints from other hashes. The version
// suffix changes whenever the canonical form of a trial changes.
const DomainTrial = "latticebench/trial/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns a content hash identifying t across processes. Every
// field takes part, so two trials share a fingerprint only if they are
// equal.
func Fingerprint(t Trial) (string, error) {
	canonical, err := marshalCanonical(t.canonicalObject())
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", t.Dataset, err)
	}
	return hashWithDomain(DomainTrial, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when the trial is known to be valid.
func MustFingerprint(t Trial) string {
	fp, err := Fingerprint(t)
	if err != nil {
		panic(err)
	}
	return fp
}

func (t Trial) canonicalObject() map[string]any {
	privacy := map[string]any{"tag": "", "parameter": ""}
	if t.Privacy != nil {
		privacy = map[string]any{"tag": t.Privacy.Tag(), "parameter": t.Privacy.Parameter()}
	}
	return map[string]any{
		"dataset":              t.Dataset,
		"qis":                  t.QIs,
		"privacy":              privacy,
		"suppression":          formatFloat(t.Suppression),
		"algorithm":            string(t.Algorithm),
		"gs_factor":            formatFloat(t.GSFactor),
		"aggregate":            string(t.Aggregate),
		"iterations":           t.Iterations,
		"subpopulation_size":   t.SubpopulationSize,
		"elite_fraction":       formatFloat(t.EliteFraction),
		"crossover_fraction":   formatFloat(t.CrossoverFraction),
		"production_fraction":  formatFloat(t.ProductionFraction),
		"mutation_probability": formatFloat(t.MutationProbability),
		"immigration_fraction": formatFloat(t.ImmigrationFraction),
		"immigration_interval": t.ImmigrationInterval,
		"triangle":             t.Triangle,
		"dual_population":      t.DualPopulation,
		"time_limit":           t.TimeLimit,
		"step_limit":           t.StepLimit,
		"local_transformation": t.LocalTransformation,
		"local_iterations":     t.LocalIterations,
		"weighted_qis":         t.WeightedQIs,
		"seed":                 strconv.FormatUint(t.Seed, 10),
		"run":                  t.Run,
		"log":                  t.Log,
		"tuning_parameter":     t.TuningParameter,
		"tuning_value":         t.TuningValue,
		"limit_by_optimal":     t.LimitByOptimalLoss,
	}
}
