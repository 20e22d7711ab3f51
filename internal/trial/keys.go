package trial

import "strconv"

// InputKey is the additive key of a trial's input: the 31-polynomial string
// hash of the dataset name plus the quasi-identifier count, with int32
// wraparound. Distinct inputs may collide, for example ("Aa", n) and
// ("BB", n).
func InputKey(t Trial) int32 {
	return datasetCode(t.Dataset) + int32(t.QIs)
}

// ObjectiveKey is the additive key of a trial's objective: the input key
// plus k and the suppression limit, truncated toward zero. Trials with the
// same key share one optimal baseline.
func ObjectiveKey(t Trial) int32 {
	k := 0
	if t.Privacy != nil {
		k = t.Privacy.K()
	}
	return int32(float64(InputKey(t)+int32(k)) + t.Suppression)
}

// datasetCode is the 31-polynomial hash of s over UTF-16 code units. It is
// stable across processes and platforms.
func datasetCode(s string) int32 {
	var h int32
	for _, r := range s {
		if r >= 0x10000 {
			r -= 0x10000
			h = 31*h + int32(0xD800+(r>>10))
			h = 31*h + int32(0xDC00+(r&0x3FF))
			continue
		}
		h = 31*h + int32(r)
	}
	return h
}

// ObjectiveTuple identifies an optimization objective. It is comparable and
// used directly as a map key.
type ObjectiveTuple struct {
	Dataset     string
	QIs         int
	Privacy     string // tag and parameter, e.g. "K_ANONYMITY(5)"
	Suppression float64
}

// CompositeKey returns the collision-free objective key of a trial. The
// quality model is not part of the objective.
func CompositeKey(t Trial) ObjectiveTuple {
	privacy := ""
	if t.Privacy != nil {
		privacy = t.Privacy.Tag() + "(" + t.Privacy.Parameter() + ")"
	}
	return ObjectiveTuple{
		Dataset:     t.Dataset,
		QIs:         t.QIs,
		Privacy:     privacy,
		Suppression: t.Suppression,
	}
}

func (o ObjectiveTuple) String() string {
	return o.Dataset + "/" + strconv.Itoa(o.QIs) + "/" + o.Privacy + "/" + formatFloat(o.Suppression)
}
