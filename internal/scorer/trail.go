// Package scorer turns classified records into bounded scores with an
// ordered, human-readable reason trail. Every scoring mode reads its
// weights and thresholds from a config.ProfileConfig.
package scorer

import (
	"math"
	"strconv"
	"strings"

	"github.com/sells-group/note-leads/internal/config"
)

// Score bounds.
const (
	MinScore = 0
	MaxScore = 100
)

// Result is a scored record: a clamped score plus the reasons that built it.
// An excluded result always has score 0 and is never ranked.
type Result struct {
	Score    int
	Excluded bool
	Reasons  []string
}

// Why joins the reasons the way output files show them.
func (r Result) Why() string {
	return strings.Join(r.Reasons, " + ")
}

// Exclude returns the sentinel result for a hard-disqualified record.
func Exclude(reason string) Result {
	r := Result{Excluded: true}
	if reason != "" {
		r.Reasons = []string{reason}
	}
	return r
}

// Trail accumulates points and reasons in signal order.
type Trail struct {
	score   int
	reasons []string
}

// Add adds points and records reason when it is not empty.
func (t *Trail) Add(points int, reason string) {
	t.score += points
	t.Note(reason)
}

// Note records a reason without changing the score.
func (t *Trail) Note(reason string) {
	if reason != "" {
		t.reasons = append(t.reasons, reason)
	}
}

// Result clamps the score to [MinScore, MaxScore] and keeps the first
// reasonCap reasons. A non-positive cap keeps all of them.
func (t *Trail) Result(reasonCap int) Result {
	reasons := t.reasons
	if reasonCap > 0 && len(reasons) > reasonCap {
		reasons = reasons[:reasonCap]
	}
	return Result{Score: clamp(t.score), Reasons: append([]string(nil), reasons...)}
}

func clamp(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// Clamp bounds an externally computed score.
func Clamp(v int) int { return clamp(v) }

// ParseScore reads a score column, truncating decimals and bounding it to
// [MinScore, MaxScore]. An unparseable or non-finite value is MinScore.
func ParseScore(s string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return MinScore
	}
	return int(math.Max(MinScore, math.Min(MaxScore, v)))
}

// EvalBand scores v against the first matching band. ok=false applies the
// missing weight.
func EvalBand(bs config.BandSet, v float64, ok bool) (int, string) {
	if !ok {
		return bs.Missing, bs.MissingReason
	}
	for _, b := range bs.Bands {
		if inBand(b, v) {
			return b.Points, b.Reason
		}
	}
	return 0, ""
}

func inBand(b config.BandConfig, v float64) bool {
	if v < b.Min {
		return false
	}
	if b.Max == 0 {
		return true
	}
	if b.MaxInclusive {
		return v <= b.Max
	}
	return v < b.Max
}

// EvalRange scores v against the inclusive range [lo, hi].
func EvalRange(rw config.RangeWeights, v float64, ok bool, lo, hi float64) (int, string) {
	switch {
	case !ok:
		return rw.Missing, rw.MissingReason
	case v < lo:
		return rw.Below, rw.BelowReason
	case v > hi:
		return rw.Above, rw.AboveReason
	default:
		return rw.In, rw.InReason
	}
}
