package merge

import (
	"math"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
)

// RuleWeight is the share of the rule score in the composite; the mean of
// the model axes gets the rest.
const RuleWeight = 0.5

// Merge combines the rule score with optional model sub-scores. With no
// axes the rule score is returned unchanged. Axis values are clamped to the
// score range before averaging, and the result is rounded half away from
// zero and clamped.
func Merge(ruleScore int, axes map[string]int) int {
	if len(axes) == 0 {
		return clamp(ruleScore)
	}
	sum := 0
	for _, v := range axes {
		sum += clamp(v)
	}
	mean := float64(sum) / float64(len(axes))
	composite := RuleWeight*float64(clamp(ruleScore)) + (1-RuleWeight)*mean
	return clamp(int(math.Round(composite)))
}

func clamp(v int) int {
	return max(model.ScoreMin, min(model.ScoreMax, v))
}
