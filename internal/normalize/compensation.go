package normalize

import (
	"regexp"
	"strconv"
)

// Compensation is expressed as annual pay in units of 10,000 JPY.
const (
	compFloor   = 100
	compCeiling = 3000
)

type compPattern struct {
	re      *regexp.Regexp
	monthly bool
}

var compPatterns = []compPattern{
	{re: regexp.MustCompile(`年収\s*(\d{3,4})\s*万?\s*[〜~～ー−-]\s*(\d{3,4})\s*万`)},
	{re: regexp.MustCompile(`(\d{3,4})\s*万円?\s*[〜~～ー−-]\s*(\d{3,4})\s*万円?`)},
	{re: regexp.MustCompile(`月収?\s*(\d{2,3})\s*万?\s*[〜~～ー−-]\s*(\d{2,3})\s*万`), monthly: true},
}

// ExtractCompensation finds the first plausible pay range in text and
// returns it as annual 10k JPY. Monthly ranges are multiplied by twelve.
// Both bounds are zero when nothing plausible is found.
func ExtractCompensation(text string) (lo, hi int) {
	for _, p := range compPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		lo, _ = strconv.Atoi(m[1])
		hi, _ = strconv.Atoi(m[2])
		if p.monthly {
			lo *= 12
			hi *= 12
		}
		if inRange(lo) && inRange(hi) {
			return lo, hi
		}
	}
	return 0, 0
}

func inRange(v int) bool {
	return v >= compFloor && v <= compCeiling
}
