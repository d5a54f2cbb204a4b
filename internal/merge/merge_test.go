package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		rule int
		axes map[string]int
		want int
	}{
		{"nil axes", 63, nil, 63},
		{"empty axes", 63, map[string]int{}, 63},
		{"single axis", 60, map[string]int{"urgency": 80}, 70},
		{"three axes", 63, map[string]int{"dispatch_fit": 80, "urgency": 70, "skill_match": 90}, 72},
		{"rounds half up", 61, map[string]int{"a": 60}, 61},
		{"rounds .5 away from zero", 60, map[string]int{"a": 61}, 61},
		{"axis above range clamped", 50, map[string]int{"a": 250}, 75},
		{"axis below range clamped", 50, map[string]int{"a": -40}, 25},
		{"rule out of range clamped", 150, nil, 100},
		{"zero everywhere", 0, map[string]int{"a": 0, "b": 0}, 0},
		{"max everywhere", 100, map[string]int{"a": 100}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.rule, tt.axes))
		})
	}
}

func TestMerge_AlwaysInRange(t *testing.T) {
	for rule := -20; rule <= 120; rule += 7 {
		for axis := -50; axis <= 200; axis += 13 {
			got := Merge(rule, map[string]int{"x": axis, "y": 100 - axis})
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		}
	}
}
