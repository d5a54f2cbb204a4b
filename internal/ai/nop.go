package ai

import (
	"context"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
)

// NopScorer is used when llm.enabled is false. It returns an empty
// assessment, which the merger treats as absent.
type NopScorer struct{}

// NewNopScorer returns a NopScorer.
func NewNopScorer() *NopScorer {
	return &NopScorer{}
}

// Score returns an empty assessment.
func (n *NopScorer) Score(_ context.Context, _ model.NormalizedJob) (model.Assessment, error) {
	return model.Assessment{}, nil
}
