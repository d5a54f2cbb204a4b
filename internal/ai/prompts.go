package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/job_assessment.md
var jobAssessmentPromptRaw string

// JobAssessmentTemplate is the parsed prompt template for job assessment.
var JobAssessmentTemplate = template.Must(template.New("job_assessment").Parse(jobAssessmentPromptRaw))
