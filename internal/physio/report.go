package physio

import (
	"math"
	"regexp"
	"strings"
)

// SubjectiveReport is the user's own account of the injury. Immutable once
// attached to a hypothesis.
type SubjectiveReport struct {
	Narrative   string   `json:"narrative"`
	Onset       string   `json:"onset,omitempty"`
	Location    string   `json:"location,omitempty"`
	Aggravators []string `json:"aggravators,omitempty"`
	Easers      []string `json:"easers,omitempty"`
	RedFlags    []string `json:"red_flags,omitempty"`
}

// Differential is one candidate diagnosis code with a confidence weight.
type Differential struct {
	Code       string  `json:"code"`
	Confidence float64 `json:"confidence"`
}

var (
	reOverheadPattern = regexp.MustCompile(`overhead|press|pull[- ]?up`)
	reBicepsPattern   = regexp.MustCompile(`bicep|biceps|groove`)
)

// SeedDifferentials derives weighted differential candidates from a report.
// Weights are normalized to sum to 1.00 (2 decimals); insertion order is
// preserved, not sorted by confidence.
func SeedDifferentials(report SubjectiveReport) []Differential {
	txt := strings.ToLower(report.Narrative + " " + strings.Join(report.Aggravators, " "))

	var diffs []Differential
	if reOverheadPattern.MatchString(txt) {
		diffs = append(diffs,
			Differential{Code: "SIS_subacromial", Confidence: 0.5},
			Differential{Code: "RC_strain", Confidence: 0.3},
		)
	}
	if reBicepsPattern.MatchString(txt) {
		diffs = append(diffs, Differential{Code: "LHBT_tendinopathy", Confidence: 0.4})
	}
	if len(diffs) == 0 {
		diffs = append(diffs, Differential{Code: "NonSpecific_shoulder_pain", Confidence: 0.6})
	}

	var sum float64
	for _, d := range diffs {
		sum += d.Confidence
	}
	for i := range diffs {
		diffs[i].Confidence = math.Round(diffs[i].Confidence/sum*100) / 100
	}
	return diffs
}
