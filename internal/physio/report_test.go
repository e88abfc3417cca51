package physio

import (
	"math"
	"testing"
)

func sumConfidence(diffs []Differential) float64 {
	var s float64
	for _, d := range diffs {
		s += d.Confidence
	}
	return s
}

func TestSeedDifferentials_OverheadPattern(t *testing.T) {
	diffs := SeedDifferentials(SubjectiveReport{
		Narrative: "my shoulder started hurting after overhead press",
	})

	if len(diffs) != 2 {
		t.Fatalf("expected 2 differentials, got %d", len(diffs))
	}
	// insertion order, not significance-sorted
	if diffs[0].Code != "SIS_subacromial" || diffs[1].Code != "RC_strain" {
		t.Fatalf("unexpected codes: %q, %q", diffs[0].Code, diffs[1].Code)
	}
	if math.Abs(sumConfidence(diffs)-1.0) > 0.01 {
		t.Fatalf("confidences should sum to 1.00, got %v", sumConfidence(diffs))
	}
	// 0.5/0.8 and 0.3/0.8 rounded to 2 decimals
	if diffs[0].Confidence != 0.62 || diffs[1].Confidence != 0.38 {
		t.Fatalf("unexpected normalized weights: %v, %v", diffs[0].Confidence, diffs[1].Confidence)
	}
}

func TestSeedDifferentials_BicepsAddsCandidate(t *testing.T) {
	diffs := SeedDifferentials(SubjectiveReport{
		Narrative:   "pain in the biceps groove",
		Aggravators: []string{"pull-up"},
	})

	if len(diffs) != 3 {
		t.Fatalf("expected 3 differentials, got %d", len(diffs))
	}
	if diffs[2].Code != "LHBT_tendinopathy" {
		t.Fatalf("expected LHBT_tendinopathy last, got %q", diffs[2].Code)
	}
	if math.Abs(sumConfidence(diffs)-1.0) > 0.01 {
		t.Fatalf("confidences should sum to 1.00, got %v", sumConfidence(diffs))
	}
}

func TestSeedDifferentials_Fallback(t *testing.T) {
	diffs := SeedDifferentials(SubjectiveReport{Narrative: "it just hurts sometimes"})

	if len(diffs) != 1 {
		t.Fatalf("expected the single fallback candidate, got %d", len(diffs))
	}
	if diffs[0].Code != "NonSpecific_shoulder_pain" {
		t.Fatalf("unexpected fallback code %q", diffs[0].Code)
	}
	if diffs[0].Confidence != 1.0 {
		t.Fatalf("single candidate should normalize to 1.0, got %v", diffs[0].Confidence)
	}
}

func TestSeedDifferentials_AggravatorsFeedHaystack(t *testing.T) {
	// keyword only in the aggravator list, not the narrative
	diffs := SeedDifferentials(SubjectiveReport{
		Narrative:   "shoulder discomfort",
		Aggravators: []string{"overhead reaching"},
	})
	if len(diffs) != 2 || diffs[0].Code != "SIS_subacromial" {
		t.Fatalf("aggravators should match rules, got %+v", diffs)
	}
}
