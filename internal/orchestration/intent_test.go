package orchestration

import (
	"testing"

	"github.com/mango278/physiome/internal/physio"
)

func TestClassify_PrecedenceOrder(t *testing.T) {
	cases := []struct {
		text string
		want Intent
	}{
		// one example per rule, in precedence order
		{"numbness down my arm", IntentRedFlag},
		{"I completed today's session at RPE 6, pain 2/10", IntentLogSession},
		{"my shoulder started hurting after bench", IntentReportSymptom},
		{"can you generate a workout for me", IntentRequestPlan},
		{"how long should this take to heal", IntentAskQuestion},
		{"morning", IntentNone},

		// red flag outranks session vocabulary
		{"completed my session but pain 9/10", IntentRedFlag},
		// session vocabulary outranks symptom vocabulary
		{"logged it, feels worse though", IntentLogSession},
		// plan noun without an action verb is not a plan request
		{"tell me about the program", IntentNone},
	}

	for _, tc := range cases {
		got := Classify(tc.text, physio.TurnContext{})
		if got != tc.want {
			t.Fatalf("Classify(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestClassify_Deterministic(t *testing.T) {
	text := "I did my exercises, RPE 7"
	first := Classify(text, physio.TurnContext{})
	for i := 0; i < 10; i++ {
		if got := Classify(text, physio.TurnContext{}); got != first {
			t.Fatalf("classification changed between calls: %s vs %s", first, got)
		}
	}
}

func TestClassify_ContextDoesNotAlterResult(t *testing.T) {
	text := "can you make a plan"
	hyp := &physio.HypothesisSummary{ID: "h", Version: 3}
	withCtx := Classify(text, physio.TurnContext{Hypothesis: hyp})
	without := Classify(text, physio.TurnContext{})
	if withCtx != without {
		t.Fatalf("context must not alter classification yet: %s vs %s", withCtx, without)
	}
}
