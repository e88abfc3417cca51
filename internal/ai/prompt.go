package ai

import (
	"fmt"
	"strings"

	"github.com/mango278/physiome/internal/physio"
)

// SystemPrompt is kept short to save tokens.
func SystemPrompt() string {
	return strings.Join([]string{
		"You are an AI Physio.",
		"Goal: help the user safely rehab by reading the latest hypothesis, plan, and recent logs.",
		"Guardrails: if severe pain/red-flag symptoms, advise in-person care and do not progress the plan.",
		"Policy: read context first; be concise; explain rationale for any progression/regression.",
	}, " ")
}

// ComposeUserMessage prefixes the raw input with the bounded context
// summaries so one prompt carries everything the model needs.
func ComposeUserMessage(input string, tc physio.TurnContext) string {
	var parts []string

	if h := tc.Hypothesis; h != nil {
		parts = append(parts, fmt.Sprintf("HYPOTHESIS v%d (%s):", h.Version, h.ID))
		diffs := make([]string, 0, len(h.Differentials))
		for _, d := range h.Differentials {
			diffs = append(diffs, fmt.Sprintf("%s:%g", d.Code, d.Confidence))
		}
		if len(diffs) == 0 {
			parts = append(parts, "- Differentials: n/a")
		} else {
			parts = append(parts, "- Differentials: "+strings.Join(diffs, ", "))
		}
		if h.KeyFindings != "" {
			parts = append(parts, "- Key findings: "+h.KeyFindings)
		}
	}

	if p := tc.Plan; p != nil {
		parts = append(parts, fmt.Sprintf("PLAN v%d (%s): week %d/%d", p.Version, p.ID, p.CurrentWeek, p.MesocycleWeeks))
		if p.Rules != "" {
			parts = append(parts, "- Rules: "+p.Rules)
		}
		if p.NextSessionPreview != "" {
			parts = append(parts, "- Next session: "+p.NextSessionPreview)
		}
	}

	if len(tc.Logs.Logs) > 0 {
		parts = append(parts, "RECENT LOGS:")
		for _, l := range tc.Logs.Logs {
			line := fmt.Sprintf("- %s: pain=%s, rpe=%s", l.PerformedAt.Format("2006-01-02"), scaleOrUnknown(l.Pain), scaleOrUnknown(l.RPE))
			if l.Notes != nil && *l.Notes != "" {
				n := *l.Notes
				if len(n) > 80 {
					n = n[:80]
				}
				line += fmt.Sprintf(", notes=%q", n)
			}
			parts = append(parts, line)
		}
	}

	parts = append(parts, "USER INPUT: "+input)
	return strings.Join(parts, "\n")
}

func scaleOrUnknown(v *float64) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprintf("%g", *v)
}
