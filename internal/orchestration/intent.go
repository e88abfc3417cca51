package orchestration

import (
	"regexp"
	"strings"

	"github.com/mango278/physiome/internal/physio"
)

// Intent routes a single user turn. It is transient and never persisted.
type Intent string

const (
	IntentClarifyNeeded    Intent = "clarify_needed"
	IntentReportSymptom    Intent = "report_symptom"
	IntentLogSession       Intent = "log_session"
	IntentRequestPlan      Intent = "request_plan"
	IntentUpdateHypothesis Intent = "update_hypothesis"
	IntentAdjustPlan       Intent = "adjust_plan"
	IntentAskQuestion      Intent = "ask_question"
	IntentRedFlag          Intent = "red_flag"
	IntentNone             Intent = "none"
)

// Red-flag phrase patterns shared by Classify and ShouldGate.
var redFlagPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)numb|tingl|loss of sensation`),
	regexp.MustCompile(`(?i)fever|chills|night sweats`),
	regexp.MustCompile(`(?i)severe|unbearable`),
	regexp.MustCompile(`(?i)(pain|ache)\s*(8|9|10)/?10`),
}

var (
	reLogSession    = regexp.MustCompile(`(?i)\b(rpe|rate of perceived|logged|did my|completed|today's session)\b`)
	reReportSymptom = regexp.MustCompile(`(?i)\bnew|worse|now hurts|started hurting|clicking|swelling|tenderness\b`)
	rePlanNoun      = regexp.MustCompile(`(?i)\b(plan|workout|program)\b`)
	rePlanVerb      = regexp.MustCompile(`(?i)\bmake|generate|update|adjust\b`)
	reQuestion      = regexp.MustCompile(`(?i)\bhow|should|can i|what if\b`)
)

func matchesRedFlag(text string) bool {
	for _, re := range redFlagPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Classify assigns one intent per user turn by ordered first-match rules.
// The context argument is accepted but does not alter classification yet;
// that is a deliberate simplification, not a bug.
func Classify(text string, _ physio.TurnContext) Intent {
	t := strings.TrimSpace(text)

	// quick red flag check (also enforced by the gate)
	if matchesRedFlag(t) {
		return IntentRedFlag
	}
	if reLogSession.MatchString(t) {
		return IntentLogSession
	}
	if reReportSymptom.MatchString(t) {
		return IntentReportSymptom
	}
	if rePlanNoun.MatchString(t) && rePlanVerb.MatchString(t) {
		return IntentRequestPlan
	}
	if reQuestion.MatchString(t) {
		return IntentAskQuestion
	}
	return IntentNone
}
