package orchestration

import "github.com/mango278/physiome/internal/physio"

// SafetyReply is the fixed message returned whenever the gate fires. Nothing
// downstream of the gate runs for that turn.
const SafetyReply = "Your recent input/logs suggest red-flag symptoms. " +
	"Please seek in-person medical care. I won’t change your plan right now."

// ShouldGate reports whether this turn must short-circuit for safety.
// It must run before intent classification and before any context-dependent
// branching. Pure predicate, no side effects.
func ShouldGate(input string, logs []physio.SessionMini) bool {
	if matchesRedFlag(input) {
		return true
	}
	for _, l := range logs {
		// missing pain does not trigger
		if l.Pain != nil && *l.Pain >= 7 {
			return true
		}
	}
	return false
}
