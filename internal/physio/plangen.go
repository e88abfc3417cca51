package physio

// Microcycle is one week of a plan: an ordered list of sessions.
type Microcycle struct {
	Week     int       `json:"week"`
	Sessions []Session `json:"sessions"`
}

type Session struct {
	Day       string     `json:"day"`
	Exercises []Exercise `json:"exercises"`
}

// Exercise target effort is a string because templates mix numeric RPE with
// qualitative cues ("comfortable").
type Exercise struct {
	Name  string `json:"name"`
	Sets  int    `json:"sets"`
	Reps  string `json:"reps"`
	RPE   string `json:"RPE"`
	Notes string `json:"notes,omitempty"`
}

type PlanTemplate struct {
	Microcycles      []Microcycle
	ProgressionLogic string
	MesocycleWeeks   int
	Version          int
}

const progressionRule = "If median RPE ≤5 and pain ≤2/10 for 2 sessions → +5° ROM or +1 set next week. " +
	"If RPE ≥8 or pain ≥4/10 → regress ROM/load or swap to isometric."

// GenerateFromHypothesis returns the templated starter block for a new plan.
// The hypothesis content does not influence the template yet; the link is
// carried on the stored plan row only.
func GenerateFromHypothesis(hypothesisID string) PlanTemplate {
	_ = hypothesisID

	microcycles := []Microcycle{
		{
			Week: 1,
			Sessions: []Session{
				{
					Day: "Mon",
					Exercises: []Exercise{
						{Name: "Scaption to 90°", Sets: 3, Reps: "10–12", RPE: "6", Notes: "Pain-free range"},
						{Name: "Isometric ER @ side", Sets: 3, Reps: "3x30s", RPE: "comfortable"},
					},
				},
				{
					Day: "Thu",
					Exercises: []Exercise{
						{Name: "Cable row (neutral)", Sets: 3, Reps: "8–10", RPE: "6"},
						{Name: "Prone Y-T-W", Sets: 2, Reps: "8 each", RPE: "5"},
					},
				},
			},
		},
	}

	return PlanTemplate{
		Microcycles:      microcycles,
		ProgressionLogic: progressionRule,
		MesocycleWeeks:   6,
		Version:          1,
	}
}
