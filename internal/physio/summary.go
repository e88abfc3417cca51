package physio

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Bounded context objects safe to embed in a model prompt.

type HypothesisSummary struct {
	ID            string         `json:"id"`
	Version       int            `json:"version"`
	Differentials []Differential `json:"differentials"`
	KeyFindings   string         `json:"key_findings,omitempty"`
}

type PlanSummary struct {
	ID                 string  `json:"id"`
	Version            int     `json:"version"`
	LinkedHypothesis   *string `json:"linked_hypothesis,omitempty"`
	MesocycleWeeks     int     `json:"mesocycle_weeks"`
	CurrentWeek        int     `json:"current_week"`
	NextSessionPreview string  `json:"next_session_preview,omitempty"`
	Rules              string  `json:"rules,omitempty"`
}

type SessionMini struct {
	ID          string    `json:"id"`
	PerformedAt time.Time `json:"performed_at"`
	Pain        *float64  `json:"pain,omitempty"`
	RPE         *float64  `json:"rpe,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
}

type RecentLogBundle struct {
	Logs       []SessionMini `json:"logs"`
	MedianPain *float64      `json:"median_pain,omitempty"`
	MedianRPE  *float64      `json:"median_rpe,omitempty"`
}

// TurnContext is everything the orchestrator knows about the user going into
// one turn.
type TurnContext struct {
	Hypothesis *HypothesisSummary
	Plan       *PlanSummary
	Logs       RecentLogBundle
}

const keyFindingsMax = 240

func safeTrunc(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n]) + "…"
	}
	return s
}

// CoerceOverall reads a pain/RPE column that may hold a bare number, an
// {"overall": n} object, or null. Anything else (or out of [0,10]) coerces
// to nil.
func CoerceOverall(raw []byte) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return clampScale(n)
	}
	var obj struct {
		Overall *float64 `json:"overall"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Overall != nil {
		return clampScale(*obj.Overall)
	}
	return nil
}

func clampScale(n float64) *float64 {
	if n < 0 || n > 10 {
		return nil
	}
	return &n
}

func median(nums []float64) *float64 {
	if len(nums) == 0 {
		return nil
	}
	arr := append([]float64(nil), nums...)
	sort.Float64s(arr)
	mid := len(arr) / 2
	var m float64
	if len(arr)%2 == 1 {
		m = arr[mid]
	} else {
		m = (arr[mid-1] + arr[mid]) / 2
	}
	return &m
}

func summarizeHypothesis(h *Hypothesis) *HypothesisSummary {
	if h == nil {
		return nil
	}

	var subj SubjectiveReport
	_ = json.Unmarshal(h.Subjective, &subj)

	var diffs []Differential
	_ = json.Unmarshal(h.Differentials, &diffs)

	bits := make([]string, 0, 3)
	if subj.Narrative != "" {
		bits = append(bits, subj.Narrative)
	}
	if subj.Location != "" {
		bits = append(bits, subj.Location)
	}
	if len(subj.Aggravators) > 0 {
		agg := subj.Aggravators
		if len(agg) > 3 {
			agg = agg[:3]
		}
		bits = append(bits, strings.Join(agg, ", "))
	}

	return &HypothesisSummary{
		ID:            h.ID,
		Version:       h.Version,
		Differentials: diffs,
		KeyFindings:   safeTrunc(strings.Join(bits, " • "), keyFindingsMax),
	}
}

func summarizePlan(p *Plan) *PlanSummary {
	if p == nil {
		return nil
	}

	var micro []Microcycle
	_ = json.Unmarshal(p.Microcycles, &micro)

	currentWeek := 1
	preview := ""
	if len(micro) > 0 {
		first := micro[0]
		if first.Week > 0 {
			currentWeek = first.Week
		}
		if len(first.Sessions) > 0 {
			next := first.Sessions[0]
			names := make([]string, 0, 3)
			for _, e := range next.Exercises {
				if e.Name == "" {
					continue
				}
				names = append(names, e.Name)
				if len(names) == 3 {
					break
				}
			}
			preview = next.Day + ": " + strings.Join(names, ", ")
		}
	}

	weeks := p.MesocycleWeeks
	if weeks <= 0 {
		weeks = 6
	}

	return &PlanSummary{
		ID:                 p.ID,
		Version:            p.Version,
		LinkedHypothesis:   p.LinkedHypothesis,
		MesocycleWeeks:     weeks,
		CurrentWeek:        currentWeek,
		NextSessionPreview: preview,
		Rules:              safeTrunc(p.ProgressionLogic, keyFindingsMax),
	}
}

func bundleLogs(rows []SessionLog) RecentLogBundle {
	logs := make([]SessionMini, 0, len(rows))
	var pains, rpes []float64
	for _, row := range rows {
		mini := SessionMini{
			ID:          row.ID,
			PerformedAt: row.PerformedAt,
			Pain:        CoerceOverall(row.Pain),
			RPE:         CoerceOverall(row.RPE),
			Notes:       row.Notes,
		}
		if mini.Pain != nil {
			pains = append(pains, *mini.Pain)
		}
		if mini.RPE != nil {
			rpes = append(rpes, *mini.RPE)
		}
		logs = append(logs, mini)
	}
	return RecentLogBundle{
		Logs:       logs,
		MedianPain: median(pains),
		MedianRPE:  median(rpes),
	}
}
