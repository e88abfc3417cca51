package physio

import (
	"time"

	"gorm.io/datatypes"
)

type Hypothesis struct {
	ID            string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID        uint64         `gorm:"index;not null" json:"-"`
	Version       int            `gorm:"not null;index:idx_hyp_user_version,priority:2" json:"version"`
	Subjective    datatypes.JSON `gorm:"type:json" json:"subjective"`
	Differentials datatypes.JSON `gorm:"type:json" json:"differentials"`
	Status        string         `gorm:"type:varchar(16);not null" json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (Hypothesis) TableName() string { return "injury_hypotheses" }

type Plan struct {
	ID               string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID           uint64         `gorm:"index;not null" json:"-"`
	LinkedHypothesis *string        `gorm:"type:varchar(36);index" json:"linked_hypothesis,omitempty"`
	Version          int            `gorm:"not null" json:"version"`
	MesocycleWeeks   int            `gorm:"not null" json:"mesocycle_weeks"`
	Microcycles      datatypes.JSON `gorm:"type:json" json:"microcycles"`
	ProgressionLogic string         `gorm:"type:text" json:"progression_logic"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (Plan) TableName() string { return "workout_plans" }

// SessionLog is one check-in against a plan. Pain and RPE are stored as JSON
// because historical rows hold either a bare number or {"overall": n}.
type SessionLog struct {
	ID                 string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID             uint64         `gorm:"index;not null" json:"-"`
	PlanID             string         `gorm:"type:varchar(36);index;not null" json:"plan_id"`
	Pain               datatypes.JSON `gorm:"type:json" json:"pain,omitempty"`
	RPE                datatypes.JSON `gorm:"type:json" json:"rpe,omitempty"`
	Notes              *string        `gorm:"type:text" json:"notes,omitempty"`
	CompletedExercises datatypes.JSON `gorm:"type:json" json:"completed_exercises,omitempty"`
	PerformedAt        time.Time      `gorm:"index;not null" json:"performed_at"`
	CreatedAt          time.Time      `json:"created_at"`
}

func (SessionLog) TableName() string { return "session_logs" }
