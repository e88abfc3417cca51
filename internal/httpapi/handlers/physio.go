package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mango278/physiome/internal/common"
	"github.com/mango278/physiome/internal/physio"
)

func limitFromQuery(c *gin.Context) int {
	limit, _ := strconv.Atoi(c.Query("limit"))
	return limit
}

type createHypothesisReq struct {
	Narrative   string   `json:"narrative" binding:"required"`
	Onset       string   `json:"onset"`
	Location    string   `json:"location"`
	Aggravators []string `json:"aggravators"`
	Easers      []string `json:"easers"`
}

func (h *Handler) CreateHypothesis(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req createHypothesisReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Narrative) == "" {
		common.Fail(c, http.StatusBadRequest, 10001, "narrative required")
		return
	}

	hyp, err := h.Repo.CreateHypothesis(c.Request.Context(), uid, physio.SubjectiveReport{
		Narrative:   req.Narrative,
		Onset:       req.Onset,
		Location:    req.Location,
		Aggravators: req.Aggravators,
		Easers:      req.Easers,
	})
	if err != nil {
		log.Printf("[CreateHypothesis] failed uid=%d err=%v", uid, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	common.OK(c, gin.H{"hypothesis": hyp})
}

func (h *Handler) ListHypotheses(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	rows, err := h.Repo.ListHypotheses(c.Request.Context(), uid, limitFromQuery(c))
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, gin.H{"hypotheses": rows})
}

type createPlanReq struct {
	HypothesisID string `json:"hypothesis_id"`
}

func (h *Handler) CreatePlan(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req createPlanReq
	_ = c.ShouldBindJSON(&req) // allow empty {}

	plan, err := h.Repo.GeneratePlan(c.Request.Context(), uid, req.HypothesisID)
	if err != nil {
		log.Printf("[CreatePlan] failed uid=%d err=%v", uid, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, gin.H{"plan": plan})
}

func (h *Handler) ListPlans(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	rows, err := h.Repo.ListPlans(c.Request.Context(), uid, limitFromQuery(c))
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, gin.H{"plans": rows})
}

type createCheckInReq struct {
	WorkoutPlanID      string   `json:"workout_plan_id" binding:"required"`
	PainLevel          *float64 `json:"pain_level"`
	MobilityScore      *float64 `json:"mobility_score"`
	Notes              string   `json:"notes"`
	CompletedExercises []string `json:"completed_exercises"`
}

func validScale(v *float64) bool {
	return v == nil || (*v >= 0 && *v <= 10)
}

func (h *Handler) CreateCheckIn(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req createCheckInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if !validScale(req.PainLevel) || !validScale(req.MobilityScore) {
		common.Fail(c, http.StatusBadRequest, 10005, "pain_level and mobility_score must be within 0..10")
		return
	}

	entry, err := h.Repo.LogSession(c.Request.Context(), uid, req.WorkoutPlanID,
		req.PainLevel, req.MobilityScore, req.Notes, req.CompletedExercises)
	if err != nil {
		log.Printf("[CreateCheckIn] failed uid=%d err=%v", uid, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, gin.H{"check_in": entry})
}

func (h *Handler) ListCheckIns(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	rows, err := h.Repo.ListSessionLogs(c.Request.Context(), uid, limitFromQuery(c))
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, gin.H{"check_ins": rows})
}
