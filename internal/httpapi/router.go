package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mango278/physiome/internal/common"
	"github.com/mango278/physiome/internal/config"
	"github.com/mango278/physiome/internal/httpapi/handlers"
	"github.com/mango278/physiome/internal/httpapi/middleware"
	"github.com/mango278/physiome/internal/store/rabbitmq"
	"github.com/mango278/physiome/internal/store/redisstore"
)

func NewRouter(db *gorm.DB, cfg config.Config, rds *redisstore.Store, pub *rabbitmq.Publisher) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())

	h := handlers.NewHandler(db, cfg, rds, pub)

	r.GET("/ping", h.Ping)

	// captcha
	r.POST("/captcha", h.SendCaptcha)

	// CRUD users register
	r.POST("/users", h.CreateUser)
	r.GET("/users/:id", h.GetUserByID)

	// auth
	r.POST("/login", h.Login)
	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))
	authGroup.GET("/me", h.Me)

	// physio records (JWT required)
	authGroup.POST("/api/hypotheses", h.CreateHypothesis)
	authGroup.GET("/api/hypotheses", h.ListHypotheses)
	authGroup.POST("/api/plans", h.CreatePlan)
	authGroup.GET("/api/plans", h.ListPlans)
	authGroup.POST("/api/checkins", h.CreateCheckIn)
	authGroup.GET("/api/checkins", h.ListCheckIns)

	// orchestrated turns + streaming chat
	authGroup.POST("/api/orchestrate", h.Orchestrate)
	authGroup.POST("/api/orchestrate/async", h.OrchestrateAsync)
	authGroup.GET("/api/orchestrate/jobs/:job_id", h.GetOrchestrateJob)
	authGroup.POST("/api/ai/chat", h.Chat)

	return r
}
