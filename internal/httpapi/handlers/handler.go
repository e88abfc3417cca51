package handlers

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mango278/physiome/internal/ai"
	"github.com/mango278/physiome/internal/config"
	"github.com/mango278/physiome/internal/email"
	"github.com/mango278/physiome/internal/orchestration"
	"github.com/mango278/physiome/internal/physio"
	"github.com/mango278/physiome/internal/store/rabbitmq"
	"github.com/mango278/physiome/internal/store/redisstore"
)

type Handler struct {
	DB          *gorm.DB
	Cfg         config.Config
	Redis       *redisstore.Store
	SMTPSetting email.SMTPConfig

	Repo     *physio.Repo
	Pipeline *orchestration.Pipeline
	Model    *ai.Client
	Rabbit   *rabbitmq.Publisher
}

func NewHandler(db *gorm.DB, cfg config.Config, r *redisstore.Store, pub *rabbitmq.Publisher) *Handler {
	repo := physio.NewRepo(db)

	// Missing provider credentials are a boot-time failure, not a mid-stream one.
	model, err := ai.NewClient(cfg.ModelBaseURL, cfg.ModelAPIKey, cfg.ModelName)
	if err != nil {
		panic(fmt.Sprintf("model provider config: %v", err))
	}

	return &Handler{
		DB:    db,
		Cfg:   cfg,
		Redis: r,
		SMTPSetting: email.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		},
		Repo:     repo,
		Pipeline: orchestration.NewPipeline(repo, cfg.RecentLogLimit),
		Model:    model,
		Rabbit:   pub,
	}
}
