package handlers

import (
	"github.com/jmoiron/sqlx"

	"barter/internal/config"
	"barter/internal/events"
	"barter/internal/metrics"
	"barter/internal/repos"
	"barter/internal/services"
)

type Deps struct {
	Config          config.Config
	Metrics         *metrics.Metrics
	Auth            *services.AuthService
	AuthHandler     *AuthHandler
	AdHandler       *AdHandler
	ProposalHandler *ProposalHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, pub events.Publisher, m *metrics.Metrics) *Deps {
	if m == nil {
		m = metrics.New("barter")
	}
	userRepo := repos.NewUserRepo(db)
	adRepo := repos.NewAdRepo(db)
	proposalRepo := repos.NewProposalRepo(db)

	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	adSvc := services.NewAdService(adRepo, m)
	proposalSvc := services.NewProposalService(db, adRepo, proposalRepo, pub, m)

	return &Deps{
		Config:          cfg,
		Metrics:         m,
		Auth:            authSvc,
		AuthHandler:     &AuthHandler{Auth: authSvc},
		AdHandler:       &AdHandler{Ads: adSvc},
		ProposalHandler: &ProposalHandler{Proposals: proposalSvc},
	}
}
