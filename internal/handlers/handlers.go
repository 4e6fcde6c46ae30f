package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/avrohommoshebaum/school-crm-sub001/internal/auth"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/config"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/middleware"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/repository"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/session"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	verifier *auth.CredentialVerifier
	broker   *auth.FederatedIdentityBroker
	google   *auth.GoogleClient // nil when OAuth is not configured
	sessions *middleware.SessionManager
	db       *pgxpool.Pool
	cache    *redis.Client
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store session.Store, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)

	var google *auth.GoogleClient
	if cfg.OAuth.Enabled() {
		google = auth.NewGoogleClient(cfg.OAuth)
	}

	return HandlerSet{
		log:      log,
		cfg:      cfg,
		verifier: auth.NewCredentialVerifier(userRepo, log),
		broker:   auth.NewFederatedIdentityBroker(userRepo, log),
		google:   google,
		sessions: middleware.NewSessionManager(store, userRepo, cfg.Session, cfg.Production(), log),
		db:       db,
		cache:    cache,
	}
}

// SessionManager exposes the manager so the server can install the session
// middleware ahead of the routes.
func (h HandlerSet) SessionManager() *middleware.SessionManager {
	return h.sessions
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	authGroup := router.Group("/auth")
	authGroup.POST("/login", h.Login)
	authGroup.POST("/logout", h.Logout)
	authGroup.GET("/me", h.Me)

	// Federated login is wired only when credentials are configured; its
	// absence disables the path without error.
	if h.google != nil {
		authGroup.GET("/google", h.GoogleRedirect)
		authGroup.GET("/google/callback", h.GoogleCallback)
	}
}
