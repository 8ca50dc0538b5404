package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/GlebRadaev/refledger/docs"
	"github.com/GlebRadaev/refledger/internal/config"
	adminhandlers "github.com/GlebRadaev/refledger/internal/handlers/admin"
	userhandlers "github.com/GlebRadaev/refledger/internal/handlers/users"
	withdrawalhandlers "github.com/GlebRadaev/refledger/internal/handlers/withdrawals"
	"github.com/GlebRadaev/refledger/internal/service"
	"github.com/GlebRadaev/refledger/pkg/auth"
	"github.com/GlebRadaev/refledger/pkg/utils"
)

type UserHandler interface {
	Sync(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	Verify(w http.ResponseWriter, r *http.Request)
	Leaderboard(w http.ResponseWriter, r *http.Request)
}

type WithdrawalHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type AdminHandler interface {
	Queue(w http.ResponseWriter, r *http.Request)
	Settle(w http.ResponseWriter, r *http.Request)
}

type Middleware func(http.Handler) http.Handler

type Handlers struct {
	UserHandler       UserHandler
	WithdrawalHandler WithdrawalHandler
	AdminHandler      AdminHandler

	TelegramAuth   Middleware
	AdminAuth      Middleware
	AllowedOrigins []string
}

func New(s *service.Services, cfg *config.Config) *Handlers {
	return &Handlers{
		UserHandler:       userhandlers.New(s.UserService, cfg.ReferralValue),
		WithdrawalHandler: withdrawalhandlers.New(s.UserService, s.WithdrawalService),
		AdminHandler:      adminhandlers.New(s.WithdrawalService),

		TelegramAuth:   auth.NewTelegramAuth(cfg.BotToken, cfg.InitDataTTL).Middleware,
		AdminAuth:      auth.AdminMiddleware(auth.NewJWTService(cfg.JWTSecret), cfg.Admins),
		AllowedOrigins: []string{cfg.WebAppURL},
	}
}

// Health godoc
//
//	@Summary	Health check
//	@Tags		Service
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/health [get]
func Health(w http.ResponseWriter, _ *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		cors.Handler(cors.Options{
			AllowedOrigins: h.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}),
	)
	r.Get("/health", Health)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.TelegramAuth)
			r.Route("/user", func(r chi.Router) {
				r.Post("/sync", h.UserHandler.Sync)
				r.Get("/me", h.UserHandler.Me)
				r.Post("/verify", h.UserHandler.Verify)
			})
			r.Get("/leaderboard", h.UserHandler.Leaderboard)
			r.Route("/withdrawals", func(r chi.Router) {
				r.Get("/", h.WithdrawalHandler.List)
				r.Post("/", h.WithdrawalHandler.Create)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.AdminAuth)
			r.Get("/withdrawals", h.AdminHandler.Queue)
			r.Post("/withdrawals/{id}/settle", h.AdminHandler.Settle)
		})
	})

	return r
}
