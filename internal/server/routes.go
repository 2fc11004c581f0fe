package server

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"openup/internal/db"
	"openup/internal/email"
	"openup/internal/handlers"
	"openup/internal/middleware"
	"openup/internal/models"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, database *db.DB) error {
	notifier := email.NewNotifier(s.Cfg, database)

	authMiddleware := middleware.NewAuthMiddleware(s.Store, s.Cfg.TokenSecret,
		func(c fiber.Ctx, id uuid.UUID) (*models.Profile, error) {
			return database.GetProfileByID(c.Context(), id)
		})

	linkHandler := handlers.NewLinkHandler(database, s.Cfg)
	redirectHandler := handlers.NewRedirectHandler(database)
	profileHandler := handlers.NewProfileHandler(database)
	planHandler := handlers.NewPlanHandler(database)
	qrHandler := handlers.NewQRHandler(database, s.Cfg)
	teamHandler := handlers.NewTeamHandler(database, s.Cfg, notifier)
	themeHandler := handlers.NewThemeHandler(database)
	overviewHandler := handlers.NewOverviewHandler(database, s.Cfg)
	bioHandler := handlers.NewBioHandler(database)
	billingHandler := handlers.NewBillingHandler(database)
	probeHandler := handlers.NewProbeHandler(database)

	// Auth routes - OIDC is required for the dashboard
	if s.Cfg.OIDCIssuer == "" {
		log.Fatal("OIDC_ISSUER is required. All dashboard users must be authenticated.")
	}

	authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg, database)
	if err != nil {
		return err
	}

	s.App.Get("/auth/login", authHandler.Login)
	s.App.Get("/auth/callback", authHandler.Callback)
	s.App.Get("/auth/logout", authHandler.Logout)
	s.App.Get("/auth/token", authMiddleware.RequireSession, authHandler.Token)

	// Login page (always available)
	s.App.Get("/login", func(c fiber.Ctx) error {
		return c.Render("login", fiber.Map{
			"Title":      "Sign in",
			"SiteTitle":  s.Cfg.SiteTitle,
			"SiteFooter": s.Cfg.SiteFooter,
		})
	})

	// API routes - bearer token auth
	api := s.App.Group("/api", authMiddleware.RequireBearer)

	api.Get("/overview", overviewHandler.Get)

	api.Get("/links", linkHandler.List)
	api.Post("/links", linkHandler.Create)
	api.Get("/links/:id", linkHandler.Get)
	api.Put("/links/:id", linkHandler.Update)
	api.Delete("/links/:id", linkHandler.Delete)
	api.Put("/links-reorder", linkHandler.Reorder)

	api.Get("/plans", planHandler.List)
	api.Get("/subscription", planHandler.Subscription)
	api.Put("/subscription", planHandler.UpdateSubscription)
	api.Get("/usage", planHandler.Usage)
	api.Get("/billing-history", billingHandler.History)

	api.Get("/qr-codes", qrHandler.List)
	api.Post("/qr-codes", qrHandler.Create)
	api.Put("/qr-codes/:id", qrHandler.Update)
	api.Delete("/qr-codes/:id", qrHandler.Delete)

	api.Get("/teams", teamHandler.List)
	api.Post("/teams", teamHandler.Create)
	api.Get("/teams/:id/members", teamHandler.Members)
	api.Get("/teams/:id/invites", teamHandler.PendingInvites)
	api.Delete("/teams/:id/members/:userId", teamHandler.RemoveMember)
	api.Delete("/teams/:id/invites/:inviteId", teamHandler.RevokeInvite)

	api.Get("/theme", themeHandler.Get)
	api.Put("/theme", themeHandler.Put)

	api.Get("/profile", profileHandler.Show)
	api.Put("/profile", profileHandler.Update)

	// Invite endpoints live at the root, matching the edge function
	// paths the dashboard calls.
	s.App.Post("/team-invite", authMiddleware.RequireBearer, teamHandler.Invite)
	s.App.Post("/team-accept", authMiddleware.RequireBearer, teamHandler.Accept)

	// Invite landing page for the emailed link
	s.App.Get("/invite/accept", teamHandler.AcceptPage)
	s.App.Post("/team-accept-web", authMiddleware.RequireSession, teamHandler.AcceptWeb)

	// Public routes
	s.App.Get("/r/:slug", redirectHandler.Resolve)
	s.App.Get("/u/:username", bioHandler.Show)

	// Operational endpoints
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return nil
}
