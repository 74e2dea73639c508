package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sammiykay/community-alert/internal/api/handlers/http/admin"
	"github.com/sammiykay/community-alert/internal/api/handlers/http/public"
	"github.com/sammiykay/community-alert/internal/api/handlers/http/system"
	"github.com/sammiykay/community-alert/internal/config"
	"github.com/sammiykay/community-alert/internal/middleware"
	"github.com/sammiykay/community-alert/internal/service"
)

type Server struct {
	logger *slog.Logger
	router *chi.Mux
	cfg    config.Config
}

func NewServer(cfg *config.Config, logger *slog.Logger, svc *service.Service) *Server {
	adminHandler := admin.NewHandler(logger, svc.Communities, svc.Categories, svc.Alerts, svc.Stats)
	publicHandler := public.NewHandler(logger, svc.Alerts, svc.Users, svc.Communities, svc.Categories, svc.Notifications)
	systemHandler := system.NewHandler(logger)

	r := InitRouter(cfg, adminHandler, publicHandler, systemHandler, logger)

	return &Server{
		logger: logger,
		router: r,
		cfg:    *cfg,
	}
}

func InitRouter(cfg *config.Config, adminHandler *admin.Handler, publicHandler *public.Handler, systemHandler *system.Handler, logger *slog.Logger) *chi.Mux {
	r := chi.NewMux()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)

	r.Route("/api/v1", func(api chi.Router) {
		// ADMIN
		api.Route("/admin", func(ar chi.Router) {
			ar.Use(middleware.APIKey(cfg.APIKey, logger))
			ar.Use(middleware.Limit(2, 5, 10*time.Minute, logger))

			ar.Get("/stats", adminHandler.AdminStats)

			ar.Route("/communities", func(cr chi.Router) {
				cr.Post("/", adminHandler.AdminCommunityCreate)
				cr.Get("/", adminHandler.AdminCommunityList)

				cr.Route("/{id}", func(rr chi.Router) {
					rr.Get("/", adminHandler.AdminCommunityGet)
					rr.Put("/", adminHandler.AdminCommunityUpdate)
					rr.Delete("/", adminHandler.AdminCommunityDisable)
				})
			})

			ar.Route("/categories", func(cr chi.Router) {
				cr.Post("/", adminHandler.AdminCategoryCreate)
				cr.Get("/", adminHandler.AdminCategoryList)
				cr.Put("/{id}", adminHandler.AdminCategoryUpdate)
			})

			ar.Put("/alerts/{id}/moderate", adminHandler.AdminAlertModerate)
		})

		// PUBLIC
		api.Route("/users", func(ur chi.Router) {
			ur.Use(middleware.Limit(10, 20, 5*time.Minute, logger))

			ur.Post("/", publicHandler.PublicUserRegister)
			ur.Route("/{id}", func(rr chi.Router) {
				rr.Get("/", publicHandler.PublicUserProfile)
				rr.Put("/", publicHandler.PublicUserUpdate)
				rr.Get("/notifications", publicHandler.PublicNotificationList)
				rr.Get("/devices", publicHandler.PublicDeviceList)
			})
		})

		api.Route("/alerts", func(alr chi.Router) {
			alr.Use(middleware.Limit(10, 20, 5*time.Minute, logger))

			alr.Post("/", publicHandler.PublicAlertCreate)
			alr.Get("/", publicHandler.PublicAlertList)
			alr.Get("/nearby", publicHandler.PublicAlertNearby)

			alr.Route("/{id}", func(rr chi.Router) {
				rr.Get("/", publicHandler.PublicAlertGet)
				rr.Put("/", publicHandler.PublicAlertUpdate)
				rr.Post("/vote", publicHandler.PublicAlertVote)
				rr.Post("/comments", publicHandler.PublicAlertComment)
				rr.Delete("/comments/{comment_id}", publicHandler.PublicAlertCommentDelete)
			})
		})

		api.Route("/communities", func(cr chi.Router) {
			cr.Use(middleware.Limit(10, 20, 5*time.Minute, logger))
			cr.Get("/", publicHandler.PublicCommunityList)
			cr.Get("/{id}", publicHandler.PublicCommunityGet)
		})

		api.Get("/categories", publicHandler.PublicCategoryList)

		api.Route("/devices", func(dr chi.Router) {
			dr.Use(middleware.Limit(10, 20, 5*time.Minute, logger))
			dr.Post("/", publicHandler.PublicDeviceRegister)
			dr.Delete("/", publicHandler.PublicDeviceUnregister)
		})

		// SYSTEM
		api.Get("/health", systemHandler.SystemHealth)
	})

	return r
}

func (s *Server) Run(ctx context.Context) error {
	port := s.cfg.Http.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Http.ReadTimeout,
		WriteTimeout: s.cfg.Http.WriteTimeout,
		IdleTimeout:  30 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("Starting HTTP server",
			slog.String("addr", srv.Addr),
			slog.Duration("read_timeout", s.cfg.Http.ReadTimeout),
			slog.Duration("write_timeout", s.cfg.Http.WriteTimeout),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("ListenAndServe error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server", slog.String("reason", ctx.Err().Error()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Http.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server shutdown failed", slog.Any("error", err))
			return err
		}
		return nil

	case err := <-errChan:
		return err
	}
}
