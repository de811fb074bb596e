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

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/api/handlers/http/admin"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/api/handlers/http/intake"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/api/handlers/http/public"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/api/handlers/http/system"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/config"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/middleware"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/service"
)

type Server struct {
	logger *slog.Logger
	router *chi.Mux
	cfg    config.Config
}

type Handlers struct {
	Admin  *admin.Handler
	Public *public.Handler
	Intake *intake.Handler
	System *system.Handler
}

func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger, svc *service.Service, checks map[string]system.Pinger) *Server {
	h := Handlers{
		Admin:  admin.NewHandler(logger, svc.AdminSOSService, svc.StatsService),
		Public: public.NewHandler(logger, svc.ReportService),
		Intake: intake.NewHandler(logger, svc.ClassificationService),
		System: system.NewHandler(logger, checks),
	}

	h.Admin.ReviewWriteTimeout = cfg.Http.ReviewWriteTimeout

	r := InitRouter(ctx, cfg, h, logger)

	return &Server{
		logger: logger,
		router: r,
		cfg:    *cfg,
	}
}

func InitRouter(ctx context.Context, cfg *config.Config, h Handlers, logger *slog.Logger) *chi.Mux {
	r := chi.NewMux()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/sos", func(sr chi.Router) {
			// PUBLIC
			sr.With(middleware.Limit(ctx, 1, 5, 10*time.Minute, logger)).
				Post("/report", h.Public.SOSReport)

			// ADMIN
			sr.Group(func(ar chi.Router) {
				ar.Use(middleware.AdminJWT(cfg.JWTSecret, logger))
				ar.Use(middleware.Limit(ctx, 20, 40, 10*time.Minute, logger))

				ar.Get("/pending", h.Admin.SOSPending)
				ar.Get("/all", h.Admin.SOSList)
				ar.Get("/users-in-radius", h.Admin.UsersInRadius)
				ar.Get("/stats", h.Admin.SOSStats)

				ar.Route("/{id}", func(rr chi.Router) {
					rr.Get("/", h.Admin.SOSGet)
					rr.Put("/review", h.Admin.SOSReview)
				})
			})
		})

		// INTAKE
		api.Route("/intake", func(ir chi.Router) {
			ir.Use(middleware.APIKeyMiddleware(cfg.APIKey))
			ir.Post("/classification", h.Intake.Classification)
		})

		// SYSTEM
		api.Get("/health", h.System.SystemHealth)
	})

	return r
}

func (s *Server) Handler() http.Handler { return s.router }

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
