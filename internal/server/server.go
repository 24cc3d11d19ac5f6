// Package server is the composition root: it opens the configured stores,
// builds the services and handlers, and mounts them on a chi router.
//
// ROUTES:
//
//	GET    /healthz
//	GET    /auth/google/login             (only when Google is configured)
//	GET    /auth/google/callback
//	GET    /api/teams, /api/teams/{id}, /api/rankings
//	GET    /api/tournaments[?status=], /api/tournaments/{id}
//	GET    /api/session
//	POST   /api/session/redirect
//	POST   /api/auth/register | login | logout
//	GET    /api/me
//	PATCH  /api/me/profile
//	PUT    /api/me/social/{provider} | email | password
//	GET    /api/me/settings   PUT /api/me/settings
//	PUT    /api/me/follows/teams/{id}        DELETE (same)
//	PUT    /api/me/follows/tournaments/{id}  DELETE (same)
//	GET    /api/notifications
//	POST   /api/notifications/read
//	POST   /api/notifications/{id}/read
//	GET    /api/notifications/ws
//	GET    /api/cart   PUT /api/cart
//
// Every route runs behind auth.Profile, so handlers can rely on a profile id
// being in the request context.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/robotics-league/internal/auth"
	"github.com/sakif/robotics-league/internal/catalog"
	"github.com/sakif/robotics-league/internal/config"
	"github.com/sakif/robotics-league/internal/handler"
	"github.com/sakif/robotics-league/internal/middleware"
	"github.com/sakif/robotics-league/internal/repository"
	"github.com/sakif/robotics-league/internal/repository/memory"
	"github.com/sakif/robotics-league/internal/repository/postgres"
	sqliteRepo "github.com/sakif/robotics-league/internal/repository/sqlite"
	"github.com/sakif/robotics-league/internal/service"
	"github.com/sakif/robotics-league/internal/storage"
	"github.com/sakif/robotics-league/internal/websocket"
)

// Server owns the router and every resource opened for it.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger

	hub     *websocket.Hub
	closers []func() error
}

// New opens the stores named in cfg and wires the application.
// On error, anything already opened is closed again.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *Server, err error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}
	defer func() {
		if err != nil {
			s.close()
		}
	}()

	backend, users, err := s.openStores(ctx)
	if err != nil {
		return nil, err
	}

	tokens, err := s.profileTokens()
	if err != nil {
		return nil, err
	}

	league := catalog.Default()
	for _, issue := range catalog.CheckRankings(league.AllTeams()) {
		logger.Warn("catalog ranking inconsistency",
			slog.String("kind", string(issue.Kind)),
			slog.String("message", issue.Message),
		)
	}

	s.hub = websocket.NewHub(logger)
	notes := service.NewNotificationLog(cfg.Notifications.MaxEntries, s.hub, logger)
	sessions := service.NewSessionManager(
		users,
		league,
		auth.NewPasswordService(cfg.Auth.BcryptCost),
		notes,
		logger,
	)

	var google handler.FederatedProvider
	if cfg.Auth.Google.Enabled() {
		google = auth.NewGoogleProvider(cfg.Auth.Google.ClientID, cfg.Auth.Google.ClientSecret, cfg.Auth.Google.CallbackURL)
	} else {
		logger.Info("google sign-in disabled: GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set")
	}

	s.setupRoutes(routeDeps{
		tokens:   tokens,
		catalog:  handler.NewCatalogHandler(league, logger),
		session:  handler.NewSessionHandler(sessions, backend, google, cfg.Auth.SecureCookies, logger),
		profile:  handler.NewProfileHandler(sessions, backend, logger),
		notes:    handler.NewNotificationHandler(notes, backend, s.hub, logger),
		cart:     handler.NewCartHandler(service.NewCartService(logger), backend, logger),
		secure:   cfg.Auth.SecureCookies,
		database: cfg.Storage.Driver,
	})
	return s, nil
}

// openStores picks the profile storage backend and the user repository.
// When both use SQLite they share one *sqlite.DB.
func (s *Server) openStores(ctx context.Context) (storage.Backend, repository.UserRepository, error) {
	var sqliteDB *sqliteRepo.DB
	openSQLite := func() (*sqliteRepo.DB, error) {
		if sqliteDB != nil {
			return sqliteDB, nil
		}
		path := s.config.Storage.SQLitePath
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		db, err := sqliteRepo.New(path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite: %w", err)
		}
		sqliteDB = db
		s.closers = append(s.closers, db.Close)
		return db, nil
	}

	var backend storage.Backend
	switch s.config.Storage.Driver {
	case config.DriverMemory:
		backend = storage.NewMemory()
	case config.DriverSQLite:
		db, err := openSQLite()
		if err != nil {
			return nil, nil, err
		}
		backend = db
	case config.DriverRedis:
		rdb, err := storage.NewRedis(ctx, &s.config.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		s.closers = append(s.closers, rdb.Close)
		backend = rdb
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", s.config.Storage.Driver)
	}

	var users repository.UserRepository
	switch s.config.Users.Driver {
	case config.DriverMemory:
		users = memory.NewUserStore()
	case config.DriverSQLite:
		db, err := openSQLite()
		if err != nil {
			return nil, nil, err
		}
		users = db
	case config.DriverPostgres:
		pg, err := postgres.NewRepository(ctx, &s.config.Postgres, s.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		s.closers = append(s.closers, func() error { pg.Close(); return nil })
		if err := pg.RunMigrations(ctx); err != nil {
			return nil, nil, fmt.Errorf("migrating postgres: %w", err)
		}
		users = pg
	default:
		return nil, nil, fmt.Errorf("unknown users driver %q", s.config.Users.Driver)
	}

	s.logger.Info("stores opened",
		slog.String("storage", s.config.Storage.Driver),
		slog.String("users", s.config.Users.Driver),
	)
	return backend, users, nil
}

// profileTokens builds the cookie signer. Without a configured secret a
// random one is generated, so every restart signs everyone out.
func (s *Server) profileTokens() (*auth.TokenService, error) {
	secret := s.config.Auth.JWTSecret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generating profile secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
		s.logger.Warn("JWT_SECRET not set: using a random secret, browser profiles reset on restart")
	}
	tokens, err := auth.NewTokenService(secret, s.config.Auth.ProfileTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}
	return tokens, nil
}

type routeDeps struct {
	tokens   *auth.TokenService
	catalog  *handler.CatalogHandler
	session  *handler.SessionHandler
	profile  *handler.ProfileHandler
	notes    *handler.NotificationHandler
	cart     *handler.CartHandler
	secure   bool
	database string
}

// setupRoutes mounts middleware and handlers. Order: request id, real IP,
// panic recovery, request log, then the profile cookie.
func (s *Server) setupRoutes(d routeDeps) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","storage":%q,"connections":%d}`+"\n", d.database, s.hub.TotalConnections())
	})

	s.router.Group(func(r chi.Router) {
		r.Use(auth.Profile(d.tokens, auth.CookieOptions{Secure: d.secure}, s.logger))

		if d.session.GoogleEnabled() {
			r.Get("/auth/google/login", d.session.HandleGoogleLogin)
			r.Get("/auth/google/callback", d.session.HandleGoogleCallback)
		}

		r.Route("/api", func(r chi.Router) {
			r.Get("/teams", d.catalog.HandleListTeams)
			r.Get("/teams/{id}", d.catalog.HandleGetTeam)
			r.Get("/rankings", d.catalog.HandleRankings)
			r.Get("/tournaments", d.catalog.HandleListTournaments)
			r.Get("/tournaments/{id}", d.catalog.HandleGetTournament)

			r.Get("/session", d.session.HandleSession)
			r.Post("/session/redirect", d.session.HandleSetRedirect)
			r.Post("/auth/register", d.session.HandleRegister)
			r.Post("/auth/login", d.session.HandleLogin)
			r.Post("/auth/logout", d.session.HandleLogout)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", d.profile.HandleMe)
				r.Patch("/profile", d.profile.HandleUpdateProfile)
				r.Put("/social/{provider}", d.profile.HandleSetSocialLink)
				r.Put("/email", d.profile.HandleChangeEmail)
				r.Put("/password", d.profile.HandleChangePassword)
				r.Get("/settings", d.profile.HandleGetSettings)
				r.Put("/settings", d.profile.HandleSaveSettings)
				r.Put("/follows/teams/{id}", d.profile.HandleFollowTeam)
				r.Delete("/follows/teams/{id}", d.profile.HandleUnfollowTeam)
				r.Put("/follows/tournaments/{id}", d.profile.HandleFollowTournament)
				r.Delete("/follows/tournaments/{id}", d.profile.HandleUnfollowTournament)
			})

			r.Get("/notifications", d.notes.HandleList)
			r.Post("/notifications/read", d.notes.HandleMarkAllRead)
			r.Post("/notifications/{id}/read", d.notes.HandleMarkRead)
			r.Get("/notifications/ws", d.notes.HandleStream)

			r.Get("/cart", d.cart.HandleGet)
			r.Put("/cart", d.cart.HandleReplace)
		})
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up
// to the configured shutdown timeout and closes every store.
func (s *Server) Start() error {
	defer s.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.hub.Run(hubCtx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		// Hijacked websocket connections are not tracked by Shutdown;
		// stopping the hub closes them.
		stopHub()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}

// close releases stores in reverse order of opening.
func (s *Server) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("closing resource", slog.String("error", err.Error()))
		}
	}
	s.closers = nil
}
