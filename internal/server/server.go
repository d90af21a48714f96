package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bounce-app/apiserver/config"
	"github.com/bounce-app/apiserver/internal/auth"
	"github.com/bounce-app/apiserver/internal/db"
	"github.com/bounce-app/apiserver/internal/events"
	"github.com/bounce-app/apiserver/internal/handlers"
	"github.com/bounce-app/apiserver/internal/media"
	"github.com/bounce-app/apiserver/internal/services"
	"github.com/bounce-app/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	bus        *events.Bus
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	clubRepo := store.NewClubRepository(dbConn)
	membershipRepo := store.NewMembershipRepository(dbConn)
	imageRepo := store.NewImageRepository(dbConn)

	bus, err := newEventBus(ctx, cfg.Events)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userService := services.NewUserService(userRepo)
	clubService := services.NewClubService(clubRepo, membershipRepo, bus)
	membershipService := services.NewMembershipService(membershipRepo, clubRepo, userRepo, bus)

	imageService, err := newImageService(ctx, cfg.Media, imageRepo, membershipRepo)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLDays)*24*time.Hour)
	authMiddleware := handlers.RequireAuth(tokens)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, tokens)
	})
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, userService, authMiddleware)
	})
	router.Route("/clubs", func(r chi.Router) {
		handlers.ClubRouter(r, clubService, membershipService, authMiddleware)
	})
	if imageService.Enabled() {
		router.Route("/images", func(r chi.Router) {
			handlers.ImageRouter(r, imageService, authMiddleware)
		})
	}

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		bus:        bus,
	}, nil
}

// newEventBus selects the configured event broker. An empty backend
// disables event publishing.
func newEventBus(ctx context.Context, cfg config.EventsConfig) (*events.Bus, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		publisher, err := events.NewRabbitMQPublisher(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return events.NewBus(publisher), nil
	case "pubsub":
		publisher, err := events.NewPubSubPublisher(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return events.NewBus(publisher), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

// newImageService selects the configured media backend. An empty
// backend disables the image endpoints.
func newImageService(ctx context.Context, cfg config.MediaConfig, images *store.ImageRepository, memberships *store.MembershipRepository) (*services.ImageService, error) {
	var backend media.Backend
	switch cfg.Backend {
	case "":
		return nil, nil
	case "minio":
		minioBackend, err := media.NewMinioBackend(cfg.Minio)
		if err != nil {
			return nil, err
		}
		backend = minioBackend
	case "gcs":
		gcsBackend, err := media.NewGCSBackend(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		backend = gcsBackend
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Backend)
	}

	mediaStore := media.NewStore(backend)
	if err := mediaStore.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return services.NewImageService(images, memberships, mediaStore), nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if err := s.bus.Close(); err != nil {
		log.Printf("server: close event bus: %v", err)
	}
	return s.httpServer.Close()
}
