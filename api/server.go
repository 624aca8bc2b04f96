package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/sfrosal/portfolio-api/auth"
	"github.com/sfrosal/portfolio-api/config"
	"github.com/sfrosal/portfolio-api/database"
	"github.com/sfrosal/portfolio-api/services"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(database database.Database) (Server, error) {
	c := config.New()

	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port)

	startupTime := time.Now()

	router := newRouter(database, withConfig(c), withStartupTime(startupTime))

	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 300)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 300)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
	uploader    uploader
	mailer      mailer
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

// withUploader swaps the media-host client. Used by tests.
func withUploader(u uploader) func(*router) {
	return func(r *router) {
		r.uploader = u
	}
}

// withMailer swaps the email relay. Used by tests.
func withMailer(m mailer) func(*router) {
	return func(r *router) {
		r.mailer = m
	}
}

func newRouter(database database.Database, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}
	if router.config == nil {
		router.config = config.New()
	}
	if router.uploader == nil {
		router.uploader = services.NewCloudinaryClient(router.config)
	}
	if router.mailer == nil {
		router.mailer = services.NewResendMailer(router.config)
	}

	sessionTTL := time.Duration(config.GetInt(router.config, "SESSION_TTL_HOURS", 0)) * time.Hour
	if sessionTTL <= 0 {
		sessionTTL = auth.DefaultTTL
	}
	codec := auth.NewCodec(config.GetString(router.config, "SESSION_SECRET", ""), sessionTTL)
	cookies := newCookiePolicy(router.config, sessionTTL)

	imageLimit, videoLimit := uploadLimits(router.config)

	handlers := initializeHandlers(database, codec, cookies, router.uploader, router.mailer, imageLimit, videoLimit)
	authMiddleware := newAuthMiddleware(codec, cookies)

	acceptedOrigins := strings.Split(config.GetString(router.config, "ACCEPTED_ORIGINS", "http://localhost:3000"), ",")

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   acceptedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	chiRouter.Use(RequestLoggingMiddleware)

	setupRoutes(chiRouter, handlers, authMiddleware, router.startupTime)

	return chiRouter
}

// uploadLimits resolves the upload byte ceilings: the service defaults,
// overridable per route in whole megabytes.
func uploadLimits(cfg map[string]string) (imageLimit, videoLimit int64) {
	imageLimit = services.MaxImageUploadBytes
	if mb := config.GetInt64(cfg, "MAX_UPLOAD_MB", 0); mb > 0 {
		imageLimit = mb * 1024 * 1024
	}

	videoLimit = services.MaxVideoUploadBytes
	if mb := config.GetInt64(cfg, "MAX_VIDEO_UPLOAD_MB", 0); mb > 0 {
		videoLimit = mb * 1024 * 1024
	}
	return imageLimit, videoLimit
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
