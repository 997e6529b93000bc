package router

import (
	"net/http"
	"time"

	feedmem "petora-connect/internal/adapters/changefeed/memory"
	blobmem "petora-connect/internal/adapters/blob/memory"
	mem "petora-connect/internal/adapters/storage/memory"
	"petora-connect/internal/domain/chatbot"
	"petora-connect/internal/domain/groups"
	"petora-connect/internal/domain/listings"
	"petora-connect/internal/domain/media"
	"petora-connect/internal/domain/posts"
	"petora-connect/internal/domain/users"
	"petora-connect/internal/middleware"
	"petora-connect/internal/platform/logger"
	"petora-connect/internal/ports/assistant"
	"petora-connect/internal/ports/auth"
	"petora-connect/internal/ports/blob"
	"petora-connect/internal/ports/changefeed"
	"petora-connect/internal/realtime"

	_ "petora-connect/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Repos agrupa los repositorios de un mismo driver de storage.
type Repos struct {
	Listings listings.Repository
	Groups   groups.Repository
	Posts    posts.Repository
	Profiles users.Repository
}

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Cualquier componente nil cae a su versión in-memory.
	Repos Repos
	Blob  blob.Store
	Feed  changefeed.Feed
	Model assistant.Model // nil => /chatbot responde 502

	AdminIDs       []string
	AllowedOrigins []string
	MaxUploadBytes int64
	ChatbotMaxLen  int
	ChatbotTimeout time.Duration
	Log            logger.Logger
}

func NewRouter(opts Options) http.Handler {
	opts = withDefaults(opts)
	log := opts.Log

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.HeaderDebugUserID, middleware.HeaderDebugName, middleware.HeaderDebugEmail},
		AllowCredentials: true,
	}).Handler)
	r.Use(middleware.Metrics)
	r.Use(middleware.AccessLog(log))

	// Services por módulo
	usersSvc := users.NewService(opts.Repos.Profiles, users.Deps{AdminIDs: opts.AdminIDs, Log: log})
	mediaSvc := media.NewService(opts.Blob, media.Options{MaxBytes: opts.MaxUploadBytes, Log: log})
	listingsSvc := listings.NewService(opts.Repos.Listings, listings.Deps{
		Images:   mediaSvc,
		Contacts: usersSvc,
		Feed:     opts.Feed,
		Log:      log,
	})
	groupsSvc := groups.NewService(opts.Repos.Groups, groups.Deps{
		Images: mediaSvc,
		Roles:  usersSvc,
		Feed:   opts.Feed,
		Log:    log,
	})
	postsSvc := posts.NewService(opts.Repos.Posts, posts.Deps{Images: mediaSvc, Feed: opts.Feed, Log: log})
	chatbotSvc := chatbot.NewService(opts.Model, chatbot.Options{MaxQuestionLen: opts.ChatbotMaxLen, Timeout: opts.ChatbotTimeout, Log: log})

	r.Use(middleware.AuthContext(opts.AuthVerifier, usersSvc, log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	streamer := realtime.NewStreamer(opts.Feed, log, opts.AllowedOrigins)
	// Multipart = límite de imagen + 1 MB para los campos del formulario.
	uploadLimit := mediaSvc.MaxBytes() + 1<<20

	// Rutas por módulo
	listings.RegisterRoutes(r, listingsSvc, listings.HandlerOptions{Log: log, MaxUploadBytes: uploadLimit, Streamer: streamer})
	groups.RegisterRoutes(r, groupsSvc, groups.HandlerOptions{Log: log, MaxUploadBytes: uploadLimit, Streamer: streamer})
	posts.RegisterRoutes(r, postsSvc, posts.HandlerOptions{Log: log, MaxUploadBytes: uploadLimit, Streamer: streamer})
	media.RegisterRoutes(r, mediaSvc, media.HandlerOptions{Log: log})
	users.RegisterRoutes(r, usersSvc, users.HandlerOptions{Log: log})
	chatbot.RegisterRoutes(r, chatbotSvc, chatbot.HandlerOptions{Log: log})

	return r
}

func withDefaults(opts Options) Options {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.Repos.Listings == nil {
		opts.Repos.Listings = mem.NewListingRepo()
	}
	if opts.Repos.Groups == nil {
		opts.Repos.Groups = mem.NewGroupRepo()
	}
	if opts.Repos.Posts == nil {
		opts.Repos.Posts = mem.NewPostRepo()
	}
	if opts.Repos.Profiles == nil {
		opts.Repos.Profiles = mem.NewUserRepo()
	}
	if opts.Blob == nil {
		opts.Blob = blobmem.NewStore()
	}
	if opts.Feed == nil {
		opts.Feed = feedmem.NewFeed(64)
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return opts
}
