package router

import (
	"context"
	"errors"
	"fmt"
	"time"

	"petora-connect/internal/adapters/assistant/gemini"
	"petora-connect/internal/adapters/auth/jwtverifier"
	"petora-connect/internal/adapters/auth/remote"
	"petora-connect/internal/adapters/awscfg"
	blobs3 "petora-connect/internal/adapters/blob/s3"
	feedredis "petora-connect/internal/adapters/changefeed/redis"
	"petora-connect/internal/adapters/storage/dynamo"
	pg "petora-connect/internal/adapters/storage/postgres"
	"petora-connect/internal/config"
	"petora-connect/internal/platform/logger"
	"petora-connect/internal/ports/assistant"
	"petora-connect/internal/ports/auth"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// chatbotTimeout acota cada llamada al modelo.
const chatbotTimeout = 30 * time.Second

// FromConfig arma Options según los drivers elegidos en cfg.
// El cleanup cierra las conexiones abiertas (DB, Redis); siempre es no-nil.
func FromConfig(ctx context.Context, cfg *config.Config, log logger.Logger) (Options, func(), error) {
	if log == nil {
		log = logger.Nop()
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (Options, func(), error) {
		cleanup()
		return Options{}, func() {}, err
	}

	opts := Options{
		AdminIDs:       cfg.Admins(),
		AllowedOrigins: cfg.Origins(),
		MaxUploadBytes: cfg.MaxUploadMB << 20,
		ChatbotMaxLen:  cfg.ChatbotMaxLen,
		ChatbotTimeout: chatbotTimeout,
		Log:            log,
	}

	// AWS solo se carga si algún driver lo necesita.
	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		c, err := awscfg.Load(ctx, awscfg.Options{Region: cfg.AWSRegion, Endpoint: cfg.AWSEndpoint})
		if err != nil {
			return aws.Config{}, err
		}
		awsCfg = &c
		return c, nil
	}

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := pg.Open(ctx, cfg.DBDSN)
		if err != nil {
			return fail(fmt.Errorf("open postgres: %w", err))
		}
		closers = append(closers, func() { _ = db.Close() })
		opts.Repos = Repos{
			Listings: pg.NewListingsRepo(db),
			Groups:   pg.NewGroupsRepo(db),
			Posts:    pg.NewPostsRepo(db),
			Profiles: pg.NewProfilesRepo(db),
		}
	case config.StorageDynamo:
		c, err := loadAWS()
		if err != nil {
			return fail(err)
		}
		api := dynamo.NewClient(c)
		t := dynamo.TableNames(cfg.DynamoTablePrefix)
		opts.Repos = Repos{
			Listings: dynamo.NewListingsRepo(api, t.Listings),
			Groups:   dynamo.NewGroupsRepo(api, t.Groups, t.Messages),
			Posts:    dynamo.NewPostsRepo(api, t.Posts),
			Profiles: dynamo.NewProfilesRepo(api, t.Profiles),
		}
	}

	if cfg.BlobDriver == config.BlobS3 {
		c, err := loadAWS()
		if err != nil {
			return fail(err)
		}
		opts.Blob = blobs3.NewStore(blobs3.NewClient(c), cfg.S3Bucket, "images/")
	}

	if cfg.FeedDriver == config.FeedRedis {
		rdb, err := feedredis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		opts.Feed = feedredis.NewFeed(rdb, log)
	}

	verifier, err := authVerifier(cfg)
	if err != nil {
		return fail(err)
	}
	opts.AuthVerifier = verifier

	model, err := chatModel(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	if model == nil {
		log.Warn("GEMINI_API_KEY not set; /chatbot will answer 502", nil)
	}
	opts.Model = model

	return opts, cleanup, nil
}

func authVerifier(cfg *config.Config) (auth.AuthVerifier, error) {
	switch cfg.AuthMode {
	case config.AuthJWT:
		v, err := jwtverifier.New(cfg.JWTSecret)
		if err != nil {
			return nil, fmt.Errorf("jwt verifier: %w", err)
		}
		return v, nil
	case config.AuthRemote:
		c, err := remote.NewClient(remote.Config{BaseURL: cfg.IdPBaseURL, APIKey: cfg.IdPAPIKey})
		if err != nil {
			return nil, fmt.Errorf("identity provider client: %w", err)
		}
		return remote.NewVerifier(c), nil
	}
	// dev: sin verifier, headers X-Debug-*
	return nil, nil
}

func chatModel(ctx context.Context, cfg *config.Config) (assistant.Model, error) {
	m, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if errors.Is(err, assistant.ErrNotConfigured) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

