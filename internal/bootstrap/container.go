package bootstrap

import (
	"context"
	"fmt"
	"log"

	"aficionado-be/internal/config"
	"aficionado-be/internal/controller"
	"aficionado-be/internal/pkg/logger"
	"aficionado-be/internal/repository/contract"
	"aficionado-be/internal/repository/memory"
	redisrepo "aficionado-be/internal/repository/redis"
	"aficionado-be/internal/service"
	"aficionado-be/internal/web"
	"aficionado-be/pkg/blobstore"
	"aficionado-be/pkg/blobstore/gcs"
	membucket "aficionado-be/pkg/blobstore/memory"
	"aficionado-be/pkg/inference"
	"aficionado-be/pkg/inference/factory"
	"aficionado-be/pkg/suggest"
	"aficionado-be/pkg/workspace"

	pktNats "aficionado-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	SessionController   controller.ISessionController
	WorkspaceController controller.IWorkspaceController
	OAuthController     controller.IOAuthController
	PageController      web.IPageController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger  logger.ILogger
	closers []func()
}

// Dependencies are the infrastructure pieces a container is assembled from.
// Nil fields get in-process defaults.
type Dependencies struct {
	Bucket   blobstore.Bucket
	Gateway  inference.Gateway
	Sessions contract.SessionRepository
	Events   service.EventPublisher
	Logger   logger.ILogger
}

// NewContainer connects to the configured infrastructure and wires the app.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	deps := Dependencies{Logger: sysLogger}
	var closers []func()

	// 1. Storage
	switch cfg.Workspace.StorageDriver {
	case "memory":
		log.Printf("[WARN] Using in-memory storage driver; workspace files are lost on restart")
		deps.Bucket = membucket.NewBucket("memory")
	default:
		bucket, err := gcs.NewBucket(ctx, cfg.GCP.BucketName, cfg.GCP.CredentialsJSON)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		deps.Bucket = bucket
		closers = append(closers, func() { _ = bucket.Close() })
	}
	adapter := blobstore.NewAdapter(deps.Bucket, cfg.Workspace.ExamplesPrefix)

	// 2. Inference
	gateway, err := factory.NewGateway(ctx, factory.Options{
		Backend:     cfg.Inference.Backend,
		EndpointURL: cfg.Inference.EndpointURL,
		APIKey:      cfg.Inference.APIKey,
		Timeout:     cfg.Inference.Timeout,
		Project:     cfg.GCP.Project,
		Location:    cfg.GCP.Location,
		Model:       cfg.Inference.VertexModel,
		Workspace:   adapter,
	})
	if err != nil {
		return nil, fmt.Errorf("init inference gateway: %w", err)
	}
	log.Printf("[INFO] Using inference backend: %s", cfg.Inference.Backend)
	deps.Gateway = gateway

	// 3. Sessions
	if cfg.Session.Store == "redis" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to in-memory sessions", err)
			_ = rdb.Close()
		} else {
			deps.Sessions = redisrepo.NewSessionRepository(rdb, cfg.Session.TTL)
			closers = append(closers, func() { _ = rdb.Close() })
		}
	}

	// 4. Workspace events
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			deps.Events = natsPub
			closers = append(closers, natsPub.Close)
		}
	}

	c := Assemble(cfg, deps)
	c.closers = append(c.closers, closers...)
	return c, nil
}

// Assemble wires services and controllers on top of deps.
func Assemble(cfg *config.Config, deps Dependencies) *Container {
	sysLogger := deps.Logger
	if sysLogger == nil {
		sysLogger = logger.NewNopLogger()
	}
	if deps.Bucket == nil {
		deps.Bucket = membucket.NewBucket("memory")
	}
	if deps.Sessions == nil {
		deps.Sessions = memory.NewSessionRepository(cfg.Session.TTL)
	}

	adapter := blobstore.NewAdapter(deps.Bucket, cfg.Workspace.ExamplesPrefix)
	synchronizer := workspace.NewSynchronizer(adapter, sysLogger)
	guard := service.NewSessionGuard(deps.Sessions)

	// Reconcile queue
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	publisherService := service.NewPublisherService(cfg.Workspace.ReconcileTopic, pubSub)
	workerLogger := logger.NewIsolatedLogger(cfg.App.WorkerLogFilePath)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Workspace.ReconcileTopic,
		deps.Sessions,
		guard,
		synchronizer,
		workerLogger,
	)

	assistantService := service.NewAssistantService(
		deps.Sessions,
		guard,
		deps.Gateway,
		synchronizer,
		suggest.Default(),
		cfg.Session.ChoicesWidth,
		deps.Events,
		sysLogger,
	)
	workspaceService := service.NewWorkspaceService(
		guard,
		synchronizer,
		publisherService,
		deps.Events,
		service.WorkspaceOptions{
			AllowedExtensions: cfg.Workspace.AllowedExtensions,
			MaxUploadBytes:    cfg.Workspace.UploadMaxBytes,
		},
		sysLogger,
	)
	oauthService := service.NewOAuthService(cfg.Auth, []string{cfg.Workspace.ExamplesPrefix}, sysLogger)

	sessions := controller.NewSessionResolver(assistantService, cfg.Session.CookieName, cfg.Session.TTL, cfg.IsProduction())

	return &Container{
		SessionController:   controller.NewSessionController(assistantService, sessions),
		WorkspaceController: controller.NewWorkspaceController(workspaceService, sessions),
		OAuthController:     controller.NewOAuthController(oauthService, cfg.Auth.TokenTTL, cfg.IsProduction()),
		PageController: web.NewPageController(
			assistantService,
			workspaceService,
			sessions,
			web.NewRenderer(),
			cfg.Auth.JWTSecret,
			cfg.Workspace.ExamplesPrefix,
			cfg.Workspace.AllowedExtensions,
			sysLogger,
		),

		ConsumerService: consumerService,
		Logger:          sysLogger,
		closers: []func(){
			func() { _ = pubSub.Close() },
			func() { _ = workerLogger.Sync() },
		},
	}
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
