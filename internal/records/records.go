package records

import (
	httpadapter "recordstore/internal/records/adapter/http"
	"recordstore/internal/records/adapter/persistence"
	mongodbpersistence "recordstore/internal/records/adapter/persistence/mongodb"
	"recordstore/internal/records/adapter/realtime"
	"recordstore/internal/records/config"
	"recordstore/internal/records/domain/client"
	"recordstore/internal/records/domain/service"
	"recordstore/internal/records/usecase"
	"recordstore/internal/shared/eventbus"
	"recordstore/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Module bundles the record engine with its adapters: Mongo persistence,
// the Redis-backed change log, the realtime dispatcher and the HTTP surface.
type Module struct {
	Config     *config.Config
	Engine     usecase.EngineInterface
	EventBus   *eventbus.EventBus
	Dispatcher *realtime.Dispatcher
	Access     *httpadapter.AccessMiddleware
	Handler    *httpadapter.Handler
	WSHandler  *httpadapter.WebSocketHandler
	ChangeLog  *persistence.RedisChangeLog
	Logger     logger.Logger
}

// NewModule wires the records module from its external collaborators. The
// Redis client may be nil, in which case the change feed degrades to
// in-process fan-out only.
func NewModule(
	authClient client.AuthClient,
	mongoClient *mongo.Client,
	redisClient *redis.Client,
	log logger.Logger,
) (*Module, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Warn("Failed to load records config from environment, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}
	return NewModuleWithConfig(authClient, mongoClient, redisClient, cfg, log)
}

// NewModuleWithConfig wires the records module with an explicit
// configuration. Tests use this to avoid environment coupling.
func NewModuleWithConfig(
	authClient client.AuthClient,
	mongoClient *mongo.Client,
	redisClient *redis.Client,
	cfg *config.Config,
	log logger.Logger,
) (*Module, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	bus := eventbus.NewEventBus(log)
	store := mongodbpersistence.NewContainerStore(mongoClient, cfg.ProjectDBPrefix, log)
	projects := mongodbpersistence.NewProjectRepository(mongoClient.Database(cfg.MetadataDatabase), log)
	locker := service.NewResourceLocker(cfg.WriteLockTimeout)

	opts := []usecase.EngineOption{}
	var changeLog *persistence.RedisChangeLog
	if redisClient != nil {
		changeLog = persistence.NewRedisChangeLog(redisClient, cfg.ChangeLogMaxLength, log)
		opts = append(opts, usecase.WithChangeLog(changeLog))
	} else {
		log.Warn("No Redis client provided, change feed replay is disabled")
	}

	engine := usecase.NewEngine(store, projects, locker, bus, log, opts...)
	dispatcher := realtime.NewDispatcher(bus, cfg.Realtime.ClientSendChannelBuffer, log)
	access := httpadapter.NewAccessMiddleware(authClient, log)
	handler := httpadapter.NewHandler(engine, access, authClient, dispatcher, log)
	wsHandler := httpadapter.NewWebSocketHandler(dispatcher, authClient, log)

	log.Info("Records module initialized",
		"metadataDB", cfg.MetadataDatabase,
		"projectDBPrefix", cfg.ProjectDBPrefix)

	return &Module{
		Config:     cfg,
		Engine:     engine,
		EventBus:   bus,
		Dispatcher: dispatcher,
		Access:     access,
		Handler:    handler,
		WSHandler:  wsHandler,
		ChangeLog:  changeLog,
		Logger:     log,
	}, nil
}

// RegisterRoutes mounts the REST and WebSocket surfaces on the app.
func (m *Module) RegisterRoutes(router fiber.Router) {
	m.Handler.RegisterRoutes(router)
	m.WSHandler.RegisterRoutes(router)
}

// Stop releases realtime resources. Call during graceful shutdown.
func (m *Module) Stop() {
	m.Dispatcher.Close()
}
