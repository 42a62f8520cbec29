package bootstrap

import (
	"context"

	"wiki-chatbot-be/internal/config"
	"wiki-chatbot-be/internal/controller"
	"wiki-chatbot-be/internal/pkg/logger"
	"wiki-chatbot-be/internal/repository/cache"
	"wiki-chatbot-be/internal/repository/memory"
	"wiki-chatbot-be/internal/repository/unitofwork"
	"wiki-chatbot-be/internal/service"
	"wiki-chatbot-be/pkg/events"
	ragclient "wiki-chatbot-be/pkg/rag/client"

	pktNats "wiki-chatbot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	QuestionController  controller.IQuestionController
	HistoryController   controller.IHistoryController
	AdminChatController controller.IAdminChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	return NewContainerWithLogger(db, cfg, logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production"))
}

func NewContainerWithLogger(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) *Container {
	c := &Container{Logger: sysLogger}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	gateway := ragclient.New(cfg.Rag.BaseURL, cfg.Rag.Timeout)

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	// NATS is optional; only a live publisher may reach the events.Publisher interface.
	var forwarder events.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to NATS, events stay local", map[string]interface{}{"error": err.Error()})
		} else {
			forwarder = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to parse Redis URL, using it as address", map[string]interface{}{"error": err.Error()})
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to Redis, job status cache disabled", map[string]interface{}{"error": err.Error()})
			_ = rdb.Close()
			rdb = nil
		} else {
			client := rdb
			c.closers = append(c.closers, func() { _ = client.Close() })
		}
	}

	healthRepo := memory.NewHealthRepository(cfg.Cache.HealthTTL)
	jobStatusCache := cache.NewRedisJobStatusCache(rdb, cfg.Cache.JobStatusTTL)

	// 4. Services
	publisherService := service.NewPublisherService(cfg.App.EventTopic, pubSub)
	eventLogger := logger.NewIsolatedLogger("logs/chat_events.log")
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.EventTopic, forwarder, eventLogger)

	chatService := service.NewChatService(uowFactory, gateway, publisherService, sysLogger)
	ragService := service.NewRagService(gateway, cfg.Rag, healthRepo, jobStatusCache, sysLogger)
	historyService := service.NewChatHistoryService(uowFactory, publisherService, sysLogger)
	adminChatService := service.NewAdminChatService(uowFactory, publisherService, sysLogger)

	// 5. Controllers
	c.QuestionController = controller.NewQuestionController(chatService, ragService, cfg.Auth.JwtSecret)
	c.HistoryController = controller.NewHistoryController(historyService, cfg.Auth.JwtSecret)
	c.AdminChatController = controller.NewAdminChatController(adminChatService, cfg.Auth.JwtSecret)

	return c
}

// Close releases broker and cache connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
