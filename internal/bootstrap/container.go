package bootstrap

import (
	"context"
	"log"

	"incident-reporting-be/internal/config"
	"incident-reporting-be/internal/constant"
	"incident-reporting-be/internal/controller"
	"incident-reporting-be/internal/handler"
	"incident-reporting-be/internal/pkg/logger"
	"incident-reporting-be/internal/repository/memory"
	"incident-reporting-be/internal/repository/unitofwork"
	"incident-reporting-be/internal/service"
	"incident-reporting-be/internal/websocket"
	"incident-reporting-be/pkg/oracle/rork"
	"incident-reporting-be/pkg/transcript"
	"incident-reporting-be/pkg/transcription/deepgram"

	pktNats "incident-reporting-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SessionController controller.ISessionController
	ReportController  controller.IReportController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Domain Providers
	sessionRepo := memory.NewSessionRepository()

	transcriber := deepgram.NewProvider(deepgram.Config{
		APIKey:      cfg.Deepgram.APIKey,
		APIBaseURL:  cfg.Deepgram.BaseURL,
		Model:       cfg.Deepgram.Model,
		SmartFormat: true,
	})

	oracleClient := rork.NewClient(cfg.Oracle.BaseURL, rork.Prompts{
		Analysis:  constant.AnalysisPrompts,
		Checklist: constant.ChecklistPrompt,
	})

	// 4. Services
	publisherService := service.NewPublisherService(cfg.App.TranscriptTopic, pubSub)

	// Typed nil guard so the service's nil check works when NATS is down.
	var eventPublisher service.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}

	recordingService := service.NewRecordingService(
		service.RecordingConfig{
			ReconcileInterval:  cfg.Recording.ReconcileInterval,
			AutosaveInterval:   cfg.Recording.AutosaveInterval,
			SilenceTimeoutEMS:  cfg.Recording.SilenceTimeoutEMS,
			SilenceTimeoutFire: cfg.Recording.SilenceTimeoutFire,
			SampleRate:         cfg.Recording.SampleRate,
		},
		uowFactory,
		sessionRepo,
		transcriber,
		oracleClient,
		oracleClient,
		publisherService,
		eventPublisher,
		wsHub,
		sysLogger,
	)

	reportService := service.NewReportService(uowFactory)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.TranscriptTopic,
		sessionRepo,
		transcript.NewPhraseExtractor(),
		wsHub,
	)

	notifLogger := logger.NewIsolatedLogger("logs/notification.log")
	notifService := service.NewNotificationService(natsSub, wsHub, notifLogger)
	if natsSub != nil {
		go notifService.Start()
	}

	streamHandler := handler.NewStreamHandler(recordingService, wsHub, wsLogger)

	// 5. Controllers
	return &Container{
		SessionController: controller.NewSessionController(recordingService),
		ReportController:  controller.NewReportController(reportService),

		ConsumerService: consumerService,

		StreamHandler: streamHandler,
		WebSocketHub:  wsHub,
	}
}
