package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"foodcycle-realtime/internal/config"
	"foodcycle-realtime/internal/db"
	"foodcycle-realtime/internal/handlers"
	"foodcycle-realtime/internal/middleware"
	"foodcycle-realtime/internal/observability"
	"foodcycle-realtime/internal/rabbitmq"
	"foodcycle-realtime/internal/realtime"
	"foodcycle-realtime/internal/repositories"
	"foodcycle-realtime/internal/telemetry"
	"foodcycle-realtime/internal/ws"
)

const serviceName = "foodcycle-realtime"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownTracing, err := observability.SetupTracing(context.Background(), cfg.OTLPEndpoint, serviceName)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	observability.SetPublisher(publisher)
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))

	emitter := telemetry.NewAuditEmitter(publisher, "audit.realtime", serviceName, cfg.Environment)

	donationRepo := repositories.NewDonationRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	hub := realtime.NewHub(cfg.SendBuffer)
	relay := realtime.NewRelay(hub, messageRepo)
	dispatcher := realtime.NewDispatcher(hub, relay)

	donationHandler := handlers.NewDonationHandler(donationRepo, hub)
	messageHandler := handlers.NewMessageHandler(messageRepo)
	wsHandler := ws.NewHandler(hub, dispatcher)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/api/donations", donationHandler.ListDonations)
	router.GET("/api/donations/:id", donationHandler.GetDonation)
	router.POST("/api/donations", donationHandler.CreateDonation)
	router.PATCH("/api/donations/:id", donationHandler.UpdateDonationStatus)
	router.DELETE("/api/donations/:id", donationHandler.DeleteDonation)
	router.GET("/api/users/:user_id/donations", donationHandler.ListUserDonations)

	router.GET("/api/messages/:user_a/:user_b", messageHandler.GetConversation)

	router.GET("/ws", wsHandler.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, emitter, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
