package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"

	config "github.com/tapturf/turf-services/configs"
	"github.com/tapturf/turf-services/internal/comm"
	"github.com/tapturf/turf-services/internal/nats"

	"github.com/tapturf/turf-services/internal/socketsvc/broker"
	"github.com/tapturf/turf-services/internal/socketsvc/routes"
	"github.com/tapturf/turf-services/internal/socketsvc/ws"
)

const SERVICE_NAME = "socket"

func init() {
	instanceId := config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	// Connect to NATS
	n, err := nats.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Initialize websocket handler
	s := ws.NewWs()

	// Initialize routes
	routes.InitAuth()
	routes.SetRoutes(r, s)

	// Subscribe to notification events from the turf service
	b := broker.NewBroker(n.Conn, s.GetConnection, s.GetUserSockets)
	sub, err := b.Subscribe(comm.NotifyTopic)
	if err != nil {
		log.Errorf("Error: unable to subscribe to %s %v", comm.NotifyTopic, err)
		os.Exit(0)
	}
	if _, err := b.SubscribeHeartbeats(); err != nil {
		log.Errorf("Error: unable to subscribe to %s %v", comm.HeartbeatTopic, err)
	}
	if _, err := b.SubscribeShutdowns(); err != nil {
		log.Errorf("Error: unable to subscribe to %s %v", comm.ShutdownTopic, err)
	}

	// Log services that stopped heartbeating without a shutdown event.
	watchdogDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-watchdogDone:
				return
			case <-ticker.C:
				for _, id := range b.StaleSince(time.Now().Add(-2 * time.Minute)) {
					log.Warnf("no heartbeat from service %s in the last 2 minutes", id)
				}
			}
		}
	}()

	server := &http.Server{
		Addr:         ":" + os.Getenv("SOCKET_SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	close(watchdogDone)
	sub.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
