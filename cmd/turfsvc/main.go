package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	"github.com/nats-io/nats.go"

	config "github.com/tapturf/turf-services/configs"
	"github.com/tapturf/turf-services/internal/comm"
	natscli "github.com/tapturf/turf-services/internal/nats"
	"github.com/tapturf/turf-services/internal/turfsvc/db"
	"github.com/tapturf/turf-services/internal/turfsvc/fallback"
	"github.com/tapturf/turf-services/internal/turfsvc/handlers"
	"github.com/tapturf/turf-services/internal/turfsvc/service"
	"github.com/tapturf/turf-services/internal/turfsvc/store"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "turf"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

// startHeartbeat announces liveness on NATS until the returned stop
// function runs; stop also publishes the shutdown event.
func startHeartbeat(conn *nats.Conn, serviceId string) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				hb := comm.ServiceHeartbeat{ID: serviceId, Timestamp: time.Now()}
				data, err := json.Marshal(hb)
				if err != nil {
					continue
				}
				if err := conn.Publish(comm.HeartbeatTopic, data); err != nil {
					log.Errorf("failed to publish heartbeat: %v", err)
				}
			}
		}
	}()
	return func() {
		close(done)
		data, err := json.Marshal(comm.ServiceShutdown{ID: serviceId})
		if err != nil {
			return
		}
		if err := conn.Publish(comm.ShutdownTopic, data); err != nil {
			log.Errorf("failed to publish shutdown event: %v", err)
		}
	}
}

func main() {

	// pg connection
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 5*time.Second)
	dbpool, err := db.Connect(connectCtx, os.Getenv("POSTGRES_URL"))
	connectCancel()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dbpool.Close()
	log.Printf("pg connection established successfully")

	// Connect to NATS for notification push; the API keeps serving
	// without it, clients just fall back to polling.
	var pub service.Publisher
	n, err := natscli.Connect()
	if err != nil {
		log.Errorf("unable to connect to NATS, notification push disabled: %v", err)
	} else {
		defer n.Conn.Close()
		pub = n.Conn
		log.Printf("NATS connection established successfully %s", n.Url)
		log.Printf("notification events will publish on %s", comm.NotifyTopic)

		stopHeartbeat := startHeartbeat(n.Conn, SERVICE_NAME+"-"+instanceId)
		defer stopHeartbeat()
	}

	cache := fallback.NewCache()

	userStore := store.NewUserStore(dbpool)
	userService := service.NewUserService(userStore)

	turfStore := store.NewTurfStore(dbpool)
	turfService := service.NewTurfService(turfStore)

	notificationStore := store.NewNotificationStore(dbpool)
	notificationService := service.NewNotificationService(notificationStore, cache, pub)

	gameStore := store.NewGameStore(dbpool)
	participantStore := store.NewParticipantStore(dbpool)
	gameService := service.NewGameService(gameStore, turfStore, userStore,
		participantStore, notificationService, cache)

	requestStore := store.NewRequestStore(dbpool)
	requestService := service.NewRequestService(requestStore, gameStore, userStore,
		notificationService, cache)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(gameService, requestService, notificationService,
		turfService, userService)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("TURF_SERVICE_PORT"),
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

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
