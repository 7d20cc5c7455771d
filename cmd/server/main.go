// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/mbakri/cellwatch-backend/internal/controller"
	"github.com/mbakri/cellwatch-backend/internal/db"
	"github.com/mbakri/cellwatch-backend/internal/hub"
	"github.com/mbakri/cellwatch-backend/internal/metrics"
	"github.com/mbakri/cellwatch-backend/internal/queue"
	"github.com/mbakri/cellwatch-backend/internal/repository"
	"github.com/mbakri/cellwatch-backend/internal/service"
)

var opt struct {
	HTTPAddr     string `long:"http-addr" env:"HTTP_ADDR" default:":8004" description:"http listen address"`
	PollInterval int    `long:"poll-interval" env:"POLL_INTERVAL" default:"5" description:"live snapshot interval in seconds"`
	AgentPort    int    `long:"agent-port" env:"AGENT_PORT" default:"8003" description:"device agent command port"`
}

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}
	if _, err := flags.ParseArgs(&opt, os.Args); err != nil {
		log.Fatalf("error parsing flags: %v", err)
	}

	conn, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	defer conn.Close()

	metrics.Register()

	campaignRepo := &repository.CampaignRepository{DB: conn}
	deviceRepo := &repository.DeviceRepository{DB: conn}
	measurementRepo := &repository.MeasurementRepository{DB: conn}

	liveHub := hub.NewHub()
	q := queue.NewInMemoryQueue()
	queue.StartCampaignStopSubscriber(q, liveHub)

	registry := &service.CampaignRegistry{CampaignRepo: campaignRepo}
	dispatcher := service.NewFleetDispatcher(deviceRepo, campaignRepo)
	dispatcher.AgentPort = opt.AgentPort
	telemetry := &service.TelemetryService{
		DeviceRepo:      deviceRepo,
		MeasurementRepo: measurementRepo,
	}
	snapshots := &service.SnapshotService{
		CampaignRepo:    campaignRepo,
		MeasurementRepo: measurementRepo,
	}

	campaignController := &controller.CampaignController{
		Registry:     registry,
		Dispatcher:   dispatcher,
		Snapshots:    snapshots,
		DeviceRepo:   deviceRepo,
		Hub:          liveHub,
		Queue:        q,
		PollInterval: time.Duration(opt.PollInterval) * time.Second,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	telemetryController := &controller.TelemetryController{Telemetry: telemetry}
	deviceController := &controller.DeviceController{DeviceRepo: deviceRepo}

	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	// Campaign lifecycle
	r.Post("/start-capture", campaignController.StartCapture)
	r.Post("/pause-capture", campaignController.PauseCapture)
	r.Post("/resume-capture", campaignController.ResumeCapture)
	r.Post("/stop-capture", campaignController.StopCapture)

	// Live channel
	r.Get("/ws/{campaign_id}", campaignController.ServeWS)

	// Telemetry push
	r.Post("/telemetry", telemetryController.Ingest)

	// Devices
	r.Post("/add-devices", deviceController.AddDevice)
	r.Get("/devices", deviceController.ListDevices)
	r.Delete("/devices/{device_id}", deviceController.DeleteDevice)

	// Operational
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	log.Println("🚀 Server running on", opt.HTTPAddr)
	log.Fatal(http.ListenAndServe(opt.HTTPAddr, r))
}
