package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"thermotel/pkg/common"
	"thermotel/pkg/db"
	thermoHttp "thermotel/pkg/http"
	"thermotel/pkg/thermo"
)

func envIntOr(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatal("Invalid " + key + ", should be an int value")
	}
	return value
}

func envFloatOr(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Fatal("Invalid " + key + ", should be a float64 value")
	}
	return value
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatal("Invalid " + key + ", should be a duration value like 6h or 90s")
	}
	return value
}

func buildWindowCounter() thermo.WindowCounter {
	backend := strings.TrimSpace(os.Getenv(common.EnvKeyThermoCounterBackend))
	switch backend {
	case "", "memory":
		return thermo.NewMemoryWindowCounter()
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     strings.TrimSpace(os.Getenv(common.EnvKeyThermoRedisAddr)),
			Password: os.Getenv(common.EnvKeyThermoRedisPassword),
			DB:       envIntOr(common.EnvKeyThermoRedisDB, 0),
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis unreachable: %v", err)
		}
		return &thermo.RedisWindowCounter{Client: client}
	default:
		log.Fatal("Unknown " + common.EnvKeyThermoCounterBackend + ": " + backend)
		return nil
	}
}

func buildNotifier() thermo.Notifier {
	kind := strings.TrimSpace(os.Getenv(common.EnvKeyThermoNotifier))
	switch kind {
	case "", "log":
		return thermo.LogNotifier{}
	case "smtp":
		return &thermo.SMTPNotifier{
			Addr:     strings.TrimSpace(os.Getenv(common.EnvKeyThermoSmtpAddr)),
			From:     strings.TrimSpace(os.Getenv(common.EnvKeyThermoSmtpFrom)),
			Username: os.Getenv(common.EnvKeyThermoSmtpUsername),
			Password: os.Getenv(common.EnvKeyThermoSmtpPassword),
		}
	case "mqtt":
		notifier, err := thermo.NewMQTTNotifier(
			strings.TrimSpace(os.Getenv(common.EnvKeyThermoMqttBroker)),
			strings.TrimSpace(os.Getenv(common.EnvKeyThermoMqttClientID)),
			os.Getenv(common.EnvKeyThermoMqttUsername),
			os.Getenv(common.EnvKeyThermoMqttPassword),
			strings.TrimSpace(os.Getenv(common.EnvKeyThermoMqttTopicPrefix)),
		)
		if err != nil {
			log.Fatalf("mqtt notifier setup failed: %v", err)
		}
		return notifier
	default:
		log.Fatal("Unknown " + common.EnvKeyThermoNotifier + ": " + kind)
		return nil
	}
}

func runUsageSweeper(core *thermo.Thermo, interval time.Duration, perSec float64) {
	logger := common.GetLoggerWith(common.LoggerNameUsageSweeper)
	pace := rate.NewLimiter(rate.Limit(perSec), 1)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if err := core.SweepUsage(context.Background(), pace); err != nil {
			logger.Error("usage sweep failed", zap.Error(err))
		}
	}
}

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file, copy .env.example to .env first if in development")
	}

	var dbInstance *db.DB
	thermoDbType := os.Getenv(common.EnvKeyThermoDBType)
	switch thermoDbType {
	case "file":
		dbInstance = db.GetInstance(db.UseSqliteDialector())
	case "memory":
		dbInstance = db.GetInstance(db.UseMemorySqliteDialector())
	case "postgres":
		dbInstance = db.GetInstance(db.UsePostgresDialector())
	default:
		log.Fatal("Unknown " + common.EnvKeyThermoDBType + ": " + thermoDbType)
	}

	httpHostPort := strings.TrimSpace(os.Getenv(common.EnvKeyThermoHttpHostPort))

	ingestCap := envIntOr(common.EnvKeyThermoIngestWindowCap, 60)
	ingestWindowSecs := envIntOr(common.EnvKeyThermoIngestWindowSecs, 60)
	registerCap := envIntOr(common.EnvKeyThermoRegisterWindowCap, 3)
	sweepInterval := envDurationOr(common.EnvKeyThermoSweepInterval, 6*time.Hour)
	sweepPerSec := envFloatOr(common.EnvKeyThermoSweepPerSec, 5)

	logger := common.GetLogger()

	counter := buildWindowCounter()

	core := thermo.Thermo{
		Db: *dbInstance,
		IngestLimiter: thermo.NewWindowLimiterStore(counter, "ingest", thermo.WindowConfig{
			Capacity: ingestCap,
			Window:   time.Duration(ingestWindowSecs) * time.Second,
		}),
		RotateLimiter: thermo.NewWindowLimiterStore(counter, "rotate", thermo.WindowConfig{
			Capacity: 5,
			Window:   time.Hour,
		}),
	}
	core.WithServices(thermo.ServiceOpts{
		Credential: core.GetICredential(),
		Telemetry:  core.GetITelemetry(),
		Quota:      core.GetIQuota(),
		Alert:      core.GetIAlert(),
		Settings:   core.GetISettings(),
		Notifier:   buildNotifier(),
	})

	go runUsageSweeper(&core, sweepInterval, sweepPerSec)

	if httpHostPort == "" {
		// fallback to default http port
		httpHostPort = ":1080"
	}

	logger.Info("Starting HTTP server on port " + httpHostPort)
	rs := &thermoHttp.RestfulServer{
		Server: gin.Default(),
		Core:   &core,
		RegisterLimiter: thermo.NewWindowLimiterStore(counter, "register", thermo.WindowConfig{
			Capacity: registerCap,
			Window:   time.Hour,
		}),
	}
	rs.Setup()

	logger.Info("http server created with:",
		zap.String("ingest_window",
			fmt.Sprintf("{\"capacity\": %v, \"window_secs\": %v}", ingestCap, ingestWindowSecs)))

	logger.Info("Starting HTTP server on: " + httpHostPort)
	if err := rs.Server.Run(httpHostPort); err != nil {
		log.Fatalf("http server failed to serve: %v", err)
	}
}
