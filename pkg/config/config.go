package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type (
	Config struct {
		HTTP      HTTP      `envPrefix:"HTTP_"`
		Logger    Logger    `envPrefix:"LOGGER_"`
		Telemetry Telemetry `envPrefix:"TELEMETRY_"`
		Cache     Cache     `envPrefix:"CACHE_"`
		Fetch     Fetch     `envPrefix:"FETCH_"`
		Blob      Blob      `envPrefix:"BLOB_"`
		Redis     Redis     `envPrefix:"REDIS_"`
	}

	HTTP struct {
		Server          Server        `envPrefix:"SERVER_"`
		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}

	Server struct {
		Port         string        `env:"PORT" envDefault:"8080"`
		ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
		IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	}

	Logger struct {
		Level  string `env:"LEVEL" envDefault:"info"`
		Format string `env:"FORMAT" envDefault:"console"`
	}

	Telemetry struct {
		Enabled        bool   `env:"ENABLED" envDefault:"false"`
		ServiceName    string `env:"SERVICE_NAME" envDefault:"guide-helper-maps"`
		ServiceVersion string `env:"SERVICE_VERSION" envDefault:"1.0.0"`
		Environment    string `env:"ENVIRONMENT" envDefault:"production"`
		OTLPEndpoint   string `env:"OTLP_ENDPOINT" envDefault:"otel-collector.observability.svc.cluster.local:4317"`
	}

	// Cache holds the defaults used when no config.dat has been persisted yet.
	Cache struct {
		DataDir      string `env:"DATA_DIR" envDefault:"."`
		DiskCapacity int    `env:"DISK_CAPACITY" envDefault:"1000"`
		MemorySize   int    `env:"MEMORY_SIZE" envDefault:"32"`
		Effects      bool   `env:"EFFECTS" envDefault:"true"`
	}

	Fetch struct {
		Timeout   time.Duration `env:"TIMEOUT" envDefault:"10s"`
		UserAgent string        `env:"USER_AGENT" envDefault:"Mozilla/5.0"`
	}

	Blob struct {
		Backend    string `env:"BACKEND" envDefault:"filesystem"`
		SQLitePath string `env:"SQLITE_PATH" envDefault:"cache.db"`
	}

	Redis struct {
		Addr           string        `env:"ADDR" envDefault:"localhost:6379"`
		Password       string        `env:"PASSWORD" envDefault:""`
		DB             int           `env:"DB" envDefault:"0"`
		ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
	}
)

func New() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Printf("NOTICE: .env file not found or cannot be loaded: %v\n", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
