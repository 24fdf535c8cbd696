package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"proby/internal/analytics"
	"proby/internal/liveness"
	"proby/internal/models"
	"proby/internal/store"
)

var (
	errInvalidPort     = errors.New("invalid server port")
	errInvalidInterval = errors.New("interval must be positive")
	errMissingDSN      = errors.New("DATABASE_URL is required for postgres")
	errMissingAPIURL   = errors.New("API_URL is required")
)

// LoadDotEnv подгружает .env (или указанные файлы), если они есть
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.Printf("Failed to load %s: %v", f, err)
		}
	}
}

// Server конфигурация API сервиса
type Server struct {
	ServerPort      string
	StoreDriver     string
	SQLitePath      string
	DatabaseURL     string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CacheTTL        time.Duration
	ReadingsLimit   int
	Schema          models.Schema
	Thresholds      analytics.Table
	AnalyzerWorkers int
	IngestRate      float64
	IngestBurst     int
}

// LoadServer загружает конфигурацию сервера из environment
func LoadServer() (Server, error) {
	schema, err := models.ParseSchema(getEnv("SENSOR_FIELDS", ""))
	if err != nil {
		return Server{}, err
	}

	table, err := analytics.LoadTable(getEnv("THRESHOLDS_FILE", ""))
	if err != nil {
		return Server{}, err
	}

	cfg := Server{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		StoreDriver:     getEnv("STORE_DRIVER", store.DriverSQLite),
		SQLitePath:      getEnv("SQLITE_PATH", "proby.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvAsInt("REDIS_DB", 0),
		CacheTTL:        getEnvAsDuration("CACHE_TTL", 5*time.Second),
		ReadingsLimit:   getEnvAsInt("READINGS_LIMIT", 50),
		Schema:          schema,
		Thresholds:      table,
		AnalyzerWorkers: getEnvAsInt("ANALYZER_WORKERS", 1),
		IngestRate:      getEnvAsFloat("INGEST_RATE", 0),
		IngestBurst:     getEnvAsInt("INGEST_BURST", 10),
	}

	return cfg, cfg.Validate()
}

// Validate проверяет конфигурацию сервера
func (c Server) Validate() error {
	if c.ServerPort == "" {
		return errInvalidPort
	}
	switch c.StoreDriver {
	case store.DriverSQLite:
	case store.DriverPostgres:
		if c.DatabaseURL == "" {
			return errMissingDSN
		}
	default:
		return fmt.Errorf("%w: %q", store.ErrUnknownDriver, c.StoreDriver)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("%w: CACHE_TTL", errInvalidInterval)
	}
	return nil
}

// DSN строка подключения для выбранного драйвера
func (c Server) DSN() string {
	if c.StoreDriver == store.DriverPostgres {
		return c.DatabaseURL
	}
	return c.SQLitePath
}

// Dashboard конфигурация клиента опроса
type Dashboard struct {
	APIURL        string
	PollInterval  time.Duration
	ReadingsLimit int
	PauseAfter    int
	ConnectAfter  int
	Schema        models.Schema
	Thresholds    analytics.Table
	MetricsAddr   string
}

// LoadDashboard загружает конфигурацию дашборда из environment
func LoadDashboard() (Dashboard, error) {
	schema, err := models.ParseSchema(getEnv("SENSOR_FIELDS", ""))
	if err != nil {
		return Dashboard{}, err
	}

	table, err := analytics.LoadTable(getEnv("THRESHOLDS_FILE", ""))
	if err != nil {
		return Dashboard{}, err
	}

	cfg := Dashboard{
		APIURL:        getEnv("API_URL", "http://localhost:8080"),
		PollInterval:  getEnvAsDuration("POLL_INTERVAL", time.Second),
		ReadingsLimit: getEnvAsInt("READINGS_LIMIT", 50),
		PauseAfter:    getEnvAsInt("PAUSE_AFTER", liveness.DefaultPauseAfter),
		ConnectAfter:  getEnvAsInt("CONNECT_AFTER", liveness.DefaultConnectAfter),
		Schema:        schema,
		Thresholds:    table,
		MetricsAddr:   getEnv("METRICS_ADDR", ""),
	}

	return cfg, cfg.Validate()
}

// Validate проверяет конфигурацию дашборда
func (c Dashboard) Validate() error {
	if c.APIURL == "" {
		return errMissingAPIURL
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: POLL_INTERVAL", errInvalidInterval)
	}
	return nil
}

// Simulator конфигурация имитатора датчика
type Simulator struct {
	APIURL   string
	Interval time.Duration
	Count    int
	Schema   models.Schema
}

// LoadSimulator загружает конфигурацию имитатора из environment
func LoadSimulator() (Simulator, error) {
	schema, err := models.ParseSchema(getEnv("SENSOR_FIELDS", ""))
	if err != nil {
		return Simulator{}, err
	}

	cfg := Simulator{
		APIURL:   getEnv("API_URL", "http://localhost:8080"),
		Interval: getEnvAsDuration("SIM_INTERVAL", 2*time.Second),
		Count:    getEnvAsInt("SIM_COUNT", 0),
		Schema:   schema,
	}

	if cfg.APIURL == "" {
		return cfg, errMissingAPIURL
	}
	if cfg.Interval <= 0 {
		return cfg, fmt.Errorf("%w: SIM_INTERVAL", errInvalidInterval)
	}

	return cfg, nil
}

// getEnv получает environment variable или возвращает default
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt получает environment variable как int
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var value int
	if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat получает environment variable как float64
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var value float64
	if _, err := fmt.Sscanf(valueStr, "%f", &value); err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration получает environment variable как time.Duration ("1s", "500ms")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
