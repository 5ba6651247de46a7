package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/richxcame/urban-mobility/pkg/validation"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Pipeline PipelineConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// BoundingBox defines the rectangular lat/lon region considered valid geography.
type BoundingBox struct {
	LatMin float64 `validate:"gte=-90,lte=90"`
	LatMax float64 `validate:"gte=-90,lte=90,gtfield=LatMin"`
	LonMin float64 `validate:"gte=-180,lte=180"`
	LonMax float64 `validate:"gte=-180,lte=180,gtfield=LonMin"`
}

// Contains reports whether the point lies inside the box, borders included.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.LatMin && lat <= b.LatMax && lon >= b.LonMin && lon <= b.LonMax
}

// PipelineConfig holds the tunable parameters of the demand pipeline.
// Out-of-range values are rejected by Load before any stage runs.
type PipelineConfig struct {
	BatchSize            int           `validate:"gt=0"`
	Bounds               BoundingBox   `validate:"required"`
	MinTripDuration      time.Duration `validate:"gt=0"`
	MaxTripDuration      time.Duration `validate:"gtfield=MinTripDuration"`
	TrainSplitRatio      float64       `validate:"gt=0,lt=1"`
	ForecastHorizonHours int           `validate:"gt=0,lte=2160"`
	SampleSize           int           `validate:"gt=0,lte=100000"`
	// HotspotResolution is the H3 resolution used when aggregating sampled
	// pickups into cells. Resolution 8 cells average ~0.7 km² in NYC.
	HotspotResolution int `validate:"gte=0,lte=15"`
}

// Default calibration for the NYC trip extract. The box is deliberately a
// configuration value, not logic: other cities only need different env vars.
const (
	DefaultBatchSize            = 100000
	DefaultLatMin               = 40.49
	DefaultLatMax               = 40.92
	DefaultLonMin               = -74.27
	DefaultLonMax               = -73.68
	DefaultTrainSplitRatio      = 0.9
	DefaultForecastHorizonHours = 720
	DefaultSampleSize           = 5000
	DefaultHotspotResolution    = 8
	MaxForecastHorizonHours     = 2160
	MaxSampleSize               = 100000
)

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
			CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "urbanmobility"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 5),
		},
		Pipeline: PipelineConfig{
			BatchSize: getEnvAsInt("BATCH_SIZE", DefaultBatchSize),
			Bounds: BoundingBox{
				LatMin: getEnvAsFloat("BBOX_LAT_MIN", DefaultLatMin),
				LatMax: getEnvAsFloat("BBOX_LAT_MAX", DefaultLatMax),
				LonMin: getEnvAsFloat("BBOX_LON_MIN", DefaultLonMin),
				LonMax: getEnvAsFloat("BBOX_LON_MAX", DefaultLonMax),
			},
			MinTripDuration:      getEnvAsDuration("TRIP_MIN_DURATION", time.Minute),
			MaxTripDuration:      getEnvAsDuration("TRIP_MAX_DURATION", 90*time.Minute),
			TrainSplitRatio:      getEnvAsFloat("TRAIN_SPLIT_RATIO", DefaultTrainSplitRatio),
			ForecastHorizonHours: getEnvAsInt("FORECAST_HORIZON_HOURS", DefaultForecastHorizonHours),
			SampleSize:           getEnvAsInt("SAMPLE_SIZE", DefaultSampleSize),
			HotspotResolution:    getEnvAsInt("HOTSPOT_RESOLUTION", DefaultHotspotResolution),
		},
	}

	if err := cfg.Pipeline.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks every pipeline option against its allowed range.
func (p *PipelineConfig) Validate() error {
	v := validator.New()
	if err := v.Struct(p); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			return validation.NewValidationError(errs)
		}
		return err
	}
	return nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the database connection string in URL form, as required by
// golang-migrate.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
