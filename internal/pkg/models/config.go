package models

import "time"

// Config represents application configuration
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Redis    RedisConfig
	NATS     NATSConfig
	MQTT     MQTTConfig
	JWT      JWTConfig
	NewRelic NewRelicConfig
	Logger   LoggerConfig
	Tracking TrackingConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

// RedisConfig contains Redis connection configuration.
// An empty Host disables the snapshot mirror.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NATSConfig contains NATS connection configuration
type NATSConfig struct {
	URL     string
	Subject string
}

// MQTTConfig contains MQTT ingestion configuration
type MQTTConfig struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
}

// JWTConfig contains JWT authentication configuration
type JWTConfig struct {
	Secret string
	Issuer string
}

// NewRelicConfig contains New Relic APM configuration
type NewRelicConfig struct {
	Enabled     bool
	AppName     string
	LicenseKey  string
	ForwardLogs bool
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level    string
	FilePath string
}

// SlowConsumerPolicy decides what happens when a subscriber's send queue is full
type SlowConsumerPolicy string

const (
	// PolicyCoalesce drops the oldest pending snapshot to make room for the newest
	PolicyCoalesce SlowConsumerPolicy = "coalesce"
	// PolicyDisconnect treats a full queue as a failed push
	PolicyDisconnect SlowConsumerPolicy = "disconnect"
)

// TrackingConfig contains the location broadcast service configuration
type TrackingConfig struct {
	SendBuffer             int
	SlowConsumerPolicy     SlowConsumerPolicy
	WriteTimeout           time.Duration
	PongWait               time.Duration
	PingPeriod             time.Duration
	MaxMessageBytes        int64
	StalenessWindow        time.Duration // zero disables eviction
	EvictionInterval       time.Duration
	ReportValidationErrors bool
	AuthEnabled            bool
	MirrorBuffer           int
	GeohashPrecision       uint
}
