package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/piresc/fleetcast/internal/pkg/constants"
	"github.com/piresc/fleetcast/internal/pkg/models"
	"github.com/spf13/viper"
)

// InitConfig loads the dotenv file for local runs and reads every setting from the environment
func InitConfig(configPath string) *models.Config {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if v.GetString("APP_ENV") == "local" && configPath != "" {
		// Load config from file
		if err := godotenv.Load(configPath); err != nil {
			log.Println("error loading config from file", err)
		}
	}
	// Create config from environment variables
	return loadConfig(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "tracking-service")
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("APP_DEBUG", false)
	v.SetDefault("APP_VERSION", "development")

	v.SetDefault("SERVER_HOST", "")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second)

	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)

	v.SetDefault("NATS_URL", "")
	v.SetDefault("NATS_SUBJECT", constants.SubjectLocationUpdate)

	v.SetDefault("MQTT_BROKER", "")
	v.SetDefault("MQTT_CLIENT_ID", "fleetcast-tracking")
	v.SetDefault("MQTT_TOPIC", constants.TopicVehicleLocation)
	v.SetDefault("MQTT_QOS", 1)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("NEW_RELIC_ENABLED", false)
	v.SetDefault("NEW_RELIC_APP_NAME", "fleetcast-tracking")
	v.SetDefault("NEW_RELIC_LICENSE_KEY", "")
	v.SetDefault("NEW_RELIC_FORWARD_LOGS", false)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE_PATH", "")

	v.SetDefault("TRACKING_SEND_BUFFER", 16)
	v.SetDefault("TRACKING_SLOW_CONSUMER_POLICY", string(models.PolicyCoalesce))
	v.SetDefault("TRACKING_WRITE_TIMEOUT", 10*time.Second)
	v.SetDefault("TRACKING_PONG_WAIT", 60*time.Second)
	v.SetDefault("TRACKING_PING_PERIOD", 30*time.Second)
	v.SetDefault("TRACKING_MAX_MESSAGE_BYTES", 4096)
	v.SetDefault("TRACKING_STALENESS_WINDOW", 15*time.Minute)
	v.SetDefault("TRACKING_EVICTION_INTERVAL", 30*time.Second)
	v.SetDefault("TRACKING_REPORT_VALIDATION_ERRORS", true)
	v.SetDefault("TRACKING_AUTH_ENABLED", false)
	v.SetDefault("TRACKING_MIRROR_BUFFER", 1024)
	v.SetDefault("TRACKING_GEOHASH_PRECISION", 12)
}

func loadConfig(v *viper.Viper) *models.Config {
	configs := &models.Config{}

	// App config
	configs.App.Name = v.GetString("APP_NAME")
	configs.App.Environment = v.GetString("APP_ENV")
	configs.App.Debug = v.GetBool("APP_DEBUG")
	configs.App.Version = v.GetString("APP_VERSION")

	// Server config
	configs.Server.Host = v.GetString("SERVER_HOST")
	configs.Server.Port = v.GetInt("SERVER_PORT")
	configs.Server.ShutdownTimeout = v.GetDuration("SERVER_SHUTDOWN_TIMEOUT")

	// Redis config
	configs.Redis.Host = v.GetString("REDIS_HOST")
	configs.Redis.Port = v.GetInt("REDIS_PORT")
	configs.Redis.Password = v.GetString("REDIS_PASSWORD")
	configs.Redis.DB = v.GetInt("REDIS_DB")
	configs.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")

	// NATS config
	configs.NATS.URL = v.GetString("NATS_URL")
	configs.NATS.Subject = v.GetString("NATS_SUBJECT")

	// MQTT config
	configs.MQTT.Broker = v.GetString("MQTT_BROKER")
	configs.MQTT.ClientID = v.GetString("MQTT_CLIENT_ID")
	configs.MQTT.Topic = v.GetString("MQTT_TOPIC")
	configs.MQTT.QoS = byte(v.GetUint("MQTT_QOS"))

	// JWT config
	configs.JWT.Secret = v.GetString("JWT_SECRET")
	configs.JWT.Issuer = v.GetString("JWT_ISSUER")

	// NewRelic config
	configs.NewRelic.Enabled = v.GetBool("NEW_RELIC_ENABLED")
	configs.NewRelic.AppName = v.GetString("NEW_RELIC_APP_NAME")
	configs.NewRelic.LicenseKey = v.GetString("NEW_RELIC_LICENSE_KEY")
	configs.NewRelic.ForwardLogs = v.GetBool("NEW_RELIC_FORWARD_LOGS")

	// Logger config
	configs.Logger.Level = v.GetString("LOG_LEVEL")
	configs.Logger.FilePath = v.GetString("LOG_FILE_PATH")

	// Tracking config
	configs.Tracking.SendBuffer = v.GetInt("TRACKING_SEND_BUFFER")
	configs.Tracking.SlowConsumerPolicy = parsePolicy(v.GetString("TRACKING_SLOW_CONSUMER_POLICY"))
	configs.Tracking.WriteTimeout = v.GetDuration("TRACKING_WRITE_TIMEOUT")
	configs.Tracking.PongWait = v.GetDuration("TRACKING_PONG_WAIT")
	configs.Tracking.PingPeriod = v.GetDuration("TRACKING_PING_PERIOD")
	configs.Tracking.MaxMessageBytes = v.GetInt64("TRACKING_MAX_MESSAGE_BYTES")
	configs.Tracking.StalenessWindow = v.GetDuration("TRACKING_STALENESS_WINDOW")
	configs.Tracking.EvictionInterval = v.GetDuration("TRACKING_EVICTION_INTERVAL")
	configs.Tracking.ReportValidationErrors = v.GetBool("TRACKING_REPORT_VALIDATION_ERRORS")
	configs.Tracking.AuthEnabled = v.GetBool("TRACKING_AUTH_ENABLED")
	configs.Tracking.MirrorBuffer = v.GetInt("TRACKING_MIRROR_BUFFER")
	configs.Tracking.GeohashPrecision = v.GetUint("TRACKING_GEOHASH_PRECISION")

	normalize(configs)
	return configs
}

// normalize replaces unusable values with safe ones
func normalize(configs *models.Config) {
	if configs.Server.ShutdownTimeout <= 0 {
		configs.Server.ShutdownTimeout = 30 * time.Second
	}
	if configs.Tracking.SendBuffer < 1 {
		log.Printf("Warning: TRACKING_SEND_BUFFER must be at least 1, using 1")
		configs.Tracking.SendBuffer = 1
	}
	if configs.Tracking.PingPeriod >= configs.Tracking.PongWait {
		// ping must fire before the read deadline expires
		configs.Tracking.PingPeriod = configs.Tracking.PongWait * 9 / 10
	}
	if configs.Tracking.EvictionInterval <= 0 {
		configs.Tracking.EvictionInterval = 30 * time.Second
	}
	if configs.Tracking.MirrorBuffer < 1 {
		configs.Tracking.MirrorBuffer = 1
	}
	if configs.Tracking.GeohashPrecision == 0 || configs.Tracking.GeohashPrecision > 12 {
		configs.Tracking.GeohashPrecision = 12
	}
}

func parsePolicy(raw string) models.SlowConsumerPolicy {
	switch models.SlowConsumerPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case models.PolicyDisconnect:
		return models.PolicyDisconnect
	case models.PolicyCoalesce:
		return models.PolicyCoalesce
	default:
		log.Printf("Warning: Invalid slow consumer policy %q, using default: %s", raw, models.PolicyCoalesce)
		return models.PolicyCoalesce
	}
}
