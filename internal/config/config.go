package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration of one enrichment run.
//
// Fields:
// - Env: The logger profile (local, development, production).
// - Monitoring: The optional metrics server and Pushgateway.
// - Source: The database the addresses are read from.
// - Sink: The destination the results replace.
// - Geocoder: The geocoding provider and its pacing.
type Config struct {
	Env        string           `mapstructure:"env"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Source     SourceConfig     `mapstructure:"source"`
	Sink       SinkConfig       `mapstructure:"sink"`
	Geocoder   GeocoderConfig   `mapstructure:"geocoder"`
}

// MonitoringConfig configures how the run exposes its metrics.
type MonitoringConfig struct {
	Port           int    `mapstructure:"port"`            // Port of the /healthz and /metrics server, 0 disables it.
	PushgatewayURL string `mapstructure:"pushgateway_url"` // PushgatewayURL receives the final metrics, empty disables it.
}

// SourceConfig holds the connection details of the source database.
type SourceConfig struct {
	Driver    string `mapstructure:"driver"`     // Driver is the database/sql driver name.
	DSN       string `mapstructure:"dsn"`        // DSN is the driver specific connection string.
	DayOffset int    `mapstructure:"day_offset"` // DayOffset selects the service date, today minus DayOffset days.
}

// SinkConfig holds the destination of the result set.
type SinkConfig struct {
	Mode   string `mapstructure:"mode"`   // Mode is postgres, sqlite or spreadsheet.
	Target string `mapstructure:"target"` // Target is a DSN or a file path, depending on Mode.
	Schema string `mapstructure:"schema"` // Schema qualifies the postgres table.
	Table  string `mapstructure:"table"`  // Table is the table or worksheet name.
}

// GeocoderConfig configures the geocoding provider.
type GeocoderConfig struct {
	Provider     string        `mapstructure:"provider"`              // Provider is nominatim, google or visicom.
	BaseURL      string        `mapstructure:"base_url"`              // BaseURL overrides the provider endpoint.
	APIKey       string        `mapstructure:"api_key"`               // APIKey is required by google and visicom.
	UserAgent    string        `mapstructure:"user_agent"`            // UserAgent identifies the client to the provider.
	Timeout      time.Duration `mapstructure:"timeout"`               // Timeout bounds every single lookup.
	RegionSuffix string        `mapstructure:"region_suffix"`         // RegionSuffix is appended to every query.
	Region       string        `mapstructure:"region"`                // Region biases google results, as a ccTLD.
	RequestDelay float64       `mapstructure:"request_delay_seconds"` // RequestDelay is the pause between requests, in seconds.
}

// EnvPrefix prefixes every environment variable, e.g. GEOENRICH_SOURCE_DSN.
const EnvPrefix = "GEOENRICH"

var sinkModes = []string{"postgres", "sqlite", "spreadsheet"}

// MustLoad reads .env, an optional geoenrich.yaml (or the file named by
// GEOENRICH_CONFIG) and GEOENRICH_* environment variables, in increasing order
// of precedence. It panics when required settings are missing or invalid.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("env", "production")
	v.SetDefault("monitoring.port", "0")
	v.SetDefault("monitoring.pushgateway_url", "")
	v.SetDefault("source.driver", "mysql")
	v.SetDefault("sink.mode", "postgres")
	v.SetDefault("sink.schema", "public")
	v.SetDefault("sink.table", "enderecos_geolocalizados")
	v.SetDefault("geocoder.provider", "nominatim")
	v.SetDefault("geocoder.base_url", "")
	v.SetDefault("geocoder.api_key", "")
	v.SetDefault("geocoder.user_agent", "")
	v.SetDefault("geocoder.timeout", "10s")
	v.SetDefault("geocoder.region_suffix", "Brasil")
	v.SetDefault("geocoder.region", "br")
	v.SetDefault("geocoder.request_delay_seconds", "1")

	// Required keys have no default, bind them so the environment is consulted.
	for _, key := range []string{"source.dsn", "source.day_offset", "sink.target"} {
		_ = v.BindEnv(key)
	}

	readConfigFile(v)

	return &Config{
		Env: v.GetString("env"),
		Monitoring: MonitoringConfig{
			Port:           mustInt(v, "monitoring.port", "failed to parse port for monitoring server from configuration"),
			PushgatewayURL: v.GetString("monitoring.pushgateway_url"),
		},
		Source: SourceConfig{
			Driver:    v.GetString("source.driver"),
			DSN:       mustString(v, "source.dsn", "source dsn is required"),
			DayOffset: mustDayOffset(v),
		},
		Sink: SinkConfig{
			Mode:   mustSinkMode(v),
			Target: mustString(v, "sink.target", "sink target is required"),
			Schema: v.GetString("sink.schema"),
			Table:  v.GetString("sink.table"),
		},
		Geocoder: GeocoderConfig{
			Provider:     v.GetString("geocoder.provider"),
			BaseURL:      v.GetString("geocoder.base_url"),
			APIKey:       v.GetString("geocoder.api_key"),
			UserAgent:    v.GetString("geocoder.user_agent"),
			Timeout:      mustDuration(v, "geocoder.timeout", "failed to parse geocoder timeout from configuration"),
			RegionSuffix: v.GetString("geocoder.region_suffix"),
			Region:       v.GetString("geocoder.region"),
			RequestDelay: mustDelay(v),
		},
	}
}

func readConfigFile(v *viper.Viper) {
	if path, ok := os.LookupEnv(EnvPrefix + "_CONFIG"); ok && path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("geoenrich")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic("failed to read configuration file")
		}
	}
}

func mustString(v *viper.Viper, key, msg string) string {
	value := strings.TrimSpace(v.GetString(key))
	if value == "" {
		panic(msg)
	}

	return value
}

func mustInt(v *viper.Viper, key, msg string) int {
	value, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		panic(msg)
	}

	return value
}

func mustDuration(v *viper.Viper, key, msg string) time.Duration {
	value, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
	if err != nil || value <= 0 {
		panic(msg)
	}

	return value
}

func mustDayOffset(v *viper.Viper) int {
	if !v.IsSet("source.day_offset") {
		panic("source day offset is required")
	}

	offset := mustInt(v, "source.day_offset", "failed to parse source day offset from configuration, must be an integer")
	if offset < 0 {
		panic("source day offset must not be negative")
	}

	return offset
}

func mustDelay(v *viper.Viper) float64 {
	delay, err := strconv.ParseFloat(strings.TrimSpace(v.GetString("geocoder.request_delay_seconds")), 64)
	if err != nil || delay < 0 {
		panic("failed to parse request delay from configuration, must be a non-negative number of seconds")
	}

	return delay
}

func mustSinkMode(v *viper.Viper) string {
	mode := strings.ToLower(strings.TrimSpace(v.GetString("sink.mode")))
	for _, known := range sinkModes {
		if mode == known {
			return mode
		}
	}

	panic("unsupported sink mode, must be one of postgres, sqlite, spreadsheet")
}
