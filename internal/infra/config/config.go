package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP           HTTPConfig           `yaml:"http"`
	Classification ClassificationConfig `yaml:"classification"`
	Chip           ChipConfig           `yaml:"chip"`
	Upstream       UpstreamConfig       `yaml:"upstream"`
	Storage        StorageConfig        `yaml:"storage"`
	Cache          CacheConfig          `yaml:"cache"`
	Postgres       PostgresConfig       `yaml:"postgres"`
	Telemetry      TelemetryConfig      `yaml:"telemetry"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// ClassificationConfig is the class scheme and the sentinel values of the landcover engine.
type ClassificationConfig struct {
	Classes    []string          `yaml:"classes"`
	ClassCodes map[string]int    `yaml:"classCodes"`
	NoneClass  string            `yaml:"noneClass"`
	GrassClass string            `yaml:"grassClass"`
	TreeClass  string            `yaml:"treeClass"`
	Fill       FillConfig        `yaml:"fill"`
	Landcover  LandcoverDefaults `yaml:"landcover"`
	Confidence ConfidenceCodes   `yaml:"confidence"`
}

// FillConfig toggles class spill-over from neighbouring segments.
type FillConfig struct {
	Begin  bool `yaml:"begin"`
	End    bool `yaml:"end"`
	SameLC bool `yaml:"sameLC"`
	DiffLC bool `yaml:"diffLC"`
}

// LandcoverDefaults are the landcover sentinel values.
type LandcoverDefaults struct {
	Insufficient int `yaml:"insufficient"`
	Between      int `yaml:"between"`
	NoModel      int `yaml:"noModel"`
}

// ConfidenceCodes are the confidence sentinel values.
type ConfidenceCodes struct {
	Back       int `yaml:"back"`
	AfterBreak int `yaml:"afterBreak"`
	Forwards   int `yaml:"forwards"`
	Growth     int `yaml:"growth"`
	Decline    int `yaml:"decline"`
	SameLC     int `yaml:"sameLC"`
	DiffLC     int `yaml:"diffLC"`
	None       int `yaml:"none"`
	NoModel    int `yaml:"noModel"`
}

// ChipConfig controls chip generation.
type ChipConfig struct {
	Product  string      `yaml:"product"`
	Format   string      `yaml:"format"`
	Workers  int         `yaml:"workers"`
	QueryDay string      `yaml:"queryDay"`
	Retry    RetryConfig `yaml:"retry"`
}

// RetryConfig shapes persistence retries.
type RetryConfig struct {
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	MaxBackoff  time.Duration `yaml:"maxBackoff"`
	Multiplier  float64       `yaml:"multiplier"`
}

// UpstreamConfig points at the change detection service.
type UpstreamConfig struct {
	BaseURL           string        `yaml:"baseUrl"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Burst             int           `yaml:"burst"`
}

// StorageConfig selects the product object store.
type StorageConfig struct {
	// Backend is memory, s3 or gcs.
	Backend string    `yaml:"backend"`
	Bucket  string    `yaml:"bucket"`
	S3      S3Config  `yaml:"s3"`
	GCS     GCSConfig `yaml:"gcs"`
}

// S3Config holds credentials for S3 compatible stores (AWS, R2, MinIO).
type S3Config struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	Region          string `yaml:"region"`
	UseSSL          bool   `yaml:"useSSL"`
}

// GCSConfig holds Google Cloud Storage options.
type GCSConfig struct {
	CredentialsFile string `yaml:"credentialsFile"`
	Endpoint        string `yaml:"endpoint"`
}

// CacheConfig contains connection information for the chip input cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Addr    string        `yaml:"addr"`
	TTL     time.Duration `yaml:"ttl"`
	Prefix  string        `yaml:"prefix"`
}

// PostgresConfig contains DSN and pooling settings for the run ledger.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// TelemetryConfig selects the trace exporter for chip generation spans.
type TelemetryConfig struct {
	ServiceName string `yaml:"serviceName"`
	// TraceExporter is none, stdout or otlp.
	TraceExporter string `yaml:"traceExporter"`
	OTLPEndpoint  string `yaml:"otlpEndpoint"`
	OTLPInsecure  bool   `yaml:"otlpInsecure"`
}

var queryDayPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])$`)

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString("HTTP_ADDRESS", &cfg.HTTP.Address)
	setBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	setInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	setInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)

	setBool("FILL_BEGIN", &cfg.Classification.Fill.Begin)
	setBool("FILL_END", &cfg.Classification.Fill.End)
	setBool("FILL_SAMELC", &cfg.Classification.Fill.SameLC)
	setBool("FILL_DIFFLC", &cfg.Classification.Fill.DiffLC)

	setString("CHIP_PRODUCT", &cfg.Chip.Product)
	setString("CHIP_FORMAT", &cfg.Chip.Format)
	setInt("CHIP_WORKERS", &cfg.Chip.Workers)
	setString("CHIP_QUERY_DAY", &cfg.Chip.QueryDay)
	setInt("CHIP_RETRY_MAX_ATTEMPTS", &cfg.Chip.Retry.MaxAttempts)
	setDuration("CHIP_RETRY_BASE_BACKOFF", &cfg.Chip.Retry.BaseBackoff)
	setDuration("CHIP_RETRY_MAX_BACKOFF", &cfg.Chip.Retry.MaxBackoff)
	setFloat("CHIP_RETRY_MULTIPLIER", &cfg.Chip.Retry.Multiplier)

	setString("UPSTREAM_BASE_URL", &cfg.Upstream.BaseURL)
	setDuration("UPSTREAM_TIMEOUT", &cfg.Upstream.Timeout)
	setFloat("UPSTREAM_RPS", &cfg.Upstream.RequestsPerSecond)

	setString("STORAGE_BACKEND", &cfg.Storage.Backend)
	setString("STORAGE_BUCKET", &cfg.Storage.Bucket)
	setString("S3_ENDPOINT", &cfg.Storage.S3.Endpoint)
	setString("S3_ACCESS_KEY_ID", &cfg.Storage.S3.AccessKeyID)
	setString("S3_SECRET_ACCESS_KEY", &cfg.Storage.S3.SecretAccessKey)
	setString("S3_REGION", &cfg.Storage.S3.Region)
	setBool("S3_USE_SSL", &cfg.Storage.S3.UseSSL)
	setString("GCS_CREDENTIALS_FILE", &cfg.Storage.GCS.CredentialsFile)
	setString("GCS_ENDPOINT", &cfg.Storage.GCS.Endpoint)

	setBool("CACHE_ENABLED", &cfg.Cache.Enabled)
	setString("CACHE_ADDR", &cfg.Cache.Addr)
	setDuration("CACHE_TTL", &cfg.Cache.TTL)

	setString("POSTGRES_DSN", &cfg.Postgres.DSN)
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}

	setString("OTEL_SERVICE_NAME", &cfg.Telemetry.ServiceName)
	setString("OTEL_TRACES_EXPORTER", &cfg.Telemetry.TraceExporter)
	setString("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Telemetry.OTLPEndpoint)
	setBool("OTEL_EXPORTER_OTLP_INSECURE", &cfg.Telemetry.OTLPInsecure)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Minute,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		Classification: ClassificationConfig{
			Classes: []string{"developed", "cropland", "grass", "tree", "water", "wetland", "snow", "barren"},
			ClassCodes: map[string]int{
				"none":      0,
				"developed": 1,
				"cropland":  2,
				"grass":     3,
				"tree":      4,
				"water":     5,
				"wetland":   6,
				"snow":      7,
				"barren":    8,
			},
			NoneClass:  "none",
			GrassClass: "grass",
			TreeClass:  "tree",
			Fill:       FillConfig{Begin: true, End: true, SameLC: true, DiffLC: true},
			Landcover:  LandcoverDefaults{Insufficient: 9, Between: 10, NoModel: 0},
			Confidence: ConfidenceCodes{
				Back:       211,
				AfterBreak: 212,
				Forwards:   213,
				Growth:     152,
				Decline:    153,
				SameLC:     201,
				DiffLC:     202,
				None:       0,
				NoModel:    0,
			},
		},
		Chip: ChipConfig{
			Product:  "annual",
			Format:   "json",
			QueryDay: "07-01",
			Retry: RetryConfig{
				MaxAttempts: 5,
				BaseBackoff: 500 * time.Millisecond,
				MaxBackoff:  30 * time.Second,
				Multiplier:  2,
			},
		},
		Upstream: UpstreamConfig{
			BaseURL:           "http://localhost:5656",
			Timeout:           2 * time.Minute,
			RequestsPerSecond: 4,
			Burst:             2,
		},
		Storage: StorageConfig{
			Backend: "memory",
			Bucket:  "gaia-products",
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     24 * time.Hour,
			Prefix:  "gaia:inputs",
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "gaia",
			TraceExporter: "none",
			OTLPEndpoint:  "localhost:4317",
			OTLPInsecure:  true,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if len(c.Classification.Classes) == 0 {
		return errors.New("classification.classes cannot be empty")
	}
	if strings.TrimSpace(c.Chip.Product) == "" {
		return errors.New("chip.product cannot be empty")
	}
	switch c.Chip.Format {
	case "json", "msgpack":
	default:
		return fmt.Errorf("chip.format %q must be json or msgpack", c.Chip.Format)
	}
	if c.Chip.Workers < 0 {
		return errors.New("chip.workers cannot be negative")
	}
	if !queryDayPattern.MatchString(c.Chip.QueryDay) {
		return fmt.Errorf("chip.queryDay %q must be MM-DD", c.Chip.QueryDay)
	}
	if c.Chip.Retry.MaxAttempts <= 0 {
		return errors.New("chip.retry.maxAttempts must be positive")
	}
	if c.Chip.Retry.BaseBackoff < 0 || c.Chip.Retry.MaxBackoff < 0 {
		return errors.New("chip.retry backoff cannot be negative")
	}
	if c.Chip.Retry.Multiplier < 1 {
		return errors.New("chip.retry.multiplier must be at least 1")
	}
	for name, code := range c.Classification.ClassCodes {
		if code < 0 {
			return fmt.Errorf("classification.classCodes.%s cannot be negative", name)
		}
	}
	lc := c.Classification.Landcover
	if lc.Insufficient < 0 || lc.Between < 0 || lc.NoModel < 0 {
		return errors.New("classification.landcover sentinels cannot be negative")
	}
	if strings.TrimSpace(c.Upstream.BaseURL) == "" {
		return errors.New("upstream.baseUrl cannot be empty")
	}
	if c.Upstream.RequestsPerSecond < 0 {
		return errors.New("upstream.requestsPerSecond cannot be negative")
	}
	switch c.Storage.Backend {
	case "memory":
	case "s3", "gcs":
		if strings.TrimSpace(c.Storage.Bucket) == "" {
			return fmt.Errorf("storage.bucket cannot be empty for backend %s", c.Storage.Backend)
		}
		if c.Storage.Backend == "s3" && strings.TrimSpace(c.Storage.S3.Endpoint) == "" {
			return errors.New("storage.s3.endpoint cannot be empty")
		}
	default:
		return fmt.Errorf("storage.backend %q must be memory, s3 or gcs", c.Storage.Backend)
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Addr) == "" {
		return errors.New("cache.addr cannot be empty when the input cache is enabled")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl cannot be negative")
	}
	switch c.Telemetry.TraceExporter {
	case "", "none", "stdout":
	case "otlp":
		if strings.TrimSpace(c.Telemetry.OTLPEndpoint) == "" {
			return errors.New("telemetry.otlpEndpoint cannot be empty for the otlp exporter")
		}
	default:
		return fmt.Errorf("telemetry.traceExporter %q must be none, stdout or otlp", c.Telemetry.TraceExporter)
	}
	return nil
}
