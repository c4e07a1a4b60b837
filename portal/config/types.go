package config

import "time"

// RPCPortalConfig configures the portal server process.
type RPCPortalConfig struct {
	// rpc configs
	Port int    `toml:"port" mapstructure:"port"`
	Host string `toml:"host" mapstructure:"host"`

	// CORS configs
	AllowedOrigins []string `toml:"allowed_origins" mapstructure:"allowed_origins"`

	// rate limiting configs
	RatePerMinute         int `toml:"rate_per_minute" mapstructure:"rate_per_minute"`
	MaxConcurrentRequests int `toml:"max_concurrent_requests" mapstructure:"max_concurrent_requests"`

	// OpenTelemetry configs
	ServiceName    string `toml:"service_name" mapstructure:"service_name"`
	ServiceVersion string `toml:"service_version" mapstructure:"service_version"`
	Environment    string `toml:"environment" mapstructure:"environment"` // PROD, DEV, TEST, LOCAL
	EnableTracing  bool   `toml:"enable_tracing" mapstructure:"enable_tracing"`
	UseOTLPTraces  bool   `toml:"use_otlp_traces" mapstructure:"use_otlp_traces"`
	OTLPTracesURL  string `toml:"otlp_traces_url" mapstructure:"otlp_traces_url"`
	EnableMetrics  bool   `toml:"enable_metrics" mapstructure:"enable_metrics"`
	UsePrometheus  bool   `toml:"use_prometheus" mapstructure:"use_prometheus"`
	UseOTLPMetrics bool   `toml:"use_otlp_metrics" mapstructure:"use_otlp_metrics"`
	OTLPMetricsURL string `toml:"otlp_metrics_url" mapstructure:"otlp_metrics_url"`
	EnableLogs     bool   `toml:"enable_logs" mapstructure:"enable_logs"`
	UseOTLPLogs    bool   `toml:"use_otlp_logs" mapstructure:"use_otlp_logs"`
	OTLPLogsURL    string `toml:"otlp_logs_url" mapstructure:"otlp_logs_url"`

	InsecureOTLP bool `toml:"insecure_otlp" mapstructure:"insecure_otlp"`

	// Development mode uses stdout exporters
	DevelopmentMode bool `toml:"development_mode" mapstructure:"development_mode"`

	// Generated portal config with chains and strategies
	ChainConfig string `toml:"chain_config" mapstructure:"chain_config"`

	// Log transfers instead of sending them to the chain
	DryRun bool `toml:"dry_run" mapstructure:"dry_run"`
	// Deadline of a single dispatch, including dialing the node
	DispatchTimeout time.Duration `toml:"dispatch_timeout" mapstructure:"dispatch_timeout"`

	// zerolog level name: trace, debug, info, warn, error
	LogLevel string `toml:"log_level" mapstructure:"log_level"`

	// Strategy sessions idle longer than this are dropped
	SessionIdle time.Duration `toml:"session_idle" mapstructure:"session_idle"`
}

const (
	DefaultDispatchTimeout = 30 * time.Second
	DefaultSessionIdle     = 30 * time.Minute
	DefaultLogLevel        = "info"
)

// WalletConnectConfig is read from the plain environment, the same variables the web client uses.
type WalletConnectConfig struct {
	ProjectID string `envconfig:"WALLETCONNECT_PROJECT_ID" required:"true"`
	AppName   string `envconfig:"APP_NAME" default:"UHI-CCLO"`
}
