package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"latexify/internal/types"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// Secret Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (LATEXIFY_BACKEND_APIKEY, etc.)
// 4. Default values - Lowest priority
type Config struct {
	Backend       BackendConfig       `mapstructure:"backend"`
	App           AppConfig           `mapstructure:"app"`
	User          UserConfig          `mapstructure:"user"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// BackendConfig holds the generation backend connection configuration
type BackendConfig struct {
	BaseURL string        `mapstructure:"baseURL"`
	APIKey  string        `mapstructure:"apiKey"`
	Timeout time.Duration `mapstructure:"timeout"`

	// Default compiler options for new sessions
	Compiler         string `mapstructure:"compiler"`
	StopOnFirstError bool   `mapstructure:"stopOnFirstError"`

	// Outbound request throttling
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`

	// TLS toward the backend
	TLS ClientTLSConfig `mapstructure:"tls"`

	// Operation-specific configurations
	Generate OperationConfig `mapstructure:"generate"`
	Update   OperationConfig `mapstructure:"update"`
	Compile  OperationConfig `mapstructure:"compile"`
	Analyze  OperationConfig `mapstructure:"analyze"`
}

// OperationConfig holds per-operation overrides for backend calls
type OperationConfig struct {
	Timeout        *time.Duration       `mapstructure:"timeout"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// RateLimitConfig holds outbound rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool `mapstructure:"enabled"`        // Enable/disable outbound throttling
	RequestsPerMin int  `mapstructure:"requestsPerMin"` // Requests allowed per minute per operation
	BurstCapacity  int  `mapstructure:"burstCapacity"`  // Burst capacity for token bucket
}

// ClientTLSConfig holds TLS configuration for the backend connection
type ClientTLSConfig struct {
	Mode string `mapstructure:"mode"` // TLS mode: "disabled", "server", "mutual"

	CertFile string `mapstructure:"certFile"` // Client certificate file (PEM, mutual mode)
	KeyFile  string `mapstructure:"keyFile"`  // Client private key file (PEM, mutual mode)
	CAFile   string `mapstructure:"caFile"`   // CA bundle used to verify the backend (PEM)

	// Certificate content (used when loaded from Vault instead of files)
	CertContent string `mapstructure:"certContent"`
	KeyContent  string `mapstructure:"keyContent"`
	CAContent   string `mapstructure:"caContent"`

	MinVersion         string `mapstructure:"minVersion"`         // Minimum TLS version: "1.2", "1.3"
	ServerName         string `mapstructure:"serverName"`         // Expected backend server name
	InsecureSkipVerify bool   `mapstructure:"insecureSkipVerify"` // Skip certificate verification (dev only)

	// Live reload of client certificates
	AutoReload AutoReloadConfig `mapstructure:"autoReload"`
}

// AutoReloadConfig holds configuration for automatic certificate reloading
type AutoReloadConfig struct {
	Enabled       bool          `mapstructure:"enabled"`       // Enable file watching for client certs
	DebounceDelay time.Duration `mapstructure:"debounceDelay"` // Debounce delay for file change events
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string        `mapstructure:"logLevel"`
	DefaultFormat    string        `mapstructure:"defaultFormat"`
	SupportedFormats []string      `mapstructure:"supportedFormats"`
	MaxUploadSize    int64         `mapstructure:"maxUploadSize"`
	SessionFile      string        `mapstructure:"sessionFile"`
	NotificationTTL  time.Duration `mapstructure:"notificationTTL"`
	TemplateCacheTTL time.Duration `mapstructure:"templateCacheTTL"`
}

// UserConfig holds the signed-in identity used for profile operations
type UserConfig struct {
	UID         string `mapstructure:"uid"`
	Email       string `mapstructure:"email"`
	DisplayName string `mapstructure:"displayName"`
	PhotoURL    string `mapstructure:"photoURL"`
}

// Identity converts the configured user into a domain identity, or nil when
// no user is configured
func (u UserConfig) Identity() *types.UserIdentity {
	if u.UID == "" {
		return nil
	}
	return &types.UserIdentity{
		UID:         u.UID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
	}
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool             `mapstructure:"enabled"`
	ServiceName     string           `mapstructure:"serviceName"`
	ServiceVersion  string           `mapstructure:"serviceVersion"`
	ServiceInstance string           `mapstructure:"serviceInstance"`
	ConsoleOutput   bool             `mapstructure:"consoleOutput"`
	SampleRate      float64          `mapstructure:"sampleRate"`
	Tracing         TracingConfig    `mapstructure:"tracing"`
	Metrics         MetricsConfig    `mapstructure:"metrics"`
	Console         ConsoleConfig    `mapstructure:"console"`
	Prometheus      PrometheusConfig `mapstructure:"prometheus"`
	OTLP            OTLPConfig       `mapstructure:"otlp"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoadConfig loads configuration from environment variables and a config file
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Set up environment variable handling
	v.SetEnvPrefix("LATEXIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set up config file handling
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/latexify/")
	v.AddConfigPath("$HOME/.latexify")
	v.AddConfigPath(".")

	// Read the config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal the configuration into the Config struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply environment fallbacks and derived values
	config.applyFallbacks()

	// Validate the configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Backend Configuration
	v.SetDefault("backend.baseURL", "http://localhost:5000")
	v.SetDefault("backend.apiKey", "")
	v.SetDefault("backend.timeout", 60*time.Second)
	v.SetDefault("backend.compiler", "pdflatex")
	v.SetDefault("backend.stopOnFirstError", false)

	// Outbound rate limiting
	v.SetDefault("backend.rateLimit.enabled", false)
	v.SetDefault("backend.rateLimit.requestsPerMin", 60)
	v.SetDefault("backend.rateLimit.burstCapacity", 10)

	// TLS defaults
	v.SetDefault("backend.tls.mode", "disabled") // disabled, server, mutual
	v.SetDefault("backend.tls.certFile", "")
	v.SetDefault("backend.tls.keyFile", "")
	v.SetDefault("backend.tls.caFile", "")
	v.SetDefault("backend.tls.minVersion", "1.2")
	v.SetDefault("backend.tls.serverName", "")
	v.SetDefault("backend.tls.insecureSkipVerify", false)
	v.SetDefault("backend.tls.autoReload.enabled", true)
	v.SetDefault("backend.tls.autoReload.debounceDelay", time.Second)

	// Generation needs the longest deadline; compiles are usually quick
	v.SetDefault("backend.generate.timeout", 120*time.Second)
	v.SetDefault("backend.update.timeout", 90*time.Second)
	v.SetDefault("backend.compile.timeout", 60*time.Second)
	v.SetDefault("backend.analyze.timeout", 90*time.Second)

	// Circuit Breaker Configuration defaults for all operations
	for _, op := range []string{"generate", "update", "compile", "analyze"} {
		v.SetDefault("backend."+op+".circuitBreaker.enabled", true)
		v.SetDefault("backend."+op+".circuitBreaker.maxRequests", 3)
		v.SetDefault("backend."+op+".circuitBreaker.interval", 60*time.Second)
		v.SetDefault("backend."+op+".circuitBreaker.timeout", 60*time.Second)
		v.SetDefault("backend."+op+".circuitBreaker.minRequests", 3)
		v.SetDefault("backend."+op+".circuitBreaker.failureThreshold", 0.6)
	}

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "text")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxUploadSize", 10*1024*1024) // 10MB
	v.SetDefault("app.sessionFile", ".latexify/session.json")
	v.SetDefault("app.notificationTTL", 5*time.Second)
	v.SetDefault("app.templateCacheTTL", 5*time.Minute)

	// User identity (empty means not signed in)
	v.SetDefault("user.uid", "")
	v.SetDefault("user.email", "")
	v.SetDefault("user.displayName", "")
	v.SetDefault("user.photoURL", "")

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.backendKey", "")
	v.SetDefault("vault.secrets.tlsCerts", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "latexify")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	v.SetDefault("observability.prometheus.enabled", false)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base URL is required (set LATEXIFY_BACKEND_BASEURL environment variable)")
	}

	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("backend base URL must start with http:// or https://: %s", c.Backend.BaseURL)
	}

	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive")
	}

	switch types.Compiler(c.Backend.Compiler) {
	case types.CompilerPDFLaTeX, types.CompilerXeLaTeX, types.CompilerLuaLaTeX:
	default:
		return fmt.Errorf("invalid compiler: %s (must be 'pdflatex', 'xelatex', or 'lualatex')", c.Backend.Compiler)
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	// Validate TLS configuration
	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	return nil
}

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationConfig) {
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.Backend.Timeout
	}
}

// GetGenerateConfig returns the backend configuration for generate operations
func (c *Config) GetGenerateConfig() OperationConfig {
	config := c.Backend.Generate
	c.applyOperationDefaults(&config)
	return config
}

// GetUpdateConfig returns the backend configuration for update operations
func (c *Config) GetUpdateConfig() OperationConfig {
	config := c.Backend.Update
	c.applyOperationDefaults(&config)
	return config
}

// GetCompileConfig returns the backend configuration for compile operations
func (c *Config) GetCompileConfig() OperationConfig {
	config := c.Backend.Compile
	c.applyOperationDefaults(&config)
	return config
}

// GetAnalyzeConfig returns the backend configuration for analyze operations
func (c *Config) GetAnalyzeConfig() OperationConfig {
	config := c.Backend.Analyze
	c.applyOperationDefaults(&config)
	return config
}

// DefaultCompilerOptions returns the compiler options new sessions start with
func (c *Config) DefaultCompilerOptions() types.CompilerOptions {
	return types.CompilerOptions{
		Compiler:         types.Compiler(c.Backend.Compiler),
		StopOnFirstError: c.Backend.StopOnFirstError,
	}
}

// applyFallbacks applies environment variable fallbacks and derived values
func (c *Config) applyFallbacks() {
	// Set default TLS version if not specified
	if c.Backend.TLS.MinVersion == "" && c.Backend.TLS.Mode != "disabled" {
		c.Backend.TLS.MinVersion = "1.2"
	}

	// Set dynamic service instance ID if not specified
	if c.Observability.ServiceInstance == "" {
		if hostname, err := os.Hostname(); err == nil {
			c.Observability.ServiceInstance = fmt.Sprintf("%s-%s", c.Observability.ServiceName, hostname)
		} else {
			c.Observability.ServiceInstance = fmt.Sprintf("%s-1", c.Observability.ServiceName)
		}
	}

	// Debug log level implies console observability output
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}
