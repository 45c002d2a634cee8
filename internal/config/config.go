// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, and logging levels.
type App struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
	// MetricsAddr optionally serves /metrics on a separate listener.
	MetricsAddr string `yaml:"metrics_addr"`
}

// Log configures the optional rolling file sink that mirrors console output.
type Log struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Trade holds the sizing policy shared by every instruction.
type Trade struct {
	BaseAsset          string           `yaml:"base_asset"`
	DefaultSlippageBps int              `yaml:"default_slippage_bps"`
	DCAFactor          float64          `yaml:"dca_factor"`
	Decimals           map[string]int32 `yaml:"decimals"` // mint -> decimals override
}

// Risk encodes guard-rails for how much base asset a single trade may spend.
type Risk struct {
	MaxBasePerTrade float64 `yaml:"max_base_per_trade"`
}

// Server configures the inbound HTTP trigger.
type Server struct {
	Addr string `yaml:"addr"`
}

// Journal configures where executed results are recorded.
type Journal struct {
	Path     string `yaml:"path"`
	Capacity int    `yaml:"capacity"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App       App       `yaml:"app"`
	Log       Log       `yaml:"log"`
	Dex       Dex       `yaml:"dex"`
	Router    Router    `yaml:"router"`
	Broadcast Broadcast `yaml:"broadcast"`
	Confirm   Confirm   `yaml:"confirm"`
	Trade     Trade     `yaml:"trade"`
	Risk      Risk      `yaml:"risk"`
	Wallet    Wallet    `yaml:"wallet"`
	Server    Server    `yaml:"server"`
	Journal   Journal   `yaml:"journal"`
}

// Default values applied by ApplyDefaults.
const (
	DefaultSlippageBps    = 1000 // 10%
	DefaultDCAFactor      = 0.5
	DefaultRouterTimeout  = 10000
	DefaultRouteRetries   = 2
	DefaultConfirmTimeout = 30000
	DefaultPollInterval   = 500
	DefaultJournalCap     = 256
	DefaultJupiterBase    = "https://quote-api.jup.ag"
	NativeMint            = "So11111111111111111111111111111111111111112"
)

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	_ = godotenv.Load() // best-effort, existing env wins
	config.ApplyEnv()
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ApplyEnv overlays deployment endpoints from the environment. Load calls it
// before validation so env-only endpoints satisfy the confirm checks.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("SOLANA_RPC_URL"); v != "" {
		c.Dex.RpcURL = v
	}
	if v := os.Getenv("SOLANA_WS_URL"); v != "" {
		c.Dex.WsURL = v
	}
	if v := os.Getenv("GMGN_BASE_URL"); v != "" {
		if p := normalize(c.Router.Provider); p == "" || p == RouterGMGN {
			c.Router.BaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ApplyDefaults fills zero-valued knobs with the service defaults. Enum-like
// fields are lowercased so later comparisons can be exact.
func (c *Config) ApplyDefaults() {
	c.Dex.Commitment = normalize(c.Dex.Commitment)
	c.Router.Provider = normalize(c.Router.Provider)
	c.Router.PayloadEncoding = normalize(c.Router.PayloadEncoding)
	c.Broadcast.Mode = normalize(c.Broadcast.Mode)
	c.Confirm.Mode = normalize(c.Confirm.Mode)
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Dex.Commitment == "" {
		c.Dex.Commitment = "confirmed"
	}
	if c.Dex.JupiterBase == "" {
		c.Dex.JupiterBase = DefaultJupiterBase
	}
	if c.Router.Provider == "" {
		c.Router.Provider = RouterGMGN
	}
	if c.Router.BaseURL == "" {
		switch c.Router.Provider {
		case RouterJupiter:
			c.Router.BaseURL = c.Dex.JupiterBase
		default:
			c.Router.BaseURL = "https://gmgn.ai"
		}
	}
	if c.Router.TimeoutMs <= 0 {
		c.Router.TimeoutMs = DefaultRouterTimeout
	}
	if c.Router.Retries == nil {
		n := DefaultRouteRetries
		c.Router.Retries = &n
	}
	if c.Router.PayloadEncoding == "" {
		c.Router.PayloadEncoding = "base64"
	}
	if c.Broadcast.Mode == "" {
		c.Broadcast.Mode = BroadcastRelay
	}
	if c.Confirm.Mode == "" {
		c.Confirm.Mode = ConfirmPoll
	}
	if c.Confirm.TimeoutMs <= 0 {
		c.Confirm.TimeoutMs = DefaultConfirmTimeout
	}
	if c.Confirm.PollIntervalMs <= 0 {
		c.Confirm.PollIntervalMs = DefaultPollInterval
	}
	if c.Trade.BaseAsset == "" {
		c.Trade.BaseAsset = NativeMint
	}
	if c.Trade.DefaultSlippageBps <= 0 {
		c.Trade.DefaultSlippageBps = DefaultSlippageBps
	}
	if c.Trade.DCAFactor == 0 {
		c.Trade.DCAFactor = DefaultDCAFactor
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Journal.Capacity <= 0 {
		c.Journal.Capacity = DefaultJournalCap
	}
}

// Validate rejects combinations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Trade.DCAFactor <= 0 || c.Trade.DCAFactor > 1 {
		return fmt.Errorf("trade.dca_factor must be in (0, 1], got %v", c.Trade.DCAFactor)
	}
	if c.Trade.DefaultSlippageBps > 10000 {
		return fmt.Errorf("trade.default_slippage_bps must be <= 10000, got %d", c.Trade.DefaultSlippageBps)
	}
	if c.Risk.MaxBasePerTrade < 0 {
		return fmt.Errorf("risk.max_base_per_trade must not be negative")
	}
	switch normalize(c.Router.Provider) {
	case RouterGMGN, RouterJupiter:
	default:
		return fmt.Errorf("unknown router.provider %q", c.Router.Provider)
	}
	switch normalize(c.Router.PayloadEncoding) {
	case "base64", "base58":
	default:
		return fmt.Errorf("unknown router.payload_encoding %q", c.Router.PayloadEncoding)
	}
	switch normalize(c.Broadcast.Mode) {
	case BroadcastRelay:
		if normalize(c.Router.Provider) != RouterGMGN {
			return fmt.Errorf("broadcast.mode relay requires router.provider gmgn")
		}
	case BroadcastRPC:
	default:
		return fmt.Errorf("unknown broadcast.mode %q", c.Broadcast.Mode)
	}
	switch normalize(c.Confirm.Mode) {
	case ConfirmPoll, ConfirmWS:
	default:
		return fmt.Errorf("unknown confirm.mode %q", c.Confirm.Mode)
	}
	if c.Confirm.Enabled && c.Dex.RpcURL == "" {
		return fmt.Errorf("confirm.enabled requires dex.rpc_url")
	}
	if c.Confirm.Enabled && normalize(c.Confirm.Mode) == ConfirmWS && c.Dex.WsURL == "" {
		return fmt.Errorf("confirm.mode ws requires dex.ws_url")
	}
	return nil
}
