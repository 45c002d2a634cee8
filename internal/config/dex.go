// Package config also contains DEX-specific configuration surfaces.
package config

// Router providers.
const (
	RouterGMGN    = "gmgn"
	RouterJupiter = "jupiter"
)

// Broadcast modes.
const (
	BroadcastRelay = "relay"
	BroadcastRPC   = "rpc"
)

// Confirmation modes.
const (
	ConfirmPoll = "poll"
	ConfirmWS   = "ws"
)

// Dex defines network endpoints and defaults for decentralized execution.
type Dex struct {
	Chain       string `yaml:"chain"` // e.g. "solana"
	RpcURL      string `yaml:"rpc_url"`
	WsURL       string `yaml:"ws_url"`
	Commitment  string `yaml:"commitment"`   // processed|confirmed|finalized
	JupiterBase string `yaml:"jupiter_base"` // https://quote-api.jup.ag
}

// Router configures the swap-routing service that builds unsigned transactions.
type Router struct {
	Provider        string  `yaml:"provider"` // gmgn|jupiter
	BaseURL         string  `yaml:"base_url"`
	Fee             float64 `yaml:"fee"`
	AntiMEV         bool    `yaml:"anti_mev"`
	TimeoutMs       int     `yaml:"timeout_ms"`
	Retries         *int    `yaml:"retries"`
	PayloadEncoding string  `yaml:"payload_encoding"` // base64|base58
}

// Broadcast selects how signed transactions reach the network.
type Broadcast struct {
	Mode          string `yaml:"mode"` // relay|rpc
	SkipPreflight bool   `yaml:"skip_preflight"`
}

// Confirm configures the optional wait for on-chain confirmation.
type Confirm struct {
	Enabled        bool   `yaml:"enabled"`
	Mode           string `yaml:"mode"` // poll|ws
	TimeoutMs      int    `yaml:"timeout_ms"`
	PollIntervalMs int    `yaml:"poll_interval_ms"`
}

// Wallet stores where the signing key is read from. The key itself never lives in YAML.
type Wallet struct {
	PrivateKeyEnv string `yaml:"private_key_env"`
}
