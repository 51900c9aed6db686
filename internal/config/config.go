package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Chain names one of the supported networks.
type Chain string

const (
	ChainSteem Chain = "steem"
	ChainHive  Chain = "hive"
	ChainTest  Chain = "test"
)

const (
	DefaultExpiryWindow    = 600 * time.Second
	DefaultMaxSignAttempts = 1000
	DefaultServerAddr      = ":8090"
	DefaultWIFEnv          = "STEEMTX_WIF"
	DefaultTokenEnv        = "STEEMTX_SIGN_TOKEN"
)

// AssetRole is the position an asset holds in a chain's asset triple.
type AssetRole string

const (
	RoleCore AssetRole = "core"
	RoleDebt AssetRole = "debt"
	RoleVest AssetRole = "vest"
)

// Asset is one registered asset. WireSymbol, when set, replaces Symbol in
// the binary encoding.
type Asset struct {
	Symbol     string `toml:"symbol"`
	NAI        string `toml:"nai"`
	Precision  uint8  `toml:"precision"`
	WireSymbol string `toml:"wire_symbol"`
}

// Encoded returns the symbol written on the wire.
func (a Asset) Encoded() string {
	if a.WireSymbol != "" {
		return a.WireSymbol
	}
	return a.Symbol
}

type Network struct {
	ChainID       string `toml:"chain_id"`
	AddressPrefix string `toml:"address_prefix"`
	Core          Asset  `toml:"core"`
	Debt          Asset  `toml:"debt"`
	Vest          Asset  `toml:"vest"`
}

// Assets returns the triple in core, debt, vest order.
func (n Network) Assets() []Asset {
	return []Asset{n.Core, n.Debt, n.Vest}
}

// ChainIDBytes decodes the 64 hex-char chain id.
func (n Network) ChainIDBytes() ([32]byte, error) {
	return ParseChainID(n.ChainID)
}

type Signing struct {
	ExpiryWindow    time.Duration
	MaxSignAttempts int
}

type Server struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
	// WIFEnv names the environment variable holding the signing key.
	WIFEnv string `toml:"wif_env"`
	// TokenEnv names the environment variable holding the bearer token that
	// guards signing. Unset or empty disables signing over HTTP.
	TokenEnv string `toml:"token_env"`
}

type Config struct {
	DefaultChain Chain
	Signing      Signing
	Networks     map[Chain]Network
	Server       Server
}

func Default() Config {
	return Config{
		DefaultChain: ChainSteem,
		Signing: Signing{
			ExpiryWindow:    DefaultExpiryWindow,
			MaxSignAttempts: DefaultMaxSignAttempts,
		},
		Networks: DefaultNetworks(),
		Server: Server{
			Addr:        DefaultServerAddr,
			CorsOrigins: []string{"http://localhost:3000"},
			WIFEnv:      DefaultWIFEnv,
			TokenEnv:    DefaultTokenEnv,
		},
	}
}

func DefaultNetworks() map[Chain]Network {
	return map[Chain]Network{
		ChainSteem: {
			ChainID:       strings.Repeat("0", 64),
			AddressPrefix: "STM",
			Core:          Asset{Symbol: "STEEM", NAI: "@@000000021", Precision: 3},
			Debt:          Asset{Symbol: "SBD", NAI: "@@000000013", Precision: 3},
			Vest:          Asset{Symbol: "VESTS", NAI: "@@000000037", Precision: 6},
		},
		ChainHive: {
			ChainID:       "beeab0de00000000000000000000000000000000000000000000000000000000",
			AddressPrefix: "STM",
			Core:          Asset{Symbol: "HIVE", NAI: "@@000000021", Precision: 3, WireSymbol: "STEEM"},
			Debt:          Asset{Symbol: "HBD", NAI: "@@000000013", Precision: 3, WireSymbol: "SBD"},
			Vest:          Asset{Symbol: "VESTS", NAI: "@@000000037", Precision: 6},
		},
		ChainTest: {
			ChainID:       "18dcf0a285365fc58b71f18b3d3fec954aa0c141c44e4e5cb4cf777b9eab274e",
			AddressPrefix: "TST",
			Core:          Asset{Symbol: "TESTS", NAI: "@@000000021", Precision: 3},
			Debt:          Asset{Symbol: "TBD", NAI: "@@000000013", Precision: 3},
			Vest:          Asset{Symbol: "VESTS", NAI: "@@000000037", Precision: 6},
		},
	}
}

// Network returns the network entry for chain.
func (c Config) Network(chain Chain) (Network, bool) {
	n, ok := c.Networks[chain]
	return n, ok
}

// ChainForID returns the chain whose id matches, if any.
func (c Config) ChainForID(id [32]byte) (Chain, bool) {
	want := hex.EncodeToString(id[:])
	for chain, n := range c.Networks {
		if strings.EqualFold(n.ChainID, want) {
			return chain, true
		}
	}
	return "", false
}

type fileConfig struct {
	DefaultChain    string             `toml:"default_chain"`
	ExpiryWindow    string             `toml:"expiry_window"`
	MaxSignAttempts int                `toml:"max_sign_attempts"`
	Networks        map[string]Network `toml:"networks"`
	Server          Server             `toml:"server"`
}

// LoadFile overlays the TOML file at path onto Default.
func LoadFile(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	cfg, err := apply(Default(), raw, meta)
	if err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return cfg, nil
}

// Parse overlays TOML text onto Default.
func Parse(data string) (Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config parse failed: %w", err)
	}
	return apply(Default(), raw, meta)
}

func apply(cfg Config, raw fileConfig, meta toml.MetaData) (Config, error) {
	if meta.IsDefined("default_chain") {
		cfg.DefaultChain = Chain(strings.ToLower(strings.TrimSpace(raw.DefaultChain)))
	}
	if meta.IsDefined("expiry_window") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ExpiryWindow))
		if err != nil {
			return Config{}, fmt.Errorf("parse expiry_window: %w", err)
		}
		cfg.Signing.ExpiryWindow = d
	}
	if meta.IsDefined("max_sign_attempts") {
		cfg.Signing.MaxSignAttempts = raw.MaxSignAttempts
	}
	for name, n := range raw.Networks {
		chain := Chain(strings.ToLower(strings.TrimSpace(name)))
		merged := cfg.Networks[chain]
		if meta.IsDefined("networks", name, "chain_id") {
			merged.ChainID = strings.ToLower(strings.TrimSpace(n.ChainID))
		}
		if meta.IsDefined("networks", name, "address_prefix") {
			merged.AddressPrefix = strings.TrimSpace(n.AddressPrefix)
		}
		if meta.IsDefined("networks", name, "core") {
			merged.Core = n.Core
		}
		if meta.IsDefined("networks", name, "debt") {
			merged.Debt = n.Debt
		}
		if meta.IsDefined("networks", name, "vest") {
			merged.Vest = n.Vest
		}
		cfg.Networks[chain] = merged
	}
	if meta.IsDefined("server", "addr") {
		cfg.Server.Addr = strings.TrimSpace(raw.Server.Addr)
	}
	if meta.IsDefined("server", "cors_origins") {
		cfg.Server.CorsOrigins = raw.Server.CorsOrigins
	}
	if meta.IsDefined("server", "wif_env") {
		cfg.Server.WIFEnv = strings.TrimSpace(raw.Server.WIFEnv)
	}
	if meta.IsDefined("server", "token_env") {
		cfg.Server.TokenEnv = strings.TrimSpace(raw.Server.TokenEnv)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if _, ok := cfg.Networks[cfg.DefaultChain]; !ok {
		return fmt.Errorf("default_chain %q has no network entry", cfg.DefaultChain)
	}
	if cfg.Signing.ExpiryWindow <= 0 {
		return fmt.Errorf("expiry_window must be positive")
	}
	if cfg.Signing.MaxSignAttempts <= 0 {
		return fmt.Errorf("max_sign_attempts must be positive")
	}
	for chain, n := range cfg.Networks {
		if err := ValidateNetwork(n); err != nil {
			return fmt.Errorf("network %s invalid: %w", chain, err)
		}
	}
	return nil
}

func ValidateNetwork(n Network) error {
	if _, err := ParseChainID(n.ChainID); err != nil {
		return err
	}
	if strings.TrimSpace(n.AddressPrefix) == "" {
		return fmt.Errorf("address_prefix is required")
	}
	seen := map[string]struct{}{}
	for _, a := range n.Assets() {
		if a.Symbol == "" || a.NAI == "" {
			return fmt.Errorf("asset symbol and nai are required")
		}
		if len(a.Encoded()) > 7 {
			return fmt.Errorf("asset %s: wire symbol longer than 7 bytes", a.Symbol)
		}
		if a.Precision > 18 {
			return fmt.Errorf("asset %s: precision %d out of range", a.Symbol, a.Precision)
		}
		if _, dup := seen[a.Symbol]; dup {
			return fmt.Errorf("asset %s registered twice", a.Symbol)
		}
		seen[a.Symbol] = struct{}{}
	}
	return nil
}

// ParseChainID decodes a 64 hex-char chain id.
func ParseChainID(s string) ([32]byte, error) {
	var id [32]byte
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) != 64 {
		return id, fmt.Errorf("chain id must be 64 hex chars, got %d", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("chain id: %w", err)
	}
	copy(id[:], b)
	return id, nil
}
