package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const ConfigFileName = ".tokenview.json"

const (
	DefaultDataAPIURL             = "https://interface.gateway.uniswap.org/v1/graphql"
	DefaultIdentityTimeoutSeconds = 15
	DefaultRefreshIntervalSeconds = 60
	DefaultLocale                 = "en-US"
)

var ErrNoChains = errors.New("configuration must have at least one chain")

// TokenConfig is a token the user added to the local list.
type TokenConfig struct {
	Address  string `json:"address" toml:"address"`
	Symbol   string `json:"symbol,omitempty" toml:"symbol,omitempty"`
	Name     string `json:"name,omitempty" toml:"name,omitempty"`
	Decimals int    `json:"decimals,omitempty" toml:"decimals,omitempty"`
}

// ChainConfig holds configuration for a specific EVM chain.
type ChainConfig struct {
	Name        string        `json:"name" toml:"name"`
	RPCURLs     []string      `json:"rpc_urls" toml:"rpc_urls"`
	ChainID     int64         `json:"chain_id,omitempty" toml:"chain_id,omitempty"`
	ExplorerURL string        `json:"explorer_url,omitempty" toml:"explorer_url,omitempty"`
	Tokens      []TokenConfig `json:"tokens" toml:"tokens"`
}

// UserToken returns the user-added token entry for address, if any.
func (c ChainConfig) UserToken(address string) (TokenConfig, bool) {
	for _, t := range c.Tokens {
		if strings.EqualFold(strings.TrimSpace(t.Address), strings.TrimSpace(address)) {
			return t, true
		}
	}
	return TokenConfig{}, false
}

// GlobalConfig holds application-wide settings.
type GlobalConfig struct {
	DataAPIURL             string            `json:"data_api_url"`
	FavoritesDB            string            `json:"favorites_db,omitempty"`
	IdentityTimeoutSeconds int               `json:"identity_timeout_seconds"`
	RefreshIntervalSeconds int               `json:"refresh_interval_seconds"`
	Locale                 string            `json:"locale"`
	SafeTokens             []string          `json:"safe_tokens,omitempty"`
	BlockedTokens          []string          `json:"blocked_tokens,omitempty"`
	// Classifications maps token addresses to explicit safety labels.
	Classifications        map[string]string `json:"classifications,omitempty"`
}

// Config is the whole configuration file.
type Config struct {
	Chains      []ChainConfig
	SelectedIdx int
	Global      GlobalConfig
}

// ActiveChain returns the selected chain. The config must have at least one chain.
func (c Config) ActiveChain() ChainConfig {
	if c.SelectedIdx < 0 || c.SelectedIdx >= len(c.Chains) {
		return c.Chains[0]
	}
	return c.Chains[c.SelectedIdx]
}

func defaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		DataAPIURL:             DefaultDataAPIURL,
		IdentityTimeoutSeconds: DefaultIdentityTimeoutSeconds,
		RefreshIntervalSeconds: DefaultRefreshIntervalSeconds,
		Locale:                 DefaultLocale,
	}
}

// DefaultConfig is used when no configuration file exists yet.
func DefaultConfig() Config {
	return Config{
		Chains: []ChainConfig{{
			Name:        "Ethereum",
			RPCURLs:     []string{"https://ethereum-rpc.publicnode.com"},
			ChainID:     1,
			ExplorerURL: "https://etherscan.io",
		}},
		Global: defaultGlobalConfig(),
	}
}

type fileConfig struct {
	Chains                 []ChainConfig     `json:"chains" toml:"chains"`
	SelectedChain          string            `json:"selected_chain" toml:"selected_chain"`
	DataAPIURL             *string           `json:"data_api_url" toml:"data_api_url"`
	FavoritesDB            *string           `json:"favorites_db" toml:"favorites_db"`
	IdentityTimeoutSeconds *int              `json:"identity_timeout_seconds" toml:"identity_timeout_seconds"`
	RefreshIntervalSeconds *int              `json:"refresh_interval_seconds" toml:"refresh_interval_seconds"`
	Locale                 *string           `json:"locale" toml:"locale"`
	SafeTokens             []string          `json:"safe_tokens" toml:"safe_tokens"`
	BlockedTokens          []string          `json:"blocked_tokens" toml:"blocked_tokens"`
	Classifications        map[string]string `json:"classifications,omitempty" toml:"classifications,omitempty"`
}

func GetConfigPath(customPath string) (string, error) {
	if customPath != "" {
		return customPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func LoadConfigFromFile(path string) (Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	if isTOML(path) {
		return LoadTOMLConfig(f)
	}
	return LoadConfig(f)
}

// LoadConfig decodes a JSON configuration.
func LoadConfig(r io.Reader) (Config, error) {
	var fc fileConfig
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return Config{}, err
	}
	return fc.resolve(), nil
}

// LoadTOMLConfig decodes a TOML configuration with the same keys as the JSON form.
func LoadTOMLConfig(r io.Reader) (Config, error) {
	var fc fileConfig
	if _, err := toml.NewDecoder(r).Decode(&fc); err != nil {
		return Config{}, err
	}
	return fc.resolve(), nil
}

func (fc fileConfig) resolve() Config {
	selectedIdx := 0
	for i, c := range fc.Chains {
		if c.Name == fc.SelectedChain {
			selectedIdx = i
			break
		}
	}

	global := defaultGlobalConfig()
	if fc.DataAPIURL != nil {
		global.DataAPIURL = *fc.DataAPIURL
	}
	if fc.FavoritesDB != nil {
		global.FavoritesDB = *fc.FavoritesDB
	}
	if fc.IdentityTimeoutSeconds != nil {
		global.IdentityTimeoutSeconds = *fc.IdentityTimeoutSeconds
	}
	if fc.RefreshIntervalSeconds != nil {
		global.RefreshIntervalSeconds = *fc.RefreshIntervalSeconds
	}
	if fc.Locale != nil {
		global.Locale = *fc.Locale
	}
	global.SafeTokens = fc.SafeTokens
	global.BlockedTokens = fc.BlockedTokens
	global.Classifications = fc.Classifications

	return Config{Chains: fc.Chains, SelectedIdx: selectedIdx, Global: global}
}

// Validate checks the structural requirements SaveConfig enforces.
func (c Config) Validate() error {
	if len(c.Chains) == 0 {
		return fmt.Errorf("validation failed: %w", ErrNoChains)
	}
	for i, ch := range c.Chains {
		if strings.TrimSpace(ch.Name) == "" {
			return fmt.Errorf("validation failed: chain at index %d has no name", i)
		}
		if len(ch.RPCURLs) == 0 {
			return fmt.Errorf("validation failed: chain %s has no RPC URLs", ch.Name)
		}
	}
	return nil
}

func SaveConfig(cfg Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	selectedName := ""
	if cfg.SelectedIdx >= 0 && cfg.SelectedIdx < len(cfg.Chains) {
		selectedName = cfg.Chains[cfg.SelectedIdx].Name
	}
	g := cfg.Global
	fc := fileConfig{
		Chains:                 cfg.Chains,
		SelectedChain:          selectedName,
		DataAPIURL:             &g.DataAPIURL,
		FavoritesDB:            &g.FavoritesDB,
		IdentityTimeoutSeconds: &g.IdentityTimeoutSeconds,
		RefreshIntervalSeconds: &g.RefreshIntervalSeconds,
		Locale:                 &g.Locale,
		SafeTokens:             g.SafeTokens,
		BlockedTokens:          g.BlockedTokens,
		Classifications:        g.Classifications,
	}

	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(fc); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = json.MarshalIndent(fc, "", "  ")
		if err != nil {
			return err
		}
	}

	if len(data) == 0 {
		return fmt.Errorf("validation failed: encoded configuration is empty")
	}

	// Create a backup of the existing file
	if _, err := os.Stat(path); err == nil {
		backupPath := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102-150405"))
		input, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read existing config for backup: %w", err)
		}
		if err := os.WriteFile(backupPath, input, 0644); err != nil {
			return fmt.Errorf("failed to write backup config: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func RestoreLastBackup(configPath string) error {
	matches, err := filepath.Glob(configPath + ".*.bak")
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no backup files found")
	}
	sort.Strings(matches)
	lastBackup := matches[len(matches)-1]

	data, err := os.ReadFile(lastBackup)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}
