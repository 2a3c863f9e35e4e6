// Package config loads the off-chain loops' YAML configuration (spec §5
// "block_process_concurrency", connection/request timeouts, contract
// addresses, database DSNs, Firestore project) with ${VAR_NAME}
// environment-variable substitution, adapted from the teacher's anchor
// configuration loader.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the off-chain attestor/forwarder
// binaries.
type Config struct {
	Environment string `yaml:"environment"`

	Chain      ChainSettings      `yaml:"chain"`
	Attestor   AttestorSettings   `yaml:"attestor"`
	Forwarder  ForwarderSettings  `yaml:"forwarder"`
	Submitter  SubmitterSettings  `yaml:"submitter"`
	Database   DatabaseSettings   `yaml:"database"`
	Firestore  FirestoreSettings  `yaml:"firestore"`
	Monitoring MonitoringSettings `yaml:"monitoring"`
}

// ChainSettings locates the native chain RPC endpoint and the external
// bridge contract.
type ChainSettings struct {
	NativeRPCURL       string   `yaml:"native_rpc_url"`
	ExternalRPCURL     string   `yaml:"external_rpc_url"`
	BridgeContractAddr string   `yaml:"bridge_contract_address"`
	ExternalChainID    int64    `yaml:"external_chain_id"`
	ConnectTimeout     Duration `yaml:"connect_timeout"`
	RequestTimeout     Duration `yaml:"request_timeout"`
}

// AttestorSettings configures the attestor loop (spec §4.H).
type AttestorSettings struct {
	Enabled               bool     `yaml:"enabled"`
	SigningKeyPath        string   `yaml:"signing_key_path"`
	BlockProcessConcurrency int    `yaml:"block_process_concurrency"`
}

// ForwarderSettings configures the event forwarder (spec §4.I).
type ForwarderSettings struct {
	Enabled                 bool     `yaml:"enabled"`
	SigningKeyPath          string   `yaml:"signing_key_path"`
	BlockProcessConcurrency int      `yaml:"block_process_concurrency"`
	WatermarkRetryCount     int      `yaml:"watermark_retry_count"`
	WatermarkBaseBackoff    Duration `yaml:"watermark_base_backoff"`
}

// SubmitterSettings configures the external-tx submitter (spec §4.J).
type SubmitterSettings struct {
	MaxRetries   int      `yaml:"max_retries"`
	BaseBackoff  Duration `yaml:"base_backoff"`
	MortalityLen uint64   `yaml:"mortality_lifespan_blocks"`
}

// DatabaseSettings configures the off-chain status/watermark store
// (pkg/bridge/status).
type DatabaseSettings struct {
	DSN             string   `yaml:"dsn"`
	MaxOpenConns    int      `yaml:"max_open_conns"`
	MaxIdleConns    int      `yaml:"max_idle_conns"`
	ConnMaxIdleTime Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime"`
}

// FirestoreSettings configures the attestation audit mirror
// (pkg/attest/audit).
type FirestoreSettings struct {
	ProjectID string `yaml:"project_id"`
}

// MonitoringSettings configures the Prometheus metrics endpoint.
type MonitoringSettings struct {
	Enabled     bool   `yaml:"enabled"`
	ListenAddr  string `yaml:"listen_addr"`
	MetricsPath string `yaml:"metrics_path"`
}

// envVarPattern matches ${VAR_NAME} references in a raw config file.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		if v, ok := os.LookupEnv(groups[1]); ok {
			return v
		}
		return match
	})
}

// Load reads and parses the YAML configuration at path, substituting
// ${VAR_NAME} environment variable references before parsing, then applies
// defaults for any zero-valued field spec §5 assigns one.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	expanded := substituteEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Chain.ConnectTimeout == 0 {
		c.Chain.ConnectTimeout = Duration(10 * time.Second)
	}
	if c.Chain.RequestTimeout == 0 {
		c.Chain.RequestTimeout = Duration(60 * time.Second)
	}
	if c.Attestor.BlockProcessConcurrency == 0 {
		c.Attestor.BlockProcessConcurrency = 4
	}
	if c.Forwarder.BlockProcessConcurrency == 0 {
		c.Forwarder.BlockProcessConcurrency = 4
	}
	if c.Forwarder.WatermarkRetryCount == 0 {
		c.Forwarder.WatermarkRetryCount = 3
	}
	if c.Forwarder.WatermarkBaseBackoff == 0 {
		c.Forwarder.WatermarkBaseBackoff = Duration(200 * time.Millisecond)
	}
	if c.Submitter.MaxRetries == 0 {
		c.Submitter.MaxRetries = 3
	}
	if c.Submitter.BaseBackoff == 0 {
		c.Submitter.BaseBackoff = Duration(500 * time.Millisecond)
	}
	if c.Monitoring.ListenAddr == "" {
		c.Monitoring.ListenAddr = ":9090"
	}
	if c.Monitoring.MetricsPath == "" {
		c.Monitoring.MetricsPath = "/metrics"
	}
}
