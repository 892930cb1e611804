package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config defines the client configuration params.
// Integers are plain ints since the hcl decoder does not fill unsigned fields.
type Config struct {
	Endpoint      string            `json:"endpoint" yaml:"endpoint" hcl:"endpoint"`
	LogLevel      string            `json:"log_level" yaml:"log_level" hcl:"log_level"`
	JSONLogFormat bool              `json:"json_log_format" yaml:"json_log_format" hcl:"json_log_format"`
	DataDir       string            `json:"data_dir" yaml:"data_dir" hcl:"data_dir"`
	KeyType       string            `json:"key_type" yaml:"key_type" hcl:"key_type"`
	SS58Prefix    int               `json:"ss58_prefix" yaml:"ss58_prefix" hcl:"ss58_prefix"`
	EraPeriod     int               `json:"era_period" yaml:"era_period" hcl:"era_period"`
	Tip           string            `json:"tip" yaml:"tip" hcl:"tip"`
	AddressFormat string            `json:"address_format" yaml:"address_format" hcl:"address_format"`
	DialRetries   int               `json:"dial_retries" yaml:"dial_retries" hcl:"dial_retries"`
	CallTimeout   time.Duration     `json:"call_timeout" yaml:"call_timeout" hcl:"call_timeout"`
	WaitTimeout   time.Duration     `json:"wait_timeout" yaml:"wait_timeout" hcl:"wait_timeout"`
	Storage       *Storage          `json:"storage" yaml:"storage" hcl:"storage"`
	Subkey        *Subkey           `json:"subkey" yaml:"subkey" hcl:"subkey"`
	Telemetry     *Telemetry        `json:"telemetry" yaml:"telemetry" hcl:"telemetry"`
	TypeAliases   map[string]string `json:"type_aliases" yaml:"type_aliases" hcl:"type_aliases"`
}

// Storage selects the backend holding the metadata cache and the journal
type Storage struct {
	// Backend is one of memory, leveldb or boltdb
	Backend string `json:"backend" yaml:"backend" hcl:"backend"`
	// Path defaults to a directory inside the data dir
	Path string `json:"path" yaml:"path" hcl:"path"`
}

// Subkey delegates signing to the subkey binary instead of the local key
type Subkey struct {
	Binary  string `json:"binary" yaml:"binary" hcl:"binary"`
	SURI    string `json:"suri" yaml:"suri" hcl:"suri"`
	Scheme  string `json:"scheme" yaml:"scheme" hcl:"scheme"`
	Account string `json:"account" yaml:"account" hcl:"account"`
}

// Telemetry holds the config details for metric services.
type Telemetry struct {
	PrometheusAddr string `json:"prometheus_addr" yaml:"prometheus_addr" hcl:"prometheus_addr"`
}

const (
	DefaultEndpoint    = "ws://127.0.0.1:9944"
	DefaultDataDir     = "./xt-data"
	DefaultSS58Prefix  = 42
	DefaultEraPeriod   = 64
	DefaultCallTimeout = 30 * time.Second
	DefaultWaitTimeout = 2 * time.Minute

	maxSS58Prefix = 16383

	StorageMemory  = "memory"
	StorageLevelDB = "leveldb"
	StorageBoltDB  = "boltdb"
)

// DefaultConfig returns the default client configuration
func DefaultConfig() *Config {
	return &Config{
		Endpoint:      DefaultEndpoint,
		LogLevel:      "INFO",
		DataDir:       DefaultDataDir,
		KeyType:       "ed25519",
		SS58Prefix:    DefaultSS58Prefix,
		EraPeriod:     DefaultEraPeriod,
		Tip:           "0",
		AddressFormat: "multiaddress",
		CallTimeout:   DefaultCallTimeout,
		WaitTimeout:   DefaultWaitTimeout,
		Storage: &Storage{
			Backend: StorageLevelDB,
		},
		Telemetry:   &Telemetry{},
		TypeAliases: map[string]string{},
	}
}

// ReadConfigFile reads the config file from the specified path, builds a Config object
// and returns it.
//
// Supported file types: .json, .hcl, .yaml, .yml
func ReadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var unmarshalFunc func([]byte, interface{}) error

	switch {
	case strings.HasSuffix(path, ".hcl"):
		unmarshalFunc = hcl.Unmarshal
	case strings.HasSuffix(path, ".json"):
		unmarshalFunc = json.Unmarshal
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		unmarshalFunc = yaml.Unmarshal
	default:
		return nil, fmt.Errorf("suffix of %s is neither hcl, json, yaml nor yml", path)
	}

	config := DefaultConfig()

	if err := unmarshalFunc(data, config); err != nil {
		return nil, err
	}

	if config.Storage == nil {
		config.Storage = &Storage{}
	}

	if config.Storage.Backend == "" {
		config.Storage.Backend = StorageLevelDB
	}

	if config.Telemetry == nil {
		config.Telemetry = &Telemetry{}
	}

	return config, nil
}

// Validate checks the values that cannot be checked while decoding
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Endpoint, "ws://") && !strings.HasPrefix(c.Endpoint, "wss://") {
		return fmt.Errorf("endpoint %q is not a websocket url", c.Endpoint)
	}

	if c.SS58Prefix < 0 || c.SS58Prefix > maxSS58Prefix {
		return fmt.Errorf("ss58 prefix %d out of range [0, %d]", c.SS58Prefix, maxSS58Prefix)
	}

	if c.EraPeriod < 0 || c.DialRetries < 0 {
		return fmt.Errorf("era period and dial retries must not be negative")
	}

	switch c.Storage.Backend {
	case StorageMemory, StorageLevelDB, StorageBoltDB:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Subkey != nil && c.Subkey.SURI == "" {
		return fmt.Errorf("subkey signer needs a secret uri")
	}

	return nil
}
