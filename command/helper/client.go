package helper

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/0xPolygon/polygon-xt/command"
	"github.com/0xPolygon/polygon-xt/command/config"
	"github.com/0xPolygon/polygon-xt/crypto"
	"github.com/0xPolygon/polygon-xt/helper/common"
	"github.com/0xPolygon/polygon-xt/jsonrpc"
	"github.com/0xPolygon/polygon-xt/registry"
	"github.com/0xPolygon/polygon-xt/secrets"
	"github.com/0xPolygon/polygon-xt/secrets/local"
	"github.com/0xPolygon/polygon-xt/storage"
	"github.com/0xPolygon/polygon-xt/storage/boltdb"
	"github.com/0xPolygon/polygon-xt/storage/leveldb"
	"github.com/0xPolygon/polygon-xt/storage/memory"
	"github.com/0xPolygon/polygon-xt/txrelayer"
	"github.com/0xPolygon/polygon-xt/types"
	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
)

const (
	storageFolder = "db"
	retryBackoff  = 500 * time.Millisecond
)

var storageBackends = map[string]storage.Factory{
	config.StorageMemory:  memory.Factory,
	config.StorageLevelDB: leveldb.Factory,
	config.StorageBoltDB:  boltdb.Factory,
}

// ClientParams are the flags shared by every command talking to a node
type ClientParams struct {
	ConfigPath string
	Endpoint   string
	DataDir    string
	LogLevel   string
}

// RegisterClientFlags registers the connection flags on cmd
func (p *ClientParams) RegisterClientFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&p.ConfigPath,
		command.ConfigFlag,
		"",
		"the path to the client config file (hcl, json or yaml)",
	)

	cmd.Flags().StringVar(
		&p.Endpoint,
		command.EndpointFlag,
		"",
		fmt.Sprintf("the websocket endpoint of the node (default %s)", config.DefaultEndpoint),
	)

	cmd.Flags().StringVar(
		&p.DataDir,
		command.DataDirFlag,
		"",
		fmt.Sprintf("the directory holding keys and the local database (default %s)", config.DefaultDataDir),
	)

	cmd.Flags().StringVar(
		&p.LogLevel,
		command.LogLevelFlag,
		"",
		"the log level for console output",
	)
}

// LoadConfig reads the config file, if any, and applies the flag overrides
func (p *ClientParams) LoadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()

	if p.ConfigPath != "" {
		var err error

		if cfg, err = config.ReadConfigFile(p.ConfigPath); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if p.Endpoint != "" {
		cfg.Endpoint = p.Endpoint
	}

	if p.DataDir != "" {
		cfg.DataDir = p.DataDir
	}

	if p.LogLevel != "" {
		cfg.LogLevel = p.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// OpenStorage opens the configured storage backend inside the data dir
func OpenStorage(cfg *config.Config, logger hclog.Logger) (storage.Storage, error) {
	factory, ok := storageBackends[cfg.Storage.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	path := cfg.Storage.Path
	if path == "" {
		path = filepath.Join(cfg.DataDir, storageFolder)
	}

	if cfg.Storage.Backend != config.StorageMemory {
		if err := common.SetupDataDir(path, nil); err != nil {
			return nil, err
		}
	}

	return factory(map[string]interface{}{"path": path}, logger)
}

// SecretsManager opens the local key store inside the data dir
func SecretsManager(cfg *config.Config, logger hclog.Logger) (secrets.SecretsManager, error) {
	return local.SecretsManagerFactory(&secrets.SecretsManagerParams{
		Logger: logger,
		Extra: map[string]interface{}{
			secrets.Path: cfg.DataDir,
		},
	})
}

// NewRegistry extends the default registry with the configured type aliases
func NewRegistry(cfg *config.Config) (*registry.Registry, error) {
	builder := registry.DefaultBuilder()

	for name, target := range cfg.TypeAliases {
		builder.RegisterAlias(registry.TypeName(name), registry.TypeName(target))
	}

	return builder.Build()
}

// NewSigner returns the configured signer and the account it signs for.
// The subkey signer takes precedence over the local key.
func NewSigner(cfg *config.Config, logger hclog.Logger) (crypto.Signer, types.AccountID, error) {
	if cfg.Subkey != nil {
		scheme, err := types.ParseSignatureScheme(cfg.Subkey.Scheme)
		if err != nil {
			return nil, types.AccountID{}, err
		}

		account, err := types.ParseAccountID(cfg.Subkey.Account)
		if err != nil {
			return nil, types.AccountID{}, fmt.Errorf("invalid subkey account: %w", err)
		}

		return crypto.NewSubkeySigner(logger, cfg.Subkey.Binary, cfg.Subkey.SURI, scheme, account), account, nil
	}

	manager, err := SecretsManager(cfg, logger)
	if err != nil {
		return nil, types.AccountID{}, err
	}

	keyType, err := crypto.ParseKeyType(cfg.KeyType)
	if err != nil {
		return nil, types.AccountID{}, err
	}

	key, err := crypto.ReadSignerKey(manager, keyType)
	if err != nil {
		if errors.Is(err, secrets.ErrSecretNotFound) {
			return nil, types.AccountID{}, fmt.Errorf("no signer key in %s, run keys generate first: %w", cfg.DataDir, err)
		}

		return nil, types.AccountID{}, err
	}

	return crypto.NewKeyring(key), key.Account(), nil
}

// Session is everything a command needs to talk to a node
type Session struct {
	Config  *config.Config
	Logger  hclog.Logger
	Relayer *txrelayer.TxRelayer
	Storage storage.Storage
	Account types.AccountID

	closeTelemetry func()
}

// NewSession connects to the configured node. withSigner loads the signing key.
func NewSession(p *ClientParams, withSigner bool) (*Session, error) {
	cfg, err := p.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger := NewLogger(cfg.LogLevel, cfg.JSONLogFormat)

	closeTelemetry, err := SetupTelemetry(cfg.Telemetry.PrometheusAddr, logger)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Config:         cfg,
		Logger:         logger,
		closeTelemetry: closeTelemetry,
	}

	if err := s.open(withSigner); err != nil {
		s.Close()

		return nil, err
	}

	return s, nil
}

func (s *Session) open(withSigner bool) error {
	cfg := s.Config

	reg, err := NewRegistry(cfg)
	if err != nil {
		return err
	}

	tip := new(uint256.Int)

	if cfg.Tip != "" {
		if tip, err = common.ParseAmount(cfg.Tip); err != nil {
			return fmt.Errorf("invalid tip: %w", err)
		}
	}

	format, err := types.ParseAddressFormat(cfg.AddressFormat)
	if err != nil {
		return err
	}

	if s.Storage, err = OpenStorage(cfg, s.Logger); err != nil {
		return err
	}

	opts := []txrelayer.RelayerOption{
		txrelayer.WithAddr(cfg.Endpoint),
		txrelayer.WithLogger(s.Logger),
		txrelayer.WithRegistry(reg),
		txrelayer.WithStorage(s.Storage),
		txrelayer.WithSS58Prefix(uint16(cfg.SS58Prefix)),
		txrelayer.WithEraPeriod(uint64(cfg.EraPeriod)),
		txrelayer.WithTip(tip),
		txrelayer.WithAddressFormat(format),
		txrelayer.WithWaitTimeout(cfg.WaitTimeout),
		txrelayer.WithDialOptions(
			jsonrpc.WithCallTimeout(cfg.CallTimeout),
			jsonrpc.WithDialRetries(uint64(cfg.DialRetries), retryBackoff),
		),
	}

	if withSigner {
		signer, account, err := NewSigner(cfg, s.Logger)
		if err != nil {
			return err
		}

		s.Account = account
		opts = append(opts, txrelayer.WithSigner(signer))
	}

	if s.Relayer, err = txrelayer.NewTxRelayer(opts...); err != nil {
		return fmt.Errorf("failed to initialize tx relayer: %w", err)
	}

	return nil
}

// Close releases the connection, the storage and the telemetry server
func (s *Session) Close() {
	if s.Relayer != nil {
		if err := s.Relayer.Close(); err != nil {
			s.Logger.Debug("failed to close relayer", "err", err)
		}
	}

	if s.Storage != nil {
		if err := s.Storage.Close(); err != nil {
			s.Logger.Error("failed to close storage", "err", err)
		}
	}

	if s.closeTelemetry != nil {
		s.closeTelemetry()
	}
}
