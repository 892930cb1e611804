package keys

import (
	"errors"
	"fmt"

	"github.com/0xPolygon/polygon-xt/command/config"
	"github.com/0xPolygon/polygon-xt/command/helper"
	"github.com/0xPolygon/polygon-xt/crypto"
	"github.com/0xPolygon/polygon-xt/secrets"
)

const (
	keyTypeFlag = "type"
	forceFlag   = "force"
)

var errKeyExists = errors.New("signer key already exists, use --force to replace it")

type keysParams struct {
	client  helper.ClientParams
	keyType string
	force   bool

	config *config.Config
}

func (p *keysParams) validateFlags() error {
	cfg, err := p.client.LoadConfig()
	if err != nil {
		return err
	}

	if p.keyType == "" {
		p.keyType = cfg.KeyType
	}

	if _, err := crypto.ParseKeyType(p.keyType); err != nil {
		return err
	}

	p.config = cfg

	return nil
}

func (p *keysParams) secretsManager() (secrets.SecretsManager, error) {
	return helper.SecretsManager(p.config, helper.NewLogger(p.config.LogLevel, p.config.JSONLogFormat))
}

// generateKey creates the signer key. An existing key is only replaced with force.
func (p *keysParams) generateKey() (*KeyResult, error) {
	manager, err := p.secretsManager()
	if err != nil {
		return nil, err
	}

	if manager.HasSecret(secrets.SignerKey) {
		if !p.force {
			return nil, errKeyExists
		}

		if err := manager.RemoveSecret(secrets.SignerKey); err != nil {
			return nil, fmt.Errorf("failed to remove the old key: %w", err)
		}
	}

	// the type file is meaningless without its key
	if manager.HasSecret(secrets.SignerKeyType) {
		if err := manager.RemoveSecret(secrets.SignerKeyType); err != nil {
			return nil, fmt.Errorf("failed to remove the old key type: %w", err)
		}
	}

	key, err := crypto.GenerateAndStoreSignerKey(manager, crypto.KeyType(p.keyType))
	if err != nil {
		return nil, err
	}

	return p.newKeyResult(key, true), nil
}

func (p *keysParams) readKey() (*KeyResult, error) {
	manager, err := p.secretsManager()
	if err != nil {
		return nil, err
	}

	key, err := crypto.ReadSignerKey(manager, crypto.KeyType(p.keyType))
	if err != nil {
		return nil, err
	}

	return p.newKeyResult(key, false), nil
}

func (p *keysParams) newKeyResult(key crypto.Key, generated bool) *KeyResult {
	account := key.Account()

	return &KeyResult{
		Scheme:    key.Scheme().String(),
		AccountID: account.Hex(),
		Address:   account.SS58(uint16(p.config.SS58Prefix)),
		DataDir:   p.config.DataDir,
		Generated: generated,
	}
}
