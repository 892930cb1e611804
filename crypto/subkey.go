package crypto

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/0xPolygon/polygon-xt/helper/hex"
	"github.com/0xPolygon/polygon-xt/types"
	"github.com/hashicorp/go-hclog"
)

// DefaultSubkeyBinary is looked up in PATH when no binary is configured
const DefaultSubkeyBinary = "subkey"

// SubkeySigner delegates signing to the subkey tool. The secret URI never
// leaves the child process arguments and the payload is passed hex encoded on stdin.
type SubkeySigner struct {
	logger  hclog.Logger
	binary  string
	suri    string
	scheme  types.SignatureScheme
	account types.AccountID
}

var _ Signer = (*SubkeySigner)(nil)

func NewSubkeySigner(
	logger hclog.Logger,
	binary, suri string,
	scheme types.SignatureScheme,
	account types.AccountID,
) *SubkeySigner {
	if binary == "" {
		binary = DefaultSubkeyBinary
	}

	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &SubkeySigner{
		logger:  logger.Named("subkey"),
		binary:  binary,
		suri:    suri,
		scheme:  scheme,
		account: account,
	}
}

func subkeySchemeName(scheme types.SignatureScheme) (string, error) {
	switch scheme {
	case types.SchemeEd25519:
		return "Ed25519", nil
	case types.SchemeSr25519:
		return "Sr25519", nil
	case types.SchemeEcdsa:
		return "Ecdsa", nil
	default:
		return "", fmt.Errorf("subkey does not support %s", scheme)
	}
}

func (s *SubkeySigner) Sign(ctx context.Context, account types.AccountID, payload []byte) (types.MultiSignature, error) {
	if account != s.account {
		return types.MultiSignature{}, fmt.Errorf("%w: %s", ErrUnknownAccount, account)
	}

	schemeName, err := subkeySchemeName(s.scheme)
	if err != nil {
		return types.MultiSignature{}, err
	}

	cmd := exec.CommandContext(ctx, s.binary, "sign", "--hex", "--scheme", schemeName, "--suri", s.suri)
	cmd.Stdin = strings.NewReader(hex.EncodeToString(payload))

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	s.logger.Debug("signing", "account", account, "scheme", s.scheme, "payload", len(payload))

	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.MultiSignature{}, ctxErr
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return types.MultiSignature{}, fmt.Errorf(
				"subkey exited with code %d: %s",
				exitErr.ExitCode(),
				strings.TrimSpace(stderr.String()),
			)
		}

		return types.MultiSignature{}, fmt.Errorf("failed to run subkey: %w", err)
	}

	sig, err := hex.DecodeHex(strings.TrimSpace(string(out)))
	if err != nil {
		return types.MultiSignature{}, fmt.Errorf("subkey returned a malformed signature: %w", err)
	}

	return types.NewMultiSignature(s.scheme, sig)
}
