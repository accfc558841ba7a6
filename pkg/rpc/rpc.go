package rpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"tokenview/pkg/config"
	"tokenview/pkg/models"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	ErrInvalidAddress     = errors.New("invalid token address")
	ErrNotERC20           = errors.New("address does not implement ERC-20 metadata")
	// ErrIncompleteIdentity comes with the partial identity that was read.
	ErrIncompleteIdentity = errors.New("token metadata is missing a name or symbol")
	ErrNoRPC              = errors.New("chain has no RPC URLs")
)

var CallTimeout = 10 * time.Second

var (
	nameSelector     = []byte{0x06, 0xfd, 0xde, 0x03}
	symbolSelector   = []byte{0x95, 0xd8, 0x9b, 0x41}
	decimalsSelector = []byte{0x31, 0x3c, 0xe5, 0x67}
)

// FetchIdentity resolves the ERC-20 name, symbol and decimals of address,
// trying each RPC of chain in order until one answers.
func FetchIdentity(ctx context.Context, chain config.ChainConfig, address string) (models.Identity, error) {
	if !common.IsHexAddress(address) {
		return models.Identity{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	if len(chain.RPCURLs) == 0 {
		return models.Identity{}, ErrNoRPC
	}
	target := common.HexToAddress(address)

	var lastErr error
	for _, rpcURL := range chain.RPCURLs {
		id, err := fetchIdentityFrom(ctx, rpcURL, target)
		if err == nil {
			id.ChainID = chain.ChainID
			return id, nil
		}
		if errors.Is(err, ErrIncompleteIdentity) {
			id.ChainID = chain.ChainID
			return id, err
		}
		if errors.Is(err, ErrNotERC20) || ctx.Err() != nil {
			return models.Identity{}, err
		}
		lastErr = fmt.Errorf("%s: %w", rpcURL, err)
	}
	return models.Identity{}, lastErr
}

func fetchIdentityFrom(ctx context.Context, rpcURL string, target common.Address) (models.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, CallTimeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return models.Identity{}, err
	}
	defer client.Close()

	call := func(selector []byte) ([]byte, error) {
		return client.CallContract(ctx, ethereum.CallMsg{To: &target, Data: selector}, nil)
	}

	resName, err := call(nameSelector)
	if err != nil {
		return models.Identity{}, err
	}
	resSymbol, err := call(symbolSelector)
	if err != nil {
		return models.Identity{}, err
	}
	id := models.Identity{
		Address: target.Hex(),
		Name:    decodeString(resName),
		Symbol:  decodeString(resSymbol),
	}
	if id.Name == "" && id.Symbol == "" {
		return models.Identity{}, ErrNotERC20
	}

	// decimals is optional in the standard
	if resDecimals, err := call(decimalsSelector); err == nil && len(resDecimals) > 0 {
		id.Decimals = int(new(big.Int).SetBytes(resDecimals).Int64())
	}
	if id.Name == "" || id.Symbol == "" {
		return id, ErrIncompleteIdentity
	}
	return id, nil
}

// decodeString handles both the ABI string encoding and the legacy bytes32
// return used by tokens such as MKR.
func decodeString(res []byte) string {
	var s string
	switch {
	case len(res) == 32:
		s = string(bytes.TrimRight(res, "\x00"))
	case len(res) >= 64:
		length := new(big.Int).SetBytes(res[32:64])
		if length.IsInt64() && length.Int64() > 0 && 64+length.Int64() <= int64(len(res)) {
			s = string(res[64 : 64+length.Int64()])
		}
	}
	if !utf8.ValidString(s) {
		return ""
	}
	return strings.TrimSpace(s)
}

// CheckRPC dials rpcURL and returns its chain id and round-trip latency.
func CheckRPC(ctx context.Context, rpcURL string) (int64, time.Duration, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, CallTimeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return 0, 0, err
	}
	defer client.Close()

	id, err := client.ChainID(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get chain id: %w", err)
	}
	return id.Int64(), time.Since(start), nil
}
