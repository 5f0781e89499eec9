package dex

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"positionScope/internal/model"
)

// Fallbacks for tokens whose metadata calls fail. Each field degrades
// independently.
const (
	defaultSymbol   = "UNKNOWN"
	defaultName     = "Unknown Token"
	defaultDecimals = uint8(18)
)

// TokenInfoCache caches token metadata by address.
type TokenInfoCache struct {
	mu   sync.RWMutex
	data map[common.Address]model.TokenInfo
}

func NewTokenInfoCache() *TokenInfoCache {
	return &TokenInfoCache{data: make(map[common.Address]model.TokenInfo)}
}

func (c *TokenInfoCache) Get(address common.Address) (model.TokenInfo, bool) {
	c.mu.RLock()
	info, ok := c.data[address]
	c.mu.RUnlock()
	return info, ok
}

func (c *TokenInfoCache) Set(address common.Address, info model.TokenInfo) {
	c.mu.Lock()
	c.data[address] = info
	c.mu.Unlock()
}

// FetchTokenInfo loads ERC20 metadata via contract calls. A failed call
// fills that field's fallback and the rest are still attempted, so the
// result is always usable.
func FetchTokenInfo(ctx context.Context, caller Caller, token common.Address, logger *zap.Logger) model.TokenInfo {
	log := logger
	if log == nil {
		log = zap.NewNop()
	}

	info := model.TokenInfo{
		Address:  token.Hex(),
		Symbol:   defaultSymbol,
		Name:     defaultName,
		Decimals: defaultDecimals,
	}

	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		log.Warn("parse erc20 string abi", zap.Error(err))
		return info
	}
	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		log.Warn("parse erc20 bytes32 abi", zap.Error(err))
		return info
	}

	call := func(method string, parsed abi.ABI) ([]interface{}, error) {
		return callMethod(ctx, caller, token, parsed, method)
	}

	if values, err := call("decimals", stringABI); err == nil {
		if decimals, err := asUint8(values[0]); err == nil {
			info.Decimals = decimals
		}
	} else {
		log.Debug("decimals call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	if values, err := call("symbol", stringABI); err == nil {
		if symbol, ok := values[0].(string); ok {
			info.Symbol = symbol
		}
	} else if values, err := call("symbol", bytes32ABI); err == nil {
		if symbol, ok := bytes32ToString(values[0]); ok {
			info.Symbol = symbol
		}
	} else {
		log.Debug("symbol call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	if values, err := call("name", stringABI); err == nil {
		if name, ok := values[0].(string); ok {
			info.Name = name
		}
	} else if values, err := call("name", bytes32ABI); err == nil {
		if name, ok := bytes32ToString(values[0]); ok {
			info.Name = name
		}
	} else {
		log.Debug("name call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	return info
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}

func int24FromBig(value *big.Int) (int32, error) {
	min := big.NewInt(-1 << 23)
	max := big.NewInt((1 << 23) - 1)
	if value.Cmp(min) < 0 || value.Cmp(max) > 0 {
		return 0, fmt.Errorf("int24 overflow: %s", value.String())
	}
	return int32(value.Int64()), nil
}
