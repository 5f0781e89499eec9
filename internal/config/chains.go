package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ChainPreset carries the identity and contract addresses of one chain.
type ChainPreset struct {
	Name            string
	ChainID         uint64
	PositionManager common.Address
	Factory         common.Address
}

// Presets returns the built-in chain presets. Uniswap v3 deploys the
// position manager and factory at the same addresses on both chains.
func Presets() map[string]ChainPreset {
	manager := common.HexToAddress("0xC36442b4a4522E871399CD717aBDD847Ab11FE88")
	factory := common.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984")
	return map[string]ChainPreset{
		"ethereum": {Name: "ethereum", ChainID: 1, PositionManager: manager, Factory: factory},
		"arbitrum": {Name: "arbitrum", ChainID: 42161, PositionManager: manager, Factory: factory},
	}
}

// ResolveChain returns the preset for cfg.Chain with address overrides
// applied. Chains without a preset need both contract addresses set
// explicitly.
func ResolveChain(cfg Config) (ChainPreset, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Chain))
	preset, ok := Presets()[name]
	if !ok {
		preset = ChainPreset{Name: name}
	}

	if cfg.PositionManager != "" {
		if !common.IsHexAddress(cfg.PositionManager) {
			return ChainPreset{}, fmt.Errorf("invalid position manager address: %s", cfg.PositionManager)
		}
		preset.PositionManager = common.HexToAddress(cfg.PositionManager)
	}
	if cfg.Factory != "" {
		if !common.IsHexAddress(cfg.Factory) {
			return ChainPreset{}, fmt.Errorf("invalid factory address: %s", cfg.Factory)
		}
		preset.Factory = common.HexToAddress(cfg.Factory)
	}

	if preset.PositionManager == (common.Address{}) {
		return ChainPreset{}, fmt.Errorf("no position manager address for chain %q", name)
	}
	if preset.Factory == (common.Address{}) {
		return ChainPreset{}, fmt.Errorf("no factory address for chain %q", name)
	}
	return preset, nil
}
