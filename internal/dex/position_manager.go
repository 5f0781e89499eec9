package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Position is the raw positions(tokenId) tuple of the NFT manager,
// reduced to the fields a valuation needs.
type Position struct {
	Token0      common.Address
	Token1      common.Address
	Fee         uint32
	TickLower   int32
	TickUpper   int32
	Liquidity   *big.Int
	TokensOwed0 *big.Int
	TokensOwed1 *big.Int
}

// PositionManager reads the NonfungiblePositionManager contract.
type PositionManager struct {
	caller  Caller
	address common.Address
}

func NewPositionManager(caller Caller, address common.Address) *PositionManager {
	return &PositionManager{caller: caller, address: address}
}

// BalanceOf returns the number of position NFTs held by the owner.
func (m *PositionManager) BalanceOf(ctx context.Context, owner common.Address) (uint64, error) {
	parsed, err := positionManagerABIInstance()
	if err != nil {
		return 0, fmt.Errorf("parse position manager abi: %w", err)
	}
	values, err := callMethod(ctx, m.caller, m.address, parsed, "balanceOf", owner)
	if err != nil {
		return 0, err
	}
	count, err := asBigInt(values[0])
	if err != nil {
		return 0, fmt.Errorf("balanceOf: %w", err)
	}
	return count.Uint64(), nil
}

// TokenOfOwnerByIndex returns the owner's position NFT id at the index.
func (m *PositionManager) TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index uint64) (*big.Int, error) {
	parsed, err := positionManagerABIInstance()
	if err != nil {
		return nil, fmt.Errorf("parse position manager abi: %w", err)
	}
	values, err := callMethod(ctx, m.caller, m.address, parsed, "tokenOfOwnerByIndex", owner, new(big.Int).SetUint64(index))
	if err != nil {
		return nil, err
	}
	tokenID, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("tokenOfOwnerByIndex: %w", err)
	}
	return tokenID, nil
}

// PositionAt returns the decoded positions(tokenId) tuple.
func (m *PositionManager) PositionAt(ctx context.Context, tokenID *big.Int) (Position, error) {
	parsed, err := positionManagerABIInstance()
	if err != nil {
		return Position{}, fmt.Errorf("parse position manager abi: %w", err)
	}
	values, err := callMethod(ctx, m.caller, m.address, parsed, "positions", tokenID)
	if err != nil {
		return Position{}, err
	}
	if len(values) != 12 {
		return Position{}, fmt.Errorf("positions: unexpected tuple size %d", len(values))
	}

	token0, err := asAddress(values[2])
	if err != nil {
		return Position{}, fmt.Errorf("positions token0: %w", err)
	}
	token1, err := asAddress(values[3])
	if err != nil {
		return Position{}, fmt.Errorf("positions token1: %w", err)
	}
	feeInt, err := asBigInt(values[4])
	if err != nil {
		return Position{}, fmt.Errorf("positions fee: %w", err)
	}
	tickLowerInt, err := asBigInt(values[5])
	if err != nil {
		return Position{}, fmt.Errorf("positions tickLower: %w", err)
	}
	tickLower, err := int24FromBig(tickLowerInt)
	if err != nil {
		return Position{}, fmt.Errorf("positions tickLower: %w", err)
	}
	tickUpperInt, err := asBigInt(values[6])
	if err != nil {
		return Position{}, fmt.Errorf("positions tickUpper: %w", err)
	}
	tickUpper, err := int24FromBig(tickUpperInt)
	if err != nil {
		return Position{}, fmt.Errorf("positions tickUpper: %w", err)
	}
	liquidity, err := asBigInt(values[7])
	if err != nil {
		return Position{}, fmt.Errorf("positions liquidity: %w", err)
	}
	owed0, err := asBigInt(values[10])
	if err != nil {
		return Position{}, fmt.Errorf("positions tokensOwed0: %w", err)
	}
	owed1, err := asBigInt(values[11])
	if err != nil {
		return Position{}, fmt.Errorf("positions tokensOwed1: %w", err)
	}

	return Position{
		Token0:      token0,
		Token1:      token1,
		Fee:         uint32(feeInt.Uint64()),
		TickLower:   tickLower,
		TickUpper:   tickUpper,
		Liquidity:   liquidity,
		TokensOwed0: owed0,
		TokensOwed1: owed1,
	}, nil
}
