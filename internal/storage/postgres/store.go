package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"positionScope/internal/model"
)

// Store provides Postgres persistence for position snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutSnapshotBatch inserts or updates a batch of position snapshots.
func (s *Store) PutSnapshotBatch(ctx context.Context, snapshots []model.PositionSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		batch.Queue(`
			INSERT INTO position_snapshots (
				chain_id, chain, token_id, pool_address,
				token0_address, token0_symbol, token0_decimals,
				token1_address, token1_symbol, token1_decimals,
				fee_tier, tick_lower, tick_upper, liquidity,
				amount0, amount1, fees0, fees1,
				price0_usd, price1_usd, total_usd,
				captured_at, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,now(),now())
			ON CONFLICT (chain_id, token_id, captured_at)
			DO UPDATE SET
				chain = EXCLUDED.chain,
				pool_address = EXCLUDED.pool_address,
				token0_address = EXCLUDED.token0_address,
				token0_symbol = EXCLUDED.token0_symbol,
				token0_decimals = EXCLUDED.token0_decimals,
				token1_address = EXCLUDED.token1_address,
				token1_symbol = EXCLUDED.token1_symbol,
				token1_decimals = EXCLUDED.token1_decimals,
				fee_tier = EXCLUDED.fee_tier,
				tick_lower = EXCLUDED.tick_lower,
				tick_upper = EXCLUDED.tick_upper,
				liquidity = EXCLUDED.liquidity,
				amount0 = EXCLUDED.amount0,
				amount1 = EXCLUDED.amount1,
				fees0 = EXCLUDED.fees0,
				fees1 = EXCLUDED.fees1,
				price0_usd = EXCLUDED.price0_usd,
				price1_usd = EXCLUDED.price1_usd,
				total_usd = EXCLUDED.total_usd,
				updated_at = now()
		`,
			int64(snap.ChainID),
			snap.Chain,
			snap.TokenID,
			snap.PoolAddress,
			snap.Token0.Address,
			snap.Token0.Symbol,
			int16(snap.Token0.Decimals),
			snap.Token1.Address,
			snap.Token1.Symbol,
			int16(snap.Token1.Decimals),
			int64(snap.FeeTier),
			snap.TickLower,
			snap.TickUpper,
			snap.Liquidity,
			snap.Amount0,
			snap.Amount1,
			snap.Fees0,
			snap.Fees1,
			snap.Price0USD,
			snap.Price1USD,
			snap.TotalUSD,
			snap.CapturedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range snapshots {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LastCaptureTime returns the newest captured_at stored for a chain.
func (s *Store) LastCaptureTime(ctx context.Context, chainID uint64) (time.Time, bool, error) {
	var ts *time.Time
	row := s.pool.QueryRow(ctx, `SELECT max(captured_at) FROM position_snapshots WHERE chain_id=$1`, int64(chainID))
	if err := row.Scan(&ts); err != nil {
		return time.Time{}, false, err
	}
	if ts == nil {
		return time.Time{}, false, nil
	}
	return *ts, true, nil
}
