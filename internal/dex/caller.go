package dex

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Caller is the contract read surface the typed callers need. It is
// satisfied by chain.Client.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// TimeoutCaller bounds every contract call with a deadline.
type TimeoutCaller struct {
	inner   Caller
	timeout time.Duration
}

func NewTimeoutCaller(inner Caller, timeout time.Duration) *TimeoutCaller {
	return &TimeoutCaller{inner: inner, timeout: timeout}
}

func (c *TimeoutCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.inner.CallContract(ctx, msg, blockNumber)
}

// RetryCaller retries failed contract calls with exponential backoff.
type RetryCaller struct {
	inner      Caller
	maxRetries int
	baseDelay  time.Duration
}

func NewRetryCaller(inner Caller, maxRetries int, baseDelay time.Duration) *RetryCaller {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}
	return &RetryCaller{inner: inner, maxRetries: maxRetries, baseDelay: baseDelay}
}

func (c *RetryCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	delay := c.baseDelay
	for attempt := 0; ; attempt++ {
		resp, err := c.inner.CallContract(ctx, msg, blockNumber)
		if err == nil {
			return resp, nil
		}
		if attempt >= c.maxRetries {
			return nil, err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}

func callMethod(ctx context.Context, caller Caller, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}
