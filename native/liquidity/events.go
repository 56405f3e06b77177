package liquidity

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"nexafx/core/types"
)

// Event type identifiers emitted by the liquidity engine.
const (
	EventTypePoolCreated        = "liquidity.pool.created"
	EventTypeAdded              = "liquidity.added"
	EventTypeRemoved            = "liquidity.removed"
	EventTypeReserved           = "liquidity.reserved"
	EventTypeLowLiquidity       = "liquidity.low"
	EventTypeRewardsDistributed = "liquidity.rewards.distributed"
	EventTypeRewardsClaimed     = "liquidity.rewards.claimed"
)

// NewPoolCreatedEvent reports a new pool.
func NewPoolCreatedEvent(pool *Pool) *types.Event {
	return &types.Event{Type: EventTypePoolCreated, Attributes: map[string]string{
		"currency":     pool.Currency,
		"minThreshold": pool.MinThreshold.String(),
	}}
}

// NewLiquidityAddedEvent reports a stake.
func NewLiquidityAddedEvent(provider [20]byte, currency string, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeAdded, Attributes: map[string]string{
		"provider": hex.EncodeToString(provider[:]),
		"currency": currency,
		"amount":   amount.String(),
	}}
}

// NewLiquidityRemovedEvent reports a withdrawal.
func NewLiquidityRemovedEvent(provider [20]byte, currency string, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeRemoved, Attributes: map[string]string{
		"provider": hex.EncodeToString(provider[:]),
		"currency": currency,
		"amount":   amount.String(),
	}}
}

// NewReservedEvent reports depth earmarked for a conversion.
func NewReservedEvent(pool *Pool, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeReserved, Attributes: map[string]string{
		"currency":       pool.Currency,
		"amount":         amount.String(),
		"utilizationBps": strconv.FormatUint(uint64(pool.UtilizationBps()), 10),
	}}
}

// NewLowLiquidityEvent warns that available depth fell under the threshold.
func NewLowLiquidityEvent(pool *Pool) *types.Event {
	return &types.Event{Type: EventTypeLowLiquidity, Attributes: map[string]string{
		"currency":     pool.Currency,
		"available":    pool.Available.String(),
		"minThreshold": pool.MinThreshold.String(),
	}}
}

// NewRewardsDistributedEvent reports a reward allocation.
func NewRewardsDistributedEvent(currency string, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeRewardsDistributed, Attributes: map[string]string{
		"currency": currency,
		"amount":   amount.String(),
	}}
}

// NewRewardsClaimedEvent reports a reward payout.
func NewRewardsClaimedEvent(provider [20]byte, currency string, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeRewardsClaimed, Attributes: map[string]string{
		"provider": hex.EncodeToString(provider[:]),
		"currency": currency,
		"amount":   amount.String(),
	}}
}
