package service

import (
	"context"

	"discord-lootbox-bot/internal/model"
	"discord-lootbox-bot/internal/pkg/dedup"
	"discord-lootbox-bot/internal/reward"
)

// RewardResult describes a resolved lootbox draw for the reply layer.
// NotifyOperator marks draws of the rare tiers that should mention both the
// user and the configured operator.
type RewardResult struct {
	Tier           string
	Coins          int64
	NewBalance     int64
	NotifyOperator bool
}

// RewardService resolves lootbox triggers: it deduplicates the triggering
// message, picks the weight table by privilege state, draws a tier and
// applies the tier's coin credit and stat counter.
type RewardService struct {
	ledger     *Ledger
	privilege  *PrivilegeService
	drawer     *reward.Drawer
	guard      *dedup.Set
	standard   reward.Table
	privileged reward.Table
}

// NewRewardService creates a RewardService.
func NewRewardService(
	ledger *Ledger,
	privilege *PrivilegeService,
	drawer *reward.Drawer,
	guard *dedup.Set,
	standard, privileged reward.Table,
) *RewardService {
	return &RewardService{
		ledger:     ledger,
		privilege:  privilege,
		drawer:     drawer,
		guard:      guard,
		standard:   standard,
		privileged: privileged,
	}
}

// Resolve handles one reward-draw trigger identified by its message ID.
// A duplicate ID is a silent no-op: both result and error are nil. The
// gateway redelivering a message or replaying it on an edit therefore
// credits a user at most once per logical action.
func (s *RewardService) Resolve(ctx context.Context, userID, messageID string) (*RewardResult, error) {
	if !s.guard.Remember(messageID) {
		return nil, nil
	}

	table := s.standard
	if s.privilege.HasPrivilege(ctx, userID) {
		table = s.privileged
	}

	outcome, err := s.drawer.Draw(table)
	if err != nil {
		return nil, err
	}

	s.ledger.IncrementStat(ctx, userID, model.StatTier(outcome.Tier))

	balance := s.ledger.Balance(ctx, userID)
	if outcome.Coins > 0 {
		balance, err = s.ledger.Credit(ctx, userID, outcome.Coins, model.TxTypeLootbox)
		if err != nil {
			return nil, err
		}
	}

	return &RewardResult{
		Tier:           outcome.Tier,
		Coins:          outcome.Coins,
		NewBalance:     balance,
		NotifyOperator: outcome.Notify,
	}, nil
}
