package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"discord-lootbox-bot/internal/model"
	"discord-lootbox-bot/internal/pkg/timers"
)

// RoleManager mutates the platform role that mirrors the privilege.
// The discordgo-backed implementation lives in the bot package; tests use a
// noop fake.
type RoleManager interface {
	GrantRole(userID string) error
	RevokeRole(userID string) error
}

// NotifyFunc is invoked when a privilege ends (natural expiry or RevokeNow).
type NotifyFunc func(userID string)

// PrivilegeService owns privilege grants and their expiration timers.
// At most one live grant and one armed timer exist per user.
type PrivilegeService struct {
	ledger    *Ledger
	timers    *timers.Registry
	roles     RoleManager
	notify    NotifyFunc
	price     int64
	duration  time.Duration
	markerTTL time.Duration

	// botInitiated marks users whose role the bot itself just removed, so
	// the member-update observer can tell automatic expiry from a manual
	// admin action. Entries auto-clear after markerTTL.
	markerMu     sync.Mutex
	botInitiated map[string]bool
}

// NewPrivilegeService creates a PrivilegeService.
func NewPrivilegeService(
	ledger *Ledger,
	registry *timers.Registry,
	roles RoleManager,
	price int64,
	duration time.Duration,
	markerTTL time.Duration,
) *PrivilegeService {
	return &PrivilegeService{
		ledger:       ledger,
		timers:       registry,
		roles:        roles,
		price:        price,
		duration:     duration,
		markerTTL:    markerTTL,
		botInitiated: make(map[string]bool),
	}
}

// SetNotify installs the callback fired when a grant ends.
func (s *PrivilegeService) SetNotify(fn NotifyFunc) {
	s.notify = fn
}

// Price returns the configured privilege price.
func (s *PrivilegeService) Price() int64 {
	return s.price
}

// HasPrivilege reports whether the user holds a live grant.
func (s *PrivilegeService) HasPrivilege(ctx context.Context, userID string) bool {
	return s.ledger.Account(ctx, userID).HasPrivilege(time.Now())
}

// Purchase validates and charges the privilege price, then grants the
// privilege for the configured duration. Validation happens before the
// debit, so the debit never hits the ledger's zero clamp.
func (s *PrivilegeService) Purchase(ctx context.Context, userID string) (time.Time, error) {
	acc := s.ledger.Account(ctx, userID)
	now := time.Now()

	if acc.HasPrivilege(now) {
		return time.Time{}, ErrAlreadyPrivileged
	}
	if acc.Balance < s.price {
		return time.Time{}, ErrInsufficientBalance
	}

	if _, err := s.ledger.Debit(ctx, userID, s.price, model.TxTypeVipBuy); err != nil {
		return time.Time{}, err
	}

	return s.Grant(ctx, userID, s.duration), nil
}

// Grant records an expiration timestamp, persists it, adds the platform
// role and arms the expiry timer. Arming replaces any prior timer for the
// user. Returns the expiry time.
func (s *PrivilegeService) Grant(ctx context.Context, userID string, duration time.Duration) time.Time {
	expiry := time.Now().Add(duration)

	s.ledger.Update(ctx, userID, func(acc *model.Account) {
		acc.PrivilegeExpiresAt = &expiry
	})

	if err := s.roles.GrantRole(userID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to add privilege role")
	}

	s.timers.Arm(userID, duration, func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		s.expire(ctx, userID)
	})

	log.Info().Str("user_id", userID).Time("expires_at", expiry).Msg("Privilege granted")
	return expiry
}

// RevokeNow immediately strips the privilege through the same path as
// natural expiry.
func (s *PrivilegeService) RevokeNow(ctx context.Context, userID string) {
	s.timers.Cancel(userID)
	s.expire(ctx, userID)
}

// expire ends a grant. The liveness check and the clear run as one ledger
// critical section, so a timer callback racing a manual revocation performs
// the removal once and the loser is a no-op.
func (s *PrivilegeService) expire(ctx context.Context, userID string) {
	cleared := s.ledger.UpdateIf(ctx, userID, func(acc *model.Account) bool {
		if acc.PrivilegeExpiresAt == nil {
			return false
		}
		acc.PrivilegeExpiresAt = nil
		return true
	})
	if !cleared {
		return
	}

	s.markBotInitiated(userID)

	if err := s.roles.RevokeRole(userID); err != nil {
		// Single attempt; the user may have left the platform.
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to remove privilege role")
	}

	log.Info().Str("user_id", userID).Msg("Privilege expired")

	if s.notify != nil {
		s.notify(userID)
	}
}

// HandleExternalRoleRemoval is called by the member-update observer when the
// privilege role disappeared from a member. If the bot itself removed the
// role the marker is present and nothing more is done; otherwise an admin
// revoked it manually, so the timer and persisted grant are cleared without
// re-triggering the bot-initiated notification path.
func (s *PrivilegeService) HandleExternalRoleRemoval(userID string) {
	if s.wasBotInitiated(userID) {
		return
	}

	// Member updates arrive for every role or nickname edit. Only users
	// already known to hold a grant get any teardown; the cache probe never
	// materializes an account for a bystander.
	acc, ok := s.ledger.Cached(userID)
	if !ok || acc.PrivilegeExpiresAt == nil {
		return
	}

	s.timers.Cancel(userID)

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	cleared := s.ledger.UpdateIf(ctx, userID, func(acc *model.Account) bool {
		if acc.PrivilegeExpiresAt == nil {
			return false
		}
		acc.PrivilegeExpiresAt = nil
		return true
	})
	if !cleared {
		return
	}

	log.Info().Str("user_id", userID).Msg("Privilege revoked externally")
}

// Reconcile walks every cached account at startup: grants already past
// expiration are revoked immediately, live grants get a freshly armed timer
// for the remaining interval.
func (s *PrivilegeService) Reconcile(ctx context.Context) {
	now := time.Now()
	var expired, armed int

	for _, acc := range s.ledger.Snapshot() {
		if acc.PrivilegeExpiresAt == nil {
			continue
		}
		if acc.PrivilegeExpiresAt.After(now) {
			remaining := acc.PrivilegeExpiresAt.Sub(now)
			userID := acc.UserID
			s.timers.Arm(userID, remaining, func() {
				ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
				defer cancel()
				s.expire(ctx, userID)
			})
			armed++
		} else {
			s.expire(ctx, acc.UserID)
			expired++
		}
	}

	log.Info().Int("armed", armed).Int("expired", expired).Msg("Privilege grants reconciled")
}

// markBotInitiated records that the bot removed the role itself. The marker
// auto-clears so a stale entry cannot mask a later manual revocation.
func (s *PrivilegeService) markBotInitiated(userID string) {
	s.markerMu.Lock()
	s.botInitiated[userID] = true
	s.markerMu.Unlock()

	time.AfterFunc(s.markerTTL, func() {
		s.markerMu.Lock()
		delete(s.botInitiated, userID)
		s.markerMu.Unlock()
	})
}

func (s *PrivilegeService) wasBotInitiated(userID string) bool {
	s.markerMu.Lock()
	defer s.markerMu.Unlock()
	return s.botInitiated[userID]
}
