// Package blackjack implements the multi-step blackjack game. Unlike the
// single-round games a blackjack round spans several commands, so the engine
// keeps one in-memory session per user between start and settlement.
package blackjack

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"discord-lootbox-bot/internal/game"
	"discord-lootbox-bot/internal/model"
)

// DefaultMaxBet is the maximum allowed wager when none is configured.
const DefaultMaxBet = 500

// dealerStandsAt is the total the dealer draws up to.
const dealerStandsAt = 17

// Errors for the blackjack engine.
var (
	ErrSessionExists       = errors.New("a blackjack round is already in progress")
	ErrNoSession           = errors.New("no blackjack round in progress")
	ErrInvalidWager        = errors.New("wager must be positive")
	ErrWagerTooHigh        = errors.New("wager exceeds maximum allowed")
	ErrInsufficientBalance = errors.New("balance too low for this wager")
	ErrDeckExhausted       = errors.New("deck exhausted")
)

// RoundState describes where a round stands after a player action.
type RoundState string

// Round states.
const (
	StatePlaying RoundState = "playing"
	StateWon     RoundState = "won"
	StateLost    RoundState = "lost"
	StatePush    RoundState = "push"
)

// Round is the player-visible view of a blackjack round after an action.
// While the state is StatePlaying only the dealer's up card (Dealer[0])
// should be shown.
type Round struct {
	State       RoundState
	Player      []Card
	Dealer      []Card
	PlayerValue int
	DealerValue int
	Payout      int64
	NewBalance  int64
}

// session is one in-flight round. StartBalance is captured at the deal so a
// loss is never settled for more than the player had when the round began.
type session struct {
	userID       string
	deck         []Card
	player       []Card
	dealer       []Card
	wager        int64
	startBalance int64
}

func (s *session) draw() (Card, error) {
	if len(s.deck) == 0 {
		return Card{}, ErrDeckExhausted
	}
	c := s.deck[0]
	s.deck = s.deck[1:]
	return c, nil
}

// Engine runs blackjack rounds and settles them against the ledger.
// At most one session exists per user.
type Engine struct {
	ledger game.Ledger
	maxBet int64

	mu       sync.Mutex
	sessions map[string]*session
	rnd      *rand.Rand
}

// NewEngine creates an Engine. The random source is injected so tests can
// seed it.
func NewEngine(ledger game.Ledger, maxBet int64, rnd *rand.Rand) *Engine {
	if maxBet <= 0 {
		maxBet = DefaultMaxBet
	}
	return &Engine{
		ledger:   ledger,
		maxBet:   maxBet,
		sessions: make(map[string]*session),
		rnd:      rnd,
	}
}

// MaxBet returns the maximum allowed wager.
func (e *Engine) MaxBet() int64 {
	return e.maxBet
}

// InProgress reports whether the user has a round underway.
func (e *Engine) InProgress(userID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.sessions[userID]
	return ok
}

// Start validates the wager, deals two cards each to player and dealer and
// returns the opening state. A natural 21 for the player wins immediately; a
// dealer natural loses immediately. Nothing is debited up front: the wager
// settles when the round ends.
func (e *Engine) Start(ctx context.Context, userID string, wager int64) (*Round, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.sessions[userID]; ok {
		return nil, ErrSessionExists
	}
	if wager <= 0 {
		return nil, ErrInvalidWager
	}
	if wager > e.maxBet {
		return nil, fmt.Errorf("%w: max wager is %d", ErrWagerTooHigh, e.maxBet)
	}

	balance := e.ledger.Balance(ctx, userID)
	if balance < wager {
		return nil, ErrInsufficientBalance
	}

	return e.startLocked(ctx, userID, wager, balance, newDeck(e.rnd))
}

// startLocked deals from the given deck. Split out so tests can stack it.
func (e *Engine) startLocked(ctx context.Context, userID string, wager, balance int64, deck []Card) (*Round, error) {
	s := &session{
		userID:       userID,
		deck:         deck,
		wager:        wager,
		startBalance: balance,
	}

	for i := 0; i < 2; i++ {
		pc, err := s.draw()
		if err != nil {
			return nil, err
		}
		s.player = append(s.player, pc)

		dc, err := s.draw()
		if err != nil {
			return nil, err
		}
		s.dealer = append(s.dealer, dc)
	}

	if HandValue(s.player) == 21 {
		return e.settleLocked(ctx, s, StateWon), nil
	}
	if HandValue(s.dealer) == 21 {
		return e.settleLocked(ctx, s, StateLost), nil
	}

	e.sessions[userID] = s
	return s.round(StatePlaying), nil
}

// Hit draws one card for the player. Going over 21 busts and settles the
// round as a loss.
func (e *Engine) Hit(ctx context.Context, userID string) (*Round, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}

	c, err := s.draw()
	if err != nil {
		delete(e.sessions, userID)
		return nil, err
	}
	s.player = append(s.player, c)

	if HandValue(s.player) > 21 {
		delete(e.sessions, userID)
		return e.settleLocked(ctx, s, StateLost), nil
	}

	return s.round(StatePlaying), nil
}

// Stand ends the player's turn: the dealer draws up to 17 or more, then the
// hands are compared and the round settles.
func (e *Engine) Stand(ctx context.Context, userID string) (*Round, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}
	delete(e.sessions, userID)

	for HandValue(s.dealer) < dealerStandsAt {
		c, err := s.draw()
		if err != nil {
			return nil, err
		}
		s.dealer = append(s.dealer, c)
	}

	playerVal := HandValue(s.player)
	dealerVal := HandValue(s.dealer)

	var state RoundState
	switch {
	case dealerVal > 21 || playerVal > dealerVal:
		state = StateWon
	case playerVal < dealerVal:
		state = StateLost
	default:
		state = StatePush
	}

	return e.settleLocked(ctx, s, state), nil
}

// Abandon drops the user's session without settlement. Used when a session
// must be cleared administratively.
func (e *Engine) Abandon(userID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.sessions[userID]; !ok {
		return false
	}
	delete(e.sessions, userID)
	return true
}

// settleLocked applies the round outcome to the ledger. A win pays the wager
// even money; a loss debits at most what the player had when the round began.
func (e *Engine) settleLocked(ctx context.Context, s *session, state RoundState) *Round {
	r := s.round(state)

	switch state {
	case StateWon:
		e.ledger.IncrementStat(ctx, s.userID, model.StatBlackjackWins)
		r.Payout = s.wager
		r.NewBalance, _ = e.ledger.Credit(ctx, s.userID, s.wager, model.TxTypeBlackjack)
	case StateLost:
		loss := s.wager
		if loss > s.startBalance {
			loss = s.startBalance
		}
		r.Payout = -loss
		r.NewBalance, _ = e.ledger.Debit(ctx, s.userID, loss, model.TxTypeBlackjack)
	default:
		r.Payout = 0
		r.NewBalance = e.ledger.Balance(ctx, s.userID)
	}

	return r
}

func (s *session) round(state RoundState) *Round {
	player := make([]Card, len(s.player))
	copy(player, s.player)
	dealer := make([]Card, len(s.dealer))
	copy(dealer, s.dealer)

	return &Round{
		State:       state,
		Player:      player,
		Dealer:      dealer,
		PlayerValue: HandValue(player),
		DealerValue: HandValue(dealer),
	}
}
