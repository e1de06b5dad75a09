package service

import (
	"context"
	"sort"
)

// DefaultTopN is the leaderboard size shown to users.
const DefaultTopN = 5

// LeaderboardEntry is one ranked account.
type LeaderboardEntry struct {
	Rank    int
	UserID  string
	Balance int64
}

// Leaderboard holds the top entries plus the requester's own entry when they
// fall outside the top.
type Leaderboard struct {
	Top       []LeaderboardEntry
	Requester *LeaderboardEntry
}

// LeaderboardService ranks accounts by balance.
type LeaderboardService struct {
	ledger *Ledger
	topN   int
}

// NewLeaderboardService creates a LeaderboardService showing topN entries.
func NewLeaderboardService(ledger *Ledger, topN int) *LeaderboardService {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &LeaderboardService{ledger: ledger, topN: topN}
}

// Top ranks all known accounts by descending balance, ties broken by user ID
// ascending so the ordering is deterministic for a given store state. The
// requester's own entry is appended separately when outside the top.
func (s *LeaderboardService) Top(ctx context.Context, requesterID string) *Leaderboard {
	// Referencing the requester lazily materializes their account, so they
	// always have a rank even on first contact.
	s.ledger.Account(ctx, requesterID)

	accounts := s.ledger.Snapshot()
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].Balance != accounts[j].Balance {
			return accounts[i].Balance > accounts[j].Balance
		}
		return accounts[i].UserID < accounts[j].UserID
	})

	board := &Leaderboard{}
	for i, acc := range accounts {
		entry := LeaderboardEntry{Rank: i + 1, UserID: acc.UserID, Balance: acc.Balance}
		if i < s.topN {
			board.Top = append(board.Top, entry)
		}
		if acc.UserID == requesterID && i >= s.topN {
			e := entry
			board.Requester = &e
		}
	}

	return board
}
