package lock

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"pgregory.net/rapid"
)

// TestConcurrentBalanceSafetyProperty checks that concurrent read-modify-write
// operations on the same user serialize to the sequential result.
func TestConcurrentBalanceSafetyProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.Int64Range(1000, 100000).Draw(t, "initial")
		numOps := rapid.IntRange(2, 20).Draw(t, "numOps")

		amounts := make([]int64, numOps)
		expected := initial
		for i := range amounts {
			amounts[i] = rapid.Int64Range(-500, 500).Draw(t, "amount")
			expected += amounts[i]
		}

		ul := NewUserLock()
		balance := initial

		var wg sync.WaitGroup
		wg.Add(numOps)
		for _, amount := range amounts {
			go func(amount int64) {
				defer wg.Done()
				ul.Lock("100")
				defer ul.Unlock("100")
				balance += amount
			}(amount)
		}
		wg.Wait()

		if balance != expected {
			t.Fatalf("balance = %d, want %d", balance, expected)
		}
	})
}

// TestWithLockProperty checks that WithLock serializes its callback.
func TestWithLockProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numOps := rapid.IntRange(5, 30).Draw(t, "numOps")
		perOp := rapid.Int64Range(1, 100).Draw(t, "perOp")

		ul := NewUserLock()
		var balance int64

		var wg sync.WaitGroup
		wg.Add(numOps)
		for i := 0; i < numOps; i++ {
			go func() {
				defer wg.Done()
				_ = ul.WithLock("100", func() error {
					balance += perOp
					return nil
				})
			}()
		}
		wg.Wait()

		if balance != int64(numOps)*perOp {
			t.Fatalf("balance = %d, want %d", balance, int64(numOps)*perOp)
		}
	})
}

// TestIndependentUserLocksProperty checks that different users never block
// each other's counters into an inconsistent state.
func TestIndependentUserLocksProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numUsers := rapid.IntRange(2, 10).Draw(t, "numUsers")
		opsPerUser := rapid.IntRange(5, 20).Draw(t, "opsPerUser")

		ul := NewUserLock()
		balances := make([]int64, numUsers)

		var wg sync.WaitGroup
		wg.Add(numUsers * opsPerUser)
		for u := 0; u < numUsers; u++ {
			userID := fmt.Sprintf("user-%d", u)
			for j := 0; j < opsPerUser; j++ {
				go func(u int, userID string) {
					defer wg.Done()
					ul.Lock(userID)
					defer ul.Unlock(userID)
					balances[u] += 10
				}(u, userID)
			}
		}
		wg.Wait()

		for u := 0; u < numUsers; u++ {
			if balances[u] != int64(opsPerUser)*10 {
				t.Fatalf("user %d balance = %d, want %d", u, balances[u], int64(opsPerUser)*10)
			}
		}
	})
}

// TestTryLock checks the non-blocking path: contended attempts fail, and the
// lock is free again once released.
func TestTryLock(t *testing.T) {
	ul := NewUserLock()

	if !ul.TryLock("100") {
		t.Fatal("first TryLock should succeed")
	}

	var contended atomic.Int32
	var wg sync.WaitGroup
	wg.Add(5)
	for i := 0; i < 5; i++ {
		go func() {
			defer wg.Done()
			if !ul.TryLock("100") {
				contended.Add(1)
			}
		}()
	}
	wg.Wait()

	if contended.Load() != 5 {
		t.Fatalf("contended = %d, want 5", contended.Load())
	}

	ul.Unlock("100")
	if !ul.TryLock("100") {
		t.Fatal("TryLock should succeed after Unlock")
	}
	ul.Unlock("100")
}
