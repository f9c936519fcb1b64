package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// BalanceFetcher is the backend call that reads the authoritative balance.
type BalanceFetcher interface {
	WalletBalance(ctx context.Context) (float64, error)
}

// Store caches the prepaid wallet balance. The cached value may be stale
// between refreshes; every debit is re-validated server-side, so the cache
// is only used to fail fast on obviously insufficient balances. Any
// component may refresh; the last refresh wins.
type Store struct {
	backend BalanceFetcher

	mu      sync.RWMutex
	balance decimal.Decimal
	subs    []func(decimal.Decimal)
}

func NewStore(backend BalanceFetcher) *Store {
	return &Store{backend: backend}
}

func (s *Store) Balance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance
}

// Sufficient reports whether the cached balance covers required. A false
// result short-circuits money-moving calls before they reach the backend.
func (s *Store) Sufficient(required decimal.Decimal) bool {
	return s.Balance().GreaterThanOrEqual(required)
}

// Subscribe registers fn to run after every balance change.
func (s *Store) Subscribe(fn func(decimal.Decimal)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Refresh pulls the balance from the backend.
func (s *Store) Refresh(ctx context.Context) (decimal.Decimal, error) {
	bal, err := s.backend.WalletBalance(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("refresh wallet balance: %w", err)
	}
	d := decimal.NewFromFloat(bal)
	s.set(d)
	return d, nil
}

// Apply updates the cache from a balance the backend included inline in a
// schedule or payment response, saving the extra round-trip.
func (s *Store) Apply(balance float64) {
	s.set(decimal.NewFromFloat(balance))
}

func (s *Store) set(balance decimal.Decimal) {
	s.mu.Lock()
	s.balance = balance
	subs := make([]func(decimal.Decimal), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(balance)
	}
}
