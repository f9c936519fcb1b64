package ordercache

import (
	"sync"

	"shipgate/internal/model"
)

// Store is the in-memory order collection. It is filled once per explicit
// refresh from the backend and mutated in batches by the scheduler; the
// listing layer only ever projects it. The backend remains the authority —
// this copy exists so filtering, pagination and transition guards need no
// round-trips.
type Store struct {
	mu     sync.RWMutex
	orders []model.Order
	index  map[string]int
}

func NewStore() *Store {
	return &Store{index: map[string]int{}}
}

// Replace swaps in a freshly fetched order set.
func (s *Store) Replace(orders []model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = make([]model.Order, len(orders))
	copy(s.orders, orders)
	s.index = make(map[string]int, len(orders))
	for i, o := range s.orders {
		s.index[o.OrderID] = i
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// All returns a copy of the collection in fetch order.
func (s *Store) All() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

func (s *Store) Get(orderID string) (model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[orderID]
	if !ok {
		return model.Order{}, false
	}
	return s.orders[i], true
}

// SetStatus applies one status to every named order in a single batch.
// Unknown IDs are ignored.
func (s *Store) SetStatus(orderIDs []string, status model.OrderStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range orderIDs {
		if i, ok := s.index[id]; ok {
			s.orders[i].Status = status
		}
	}
}

// ScheduledUpdate is what a successful schedule call contributes back to
// the cached order.
type ScheduledUpdate struct {
	SelectShippingCharges float64
	SelectedCourierName   string
	SelectedFreightMode   string
	PaymentMethod         string
	AWBNumber             string
	LabelURL              string
}

// ApplyScheduled merges per-order schedule results in a single batch.
func (s *Store) ApplyScheduled(updates map[string]ScheduledUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range updates {
		i, ok := s.index[id]
		if !ok {
			continue
		}
		o := &s.orders[i]
		o.SelectShippingCharges = u.SelectShippingCharges
		o.SelectedCourierName = u.SelectedCourierName
		o.SelectedFreightMode = u.SelectedFreightMode
		o.PaymentMethod = u.PaymentMethod
		if u.AWBNumber != "" {
			o.AWBNumber = u.AWBNumber
		}
		if u.LabelURL != "" {
			o.LabelURL = u.LabelURL
		}
	}
}

// SetLabelURL records a label URL discovered through the fallback chain.
func (s *Store) SetLabelURL(orderID, labelURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[orderID]; ok {
		s.orders[i].LabelURL = labelURL
	}
}
