package rates

import (
	"sync"

	"shipgate/internal/model"
)

// Selection tracks which quote row the user has picked out of the current
// quote list. A quote is matched by courier name, freight mode and the
// GST-inclusive price together, so two tiers of the same courier never
// shadow each other.
type Selection struct {
	mu     sync.RWMutex
	quote  *model.RateQuote
	picked bool
}

func (s *Selection) Select(q model.RateQuote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quote = &q
	s.picked = true
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quote = nil
	s.picked = false
}

func (s *Selection) Selected() (model.RateQuote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.picked {
		return model.RateQuote{}, false
	}
	return *s.quote, true
}

func (s *Selection) IsSelected(q model.RateQuote) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.picked && s.quote.Same(q)
}
