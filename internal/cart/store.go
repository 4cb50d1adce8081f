package cart

import (
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store is the single process-wide cart. It is an explicitly owned,
// mutex-guarded object injected into its callers; there is no ambient
// global cart state.
//
// Every mutation recomputes the derived totals and then runs the
// persistence hook. Persistence failures are logged and swallowed: the
// in-memory cart is the source of truth for the session.
type Store struct {
	mu      sync.Mutex
	items   []Item
	total   decimal.Decimal
	count   int
	storage Storage
	lg      *zap.Logger
}

// NewStore creates a Store and rehydrates it from storage once. Read or
// parse failures fall back to an empty cart with only a log line; the user
// never sees them.
func NewStore(storage Storage, lg *zap.Logger) *Store {
	if lg == nil {
		lg = zap.NewNop()
	}
	s := &Store{storage: storage, lg: lg}

	if storage != nil {
		data, err := storage.Load()
		if err != nil {
			lg.Warn("Cart rehydration read failed", zap.Error(err))
		} else if len(data) > 0 {
			items, err := decodeItems(data)
			if err != nil {
				lg.Warn("Cart rehydration parse failed", zap.Error(err))
			} else {
				s.items = items
			}
		}
	}
	s.recalc()
	return s
}

// Add puts one unit of the product into the cart. If the product is already
// present its quantity grows by one, silently capped at its stock; the
// caller gets no signal when the cap is hit.
func (s *Store) Add(it Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == it.ID {
			if s.items[i].Quantity < s.items[i].Stock {
				s.items[i].Quantity++
			}
			s.commit()
			return
		}
	}
	it.Quantity = 1
	s.items = append(s.items, it)
	s.commit()
}

// Remove deletes the line item with the given product ID. Absent IDs are a
// no-op.
func (s *Store) Remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.commit()
			return
		}
	}
}

// UpdateQuantity sets the line quantity, clamped to [0, stock]. A clamped
// result of zero removes the item entirely. Absent IDs are a no-op.
func (s *Store) UpdateQuantity(id, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		q := quantity
		if q > s.items[i].Stock {
			q = s.items[i].Stock
		}
		if q <= 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		} else {
			s.items[i].Quantity = q
		}
		s.commit()
		return
	}
}

// Clear empties the cart. Used after checkout completion.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.commit()
}

// Snapshot returns a copy of the current cart state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, len(s.items))
	copy(items, s.items)
	return State{Items: items, Total: s.total, ItemCount: s.count}
}

// commit recomputes derived totals and runs the persistence hook. Callers
// must hold s.mu.
func (s *Store) commit() {
	s.recalc()
	s.persist()
}

// recalc rederives total and itemCount from the item list. They are never
// mutated independently.
func (s *Store) recalc() {
	total := decimal.Zero
	count := 0
	for _, it := range s.items {
		total = total.Add(it.LineTotal())
		count += it.Quantity
	}
	s.total = total
	s.count = count
}

// persist writes the full item collection to storage. Failures are logged
// and never propagated to the mutating caller.
func (s *Store) persist() {
	if s.storage == nil {
		return
	}
	if err := s.storage.Save(encodeItems(s.items)); err != nil {
		s.lg.Warn("Cart persistence failed", zap.Error(err))
	}
}
