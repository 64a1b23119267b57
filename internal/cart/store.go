package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const saveTimeout = 2 * time.Second

// ErrNoSuchItem is returned by UpdateChecked when the index does not
// name a line item.
var ErrNoSuchItem = errors.New("cart: no item at index")

// Store holds the ordered sequence of line items for one session and
// is the sole mutator of cart state. Every mutation persists the new
// sequence through the injected Persistence port (write-behind,
// serialized per key) and notifies subscribers.
type Store struct {
	key     string
	persist Persistence

	mu    sync.Mutex
	items []LineItem
	subs  []func()

	saves chan []LineItem // latest-wins snapshot queue
	done  chan struct{}
}

// NewStore restores the cart persisted under key, or starts empty when
// nothing is stored or the stored value cannot be parsed. A format
// change must never fail hard on old payloads.
func NewStore(ctx context.Context, key string, persist Persistence) *Store {
	s := &Store{
		key:     key,
		persist: persist,
		saves:   make(chan []LineItem, 1),
		done:    make(chan struct{}),
	}

	items, err := persist.Load(ctx, key)
	switch {
	case err == nil:
		s.items = items
	case errors.Is(err, ErrNoStoredCart):
		// first visit, empty cart
	default:
		log.Warn().Err(err).Str("cart_key", key).Msg("cart: stored cart unreadable, starting empty")
	}

	go s.saver()

	return s
}

// Subscribe registers a change notification callback, invoked after
// every mutation. Recompute contracts (pricing) hang off this.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// Add appends a new line item to the end of the sequence. Identical
// selections are not merged: each Add is its own line. Quantity is
// clamped to at least 1 and add-on ids are deduplicated.
func (s *Store) Add(item LineItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	item.AddOnIDs = dedupe(item.AddOnIDs)
	if item.VariantID == "" {
		item.VariantID = item.Product.DefaultVariantID()
	}

	s.mu.Lock()
	s.items = append(s.items, item)
	s.afterMutationLocked()
}

// Update applies a patch to the item at index: removal deletes it,
// otherwise patch fields are merged. An out-of-range index is a
// programming error and panics.
func (s *Store) Update(index int, patch Patch) {
	s.mu.Lock()

	if index < 0 || index >= len(s.items) {
		n := len(s.items)
		s.mu.Unlock()
		panic(fmt.Sprintf("cart: update index %d out of range (len %d)", index, n))
	}

	s.updateLocked(index, patch)
}

// UpdateChecked is Update with the bounds check folded into the same
// critical section, for callers fed indices from the wire: a concurrent
// shrink between a caller-side Len check and Update would otherwise
// panic. Returns ErrNoSuchItem when the index is out of range.
func (s *Store) UpdateChecked(index int, patch Patch) error {
	s.mu.Lock()

	if index < 0 || index >= len(s.items) {
		s.mu.Unlock()
		return ErrNoSuchItem
	}

	s.updateLocked(index, patch)
	return nil
}

// updateLocked applies the patch at a validated index. Callers must
// hold s.mu; the lock is released via afterMutationLocked.
func (s *Store) updateLocked(index int, patch Patch) {
	if patch.Remove {
		s.items = append(s.items[:index], s.items[index+1:]...)
		s.afterMutationLocked()
		return
	}

	if patch.Quantity != nil {
		q := *patch.Quantity
		if q < 1 {
			q = 1 // removal is deletion, never quantity 0
		}
		s.items[index].Quantity = q
	}

	s.afterMutationLocked()
}

// Clear empties the sequence atomically.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.afterMutationLocked()
}

// Items returns a copy of the current sequence in add order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]LineItem, len(s.items))
	copy(items, s.items)
	return items
}

// Len reports the number of line items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Close stops the background saver after flushing any pending snapshot.
func (s *Store) Close() {
	close(s.saves)
	<-s.done
}

// afterMutationLocked snapshots the sequence for the saver, releases
// the lock and notifies subscribers. Callers must hold s.mu.
func (s *Store) afterMutationLocked() {
	snapshot := make([]LineItem, len(s.items))
	copy(snapshot, s.items)
	subs := s.subs
	s.mu.Unlock()

	s.enqueueSave(snapshot)

	for _, fn := range subs {
		fn()
	}
}

// enqueueSave hands a snapshot to the saver goroutine, replacing any
// not-yet-written older snapshot. The single saver serializes writes
// per key; in-memory reads never consult storage, so write-behind
// cannot reorder against reads.
func (s *Store) enqueueSave(snapshot []LineItem) {
	for {
		select {
		case s.saves <- snapshot:
			return
		default:
			select {
			case <-s.saves: // drop superseded snapshot
			default:
			}
		}
	}
}

func (s *Store) saver() {
	defer close(s.done)

	for snapshot := range s.saves {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		err := s.persist.Save(ctx, s.key, snapshot)
		cancel()
		if err != nil {
			log.Error().Err(err).Str("cart_key", s.key).Msg("cart: failed to persist cart")
		}
	}
}

func dedupe(ids []string) []string {
	if len(ids) < 2 {
		return ids
	}

	// Never compact in place: the caller still owns the backing array.
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
