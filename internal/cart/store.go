package cart

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/infrastructure/metrics"
)

const snapshotVersion = 1

type snapshotDoc struct {
	Version int               `json:"version"`
	Items   []domain.LineItem `json:"items"`
}

// Store is a consolidated list of line items for one cart or wishlist.
// Mutations are serialised and recompute the aggregate before returning.
// Snapshots are encoded under the lock and saved after it is released.
type Store struct {
	mu    sync.RWMutex
	kind  domain.AggregateKind
	key   string
	items []domain.LineItem
	agg   Aggregate

	// latest is the newest encoded state; guarded by mu.
	latest *encodedSnapshot
	seq    uint64

	// saveMu orders writes to snapshots; savedSeq is guarded by it.
	saveMu   sync.Mutex
	savedSeq uint64

	snapshots domain.SnapshotStore
	log       zerolog.Logger
	now       func() time.Time
}

type encodedSnapshot struct {
	seq uint64
	op  string
	raw string
}

// New returns an empty store that is not persisted.
func New(kind domain.AggregateKind) *Store {
	return &Store{
		kind: kind,
		agg:  Aggregate{Total: decimal.Zero},
		log:  zerolog.Nop(),
		now:  time.Now,
	}
}

// Open returns a store restored from the snapshot saved under key.
// A missing snapshot yields an empty store; an unreadable one is logged and discarded.
func Open(ctx context.Context, kind domain.AggregateKind, key string, snapshots domain.SnapshotStore, log zerolog.Logger) *Store {
	s := New(kind)
	s.key = key
	s.snapshots = snapshots
	s.log = log.With().Str("store", string(kind)).Str("snapshot_key", key).Logger()

	if snapshots == nil {
		return s
	}
	raw, found, err := snapshots.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to load snapshot, starting empty")
		return s
	}
	if !found {
		return s
	}

	var doc snapshotDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		s.log.Warn().Err(err).Msg("Corrupt snapshot discarded")
		return s
	}
	for _, it := range doc.Items {
		if it.Quantity < 1 || it.ProductID == "" {
			continue
		}
		if i := s.indexOf(it.ProductID, it.Variants); i >= 0 {
			s.items[i].Quantity += it.Quantity
			continue
		}
		s.items = append(s.items, it)
	}
	s.agg = Compute(s.kind, s.items)
	return s
}

// SetClock overrides the time source used for AddedAt.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *Store) Kind() domain.AggregateKind {
	return s.kind
}

// Add inserts the product or increments the existing entry with the same variants.
// A non-positive quantity counts as 1.
func (s *Store) Add(ctx context.Context, p domain.Product, quantity int, variants domain.Variants) domain.LineItem {
	return s.AddItem(ctx, domain.LineItem{
		ProductID: p.ID,
		Variants:  variants,
		Quantity:  quantity,
		Name:      p.Name,
		Image:     p.Image(),
		Price:     p.UnitPrice(variants),
		ShopID:    p.ShopID,
		ShopName:  p.ShopName,
	})
}

// AddItem is Add for an already denormalised line.
func (s *Store) AddItem(ctx context.Context, item domain.LineItem) domain.LineItem {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	s.mu.Lock()
	if i := s.indexOf(item.ProductID, item.Variants); i >= 0 {
		s.items[i].Quantity += item.Quantity
		item = s.items[i]
	} else {
		item.Variants = item.Variants.Clone()
		if item.AddedAt.IsZero() {
			item.AddedAt = s.now().UTC()
		}
		s.items = append(s.items, item)
	}
	item.Variants = item.Variants.Clone()
	s.commitLocked("add")
	s.mu.Unlock()

	s.persist(ctx)
	return item
}

// Remove deletes the entry; it reports whether one existed.
func (s *Store) Remove(ctx context.Context, productID string, variants domain.Variants) bool {
	s.mu.Lock()
	ok := s.removeLocked(productID, variants)
	s.mu.Unlock()

	if ok {
		s.persist(ctx)
	}
	return ok
}

func (s *Store) removeLocked(productID string, variants domain.Variants) bool {
	i := s.indexOf(productID, variants)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.commitLocked("remove")
	return true
}

// SetQuantity overwrites the quantity of an existing entry; n <= 0 removes it.
// It reports whether an entry existed.
func (s *Store) SetQuantity(ctx context.Context, productID string, n int, variants domain.Variants) bool {
	s.mu.Lock()
	ok := s.setQuantityLocked(productID, n, variants)
	s.mu.Unlock()

	if ok {
		s.persist(ctx)
	}
	return ok
}

func (s *Store) setQuantityLocked(productID string, n int, variants domain.Variants) bool {
	if n <= 0 {
		return s.removeLocked(productID, variants)
	}
	i := s.indexOf(productID, variants)
	if i < 0 {
		return false
	}
	s.items[i].Quantity = n
	s.commitLocked("set_quantity")
	return true
}

// Deduct subtracts each line's quantity from the matching entry, dropping
// entries that reach zero. Entries not named in lines are left alone.
func (s *Store) Deduct(ctx context.Context, lines []domain.LineItem) {
	s.mu.Lock()
	changed := false
	for _, l := range lines {
		i := s.indexOf(l.ProductID, l.Variants)
		if i < 0 {
			continue
		}
		if left := s.items[i].Quantity - l.Quantity; left > 0 {
			s.items[i].Quantity = left
		} else {
			s.items = append(s.items[:i], s.items[i+1:]...)
		}
		changed = true
	}
	if changed {
		s.commitLocked("deduct")
	}
	s.mu.Unlock()

	if changed {
		s.persist(ctx)
	}
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.commitLocked("clear")
	s.mu.Unlock()

	s.persist(ctx)
}

func (s *Store) Contains(productID string, variants domain.Variants) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(productID, variants) >= 0
}

func (s *Store) Get(productID string, variants domain.Variants) (domain.LineItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(productID, variants); i >= 0 {
		return s.items[i], true
	}
	return domain.LineItem{}, false
}

// Items returns a copy of the entries in insertion order.
func (s *Store) Items() []domain.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyItems()
}

func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.agg.Total
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.agg.Count
}

func (s *Store) Snapshot() domain.AggregateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.AggregateSnapshot{
		Kind:  s.kind,
		Items: s.copyItems(),
		Total: s.agg.Total,
		Count: s.agg.Count,
	}
}

func (s *Store) copyItems() []domain.LineItem {
	out := make([]domain.LineItem, len(s.items))
	for i, it := range s.items {
		it.Variants = it.Variants.Clone()
		out[i] = it
	}
	return out
}

func (s *Store) indexOf(productID string, variants domain.Variants) int {
	want := Key(productID, variants)
	for i := range s.items {
		if Key(s.items[i].ProductID, s.items[i].Variants) == want {
			return i
		}
	}
	return -1
}

// commitLocked recomputes the aggregate and encodes the state for persist.
// Must hold mu.
func (s *Store) commitLocked(op string) {
	s.agg = Compute(s.kind, s.items)
	metrics.StoreMutations.WithLabelValues(string(s.kind), op).Inc()

	if s.snapshots == nil {
		return
	}
	items := s.items
	if items == nil {
		items = []domain.LineItem{}
	}
	raw, err := json.Marshal(snapshotDoc{Version: snapshotVersion, Items: items})
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode snapshot")
		return
	}
	s.seq++
	s.latest = &encodedSnapshot{seq: s.seq, op: op, raw: string(raw)}
}

// persist writes the newest encoded state unless it is already saved. It must
// not be called with mu held. The write ignores cancellation of ctx: the
// in-memory change has already happened and the snapshot has to follow it.
func (s *Store) persist(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	snap := s.latest
	s.mu.RUnlock()
	if snap == nil || snap.seq <= s.savedSeq {
		return
	}

	if err := s.snapshots.Set(context.WithoutCancel(ctx), s.key, snap.raw); err != nil {
		metrics.SnapshotSaveFailures.WithLabelValues(string(s.kind)).Inc()
		s.log.Error().Err(err).Str("op", snap.op).Uint64("seq", snap.seq).Msg("Failed to save snapshot")
		return
	}
	s.savedSeq = snap.seq
}
