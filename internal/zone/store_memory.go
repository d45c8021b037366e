package zone

import (
	"context"
	"sort"
	"sync"
	"time"

	"addresseligibility/pkg/sentinel"
)

// InMemoryStore holds zones in memory. Suitable for tests and for running
// without Postgres; zones are seeded at startup.
type InMemoryStore struct {
	mu     sync.RWMutex
	zones  map[int64]*Zone
	nextID int64
}

// NewInMemoryStore creates an empty in-memory zone store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{zones: make(map[int64]*Zone), nextID: 1}
}

// Save inserts or updates a zone. New zones get an assigned ID.
func (s *InMemoryStore) Save(_ context.Context, z *Zone) (*Zone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	stored := *z
	if stored.ID == 0 {
		stored.ID = s.nextID
		s.nextID++
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.zones[stored.ID] = &stored

	out := stored
	return &out, nil
}

// FindByName returns the zone with the given unique name.
func (s *InMemoryStore) FindByName(_ context.Context, name string) (*Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, z := range s.zones {
		if z.Name == name {
			out := *z
			return &out, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// ExistsByName reports whether a zone with the given unique name exists.
func (s *InMemoryStore) ExistsByName(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, z := range s.zones {
		if z.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// CountActive returns the number of active zones.
func (s *InMemoryStore) CountActive(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, z := range s.zones {
		if z.Active {
			n++
		}
	}
	return n, nil
}

// ByZipCode returns active zones whose zip set contains zip.
func (s *InMemoryStore) ByZipCode(_ context.Context, zip string) ([]*Zone, error) {
	return s.filter(func(z *Zone) bool { return z.HasZip(zip) }), nil
}

// ByCityState returns active zones whose city and state sets contain the pair.
func (s *InMemoryStore) ByCityState(_ context.Context, city, state string) ([]*Zone, error) {
	return s.filter(func(z *Zone) bool { return z.HasCity(city) && z.HasState(state) }), nil
}

// ByCoordinates returns active zones whose bounds contain the point.
func (s *InMemoryStore) ByCoordinates(_ context.Context, lat, lon float64) ([]*Zone, error) {
	return s.filter(func(z *Zone) bool { return z.ContainsPoint(lat, lon) }), nil
}

// AllActiveByPriority returns every active zone, highest priority first.
func (s *InMemoryStore) AllActiveByPriority(_ context.Context) ([]*Zone, error) {
	matches := s.filter(func(*Zone) bool { return true })
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Priority > matches[j].Priority })
	return matches, nil
}

// filter returns copies of active zones matching pred, in stable ID order so
// results are deterministic across calls.
func (s *InMemoryStore) filter(pred func(*Zone) bool) []*Zone {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.zones))
	for id := range s.zones {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var matches []*Zone
	for _, id := range ids {
		z := s.zones[id]
		if !z.Active || !pred(z) {
			continue
		}
		out := *z
		matches = append(matches, &out)
	}
	return matches
}
