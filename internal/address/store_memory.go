package address

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"addresseligibility/pkg/sentinel"
)

// InMemoryStore holds addresses in memory. Used when Postgres is not
// configured and throughout the unit tests.
type InMemoryStore struct {
	mu        sync.RWMutex
	addresses map[int64]*Address
	nextID    int64
}

// NewInMemoryStore creates an empty in-memory address store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{addresses: make(map[int64]*Address), nextID: 1}
}

// Save inserts or updates an address. A record matching the identity tuple
// of a new address is updated in place, mirroring the Postgres upsert.
func (s *InMemoryStore) Save(_ context.Context, a *Address) (*Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	stored := *a

	if stored.ID == 0 {
		if existing := s.findByIdentityLocked(a.StreetAddress, a.City, a.State, a.ZipCode); existing != nil {
			stored.ID = existing.ID
			stored.CreatedAt = existing.CreatedAt
		} else {
			stored.ID = s.nextID
			s.nextID++
			stored.CreatedAt = now
		}
	}
	stored.UpdatedAt = now
	s.addresses[stored.ID] = &stored

	out := stored
	return &out, nil
}

// FindByIdentity returns the address matching the tuple, case-insensitively.
func (s *InMemoryStore) FindByIdentity(_ context.Context, street, city, state, zip string) (*Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a := s.findByIdentityLocked(street, city, state, zip); a != nil {
		out := *a
		return &out, nil
	}
	return nil, sentinel.ErrNotFound
}

// FindByZip returns every address with the given zip code.
func (s *InMemoryStore) FindByZip(_ context.Context, zip string) ([]*Address, error) {
	return s.filter(func(a *Address) bool { return a.ZipCode == zip }), nil
}

// FindByCityState returns every address in the city and state pair.
func (s *InMemoryStore) FindByCityState(_ context.Context, city, state string) ([]*Address, error) {
	return s.filter(func(a *Address) bool {
		return strings.EqualFold(a.City, city) && strings.EqualFold(a.State, state)
	}), nil
}

// FindByEligibility returns addresses with the given decided verdict.
func (s *InMemoryStore) FindByEligibility(_ context.Context, eligible bool) ([]*Address, error) {
	return s.filter(func(a *Address) bool {
		return a.IsEligible != nil && *a.IsEligible == eligible
	}), nil
}

// FindByCoordinateRange returns addresses inside the bounding box. Addresses
// without coordinates never match.
func (s *InMemoryStore) FindByCoordinateRange(_ context.Context, minLat, maxLat, minLon, maxLon float64) ([]*Address, error) {
	return s.filter(func(a *Address) bool {
		if a.Latitude == nil || a.Longitude == nil {
			return false
		}
		return *a.Latitude >= minLat && *a.Latitude <= maxLat &&
			*a.Longitude >= minLon && *a.Longitude <= maxLon
	}), nil
}

func (s *InMemoryStore) findByIdentityLocked(street, city, state, zip string) *Address {
	for _, a := range s.addresses {
		if strings.EqualFold(a.StreetAddress, street) &&
			strings.EqualFold(a.City, city) &&
			strings.EqualFold(a.State, state) &&
			a.ZipCode == zip {
			return a
		}
	}
	return nil
}

// filter returns copies of matching addresses in stable ID order.
func (s *InMemoryStore) filter(pred func(*Address) bool) []*Address {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.addresses))
	for id := range s.addresses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var matches []*Address
	for _, id := range ids {
		a := s.addresses[id]
		if !pred(a) {
			continue
		}
		out := *a
		matches = append(matches, &out)
	}
	return matches
}
