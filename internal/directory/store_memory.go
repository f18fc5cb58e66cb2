package directory

import (
	"context"
	"sync"

	"herald/pkg/platform/sentinel"
)

// InMemory is the in-memory office reference store. Reference data is loaded
// once at boot and read concurrently by workers and handlers.
type InMemory struct {
	mu       sync.RWMutex
	byRegion map[string][]Office
	byCode   map[string]Office
}

func NewInMemory() *InMemory {
	return &InMemory{
		byRegion: make(map[string][]Office),
		byCode:   make(map[string]Office),
	}
}

// Upsert adds or replaces an office. Used by the boot seed and tests.
func (s *InMemory) Upsert(ctx context.Context, office Office) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.byCode[office.Code]; ok {
		region := s.byRegion[prev.RegionCode]
		for i, o := range region {
			if o.Code == office.Code {
				s.byRegion[prev.RegionCode] = append(region[:i], region[i+1:]...)
				break
			}
		}
	}
	s.byCode[office.Code] = office
	s.byRegion[office.RegionCode] = append(s.byRegion[office.RegionCode], office)
	return nil
}

// ListByRegion returns all offices for a region code.
func (s *InMemory) ListByRegion(ctx context.Context, regionCode string) ([]Office, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	offices, ok := s.byRegion[regionCode]
	if !ok || len(offices) == 0 {
		return nil, sentinel.ErrNotFound
	}
	out := make([]Office, len(offices))
	copy(out, offices)
	return out, nil
}

// FindByCode returns a single office by its stable code.
func (s *InMemory) FindByCode(ctx context.Context, code string) (*Office, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	office, ok := s.byCode[code]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &office, nil
}
