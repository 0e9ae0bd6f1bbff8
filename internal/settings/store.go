package settings

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/KevinKickass/OpenPanelCore/internal/types"
)

// Store is the named template repository. Template names are unique
// case-insensitively; saving a duplicate is a validation error, not a
// silent overwrite. The store is global, not dashboard-scoped, and
// survives a dashboard reset.
type Store interface {
	Save(ctx context.Context, tpl types.Template) error
	Get(ctx context.Context, name string) (*types.Template, error)
	List(ctx context.Context) ([]types.Template, error)
	Delete(ctx context.Context, name string) error
}

// MemoryStore is the in-memory Store used by sessions without a database
// and by tests. Writes are last-writer-wins; the store is single-operator.
type MemoryStore struct {
	mu        sync.RWMutex
	templates map[string]types.Template // keyed by lowercased name
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		templates: make(map[string]types.Template),
	}
}

func (s *MemoryStore) Save(_ context.Context, tpl types.Template) error {
	if tpl.Name == "" {
		verr := &types.ValidationError{}
		verr.Add("name", "template name is required")
		return verr
	}

	key := strings.ToLower(tpl.Name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.templates[key]; ok {
		verr := &types.ValidationError{}
		verr.Add("name", fmt.Sprintf("template %q already exists", existing.Name))
		return verr
	}

	s.templates[key] = tpl
	return nil
}

func (s *MemoryStore) Get(_ context.Context, name string) (*types.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tpl, ok := s.templates[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("template not found: %s", name)
	}
	return &tpl, nil
}

func (s *MemoryStore) List(_ context.Context) ([]types.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Template, 0, len(s.templates))
	for _, tpl := range s.templates {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(name)
	if _, ok := s.templates[key]; !ok {
		return fmt.Errorf("template not found: %s", name)
	}
	delete(s.templates, key)
	return nil
}
