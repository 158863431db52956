package catalog

import (
	"strings"
	"sync"

	"github.com/luadex/luadex"
)

// Store indexes a built catalog for fast queries. Build once, read
// many: the catalog is never mutated after construction and all
// lookups are safe for concurrent readers.
type Store struct {
	mu sync.RWMutex

	cat *luadex.Catalog
	ids []string

	byKind      map[string][]string
	byCategory  map[string][]string
	byBehavior  map[string][]string
	bySource    map[string][]string
	byComponent map[string][]string
	byTag       map[string][]string
}

// NewStore indexes cat.
func NewStore(cat *luadex.Catalog) *Store {
	s := &Store{
		cat:         cat,
		byKind:      map[string][]string{},
		byCategory:  map[string][]string{},
		byBehavior:  map[string][]string{},
		bySource:    map[string][]string{},
		byComponent: map[string][]string{},
		byTag:       map[string][]string{},
	}
	s.ids = cat.ItemIDs()
	for _, id := range s.ids {
		item := cat.Items[id]
		s.byKind[item.Kind] = append(s.byKind[item.Kind], id)
		for _, c := range item.Categories {
			s.byCategory[c] = append(s.byCategory[c], id)
		}
		for _, b := range item.Behaviors {
			s.byBehavior[b] = append(s.byBehavior[b], id)
		}
		for _, src := range item.Sources {
			s.bySource[src] = append(s.bySource[src], id)
		}
		for _, c := range item.Components {
			s.byComponent[c] = append(s.byComponent[c], id)
		}
		for _, t := range item.Tags {
			s.byTag[t] = append(s.byTag[t], id)
		}
	}
	return s
}

// OpenStore loads a catalog JSON artifact and indexes it.
func OpenStore(path string) (*Store, error) {
	cat, err := luadex.LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	return NewStore(cat), nil
}

// Catalog returns the underlying catalog.
func (s *Store) Catalog() *luadex.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat
}

// Item returns one item by id.
func (s *Store) Item(id string) (*luadex.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.cat.Items[strings.ToLower(strings.TrimSpace(id))]
	return item, ok
}

// IDs returns every item id, sorted.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.ids...)
}

// Len returns the item count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

func (s *Store) lookup(index map[string][]string, key string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), index[strings.ToLower(strings.TrimSpace(key))]...)
}

// ByKind returns the ids of one kind.
func (s *Store) ByKind(kind string) []string { return s.lookup(s.byKind, kind) }

// ByCategory returns the ids carrying one category.
func (s *Store) ByCategory(category string) []string { return s.lookup(s.byCategory, category) }

// ByBehavior returns the ids carrying one behavior.
func (s *Store) ByBehavior(behavior string) []string { return s.lookup(s.byBehavior, behavior) }

// BySource returns the ids with one source membership.
func (s *Store) BySource(source string) []string { return s.lookup(s.bySource, source) }

// ByComponent returns the ids whose prefab adds one component.
func (s *Store) ByComponent(component string) []string { return s.lookup(s.byComponent, component) }

// ByTag returns the ids whose prefab adds one tag.
func (s *Store) ByTag(tag string) []string { return s.lookup(s.byTag, tag) }

// Facets returns the kind -> count distribution.
func (s *Store) Facets() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.byKind))
	for kind, ids := range s.byKind {
		out[kind] = len(ids)
	}
	return out
}

// Search returns up to limit ids whose id or display name contains the
// query (case-insensitive), exact id hits first, then id order.
func (s *Store) Search(query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	if _, ok := s.cat.Items[q]; ok {
		out = append(out, q)
	}
	for _, id := range s.ids {
		if limit > 0 && len(out) >= limit {
			break
		}
		if id == q {
			continue
		}
		item := s.cat.Items[id]
		if strings.Contains(id, q) || strings.Contains(strings.ToLower(item.Name), q) {
			out = append(out, id)
		}
	}
	return out
}

// CookingRecipe returns one cook-pot recipe by name.
func (s *Store) CookingRecipe(name string) (*luadex.CookingRecipe, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.cat.Cooking[strings.ToLower(strings.TrimSpace(name))]
	return rec, ok
}
