package app

import (
	"context"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/example/bastion/internal/domainerr"
	"github.com/example/bastion/internal/ports/secondary"
)

// ResourceCatalog is a read-through cache of resource types keyed by name.
// The orchestrator invalidates it at the start of every batch, so each run
// reads the table once. Lookups go through the non-transactional repository:
// resolve names before opening a unit of work.
type ResourceCatalog struct {
	repo secondary.ResourceTypeRepository

	mu     sync.Mutex
	loaded bool
	byName map[string]*secondary.ResourceTypeRecord
	byID   map[string]*secondary.ResourceTypeRecord
}

// NewResourceCatalog creates an empty catalog over repo.
func NewResourceCatalog(repo secondary.ResourceTypeRepository) *ResourceCatalog {
	return &ResourceCatalog{repo: repo}
}

// Invalidate drops the cached table.
func (c *ResourceCatalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
}

// Load (re)reads every resource type.
func (c *ResourceCatalog) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(ctx)
}

func (c *ResourceCatalog) loadLocked(ctx context.Context) error {
	records, err := c.repo.List(ctx)
	if err != nil {
		return err
	}
	c.byName = make(map[string]*secondary.ResourceTypeRecord, len(records))
	c.byID = make(map[string]*secondary.ResourceTypeRecord, len(records))
	for _, r := range records {
		c.byName[normalizeName(r.Name)] = r
		c.byID[r.ID] = r
	}
	c.loaded = true
	return nil
}

// Resolve returns the resource type called name (case-insensitive).
// A miss re-reads the table once before failing with NOT_FOUND.
func (c *ResourceCatalog) Resolve(ctx context.Context, name string) (*secondary.ResourceTypeRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := normalizeName(name)
	if c.loaded {
		if r, ok := c.byName[key]; ok {
			return r, nil
		}
	}
	if err := c.loadLocked(ctx); err != nil {
		return nil, err
	}
	if r, ok := c.byName[key]; ok {
		return r, nil
	}

	if s := c.suggestLocked(key); s != "" {
		return nil, domainerr.New(domainerr.CodeNotFound, "unknown resource %s, did you mean %s?", name, s)
	}
	return nil, domainerr.New(domainerr.CodeNotFound, "unknown resource %s", name)
}

// NameOf returns the cached name for a resource type ID, or "" when the
// catalog has not seen it. It never touches the database.
func (c *ResourceCatalog) NameOf(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.byID[id]; ok {
		return r.Name
	}
	return ""
}

// Put adds a freshly created resource type to the cache.
func (c *ResourceCatalog) Put(r *secondary.ResourceTypeRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.byName == nil {
		c.byName = map[string]*secondary.ResourceTypeRecord{}
		c.byID = map[string]*secondary.ResourceTypeRecord{}
	}
	c.byName[normalizeName(r.Name)] = r
	c.byID[r.ID] = r
}

func (c *ResourceCatalog) suggestLocked(key string) string {
	best, bestDist := "", -1
	for k, r := range c.byName {
		dist := levenshtein.ComputeDistance(key, k)
		if dist > suggestionLimit(len(k)) {
			continue
		}
		if bestDist < 0 || dist < bestDist || (dist == bestDist && r.Name < best) {
			best, bestDist = r.Name, dist
		}
	}
	return best
}

func suggestionLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
