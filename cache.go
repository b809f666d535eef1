package brandcommit

import (
	"sync"
	"time"
)

// MemberCache is an in-memory cache of a company's published members with
// TTL and an explicit Invalidate operation. Mutating admin handlers call
// Invalidate after a save so card pages and exports never serve stale rows.
type MemberCache struct {
	mu      sync.RWMutex
	byCo    map[string][]Member
	bySlug  map[string]Member
	fetched map[string]time.Time
	ttl     time.Duration
	store   *Store
}

// NewMemberCache creates a MemberCache backed by the given Store.
func NewMemberCache(s *Store, ttl time.Duration) *MemberCache {
	return &MemberCache{
		byCo:    make(map[string][]Member),
		bySlug:  make(map[string]Member),
		fetched: make(map[string]time.Time),
		ttl:     ttl,
		store:   s,
	}
}

func (c *MemberCache) valid(companyID string) bool {
	t, ok := c.fetched[companyID]
	return ok && time.Since(t) < c.ttl
}

// Invalidate clears one company's entries so the next read reloads.
func (c *MemberCache) Invalidate(companyID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.byCo[companyID] {
		delete(c.bySlug, m.Slug)
	}
	delete(c.byCo, companyID)
	delete(c.fetched, companyID)
}

func (c *MemberCache) load(companyID string) error {
	if c.valid(companyID) {
		return nil
	}
	members, err := c.store.ListPublishedMembers(companyID)
	if err != nil {
		return err
	}
	for _, m := range c.byCo[companyID] {
		delete(c.bySlug, m.Slug)
	}
	c.byCo[companyID] = members
	for _, m := range members {
		c.bySlug[m.Slug] = m
	}
	c.fetched[companyID] = time.Now()
	return nil
}

// ListMembers returns the company's published members, loading on miss.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *MemberCache) ListMembers(companyID string) ([]Member, error) {
	c.mu.RLock()
	if c.valid(companyID) {
		members := c.byCo[companyID]
		c.mu.RUnlock()
		return members, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(companyID); err != nil {
		return nil, err
	}
	return c.byCo[companyID], nil
}

// GetBySlug returns a published member by slug. Slug lookups fall through to
// the store on a cold cache since the owning company is not known yet.
func (c *MemberCache) GetBySlug(slug string) (Member, error) {
	c.mu.RLock()
	m, ok := c.bySlug[slug]
	if ok && c.valid(m.CompanyID) {
		c.mu.RUnlock()
		return m, nil
	}
	c.mu.RUnlock()

	m, err := c.store.GetMemberBySlug(slug)
	if err != nil {
		return Member{}, err
	}
	c.mu.Lock()
	if err := c.load(m.CompanyID); err != nil {
		c.mu.Unlock()
		return Member{}, err
	}
	c.mu.Unlock()
	return m, nil
}
