package brandcommit

import (
	"testing"
	"time"
)

func TestMemberCacheListAndInvalidate(t *testing.T) {
	s := setupTestStore(t)
	co := testCompany(t, s, "acme")
	testMember(t, s, co.ID, "Alice", true)
	cache := NewMemberCache(s, time.Hour)

	members, err := cache.ListMembers(co.ID)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(members))
	}

	// A write behind the cache's back stays invisible until Invalidate.
	testMember(t, s, co.ID, "Bob", true)
	members, _ = cache.ListMembers(co.ID)
	if len(members) != 1 {
		t.Fatalf("expected stale cache to return 1 member, got %d", len(members))
	}

	cache.Invalidate(co.ID)
	members, _ = cache.ListMembers(co.ID)
	if len(members) != 2 {
		t.Fatalf("expected 2 members after invalidate, got %d", len(members))
	}
}

func TestMemberCacheGetBySlug(t *testing.T) {
	s := setupTestStore(t)
	co := testCompany(t, s, "acme")
	m := testMember(t, s, co.ID, "Alice", true)
	cache := NewMemberCache(s, time.Hour)

	got, err := cache.GetBySlug(m.Slug)
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.ID != m.ID {
		t.Fatalf("got %+v, want %+v", got, m)
	}

	if _, err := cache.GetBySlug("nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemberCacheTTLExpiry(t *testing.T) {
	s := setupTestStore(t)
	co := testCompany(t, s, "acme")
	testMember(t, s, co.ID, "Alice", true)
	cache := NewMemberCache(s, 50*time.Millisecond)

	if _, err := cache.ListMembers(co.ID); err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	testMember(t, s, co.ID, "Bob", true)

	time.Sleep(80 * time.Millisecond)
	members, err := cache.ListMembers(co.ID)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected reload after TTL, got %d members", len(members))
	}
}
