package analytics

import (
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "analytics.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func meta(ip string) RequestMeta {
	return RequestMeta{IPAddress: ip, UserAgent: "test-agent"}
}

func TestRecordViewMissingProfileID(t *testing.T) {
	s := setupTestStore(t)

	for _, id := range []string{"", "   "} {
		if _, err := s.RecordView(id, meta("203.0.113.1")); err != ErrMissingProfileID {
			t.Fatalf("RecordView(%q) err = %v, want ErrMissingProfileID", id, err)
		}
	}
	n, err := s.CountEvents("")
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no rows persisted, found %d", n)
	}
}

func TestRecordViewDedupWindow(t *testing.T) {
	s := setupTestStore(t)
	base := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	res, err := s.RecordView("profile-1", meta("203.0.113.1"))
	if err != nil {
		t.Fatalf("first RecordView: %v", err)
	}
	if !res.Recorded {
		t.Fatalf("first view should be recorded, got %+v", res)
	}

	// 4m59s later: inside the window, suppressed.
	s.now = func() time.Time { return base.Add(4*time.Minute + 59*time.Second) }
	res, err = s.RecordView("profile-1", meta("203.0.113.1"))
	if err != nil {
		t.Fatalf("second RecordView: %v", err)
	}
	if res.Recorded || res.Reason != "duplicate" {
		t.Fatalf("view inside window should be duplicate, got %+v", res)
	}

	// 5m01s after the first: the window slid past it, recorded again.
	s.now = func() time.Time { return base.Add(5*time.Minute + 1*time.Second) }
	res, err = s.RecordView("profile-1", meta("203.0.113.1"))
	if err != nil {
		t.Fatalf("third RecordView: %v", err)
	}
	if !res.Recorded {
		t.Fatalf("view past the window should be recorded, got %+v", res)
	}

	n, err := s.CountEvents("profile-1")
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected exactly 2 rows, found %d", n)
	}
}

func TestRecordViewDedupIsPerProfileAndIP(t *testing.T) {
	s := setupTestStore(t)
	base := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	if res, _ := s.RecordView("profile-1", meta("203.0.113.1")); !res.Recorded {
		t.Fatal("first view should be recorded")
	}
	if res, _ := s.RecordView("profile-1", meta("203.0.113.2")); !res.Recorded {
		t.Fatal("same profile from a different IP should be recorded")
	}
	if res, _ := s.RecordView("profile-2", meta("203.0.113.1")); !res.Recorded {
		t.Fatal("different profile from the same IP should be recorded")
	}
}

func TestRecordViewUnknownIPParticipatesInDedup(t *testing.T) {
	s := setupTestStore(t)
	base := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	if res, _ := s.RecordView("profile-1", meta(UnknownIP)); !res.Recorded {
		t.Fatal("first unknown-IP view should be recorded")
	}
	res, err := s.RecordView("profile-1", meta(UnknownIP))
	if err != nil {
		t.Fatalf("RecordView: %v", err)
	}
	if res.Recorded {
		t.Fatalf("repeat unknown-IP view inside window should be duplicate, got %+v", res)
	}
}

func TestListEvents(t *testing.T) {
	s := setupTestStore(t)
	base := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"p1", "p2", "p1"} {
		at := base.Add(time.Duration(i) * time.Hour)
		s.now = func() time.Time { return at }
		if _, err := s.RecordView(id, meta("203.0.113.1")); err != nil {
			t.Fatalf("RecordView: %v", err)
		}
	}

	events, err := s.ListEvents([]string{"p1", "p2"})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].ViewedAt.After(events[i-1].ViewedAt) {
			t.Fatalf("events not newest-first at %d", i)
		}
	}

	only, err := s.ListEvents([]string{"p2"})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(only) != 1 || only[0].ProfileID != "p2" {
		t.Fatalf("expected only p2 events, got %+v", only)
	}

	none, err := s.ListEvents(nil)
	if err != nil {
		t.Fatalf("ListEvents(nil): %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no events for empty id set, got %d", len(none))
	}
}
