package analytics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type stubDirectory struct {
	members map[string]MemberInfo
	company string
}

func (d *stubDirectory) Members(companyID string) (map[string]MemberInfo, error) {
	return d.members, nil
}

func (d *stubDirectory) ProfileIDs(companyID string) ([]string, error) {
	ids := make([]string, 0, len(d.members))
	for id := range d.members {
		ids = append(ids, id)
	}
	return ids, nil
}

func (d *stubDirectory) CompanyOf(profileID string) (string, error) {
	return d.company, nil
}

func postBeacon(h *Handler, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/card-view", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Collect(e.NewContext(req, rec)); err != nil {
		e.HTTPErrorHandler(err, e.NewContext(req, rec))
	}
	return rec
}

func TestCollectMissingProfileID(t *testing.T) {
	h := NewHandler(setupTestStore(t), &stubDirectory{}, "X-Geo-Country", "X-Geo-City", 0)

	for _, body := range []string{`{}`, `{"profileId":""}`, `{"profileId":"  "}`} {
		rec := postBeacon(h, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400", body, rec.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response: %v", err)
		}
		if resp["error"] != "profileId is required" {
			t.Fatalf("error = %q, want %q", resp["error"], "profileId is required")
		}
	}
}

func TestCollectNilStore(t *testing.T) {
	h := NewHandler(nil, &stubDirectory{}, "X-Geo-Country", "X-Geo-City", 0)

	rec := postBeacon(h, `{"profileId":"p1"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["error"] != "Server configuration error" {
		t.Fatalf("error = %q, want %q", resp["error"], "Server configuration error")
	}
}

func TestCollectRecordAndDuplicate(t *testing.T) {
	h := NewHandler(setupTestStore(t), &stubDirectory{company: "co-1"}, "X-Geo-Country", "X-Geo-City", 0)

	rec := postBeacon(h, `{"profileId":"p1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var first Result
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !first.Recorded {
		t.Fatalf("first beacon should record, got %+v", first)
	}

	rec = postBeacon(h, `{"profileId":"p1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var second Result
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if second.Recorded || second.Reason != "duplicate" {
		t.Fatalf("second beacon should be duplicate, got %+v", second)
	}
}

func TestGetStatsRequiresCompany(t *testing.T) {
	h := NewHandler(setupTestStore(t), &stubDirectory{}, "X-Geo-Country", "X-Geo-City", 0)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/analytics/api/stats", nil)
	rec := httptest.NewRecorder()
	if err := h.GetStats(e.NewContext(req, rec)); err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestGetStatsAggregates(t *testing.T) {
	store := setupTestStore(t)
	dir := &stubDirectory{
		members: map[string]MemberInfo{"p1": {Name: "Alice", Slug: "alice"}},
		company: "co-1",
	}
	h := NewHandler(store, dir, "X-Geo-Country", "X-Geo-City", 0)

	if _, err := store.RecordView("p1", RequestMeta{IPAddress: "203.0.113.1"}); err != nil {
		t.Fatalf("RecordView: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/analytics/api/stats", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("company_id", "co-1")
	if err := h.GetStats(c); err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Stats.TotalViews != 1 {
		t.Fatalf("TotalViews = %d, want 1", resp.Stats.TotalViews)
	}
	if len(resp.Stats.Ranking) != 1 || resp.Stats.Ranking[0].Slug != "alice" {
		t.Fatalf("unexpected ranking: %+v", resp.Stats.Ranking)
	}
}

func TestCollectUnthrottledByDefault(t *testing.T) {
	h := NewHandler(setupTestStore(t), &stubDirectory{company: "co-1"}, "X-Geo-Country", "X-Geo-City", 0)

	// Many distinct first views from one IP; none may be dropped.
	for i := 0; i < 70; i++ {
		rec := postBeacon(h, fmt.Sprintf(`{"profileId":"p%d"}`, i))
		if rec.Code != http.StatusOK {
			t.Fatalf("beacon %d: status = %d, want 200", i, rec.Code)
		}
	}
}

func TestCollectConfiguredRateLimit(t *testing.T) {
	h := NewHandler(setupTestStore(t), &stubDirectory{company: "co-1"}, "X-Geo-Country", "X-Geo-City", 1)

	if rec := postBeacon(h, `{"profileId":"p1"}`); rec.Code != http.StatusOK {
		t.Fatalf("first beacon: status = %d, want 200", rec.Code)
	}
	if rec := postBeacon(h, `{"profileId":"p2"}`); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second beacon: status = %d, want 429 when a limit is configured", rec.Code)
	}
}

func TestInvalidateStatsEvictsCache(t *testing.T) {
	store := setupTestStore(t)
	dir := &stubDirectory{
		members: map[string]MemberInfo{"p1": {Name: "Alice", Slug: "alice"}},
		company: "co-1",
	}
	h := NewHandler(store, dir, "X-Geo-Country", "X-Geo-City", 0)

	if _, err := store.RecordView("p1", RequestMeta{IPAddress: "203.0.113.1"}); err != nil {
		t.Fatalf("RecordView: %v", err)
	}

	fetch := func() StatsResponse {
		t.Helper()
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/admin/analytics/api/stats", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("company_id", "co-1")
		if err := h.GetStats(c); err != nil {
			t.Fatalf("GetStats: %v", err)
		}
		var resp StatsResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response: %v", err)
		}
		return resp
	}

	if got := fetch().Stats.Ranking[0].Name; got != "Alice" {
		t.Fatalf("ranking name = %q, want Alice", got)
	}

	// A rename is invisible while the cached aggregate is served.
	dir.members["p1"] = MemberInfo{Name: "Alicia", Slug: "alicia"}
	if got := fetch().Stats.Ranking[0].Name; got != "Alice" {
		t.Fatalf("expected cached ranking name Alice, got %q", got)
	}

	h.InvalidateStats("co-1")
	if got := fetch().Stats.Ranking[0].Name; got != "Alicia" {
		t.Fatalf("ranking name after invalidate = %q, want Alicia", got)
	}
}
