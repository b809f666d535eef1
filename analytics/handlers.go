package analytics

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// MemberDirectory resolves profile ids to display identities. Implemented by
// the app store; the member rows themselves are not owned by this package.
type MemberDirectory interface {
	// Members returns the id -> identity map for one tenant.
	Members(companyID string) (map[string]MemberInfo, error)
	// ProfileIDs returns every member id of one tenant.
	ProfileIDs(companyID string) ([]string, error)
	// CompanyOf returns the owning tenant of a profile id.
	CompanyOf(profileID string) (string, error)
}

// Handler handles the beacon and stats HTTP endpoints.
type Handler struct {
	store          *Store
	dir            MemberDirectory
	countryHeader  string
	cityHeader     string
	collectLimiter *rateLimiter
	cache          *statsCache
}

// NewHandler creates an analytics handler. A nil store means view tracking
// is not configured; the beacon then answers with a configuration error.
// beaconLimit caps beacon requests per IP per minute; zero or negative
// leaves the beacon unthrottled, which is the default: recording has no
// request-rate ceiling of its own, dedup alone bounds growth per visitor.
func NewHandler(store *Store, dir MemberDirectory, countryHeader, cityHeader string, beaconLimit int) *Handler {
	h := &Handler{
		store:         store,
		dir:           dir,
		countryHeader: countryHeader,
		cityHeader:    cityHeader,
		cache:         newStatsCache(),
	}
	if beaconLimit > 0 {
		h.collectLimiter = newRateLimiter(beaconLimit, time.Minute)
	}
	return h
}

// InvalidateStats evicts one tenant's cached analytics. The app calls this
// whenever member data changes, since renames and deletions alter ranking
// entries and recent-view joins.
func (h *Handler) InvalidateStats(companyID string) {
	h.cache.Invalidate(companyID)
}

// collectRequest is the beacon body sent by a rendered card page.
type collectRequest struct {
	ProfileID string `json:"profileId"`
}

// Collect handles POST /api/card-view. The caller treats this endpoint as
// fire-and-forget; every outcome here is invisible to the card visitor.
func (h *Handler) Collect(c echo.Context) error {
	if h.collectLimiter != nil && !h.collectLimiter.allow(c.RealIP()) {
		return c.NoContent(http.StatusTooManyRequests)
	}
	if h.store == nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server configuration error"})
	}

	var req collectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": ErrMissingProfileID.Error()})
	}

	meta := MetaFromRequest(c.Request(), h.countryHeader, h.cityHeader)
	res, err := h.store.RecordView(req.ProfileID, meta)
	if errors.Is(err, ErrMissingProfileID) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err != nil {
		c.Logger().Errorf("record view: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	if res.Recorded {
		if companyID, err := h.dir.CompanyOf(req.ProfileID); err == nil {
			h.cache.Invalidate(companyID)
		}
	}
	return c.JSON(http.StatusOK, res)
}

// GetStats handles the admin stats endpoint: bulk-fetch the tenant's views
// and member directory, aggregate, and memoize until the next recorded view.
func (h *Handler) GetStats(c echo.Context) error {
	companyID, _ := c.Get("company_id").(string)
	if companyID == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	}
	if h.store == nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server configuration error"})
	}

	if cached, ok := h.cache.get(companyID); ok {
		return c.JSON(http.StatusOK, cached)
	}

	ids, err := h.dir.ProfileIDs(companyID)
	if err != nil {
		c.Logger().Errorf("list profiles: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	members, err := h.dir.Members(companyID)
	if err != nil {
		c.Logger().Errorf("member directory: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	views, err := h.store.ListEvents(ids)
	if err != nil {
		c.Logger().Errorf("list views: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	resp := StatsResponse{
		Stats:      Aggregate(views, members, time.Now()),
		Dimensions: DimensionCounts(views),
	}
	h.cache.set(companyID, resp)
	return c.JSON(http.StatusOK, resp)
}

// RegisterRoutes registers the public beacon and the admin stats endpoint.
// adminGroup must already carry the tenant-session middleware.
func (h *Handler) RegisterRoutes(e *echo.Echo, adminGroup *echo.Group) {
	e.POST("/api/card-view", h.Collect)
	adminGroup.GET("/analytics/api/stats", h.GetStats)
}
