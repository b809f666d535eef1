// Package brandcommit is a multi-tenant brand hub built with Go, Echo, and
// templ. Each company gets digital business-card pages with QR codes and view
// analytics, a brand-guideline knowledge base, and an internal timeline.
//
// Users provide their own templ templates via the ViewFuncs struct; handlers
// fall back to JSON when a view function is nil, so the server also runs
// headless as a plain API.
package brandcommit

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/kitakawa-git/brandcommit-sub000/analytics"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages. This is the inversion-of-control mechanism that
// lets users own and customize all templates.
type ViewFuncs struct {
	Card        func(page CardPage) templ.Component
	AdminLogin  func(showError bool, csrfToken string) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central brandcommit application. It wires together the store,
// member cache, analytics, middleware, and user-provided templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Members *MemberCache
	Views   ViewFuncs

	loginLimiter     *LoginLimiter
	analyticsStore   *analytics.Store
	analyticsHandler *analytics.Handler
	customRoutes     []func(*App)
	uploadsDir       string
}

// New creates a brandcommit App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:     cfg,
		Echo:       echo.New(),
		Views:      views,
		uploadsDir: "uploads",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the stores, cache, middleware, routes, and starts the server.
func (a *App) Start() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("brandcommit: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("brandcommit: init store: %w", err)
	}
	a.Store = store

	a.Members = NewMemberCache(a.Store, a.Config.MemberCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	if a.Config.AnalyticsEnabled {
		analyticsStore, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("brandcommit: init analytics: %w", err)
		}
		a.analyticsStore = analyticsStore
	}
	// The handler is built even without a store so the beacon route exists
	// and answers with a configuration error instead of a 404.
	a.analyticsHandler = analytics.NewHandler(
		a.analyticsStore,
		&memberDirectory{store: a.Store},
		a.Config.GeoCountryHeader,
		a.Config.GeoCityHeader,
		a.Config.BeaconRateLimit,
	)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/uploads", a.uploadsDir)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/card/:slug", a.handleCard)
	e.GET("/card/:slug/vcard", a.handleVCard)
	e.GET("/card/:slug/qr.png", a.handleCardQR)

	// Auth
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)

	// Tenant admin API
	admin := e.Group("/admin/api", requireCompany)
	admin.GET("/members", a.handleMemberList)
	admin.POST("/members", a.handleMemberSave)
	admin.GET("/members/:id", a.handleMemberGet)
	admin.DELETE("/members/:id", a.handleMemberDelete)
	admin.POST("/members/:id/avatar", a.handleAvatarUpload)
	admin.GET("/members/qr.zip", a.handleQRZip)

	admin.GET("/guide/sections", a.handleGuideSectionList)
	admin.POST("/guide/sections", a.handleGuideSectionSave)
	admin.DELETE("/guide/sections/:id", a.handleGuideSectionDelete)
	admin.GET("/guide/colors", a.handleBrandColorList)
	admin.POST("/guide/colors", a.handleBrandColorSave)
	admin.DELETE("/guide/colors/:id", a.handleBrandColorDelete)

	admin.GET("/timeline", a.handleTimelineList)
	admin.POST("/timeline", a.handleTimelineCreate)
	admin.DELETE("/timeline/:id", a.handleTimelineDelete)
	admin.POST("/timeline/:id/like", a.handleTimelineLike)
	admin.DELETE("/timeline/:id/like", a.handleTimelineUnlike)
	admin.POST("/timeline/:id/read", a.handleTimelineRead)
	admin.GET("/timeline/:id/readers", a.handleTimelineReaders)

	// View beacon and stats
	adminGroup := e.Group("/admin", requireCompany)
	a.analyticsHandler.RegisterRoutes(e, adminGroup)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		a.Store.Close()
	}
	if a.analyticsStore != nil {
		a.analyticsStore.Close()
	}
	return nil
}

// invalidateMemberCaches evicts everything derived from one tenant's member
// rows: the member directory cache and the cached analytics, whose ranking
// and recent-view joins embed member names.
func (a *App) invalidateMemberCaches(companyID string) {
	a.Members.Invalidate(companyID)
	if a.analyticsHandler != nil {
		a.analyticsHandler.InvalidateStats(companyID)
	}
}

// memberDirectory adapts the app store to the analytics member lookup.
type memberDirectory struct {
	store *Store
}

func (d *memberDirectory) Members(companyID string) (map[string]analytics.MemberInfo, error) {
	members, err := d.store.ListMembers(companyID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]analytics.MemberInfo, len(members))
	for _, m := range members {
		out[m.ID] = analytics.MemberInfo{Name: m.Name, Slug: m.Slug}
	}
	return out, nil
}

func (d *memberDirectory) ProfileIDs(companyID string) ([]string, error) {
	members, err := d.store.ListMembers(companyID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (d *memberDirectory) CompanyOf(profileID string) (string, error) {
	return d.store.MemberCompanyID(profileID)
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("brandcommit: required environment variable %s is not set", key)
	}
	return v
}
