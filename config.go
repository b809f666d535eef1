package brandcommit

import "time"

// SiteConfig holds all configuration for a brandcommit instance.
type SiteConfig struct {
	Name string // Instance name, used in feeds and titles (default "brandcommit")
	URL  string // Canonical base URL (default "http://localhost:3000")

	Addr         string // Listen address (default ":3000")
	DatabasePath string // App SQLite path (default "data/brandcommit.db")

	AnalyticsEnabled      bool   // Enable view tracking (default set by cmd)
	AnalyticsDatabasePath string // Analytics SQLite path (default "data/analytics.db")

	// BeaconRateLimit caps view beacons per IP per minute. Zero, the
	// default, leaves the beacon unthrottled: recording has no rate ceiling
	// of its own and dedup bounds growth per visitor.
	BeaconRateLimit int

	// Header names the hosting edge uses for geo enrichment of view beacons.
	// Absent headers mean no geo data; geo is never derived from the IP.
	GeoCountryHeader string // default "X-Geo-Country"
	GeoCityHeader    string // default "X-Geo-City"

	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	MemberCacheTTL time.Duration // Member directory cache TTL (default 5min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "brandcommit"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/brandcommit.db"
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.GeoCountryHeader == "" {
		c.GeoCountryHeader = "X-Geo-Country"
	}
	if c.GeoCityHeader == "" {
		c.GeoCityHeader = "X-Geo-City"
	}
	if c.MemberCacheTTL == 0 {
		c.MemberCacheTTL = 5 * time.Minute
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithUploadsDir sets the directory for uploaded avatars and logos (default "uploads").
func WithUploadsDir(dir string) Option {
	return func(a *App) {
		a.uploadsDir = dir
	}
}
