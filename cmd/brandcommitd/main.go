// brandcommitd runs a brandcommit server configured from the environment.
// It also carries a small create-company subcommand for provisioning tenants,
// since no signup flow exists.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	brandcommit "github.com/kitakawa-git/brandcommit-sub000"
)

func main() {
	// Missing .env is fine; real deployments set env vars directly.
	_ = godotenv.Load()

	if len(os.Args) > 1 && os.Args[1] == "create-company" {
		if err := runCreateCompany(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg := configFromEnv()
	app := brandcommit.New(cfg, brandcommit.ViewFuncs{})
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

func configFromEnv() brandcommit.SiteConfig {
	return brandcommit.SiteConfig{
		Name:                  brandcommit.EnvOr("SITE_NAME", "brandcommit"),
		URL:                   brandcommit.EnvOr("SITE_URL", "http://localhost:3000"),
		Addr:                  brandcommit.EnvOr("LISTEN_ADDR", ":3000"),
		DatabasePath:          brandcommit.EnvOr("DATABASE_PATH", "data/brandcommit.db"),
		AnalyticsEnabled:      brandcommit.EnvOr("ANALYTICS_ENABLED", "true") == "true",
		AnalyticsDatabasePath: brandcommit.EnvOr("ANALYTICS_DATABASE_PATH", "data/analytics.db"),
		GeoCountryHeader:      brandcommit.EnvOr("GEO_COUNTRY_HEADER", "X-Geo-Country"),
		GeoCityHeader:         brandcommit.EnvOr("GEO_CITY_HEADER", "X-Geo-City"),
		BeaconRateLimit:       envInt("BEACON_RATE_LIMIT", 0),
		SessionSecret:         brandcommit.MustEnv("SESSION_SECRET"),
		CookieSecure:          brandcommit.EnvOr("COOKIE_SECURE", "false") == "true",
		MemberCacheTTL:        5 * time.Minute,
	}
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("brandcommitd: %s must be an integer, got %q", key, v)
	}
	return n
}

func runCreateCompany(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: brandcommitd create-company <slug> <name> <password>")
	}
	slug, name, password := args[0], args[1], args[2]

	hash, err := brandcommit.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	store, err := brandcommit.NewStore(brandcommit.EnvOr("DATABASE_PATH", "data/brandcommit.db"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	company, err := store.CreateCompany(brandcommit.Company{
		Slug:         brandcommit.Slugify(slug),
		Name:         name,
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}
	fmt.Printf("created company %s (%s)\n", company.Name, company.ID)
	return nil
}
