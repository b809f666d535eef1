// Package analytics implements view tracking for business-card pages: a
// beacon recorder with a 5-minute duplicate-suppression window, and a pure
// aggregator that derives summary counts, a member leaderboard, a 30-day
// daily series, and a recent-activity slice from a tenant's recorded views.
package analytics

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mileusna/useragent"
)

// UnknownIP is recorded when no forwarding header yields a client address.
// It participates in dedup like any other IP string.
const UnknownIP = "unknown"

// DedupWindow is how long a repeat view from the same (profile, IP) pair is
// suppressed. A reload debounce, not an abuse-prevention mechanism.
const DedupWindow = 5 * time.Minute

// ViewEvent is one recorded page view. Created by the recorder, never
// updated or deleted here; retention is an external concern.
type ViewEvent struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	ViewedAt  time.Time `json:"viewed_at"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Referer   string    `json:"referer"`
	Country   *string   `json:"country"`
	City      *string   `json:"city"`
	Device    string    `json:"device"`
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
}

// RequestMeta carries the request-derived fields of a view beacon.
type RequestMeta struct {
	IPAddress string
	UserAgent string
	Referer   string
	Country   *string
	City      *string
	Device    string
	Browser   string
	OS        string
}

// MetaFromRequest derives beacon metadata from forwarding headers.
// Client IP: first comma-separated X-Forwarded-For entry, else X-Real-IP,
// else UnknownIP. Geo comes only from the two given headers; it is never
// inferred from the IP.
func MetaFromRequest(r *http.Request, countryHeader, cityHeader string) RequestMeta {
	meta := RequestMeta{
		IPAddress: clientIP(r),
		UserAgent: r.Header.Get("User-Agent"),
		Referer:   r.Header.Get("Referer"),
	}
	if v := r.Header.Get(countryHeader); v != "" {
		meta.Country = &v
	}
	if v := r.Header.Get(cityHeader); v != "" {
		meta.City = &v
	}
	if meta.UserAgent != "" {
		ua := useragent.Parse(meta.UserAgent)
		meta.Device = deviceType(&ua)
		meta.Browser = ua.Name
		meta.OS = ua.OS
	}
	return meta
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
		return rip
	}
	return UnknownIP
}

func deviceType(ua *useragent.UserAgent) string {
	switch {
	case ua.Bot:
		return "Bot"
	case ua.Tablet:
		return "Tablet"
	case ua.Mobile:
		return "Mobile"
	case ua.Desktop:
		return "Desktop"
	default:
		return "Other"
	}
}

// MemberInfo is the display identity a view row is joined with.
type MemberInfo struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// RankingEntry is one leaderboard row.
type RankingEntry struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// DailyCount is one bucket of the 30-day series.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// RecentView is a view event joined with its member, nil when the member
// record was not found.
type RecentView struct {
	ViewEvent
	Member *MemberInfo `json:"member"`
}

// DimensionStat is a name/count breakdown row (device, browser).
type DimensionStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DerivedAnalytics is the ephemeral output of Aggregate, recomputed per run.
type DerivedAnalytics struct {
	TotalViews  int            `json:"total_views"`
	MonthViews  int            `json:"month_views"`
	WeekViews   int            `json:"week_views"`
	Ranking     []RankingEntry `json:"ranking"`
	DailyCounts []DailyCount   `json:"daily_counts"`
	RecentViews []RecentView   `json:"recent_views"`
}

// dailyWindowDays is the length of the DailyCounts series, today inclusive.
const dailyWindowDays = 30

// Aggregate derives analytics from a tenant's complete view set and member
// directory. Pure and deterministic: the only clock input is now, whose
// location also fixes the day/week/month boundaries. Empty input yields a
// fully-shaped zero result, never a panic.
func Aggregate(views []ViewEvent, members map[string]MemberInfo, now time.Time) DerivedAnalytics {
	loc := now.Location()
	out := DerivedAnalytics{
		TotalViews:  len(views),
		Ranking:     []RankingEntry{},
		RecentViews: []RecentView{},
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	weekStart := startOfWeek(now)
	for _, v := range views {
		if !v.ViewedAt.Before(monthStart) {
			out.MonthViews++
		}
		if !v.ViewedAt.Before(weekStart) {
			out.WeekViews++
		}
	}

	// Leaderboard: counts keyed by profile in first-occurrence order, then a
	// stable sort so ties keep that encounter order. Views whose profile has
	// no member entry (deleted member) are dropped from the ranking only.
	counts := make(map[string]int)
	var order []string
	for _, v := range views {
		if _, seen := counts[v.ProfileID]; !seen {
			order = append(order, v.ProfileID)
		}
		counts[v.ProfileID]++
	}
	for _, id := range order {
		m, ok := members[id]
		if !ok {
			continue
		}
		out.Ranking = append(out.Ranking, RankingEntry{Name: m.Name, Slug: m.Slug, Count: counts[id]})
	}
	sort.SliceStable(out.Ranking, func(i, j int) bool {
		return out.Ranking[i].Count > out.Ranking[j].Count
	})

	// 30 contiguous zero-filled day buckets ending today. Views outside the
	// window still count toward the totals above.
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	out.DailyCounts = make([]DailyCount, dailyWindowDays)
	index := make(map[string]int, dailyWindowDays)
	for i := 0; i < dailyWindowDays; i++ {
		date := today.AddDate(0, 0, i-dailyWindowDays+1).Format("2006-01-02")
		out.DailyCounts[i] = DailyCount{Date: date}
		index[date] = i
	}
	for _, v := range views {
		key := v.ViewedAt.In(loc).Format("2006-01-02")
		if i, ok := index[key]; ok {
			out.DailyCounts[i].Count++
		}
	}

	// Recent activity: 10 newest by timestamp, sorted on a copy so the
	// caller's slice is left alone.
	recent := make([]ViewEvent, len(views))
	copy(recent, views)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].ViewedAt.After(recent[j].ViewedAt)
	})
	if len(recent) > 10 {
		recent = recent[:10]
	}
	for _, v := range recent {
		rv := RecentView{ViewEvent: v}
		if m, ok := members[v.ProfileID]; ok {
			rv.Member = &MemberInfo{Name: m.Name, Slug: m.Slug}
		}
		out.RecentViews = append(out.RecentViews, rv)
	}

	return out
}

// startOfWeek returns the most recent Monday 00:00 in now's location.
func startOfWeek(now time.Time) time.Time {
	offset := int(now.Weekday()) - 1
	if now.Weekday() == time.Sunday {
		offset = 6
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return day.AddDate(0, 0, -offset)
}

// Dimensions holds device and browser breakdowns for the stats screen.
type Dimensions struct {
	Devices  []DimensionStat `json:"devices"`
	Browsers []DimensionStat `json:"browsers"`
}

// DimensionCounts computes device/browser breakdowns, count descending with
// ties in first-occurrence order. Events with an empty dimension are skipped.
func DimensionCounts(views []ViewEvent) Dimensions {
	return Dimensions{
		Devices:  countDimension(views, func(v ViewEvent) string { return v.Device }),
		Browsers: countDimension(views, func(v ViewEvent) string { return v.Browser }),
	}
}

func countDimension(views []ViewEvent, key func(ViewEvent) string) []DimensionStat {
	counts := make(map[string]int)
	var order []string
	for _, v := range views {
		k := key(v)
		if k == "" {
			continue
		}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}
	out := make([]DimensionStat, 0, len(order))
	for _, k := range order {
		out = append(out, DimensionStat{Name: k, Count: counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
