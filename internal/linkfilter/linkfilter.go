// Package linkfilter filters and sorts link view-models for the
// dashboard list. Apply is a pure transformation: same inputs always
// yield the same output, and ties keep their input order.
package linkfilter

import (
	"sort"
	"strings"
	"time"

	"openup/internal/models"
)

// DateLayout is the display date format carried by LinkView (dd/mm/yyyy).
const DateLayout = "02/01/2006"

// LinkView is the UI-facing projection of a link: click counts are
// display strings, dates are dd/mm/yyyy.
type LinkView struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	ShortURL  string `json:"short_url"`
	Slug      string `json:"slug"`
	Domain    string `json:"domain"`
	Clicks    string `json:"clicks"`
	Date      string `json:"date"`
	IsActive  bool   `json:"is_active"`
	Type      string `json:"type"`
	Position  int    `json:"position"`
	HasQRCode bool   `json:"has_qr_code"`
}

// FromLink projects a stored link plus its aggregated click count into
// a view-model.
func FromLink(link models.Link, clicks int64, baseURL string) LinkView {
	domain := strings.TrimPrefix(strings.TrimPrefix(baseURL, "https://"), "http://")
	return LinkView{
		ID:       link.ID.String(),
		Title:    link.Title,
		URL:      link.OriginalURL,
		ShortURL: strings.TrimSuffix(baseURL, "/") + "/r/" + link.Slug,
		Slug:     link.Slug,
		Domain:   domain,
		Clicks:   FormatClicks(clicks),
		Date:     link.CreatedAt.Format(DateLayout),
		IsActive: link.IsActive,
		Type:     link.Type,
		Position: link.Position,
	}
}

// Status filter values.
type Status string

const (
	StatusAll      Status = "all"
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// Period filter values.
type Period string

const (
	PeriodAll    Period = "all"
	PeriodToday  Period = "today"
	Period7Days  Period = "7d"
	Period30Days Period = "30d"
	PeriodCustom Period = "custom"
)

// SortKey values.
type SortKey string

const (
	SortNewest     SortKey = "newest"
	SortOldest     SortKey = "oldest"
	SortClicksDesc SortKey = "clicks_desc"
	SortClicksAsc  SortKey = "clicks_asc"
	SortAlpha      SortKey = "alpha"
)

// Spec describes one filter/sort request. Zero values mean "no
// constraint": empty Status/Period behave as "all", MaxClicks 0 is
// unbounded, an empty SortBy keeps input order.
type Spec struct {
	Query     string
	Status    Status
	Period    Period
	DateStart time.Time // custom period lower bound; zero = missing
	DateEnd   time.Time // custom period upper bound; zero = missing
	Tags      []string
	MinClicks int64
	MaxClicks int64
	SortBy    SortKey
}

// Apply returns the filtered, ordered subset of links. now anchors the
// relative periods (today/7d/30d).
func Apply(links []LinkView, spec Spec, now time.Time) []LinkView {
	out := make([]LinkView, 0, len(links))
	for _, link := range links {
		if matches(link, spec, now) {
			out = append(out, link)
		}
	}
	sortLinks(out, spec.SortBy)
	return out
}

func matches(link LinkView, spec Spec, now time.Time) bool {
	if spec.Query != "" {
		q := strings.ToLower(spec.Query)
		if !strings.Contains(strings.ToLower(link.Title), q) &&
			!strings.Contains(strings.ToLower(link.ShortURL), q) {
			return false
		}
	}

	switch spec.Status {
	case StatusActive:
		if !link.IsActive {
			return false
		}
	case StatusDisabled:
		if link.IsActive {
			return false
		}
	}

	clicks := ParseClicks(link.Clicks)
	if clicks < spec.MinClicks {
		return false
	}
	if spec.MaxClicks > 0 && clicks > spec.MaxClicks {
		return false
	}

	if !matchesPeriod(link, spec, now) {
		return false
	}

	if len(spec.Tags) > 0 {
		title := strings.ToLower(link.Title)
		found := false
		for _, tag := range spec.Tags {
			if tag != "" && strings.Contains(title, strings.ToLower(tag)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

func matchesPeriod(link LinkView, spec Spec, now time.Time) bool {
	period := spec.Period
	if period == "" || period == PeriodAll {
		return true
	}

	// A custom range missing either bound is treated as "all".
	if period == PeriodCustom && (spec.DateStart.IsZero() || spec.DateEnd.IsZero()) {
		return true
	}

	date, err := time.Parse(DateLayout, link.Date)
	if err != nil {
		return false
	}

	switch period {
	case PeriodToday:
		return withinDays(date, now, 1)
	case Period7Days:
		return withinDays(date, now, 7)
	case Period30Days:
		return withinDays(date, now, 30)
	case PeriodCustom:
		return !date.Before(spec.DateStart) && !date.After(spec.DateEnd)
	}
	return true
}

func withinDays(date, now time.Time, days int) bool {
	age := now.Sub(date)
	return age >= -24*time.Hour && age <= time.Duration(days)*24*time.Hour
}

func sortLinks(links []LinkView, key SortKey) {
	switch key {
	case SortNewest:
		sort.SliceStable(links, func(i, j int) bool {
			return parseDate(links[i].Date).After(parseDate(links[j].Date))
		})
	case SortOldest:
		sort.SliceStable(links, func(i, j int) bool {
			return parseDate(links[i].Date).Before(parseDate(links[j].Date))
		})
	case SortClicksDesc:
		sort.SliceStable(links, func(i, j int) bool {
			return ParseClicks(links[i].Clicks) > ParseClicks(links[j].Clicks)
		})
	case SortClicksAsc:
		sort.SliceStable(links, func(i, j int) bool {
			return ParseClicks(links[i].Clicks) < ParseClicks(links[j].Clicks)
		})
	case SortAlpha:
		sort.SliceStable(links, func(i, j int) bool {
			return strings.ToLower(links[i].Title) < strings.ToLower(links[j].Title)
		})
	}
}

func parseDate(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
