package linkfilter

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func testLinks() []LinkView {
	return []LinkView{
		{ID: "1", Title: "A", Clicks: "10", Date: "01/01/2025", IsActive: true},
		{ID: "2", Title: "B", Clicks: "5", Date: "02/01/2025", IsActive: true},
		{ID: "3", Title: "promo launch", Clicks: "1.2K", Date: "10/03/2025", IsActive: false},
		{ID: "4", Title: "docs", Clicks: "0", Date: "14/03/2025", IsActive: true},
	}
}

func ids(links []LinkView) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.ID
	}
	return out
}

func assertOrder(t *testing.T, got []LinkView, want ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("expected %d links %v, got %v", len(want), want, gotIDs)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, gotIDs)
		}
	}
}

func TestApplyEmptyList(t *testing.T) {
	got := Apply(nil, Spec{Status: StatusActive, SortBy: SortNewest}, testNow)
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestApplySortClicksDesc(t *testing.T) {
	links := []LinkView{
		{ID: "a", Title: "A", Clicks: "10", Date: "01/01/2025", IsActive: true},
		{ID: "b", Title: "B", Clicks: "5", Date: "02/01/2025", IsActive: true},
	}
	got := Apply(links, Spec{SortBy: SortClicksDesc}, testNow)
	assertOrder(t, got, "a", "b")
}

func TestApplyStatusFilter(t *testing.T) {
	got := Apply(testLinks(), Spec{Status: StatusDisabled}, testNow)
	assertOrder(t, got, "3")

	got = Apply(testLinks(), Spec{Status: StatusActive}, testNow)
	assertOrder(t, got, "1", "2", "4")
}

func TestApplyClickRange(t *testing.T) {
	got := Apply(testLinks(), Spec{MinClicks: 6}, testNow)
	assertOrder(t, got, "1", "3")

	got = Apply(testLinks(), Spec{MinClicks: 1, MaxClicks: 100}, testNow)
	assertOrder(t, got, "1", "2")
}

func TestApplyPeriod(t *testing.T) {
	got := Apply(testLinks(), Spec{Period: Period7Days}, testNow)
	assertOrder(t, got, "3", "4")

	got = Apply(testLinks(), Spec{Period: PeriodToday}, testNow)
	assertOrder(t, got, "4")

	got = Apply(testLinks(), Spec{Period: Period30Days}, testNow)
	assertOrder(t, got, "3", "4")
}

func TestApplyCustomPeriodMissingBoundIgnored(t *testing.T) {
	// Missing end bound: behaves as "all".
	got := Apply(testLinks(), Spec{
		Period:    PeriodCustom,
		DateStart: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}, testNow)
	if len(got) != 4 {
		t.Errorf("expected all 4 links, got %d", len(got))
	}

	// Both bounds present: applied.
	got = Apply(testLinks(), Spec{
		Period:    PeriodCustom,
		DateStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		DateEnd:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}, testNow)
	assertOrder(t, got, "1", "2")
}

func TestApplyTagsMatchTitle(t *testing.T) {
	got := Apply(testLinks(), Spec{Tags: []string{"PROMO"}}, testNow)
	assertOrder(t, got, "3")

	got = Apply(testLinks(), Spec{Tags: []string{"nope", "docs"}}, testNow)
	assertOrder(t, got, "4")
}

func TestApplyIdempotent(t *testing.T) {
	spec := Spec{Status: StatusActive, MinClicks: 1, SortBy: SortClicksDesc}
	once := Apply(testLinks(), spec, testNow)
	twice := Apply(once, spec, testNow)

	onceIDs, twiceIDs := ids(once), ids(twice)
	if len(onceIDs) != len(twiceIDs) {
		t.Fatalf("idempotence broken: %v vs %v", onceIDs, twiceIDs)
	}
	for i := range onceIDs {
		if onceIDs[i] != twiceIDs[i] {
			t.Fatalf("idempotence broken: %v vs %v", onceIDs, twiceIDs)
		}
	}
}

func TestAlphaSortCaseInsensitiveStable(t *testing.T) {
	links := []LinkView{
		{ID: "1", Title: "beta", Clicks: "0", Date: "01/01/2025", IsActive: true},
		{ID: "2", Title: "Alpha", Clicks: "0", Date: "01/01/2025", IsActive: true},
		{ID: "3", Title: "alpha", Clicks: "0", Date: "01/01/2025", IsActive: true},
		{ID: "4", Title: "Beta", Clicks: "0", Date: "01/01/2025", IsActive: true},
	}
	got := Apply(links, Spec{SortBy: SortAlpha}, testNow)
	// "Alpha" and "alpha" compare equal; input order between them holds.
	assertOrder(t, got, "2", "3", "1", "4")
}

func TestSortNewestOldest(t *testing.T) {
	got := Apply(testLinks(), Spec{SortBy: SortNewest}, testNow)
	assertOrder(t, got, "4", "3", "2", "1")

	got = Apply(testLinks(), Spec{SortBy: SortOldest}, testNow)
	assertOrder(t, got, "1", "2", "3", "4")
}

func TestQueryMatchesTitleAndShortURL(t *testing.T) {
	links := []LinkView{
		{ID: "1", Title: "My Store", ShortURL: "openup.to/r/shop", Clicks: "0", Date: "01/01/2025", IsActive: true},
		{ID: "2", Title: "Other", ShortURL: "openup.to/r/blog", Clicks: "0", Date: "01/01/2025", IsActive: true},
	}
	got := Apply(links, Spec{Query: "store"}, testNow)
	assertOrder(t, got, "1")

	got = Apply(links, Spec{Query: "blog"}, testNow)
	assertOrder(t, got, "2")
}

func TestFormatClicks(t *testing.T) {
	tests := []struct {
		n        int64
		expected string
	}{
		{0, "0"},
		{934, "934"},
		{1000, "1.0K"},
		{1234, "1.2K"},
		{15500, "15.5K"},
		{1000000, "1.0M"},
		{3400000, "3.4M"},
	}

	for _, tt := range tests {
		if got := FormatClicks(tt.n); got != tt.expected {
			t.Errorf("FormatClicks(%d) = %q, want %q", tt.n, got, tt.expected)
		}
	}
}

func TestParseClicks(t *testing.T) {
	tests := []struct {
		s        string
		expected int64
	}{
		{"0", 0},
		{"934", 934},
		{"1.2K", 1200},
		{"15.5K", 15500},
		{"3.4M", 3400000},
		{" 2K ", 2000},
		{"garbage", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := ParseClicks(tt.s); got != tt.expected {
			t.Errorf("ParseClicks(%q) = %d, want %d", tt.s, got, tt.expected)
		}
	}
}

func TestClickRoundTripTolerance(t *testing.T) {
	// The abbreviation drops everything past one decimal; the parsed
	// value must land within half a unit of the kept decimal.
	got := ParseClicks(FormatClicks(1234))
	if got < 1150 || got >= 1250 {
		t.Errorf("round trip of 1234 out of tolerance: %d", got)
	}

	got = ParseClicks(FormatClicks(999))
	if got != 999 {
		t.Errorf("unabbreviated counts must round trip exactly, got %d", got)
	}
}
