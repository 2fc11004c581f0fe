package planlimit

import (
	"strings"
	"testing"
)

func TestCanCreate(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		limit    int
		expected bool
	}{
		{"under limit", 3, 5, true},
		{"one below limit", 4, 5, true},
		{"at limit", 5, 5, false},
		{"over limit", 6, 5, false},
		{"zero limit", 0, 0, false},
		{"empty account", 0, 5, true},
		{"free plan full", 5, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanCreate(tt.count, tt.limit); got != tt.expected {
				t.Errorf("CanCreate(%d, %d) = %v, want %v", tt.count, tt.limit, got, tt.expected)
			}
		})
	}
}

func TestRemaining(t *testing.T) {
	tests := []struct {
		count    int
		limit    int
		expected int
	}{
		{0, 5, 5},
		{3, 5, 2},
		{5, 5, 0},
		{7, 5, 0},
	}

	for _, tt := range tests {
		if got := Remaining(tt.count, tt.limit); got != tt.expected {
			t.Errorf("Remaining(%d, %d) = %d, want %d", tt.count, tt.limit, got, tt.expected)
		}
	}
}

func TestCheckDenial(t *testing.T) {
	d := Check("link", 5, 5)
	if d.Allowed {
		t.Fatal("expected denial at the limit boundary")
	}
	if !strings.Contains(d.Message, "Link limit reached (5)") {
		t.Errorf("unexpected denial message: %q", d.Message)
	}
	if d.UpgradePath != UpgradePath {
		t.Errorf("expected upgrade path %q, got %q", UpgradePath, d.UpgradePath)
	}
}

func TestCheckAllowed(t *testing.T) {
	d := Check("QR code", 1, 10)
	if !d.Allowed {
		t.Fatal("expected allowed below the limit")
	}
	if d.Remaining != 9 {
		t.Errorf("expected 9 remaining, got %d", d.Remaining)
	}
	if d.Message != "" {
		t.Errorf("allowed decision should carry no message, got %q", d.Message)
	}
}

func TestFeatureSet(t *testing.T) {
	s := NewFeatureSet(FeatureCustomDomain, FeatureAPIAccess)

	if !s.Has(FeatureCustomDomain) || !s.Has(FeatureAPIAccess) {
		t.Error("expected added features to be present")
	}
	if s.Has(FeatureWhiteLabel) {
		t.Error("white_label should not be present")
	}

	names := s.Names()
	if len(names) != 2 || names[0] != "custom_domain" || names[1] != "api_access" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestParseFeatureRoundTrip(t *testing.T) {
	for f := Feature(0); f < featureCount; f++ {
		parsed, err := ParseFeature(f.String())
		if err != nil {
			t.Fatalf("ParseFeature(%q): %v", f.String(), err)
		}
		if parsed != f {
			t.Errorf("round trip mismatch for %q: got %d, want %d", f.String(), parsed, f)
		}
	}

	if _, err := ParseFeature("teleportation"); err == nil {
		t.Error("expected error for unknown feature")
	}
}
