package handlers

import (
	"testing"
	"time"

	"openup/internal/models"
)

func TestResolveOutcome(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	limit := 10
	hash := hashKey("secret")

	tests := []struct {
		name     string
		link     models.Link
		clicks   int64
		key      string
		expected string
	}{
		{
			name:     "active link resolves",
			link:     models.Link{IsActive: true},
			expected: outcomeOK,
		},
		{
			name:     "inactive link",
			link:     models.Link{IsActive: false},
			expected: outcomeInactive,
		},
		{
			name:     "expired link",
			link:     models.Link{IsActive: true, ExpiresAt: &past},
			expected: outcomeExpired,
		},
		{
			name:     "future expiry still resolves",
			link:     models.Link{IsActive: true, ExpiresAt: &future},
			expected: outcomeOK,
		},
		{
			name:     "click limit reached",
			link:     models.Link{IsActive: true, ClickLimit: &limit},
			clicks:   10,
			expected: outcomeOverLimit,
		},
		{
			name:     "one click below limit resolves",
			link:     models.Link{IsActive: true, ClickLimit: &limit},
			clicks:   9,
			expected: outcomeOK,
		},
		{
			name:     "password required without key",
			link:     models.Link{IsActive: true, PasswordHash: &hash},
			expected: outcomePasswordReq,
		},
		{
			name:     "wrong password",
			link:     models.Link{IsActive: true, PasswordHash: &hash},
			key:      "nope",
			expected: outcomeBadPassword,
		},
		{
			name:     "correct password resolves",
			link:     models.Link{IsActive: true, PasswordHash: &hash},
			key:      "secret",
			expected: outcomeOK,
		},
		{
			name:     "inactive wins over expiry",
			link:     models.Link{IsActive: false, ExpiresAt: &past},
			expected: outcomeInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveOutcome(&tt.link, tt.clicks, tt.key, now)
			if got != tt.expected {
				t.Errorf("resolveOutcome() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDeviceType(t *testing.T) {
	tests := []struct {
		name     string
		ua       string
		expected string
	}{
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)", "mobile"},
		{"android", "Mozilla/5.0 (Linux; Android 14)", "mobile"},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 17_0)", "tablet"},
		{"desktop chrome", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0", "desktop"},
		{"empty", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deviceType(tt.ua); got != tt.expected {
				t.Errorf("deviceType(%q) = %q, want %q", tt.ua, got, tt.expected)
			}
		})
	}
}
