package planlimit

import "fmt"

// Feature is one entry in the closed enumeration of plan feature
// flags. Plans carry a FeatureSet bitset; there is no arbitrary
// key lookup.
type Feature uint8

const (
	FeatureCustomDomain Feature = iota
	FeatureAnalyticsExport
	FeaturePasswordProtection
	FeatureExpiringLinks
	FeatureGeoTargeting
	FeatureDeepLinks
	FeatureBrandedQR
	FeatureAPIAccess
	FeatureTeamCollaboration
	FeaturePrioritySupport
	FeatureWhiteLabel

	featureCount // sentinel, keep last
)

var featureNames = [featureCount]string{
	FeatureCustomDomain:       "custom_domain",
	FeatureAnalyticsExport:    "analytics_export",
	FeaturePasswordProtection: "password_protection",
	FeatureExpiringLinks:      "expiring_links",
	FeatureGeoTargeting:       "geo_targeting",
	FeatureDeepLinks:          "deep_links",
	FeatureBrandedQR:          "branded_qr",
	FeatureAPIAccess:          "api_access",
	FeatureTeamCollaboration:  "team_collaboration",
	FeaturePrioritySupport:    "priority_support",
	FeatureWhiteLabel:         "white_label",
}

// String returns the feature's wire name.
func (f Feature) String() string {
	if f >= featureCount {
		return fmt.Sprintf("feature(%d)", uint8(f))
	}
	return featureNames[f]
}

// ParseFeature resolves a wire name to a Feature.
func ParseFeature(name string) (Feature, error) {
	for f := Feature(0); f < featureCount; f++ {
		if featureNames[f] == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown plan feature %q", name)
}

// FeatureSet is a bitset over Feature.
type FeatureSet uint32

// NewFeatureSet builds a set from individual features.
func NewFeatureSet(features ...Feature) FeatureSet {
	var s FeatureSet
	for _, f := range features {
		s = s.Add(f)
	}
	return s
}

// Add returns the set with f enabled.
func (s FeatureSet) Add(f Feature) FeatureSet {
	return s | (1 << f)
}

// Has reports whether f is enabled.
func (s FeatureSet) Has(f Feature) bool {
	return s&(1<<f) != 0
}

// List returns the enabled features in declaration order.
func (s FeatureSet) List() []Feature {
	var out []Feature
	for f := Feature(0); f < featureCount; f++ {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Names returns the wire names of the enabled features.
func (s FeatureSet) Names() []string {
	features := s.List()
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = f.String()
	}
	return names
}
