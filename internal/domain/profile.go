package domain

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DomainProfile tells the taste pipeline which Qloo entity types apply to a
// user-facing domain. A zero profile means nothing can be searched or fetched.
type DomainProfile struct {
	SearchType        string `yaml:"search_type"`
	InsightFilterType string `yaml:"insight_filter_type"`
	SampleEntityID    string `yaml:"sample_entity_id"`
}

// IsZero reports whether the profile carries no Qloo configuration at all.
func (p DomainProfile) IsZero() bool {
	return p.SearchType == "" && p.InsightFilterType == "" && p.SampleEntityID == ""
}

// ProfileTable is the read-only domain → profile mapping loaded at startup.
type ProfileTable struct {
	profiles map[string]DomainProfile
}

//go:embed data/domain_profiles.yaml
var domainProfilesYAML []byte

// LoadDefaultProfiles parses the embedded profile table.
func LoadDefaultProfiles() (*ProfileTable, error) {
	return parseProfiles(domainProfilesYAML)
}

// LoadProfiles returns the embedded table with entries from overridePath layered
// on top. An empty path yields the defaults unchanged.
func LoadProfiles(overridePath string) (*ProfileTable, error) {
	table, err := LoadDefaultProfiles()
	if err != nil {
		return nil, fmt.Errorf("load default domain profiles: %w", err)
	}

	if strings.TrimSpace(overridePath) == "" {
		return table, nil
	}

	data, err := os.ReadFile(overridePath)
	if err != nil {
		return nil, fmt.Errorf("read domain profiles %s: %w", overridePath, err)
	}

	overrides, err := parseProfiles(data)
	if err != nil {
		return nil, fmt.Errorf("parse domain profiles %s: %w", overridePath, err)
	}

	for key, profile := range overrides.profiles {
		table.profiles[key] = profile
	}

	return table, nil
}

// NewProfileTable builds a table from an in-memory map. Keys are normalized.
func NewProfileTable(profiles map[string]DomainProfile) *ProfileTable {
	normalized := make(map[string]DomainProfile, len(profiles))
	for key, profile := range profiles {
		normalized[normalizeDomainKey(key)] = profile
	}
	return &ProfileTable{profiles: normalized}
}

// Lookup returns the profile for domain. Unknown domains get the zero profile.
func (t *ProfileTable) Lookup(domain string) DomainProfile {
	if t == nil {
		return DomainProfile{}
	}
	return t.profiles[normalizeDomainKey(domain)]
}

// Domains returns the configured domain keys in sorted order.
func (t *ProfileTable) Domains() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, 0, len(t.profiles))
	for key := range t.profiles {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func parseProfiles(data []byte) (*ProfileTable, error) {
	raw := make(map[string]DomainProfile)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return NewProfileTable(raw), nil
}

func normalizeDomainKey(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}
