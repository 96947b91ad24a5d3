// Package shadowit implements the Shadow IT risk engine: collection of OAuth2
// delegated consents and application role assignments from an Entra ID
// tenant, enrichment, risk scoring, permission classification, reporting and
// optional remediation.
package shadowit

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Severity is the coarse bucket describing the worst class of permission
// present in a grant, independent of the numeric risk score.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityMixed    Severity = "MIXED"
)

// Policy is the tunable risky-scope ruleset. Operators override the defaults
// per tenant with a YAML file; only non-empty fields replace their default.
type Policy struct {
	Version string `yaml:"version"`

	// HighRiskScopes is the flat list a delegated scope must appear on to
	// survive filtering at all.
	HighRiskScopes []string `yaml:"highRiskScopes"`

	// WildcardPatterns are regular expressions marking broad permissions
	// (e.g. anything ending in .All). Evaluated against already-risky scopes
	// for scoring, and against app role values for filtering.
	WildcardPatterns []string `yaml:"wildcardPatterns"`

	// Severity tiers. The three upper tiers are disjoint hand-curated lists;
	// anything else classifies as Low.
	CriticalScopes []string `yaml:"criticalScopes"`
	HighScopes     []string `yaml:"highScopes"`
	MediumScopes   []string `yaml:"mediumScopes"`

	// AllowedAppIDs are operator-approved application ids excluded from the
	// scan unconditionally.
	AllowedAppIDs []string `yaml:"allowedAppIds"`

	// FirstPartyOrgID is the owning organization of Microsoft first-party
	// applications; FirstPartyAppIDPrefix catches Microsoft resource service
	// principals (Graph, Exchange, ...) before any per-item work.
	FirstPartyOrgID       string `yaml:"firstPartyOrgId"`
	FirstPartyAppIDPrefix string `yaml:"firstPartyAppIdPrefix"`

	wildcards []*regexp.Regexp
}

// DefaultPolicy returns the built-in ruleset, schema version 1.
func DefaultPolicy() *Policy {
	p := &Policy{
		Version: "1",
		HighRiskScopes: []string{
			// Mail
			"Mail.Read", "Mail.ReadWrite", "Mail.Send", "MailboxSettings.ReadWrite",
			// Files
			"Files.Read.All", "Files.ReadWrite.All", "Sites.ReadWrite.All", "Sites.Manage.All",
			// Directory
			"Directory.ReadWrite.All", "Directory.AccessAsUser.All",
			"User.ReadWrite.All", "Group.ReadWrite.All",
			// Roles
			"RoleManagement.ReadWrite.Directory", "AppRoleAssignment.ReadWrite.All",
			// Identity
			"IdentityRiskEvent.ReadWrite.All", "Policy.ReadWrite.ConditionalAccess",
			// Device
			"Device.ReadWrite.All", "DeviceManagementConfiguration.ReadWrite.All",
			// Audit logs
			"AuditLog.Read.All", "SecurityEvents.ReadWrite.All",
			// Refresh tokens
			"offline_access",
		},
		WildcardPatterns: []string{
			`\.All$`,
			`^Mail\.`,
			`^Files\.`,
			`^Directory\.`,
			`^User\.`,
			`\*$`,
		},
		CriticalScopes: []string{
			"Directory.ReadWrite.All",
			"Directory.AccessAsUser.All",
			"RoleManagement.ReadWrite.Directory",
			"AppRoleAssignment.ReadWrite.All",
			"Application.ReadWrite.All",
			"Domain.ReadWrite.All",
		},
		HighScopes: []string{
			"Mail.ReadWrite",
			"Mail.Send",
			"MailboxSettings.ReadWrite",
			"Files.ReadWrite.All",
			"Sites.ReadWrite.All",
			"User.ReadWrite.All",
			"Group.ReadWrite.All",
			"Device.ReadWrite.All",
			"Policy.ReadWrite.ConditionalAccess",
			"IdentityRiskEvent.ReadWrite.All",
		},
		MediumScopes: []string{
			"Mail.Read",
			"Files.Read.All",
			"Directory.Read.All",
			"User.Read.All",
			"Contacts.ReadWrite",
			"Calendars.ReadWrite",
			"Notes.Read.All",
			"Sites.Manage.All",
		},
		AllowedAppIDs: []string{
			"00000003-0000-0000-c000-000000000000", // Microsoft Graph
		},
		FirstPartyOrgID:       "f8cdef31-a31e-4b4a-93e4-5f571e91255a",
		FirstPartyAppIDPrefix: "00000",
	}

	if err := p.compile(); err != nil {
		// Built-in patterns are constants; failing to compile them is a bug.
		panic(err)
	}
	return p
}

// LoadPolicy reads a YAML override file on top of the defaults.
func LoadPolicy(path string) (*Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var override Policy
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return nil, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}

	p := DefaultPolicy()
	if override.Version != "" {
		p.Version = override.Version
	}
	if len(override.HighRiskScopes) > 0 {
		p.HighRiskScopes = override.HighRiskScopes
	}
	if len(override.WildcardPatterns) > 0 {
		p.WildcardPatterns = override.WildcardPatterns
	}
	if len(override.CriticalScopes) > 0 {
		p.CriticalScopes = override.CriticalScopes
	}
	if len(override.HighScopes) > 0 {
		p.HighScopes = override.HighScopes
	}
	if len(override.MediumScopes) > 0 {
		p.MediumScopes = override.MediumScopes
	}
	if len(override.AllowedAppIDs) > 0 {
		p.AllowedAppIDs = override.AllowedAppIDs
	}
	if override.FirstPartyOrgID != "" {
		p.FirstPartyOrgID = override.FirstPartyOrgID
	}
	if override.FirstPartyAppIDPrefix != "" {
		p.FirstPartyAppIDPrefix = override.FirstPartyAppIDPrefix
	}

	if err := p.compile(); err != nil {
		return nil, fmt.Errorf("invalid policy file %s: %w", path, err)
	}
	return p, nil
}

func (p *Policy) compile() error {
	p.wildcards = p.wildcards[:0]
	for _, pattern := range p.WildcardPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("wildcard pattern %q: %w", pattern, err)
		}
		p.wildcards = append(p.wildcards, re)
	}
	return nil
}

// IsHighRisk reports whether the scope is on the high-risk list.
func (p *Policy) IsHighRisk(scope string) bool {
	return contains(p.HighRiskScopes, scope)
}

// IsWildcard reports whether any wildcard pattern matches the scope.
func (p *Policy) IsWildcard(scope string) bool {
	for _, re := range p.wildcards {
		if re.MatchString(scope) {
			return true
		}
	}
	return false
}

// RiskyScopes filters a grant's scope list down to the high-risk members,
// preserving order.
func (p *Policy) RiskyScopes(scopes []string) []string {
	var risky []string
	for _, s := range scopes {
		if p.IsHighRisk(s) {
			risky = append(risky, s)
		}
	}
	return risky
}

// HasWildcard reports whether any of the given scopes matches a wildcard
// pattern.
func (p *Policy) HasWildcard(scopes []string) bool {
	for _, s := range scopes {
		if p.IsWildcard(s) {
			return true
		}
	}
	return false
}

// IsAllowedApp reports whether the appId is on the operator allow-list.
func (p *Policy) IsAllowedApp(appID string) bool {
	return contains(p.AllowedAppIDs, appID)
}

// ClassifySeverity buckets a risky-scope set into a severity tier. If scopes
// from two or more of the upper tiers are present the result is MIXED; if
// none match an upper tier the result is Low.
func (p *Policy) ClassifySeverity(scopes []string) Severity {
	var hasCritical, hasHigh, hasMedium bool

	for _, s := range scopes {
		if s == "" {
			continue
		}
		switch {
		case contains(p.CriticalScopes, s):
			hasCritical = true
		case contains(p.HighScopes, s):
			hasHigh = true
		case contains(p.MediumScopes, s):
			hasMedium = true
		}
	}

	tiers := 0
	for _, present := range []bool{hasCritical, hasHigh, hasMedium} {
		if present {
			tiers++
		}
	}
	if tiers > 1 {
		return SeverityMixed
	}

	switch {
	case hasCritical:
		return SeverityCritical
	case hasHigh:
		return SeverityHigh
	case hasMedium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
