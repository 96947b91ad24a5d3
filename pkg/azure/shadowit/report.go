package shadowit

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/entrascan/entrascan/pkg/types"
)

// Display budget per table column; everything longer gets an ellipsis.
const (
	maxDisplayRows = 50

	publisherWidth      = 20
	userWidth           = 25
	scopesWidth         = 40
	recommendationWidth = 50
)

// Summary holds the aggregate counts reported alongside the table.
type Summary struct {
	Total       int `json:"total"`
	Delegated   int `json:"delegated"`
	Application int `json:"application"`
	Critical    int `json:"critical"`
	High        int `json:"high"`
	Medium      int `json:"medium"`
	Low         int `json:"low"`
	Unverified  int `json:"unverified"`
	ThirdParty  int `json:"thirdParty"`
	Expired     int `json:"expired"`
	Zombies     int `json:"zombies"`
}

// SortByScore orders grants by risk score descending. The sort is stable:
// ties keep their discovery order, so output is deterministic.
func SortByScore(grants []ScoredGrant) {
	sort.SliceStable(grants, func(i, j int) bool {
		return grants[i].RiskScore > grants[j].RiskScore
	})
}

func Summarize(grants []ScoredGrant) Summary {
	s := Summary{Total: len(grants)}
	for _, g := range grants {
		switch g.GrantType {
		case GrantDelegated:
			s.Delegated++
		case GrantApplication:
			s.Application++
		}
		switch g.RiskLevel {
		case LevelCritical:
			s.Critical++
		case LevelHigh:
			s.High++
		case LevelMedium:
			s.Medium++
		case LevelLow:
			s.Low++
		}
		if !g.PublisherVerified {
			s.Unverified++
		}
		if g.AppOwnerType == OwnerThirdParty {
			s.ThirdParty++
		}
		if credentialsExpired(g.CredentialHealth) {
			s.Expired++
		}
		if g.DaysSinceLastSignIn > zombieThresholdDays {
			s.Zombies++
		}
	}
	return s
}

// Truncate shortens s to at most width characters, marking the cut with an
// ellipsis that counts against the budget.
func Truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// BuildTable renders the presentation table for the highest-scoring grants,
// capped at 50 rows to stay terminal-friendly. The full count is still
// reported by the summary text.
func BuildTable(grants []ScoredGrant) types.MarkdownTable {
	display := grants
	if len(display) > maxDisplayRows {
		display = display[:maxDisplayRows]
	}

	rows := make([][]string, 0, len(display))
	for _, g := range display {
		rows = append(rows, []string{
			strconv.Itoa(g.RiskScore),
			orDefault(g.AppName, "Unknown"),
			Truncate(orDefault(g.Publisher, "Unknown"), publisherWidth),
			string(g.PermissionSeverity),
			string(g.GrantType),
			Truncate(orDefault(g.User, "N/A"), userWidth),
			lastActiveDisplay(g),
			consentDisplay(g),
			Truncate(g.RiskyScopes, scopesWidth),
			Truncate(orDefault(g.Recommendation, degradedRecommendation), recommendationWidth),
		})
	}

	return types.MarkdownTable{
		TableHeading: "Shadow IT Risky Grants",
		Headers: []string{
			"Risk", "App Name", "Publisher", "Permission Severity", "Type",
			"User/Scope", "Last Active", "Consent", "Risky Permissions", "Recommendation",
		},
		Rows: rows,
	}
}

// SummaryText renders the human-readable audit summary block.
func SummaryText(s Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== Shadow IT Audit Summary ===\n")
	fmt.Fprintf(&b, "Scanned: %d risky apps (%d Delegated, %d Application)\n\n", s.Total, s.Delegated, s.Application)
	fmt.Fprintf(&b, "Risk Distribution:\n")
	fmt.Fprintf(&b, "  Critical: %d apps  (Score 80-100)\n", s.Critical)
	fmt.Fprintf(&b, "  High:     %d apps  (Score 60-79)\n", s.High)
	fmt.Fprintf(&b, "  Medium:   %d apps  (Score 40-59)\n", s.Medium)
	fmt.Fprintf(&b, "  Low:      %d apps  (Score 0-39)\n\n", s.Low)
	fmt.Fprintf(&b, "Top Concerns:\n")
	fmt.Fprintf(&b, "  - %d apps from unverified publishers\n", s.Unverified)
	fmt.Fprintf(&b, "  - %d third-party apps\n", s.ThirdParty)
	fmt.Fprintf(&b, "  - %d apps with expired credentials\n", s.Expired)
	fmt.Fprintf(&b, "  - %d grants on users inactive >6 months", s.Zombies)
	if s.Total > maxDisplayRows {
		fmt.Fprintf(&b, "\n\nShowing top %d of %d risky apps", maxDisplayRows, s.Total)
	}

	return b.String()
}

func lastActiveDisplay(g ScoredGrant) string {
	if g.GrantType != GrantDelegated || g.DaysSinceLastSignIn == 0 {
		if g.LastSignIn == "Never" {
			return "Never"
		}
		return "N/A"
	}

	days := g.DaysSinceLastSignIn
	switch {
	case days > 365:
		return fmt.Sprintf("%dy ago", days/365)
	case days > 30:
		return fmt.Sprintf("%dmo ago", days/30)
	default:
		return fmt.Sprintf("%dd ago", days)
	}
}

func consentDisplay(g ScoredGrant) string {
	if g.TenantWide() {
		return "Tenant"
	}
	return "User"
}

// CSV export schema. Bump the version when columns change; consumers key on
// it.
const CSVSchemaVersion = "1"

var csvHeader = []string{
	"SchemaVersion", "GrantId", "GrantType", "AppName", "AppId", "Publisher",
	"PublisherVerified", "AppOwnerType", "Homepage", "ReplyUrls",
	"SecretStatus", "CertStatus", "CredentialHealth", "HasWildcardPermissions",
	"HasOfflineAccess", "RiskScore", "RiskLevel", "PermissionSeverity",
	"Recommendation", "User", "UserDisplayName", "UserEnabled", "UserType",
	"JobTitle", "Department", "Manager", "LastSignIn", "DaysSinceLastSignIn",
	"GrantStart", "GrantExpiry", "ConsentType", "Scopes", "RiskyScopes",
}

// CSVRecords renders the durable export: header plus one full-fidelity row
// per surviving grant, independent of the truncated display table.
func CSVRecords(grants []ScoredGrant) [][]string {
	records := make([][]string, 0, len(grants)+1)
	records = append(records, csvHeader)

	for _, g := range grants {
		records = append(records, []string{
			CSVSchemaVersion,
			g.GrantID,
			string(g.GrantType),
			g.AppName,
			g.AppID,
			g.Publisher,
			strconv.FormatBool(g.PublisherVerified),
			string(g.AppOwnerType),
			g.Homepage,
			g.ReplyURLs,
			g.SecretStatus,
			g.CertStatus,
			g.CredentialHealth,
			strconv.FormatBool(g.HasWildcardPermissions),
			strconv.FormatBool(g.HasOfflineAccess),
			strconv.Itoa(g.RiskScore),
			string(g.RiskLevel),
			string(g.PermissionSeverity),
			g.Recommendation,
			g.User,
			g.UserDisplayName,
			strconv.FormatBool(g.UserEnabled),
			g.UserType,
			g.JobTitle,
			g.Department,
			g.Manager,
			g.LastSignIn,
			strconv.Itoa(g.DaysSinceLastSignIn),
			g.GrantStart,
			g.GrantExpiry,
			g.ConsentType,
			g.Scopes,
			g.RiskyScopes,
		})
	}

	return records
}
