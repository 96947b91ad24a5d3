package shadowit

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortByScoreStable(t *testing.T) {
	grants := []ScoredGrant{
		{GrantID: "a", RiskScore: 40},
		{GrantID: "b", RiskScore: 90},
		{GrantID: "c", RiskScore: 40},
		{GrantID: "d", RiskScore: 70},
	}
	SortByScore(grants)

	var ids []string
	for _, g := range grants {
		ids = append(ids, g.GrantID)
	}
	// Ties keep discovery order: a before c.
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids)
}

func TestSummarize(t *testing.T) {
	grants := []ScoredGrant{
		{GrantType: GrantDelegated, RiskLevel: LevelCritical, PublisherVerified: false, AppOwnerType: OwnerThirdParty, CredentialHealth: "ALL EXPIRED", DaysSinceLastSignIn: 300},
		{GrantType: GrantDelegated, RiskLevel: LevelMedium, PublisherVerified: true, AppOwnerType: OwnerInternal, CredentialHealth: "Healthy"},
		{GrantType: GrantApplication, RiskLevel: LevelHigh, PublisherVerified: false, AppOwnerType: OwnerThirdParty, CredentialHealth: "None"},
	}

	s := Summarize(grants)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Delegated)
	assert.Equal(t, 1, s.Application)
	assert.Equal(t, 1, s.Critical)
	assert.Equal(t, 1, s.High)
	assert.Equal(t, 1, s.Medium)
	assert.Equal(t, 0, s.Low)
	assert.Equal(t, 2, s.Unverified)
	assert.Equal(t, 2, s.ThirdParty)
	assert.Equal(t, 1, s.Expired)
	assert.Equal(t, 1, s.Zombies)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 20))
	assert.Equal(t, strings.Repeat("x", 20), Truncate(strings.Repeat("x", 20), 20))

	long := strings.Repeat("x", 55)
	got := Truncate(long, 50)
	assert.Len(t, got, 50)
	assert.Equal(t, strings.Repeat("x", 47)+"...", got)

	// Multibyte publisher names must not be cut mid-rune.
	wide := strings.Repeat("ü", 25)
	got = Truncate(wide, 20)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("ü", 17)+"...", got)
	assert.Equal(t, strings.Repeat("日", 10), Truncate(strings.Repeat("日", 10), 10))
}

func TestBuildTableCapsAtFifty(t *testing.T) {
	grants := make([]ScoredGrant, 60)
	for i := range grants {
		grants[i] = ScoredGrant{
			GrantID:   fmt.Sprintf("g-%d", i),
			GrantType: GrantDelegated,
			AppName:   fmt.Sprintf("App %d", i),
			RiskScore: 100 - i,
		}
	}

	table := BuildTable(grants)
	assert.Len(t, table.Rows, 50)
	assert.Len(t, table.Headers, 10)
}

func TestBuildTableRow(t *testing.T) {
	g := ScoredGrant{
		GrantID:             "g-1",
		GrantType:           GrantDelegated,
		AppName:             "Legacy Mail Sync",
		Publisher:           "A Very Long Publisher Name Indeed",
		PermissionSeverity:  SeverityHigh,
		User:                "pat@contoso.com",
		DaysSinceLastSignIn: 400,
		ConsentType:         "Principal",
		RiskScore:           90,
		RiskyScopes:         "Mail.ReadWrite offline_access",
		Recommendation:      "Review: High-privileged access",
	}

	table := BuildTable([]ScoredGrant{g})
	require.Len(t, table.Rows, 1)

	row := table.Rows[0]
	assert.Equal(t, "90", row[0])
	assert.Equal(t, "Legacy Mail Sync", row[1])
	assert.Equal(t, "A Very Long Publi...", row[2])
	assert.Equal(t, "HIGH", row[3])
	assert.Equal(t, "Delegated", row[4])
	assert.Equal(t, "pat@contoso.com", row[5])
	assert.Equal(t, "1y ago", row[6])
	assert.Equal(t, "User", row[7])
}

func TestLastActiveDisplay(t *testing.T) {
	tests := []struct {
		name  string
		grant ScoredGrant
		want  string
	}{
		{"application grant", ScoredGrant{GrantType: GrantApplication}, "N/A"},
		{"never signed in", ScoredGrant{GrantType: GrantDelegated, LastSignIn: "Never"}, "Never"},
		{"no activity data", ScoredGrant{GrantType: GrantDelegated, LastSignIn: "N/A"}, "N/A"},
		{"days", ScoredGrant{GrantType: GrantDelegated, DaysSinceLastSignIn: 12}, "12d ago"},
		{"months", ScoredGrant{GrantType: GrantDelegated, DaysSinceLastSignIn: 95}, "3mo ago"},
		{"years", ScoredGrant{GrantType: GrantDelegated, DaysSinceLastSignIn: 800}, "2y ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lastActiveDisplay(tt.grant))
		})
	}
}

func TestSummaryText(t *testing.T) {
	s := Summary{Total: 3, Delegated: 2, Application: 1, Critical: 1, High: 1, Medium: 1, Unverified: 2, ThirdParty: 2, Expired: 1, Zombies: 1}

	text := SummaryText(s)
	assert.Contains(t, text, "=== Shadow IT Audit Summary ===")
	assert.Contains(t, text, "Scanned: 3 risky apps (2 Delegated, 1 Application)")
	assert.Contains(t, text, "Critical: 1 apps")
	assert.Contains(t, text, "2 apps from unverified publishers")
	assert.NotContains(t, text, "Showing top")
}

func TestSummaryTextMentionsOverflow(t *testing.T) {
	text := SummaryText(Summary{Total: 73})
	assert.Contains(t, text, "Showing top 50 of 73 risky apps")
}

func TestCSVRecords(t *testing.T) {
	grants := []ScoredGrant{{
		GrantID:   "g-1",
		GrantType: GrantDelegated,
		AppName:   "Legacy Mail Sync",
		RiskScore: 90,
		RiskLevel: LevelCritical,
	}}

	records := CSVRecords(grants)
	require.Len(t, records, 2)

	header := records[0]
	assert.Equal(t, "SchemaVersion", header[0])
	assert.Len(t, header, 33)

	row := records[1]
	require.Len(t, row, len(header))
	assert.Equal(t, CSVSchemaVersion, row[0])
	assert.Equal(t, "g-1", row[1])
	assert.Equal(t, "Delegated", row[2])
	assert.Equal(t, "90", row[15])
	assert.Equal(t, "Critical", row[16])
}
