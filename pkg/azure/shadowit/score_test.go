package shadowit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/entrascan/entrascan/pkg/azure/graph"
)

// cleanFactors triggers nothing except the unavoidable publisher check,
// which is neutralized by marking the publisher verified.
func cleanFactors() RiskFactors {
	return RiskFactors{
		PublisherVerified: true,
		AppOwnerType:      OwnerInternal,
		CredentialHealth:  "Healthy",
		UserEnabled:       true,
		UserType:          "Member",
		ConsentType:       graph.ConsentTypePrincipal,
	}
}

func TestScoreZeroWhenNothingTriggers(t *testing.T) {
	assert.Equal(t, 0, Score(cleanFactors()))
}

func TestScoreIndividualFactors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RiskFactors)
		want   int
	}{
		{"wildcard", func(f *RiskFactors) { f.HasWildcard = true }, 20},
		{"directory write", func(f *RiskFactors) { f.RiskyScopes = []string{"Directory.ReadWrite.All"} }, 15},
		{"mail read", func(f *RiskFactors) { f.RiskyScopes = []string{"Mail.Read"} }, 10},
		{"files read all", func(f *RiskFactors) { f.RiskyScopes = []string{"Files.Read.All"} }, 10},
		{"offline access", func(f *RiskFactors) { f.HasOfflineAccess = true }, 5},
		{"unverified publisher", func(f *RiskFactors) { f.PublisherVerified = false }, 15},
		{"third party", func(f *RiskFactors) { f.AppOwnerType = OwnerThirdParty }, 10},
		{"expired credentials", func(f *RiskFactors) { f.CredentialHealth = "ALL EXPIRED" }, 10},
		{"expiring credentials", func(f *RiskFactors) { f.CredentialHealth = "EXPIRING SOON (3 days)" }, 5},
		{"zombie user", func(f *RiskFactors) { f.DaysSinceLastSignIn = 181 }, 10},
		{"at threshold not zombie", func(f *RiskFactors) { f.DaysSinceLastSignIn = 180 }, 0},
		{"disabled user", func(f *RiskFactors) { f.UserEnabled = false }, 5},
		{"guest user", func(f *RiskFactors) { f.UserType = "Guest" }, 5},
		{"tenant-wide all principals", func(f *RiskFactors) { f.ConsentType = graph.ConsentTypeAllPrincipals }, 10},
		{"tenant-wide admin", func(f *RiskFactors) { f.ConsentType = graph.ConsentTypeAdmin }, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := cleanFactors()
			tt.mutate(&f)
			assert.Equal(t, tt.want, Score(f))
		})
	}
}

func TestScoreMailSubstringMatchesBroaderScopes(t *testing.T) {
	// Mail.ReadWrite carries the Mail.Read weight via substring match.
	f := cleanFactors()
	f.RiskyScopes = []string{"Mail.ReadWrite"}
	assert.Equal(t, 10, Score(f))
}

func TestScoreClampsAtHundred(t *testing.T) {
	f := RiskFactors{
		RiskyScopes:         []string{"Directory.ReadWrite.All", "Mail.Read"},
		HasWildcard:         true,
		HasOfflineAccess:    true,
		PublisherVerified:   false,
		AppOwnerType:        OwnerThirdParty,
		CredentialHealth:    "ALL EXPIRED",
		DaysSinceLastSignIn: 400,
		UserEnabled:         false,
		UserType:            "Guest",
		ConsentType:         graph.ConsentTypeAllPrincipals,
	}
	assert.Equal(t, 100, Score(f))
}

func TestScoreMonotone(t *testing.T) {
	f := cleanFactors()
	f.RiskyScopes = []string{"Mail.Read"}
	base := Score(f)

	f.HasWildcard = true
	withWildcard := Score(f)
	assert.Greater(t, withWildcard, base)

	f.UserType = "Guest"
	assert.Greater(t, Score(f), withWildcard)
}

func TestLevelForBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  RiskLevel
	}{
		{100, LevelCritical},
		{80, LevelCritical},
		{79, LevelHigh},
		{60, LevelHigh},
		{59, LevelMedium},
		{40, LevelMedium},
		{39, LevelLow},
		{0, LevelLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.score), "score %d", tt.score)
	}
}
