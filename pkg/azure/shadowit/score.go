package shadowit

import (
	"strings"

	"github.com/entrascan/entrascan/pkg/azure/graph"
)

// OwnerType classifies who owns the application behind a grant.
type OwnerType string

const (
	OwnerMicrosoft  OwnerType = "Microsoft"
	OwnerInternal   OwnerType = "Internal"
	OwnerThirdParty OwnerType = "ThirdParty"
)

// RiskLevel is the discrete bucket derived from the numeric score.
type RiskLevel string

const (
	LevelCritical RiskLevel = "Critical"
	LevelHigh     RiskLevel = "High"
	LevelMedium   RiskLevel = "Medium"
	LevelLow      RiskLevel = "Low"
)

const (
	zombieThresholdDays = 180
	maxRiskScore        = 100
)

// RiskFactors are the inputs to the scoring function. Application-only
// grants carry an absent user context: enabled, non-guest, zero inactivity.
type RiskFactors struct {
	RiskyScopes         []string
	HasWildcard         bool
	HasOfflineAccess    bool
	PublisherVerified   bool
	AppOwnerType        OwnerType
	CredentialHealth    string
	DaysSinceLastSignIn int
	UserEnabled         bool
	UserType            string
	ConsentType         string
}

// Score computes the weighted risk score, clamped to [0,100]. The sum is a
// monotone function of the triggered factors: adding a factor never lowers
// the score.
func Score(f RiskFactors) int {
	score := 0

	// Permission severity (0-40)
	if f.HasWildcard {
		score += 20
	}
	if anyScopeContains(f.RiskyScopes, "Directory.ReadWrite.All") {
		score += 15
	}
	if anyScopeContains(f.RiskyScopes, "Mail.Read") || anyScopeContains(f.RiskyScopes, "Files.Read.All") {
		score += 10
	}
	if f.HasOfflineAccess {
		score += 5
	}

	// Publisher trust (0-25)
	if !f.PublisherVerified {
		score += 15
	}
	if f.AppOwnerType == OwnerThirdParty {
		score += 10
	}

	// Credential hygiene (0-15)
	if credentialsExpired(f.CredentialHealth) {
		score += 10
	}
	if credentialsExpiring(f.CredentialHealth) {
		score += 5
	}

	// User context (0-20)
	if f.DaysSinceLastSignIn > zombieThresholdDays {
		score += 10
	}
	if !f.UserEnabled {
		score += 5
	}
	if f.UserType == "Guest" {
		score += 5
	}

	// Consent scope (0-10)
	if f.ConsentType == graph.ConsentTypeAllPrincipals || f.ConsentType == graph.ConsentTypeAdmin {
		score += 10
	}

	if score > maxRiskScore {
		score = maxRiskScore
	}
	return score
}

// LevelFor maps a score onto its risk level. Bounds are inclusive: 80 is
// Critical, 60 is High, 40 is Medium.
func LevelFor(score int) RiskLevel {
	switch {
	case score >= 80:
		return LevelCritical
	case score >= 60:
		return LevelHigh
	case score >= 40:
		return LevelMedium
	default:
		return LevelLow
	}
}

func anyScopeContains(scopes []string, substr string) bool {
	for _, s := range scopes {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
