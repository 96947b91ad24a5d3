package shadowit

import (
	"fmt"
	"strings"

	"github.com/entrascan/entrascan/pkg/azure/graph"
)

const (
	defaultRecommendation  = "Monitor for unusual activity"
	degradedRecommendation = "Review required"

	// A recommendation keeps only the leading triggered phrases so the
	// column stays readable.
	maxRecommendationPhrases = 2
)

// RecommendationFacts are the derived grant facts the rule list consults.
type RecommendationFacts struct {
	PermissionSeverity  Severity
	PublisherVerified   bool
	AppOwnerType        OwnerType
	CredentialHealth    string
	DaysSinceLastSignIn int
	UserEnabled         bool
	ConsentType         string
}

// Recommend evaluates the ordered rule list and joins the first two
// triggered phrases. Rules are independent of severity computation; a grant
// with no triggered rule gets the default monitoring advice.
func Recommend(f RecommendationFacts) string {
	var phrases []string

	switch f.PermissionSeverity {
	case SeverityCritical:
		phrases = append(phrases, "IMMEDIATE ACTION: Critical permissions detected")
	case SeverityHigh:
		phrases = append(phrases, "Review: High-privileged access")
	}

	if !f.PublisherVerified && f.AppOwnerType == OwnerThirdParty {
		phrases = append(phrases, "Unverified third-party - verify legitimacy")
	}

	if credentialsExpired(f.CredentialHealth) {
		phrases = append(phrases, "Expired credentials - safe to revoke")
	} else if credentialsExpiring(f.CredentialHealth) {
		phrases = append(phrases, "Credentials expiring soon")
	}

	if f.DaysSinceLastSignIn > zombieThresholdDays {
		months := f.DaysSinceLastSignIn / 30
		phrases = append(phrases, fmt.Sprintf("User inactive %dmo - review need", months))
	}

	if !f.UserEnabled {
		phrases = append(phrases, "User disabled - revoke immediately")
	}

	if f.ConsentType == graph.ConsentTypeAllPrincipals || f.ConsentType == graph.ConsentTypeAdmin {
		phrases = append(phrases, "Tenant-wide - high blast radius")
	}

	if len(phrases) == 0 {
		return defaultRecommendation
	}
	if len(phrases) > maxRecommendationPhrases {
		phrases = phrases[:maxRecommendationPhrases]
	}
	return strings.Join(phrases, "; ")
}
