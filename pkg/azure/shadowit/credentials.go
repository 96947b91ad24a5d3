package shadowit

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/entrascan/entrascan/pkg/azure/graph"
)

// Credential health classifications. EXPIRING SOON carries a day count, so
// downstream checks use strings.Contains rather than equality.
const (
	credentialHealthNone    = "None"
	credentialHealthExpired = "ALL EXPIRED"
	credentialHealthHealthy = "Healthy"

	credentialWarningWindow = 30 * 24 * time.Hour
)

// AssessCredentialHealth classifies the union of an application's password
// and certificate credentials by the latest expiry across them, i.e. the last
// date the application still holds some working credential. This is a
// liveness signal: an app whose credentials are all expired is dead weight
// that can be revoked without breaking anything.
func AssessCredentialHealth(creds []graph.Credential, now time.Time) string {
	if len(creds) == 0 {
		return credentialHealthNone
	}

	var maxExpiry time.Time
	for _, c := range creds {
		if c.EndDateTime != nil && c.EndDateTime.After(maxExpiry) {
			maxExpiry = *c.EndDateTime
		}
	}

	switch {
	case maxExpiry.Before(now):
		return credentialHealthExpired
	case !maxExpiry.After(now.Add(credentialWarningWindow)):
		daysLeft := int(math.Ceil(maxExpiry.Sub(now).Hours() / 24))
		return fmt.Sprintf("EXPIRING SOON (%d days)", daysLeft)
	default:
		return credentialHealthHealthy
	}
}

func credentialsExpired(health string) bool {
	return strings.Contains(health, "EXPIRED")
}

func credentialsExpiring(health string) bool {
	return strings.Contains(health, "EXPIRING")
}

// credentialStatus renders the per-kind secret/cert status column.
func credentialStatus(count int) string {
	if count > 0 {
		return fmt.Sprintf("Valid (%d)", count)
	}
	return "None"
}
