package shadowit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/entrascan/entrascan/pkg/azure/graph"
)

// RemediationFailure records one grant that could not be revoked.
type RemediationFailure struct {
	GrantID string `json:"grantId"`
	AppName string `json:"appName"`
	Reason  string `json:"reason"`
}

// RemediationReport tallies a revocation pass.
type RemediationReport struct {
	Revoked  int                  `json:"revoked"`
	Total    int                  `json:"total"`
	Failures []RemediationFailure `json:"failures,omitempty"`
}

func (r RemediationReport) Message() string {
	return fmt.Sprintf("Revoked %d/%d risky grants", r.Revoked, r.Total)
}

// Remediate revokes every recorded grant, best effort: each deletion is
// independent, failures are tallied and remaining grants still processed.
// Delegated grants revoke by grant id; application grants delete the role
// assignment under the client service principal it was assigned to.
func Remediate(ctx context.Context, client graph.DirectoryClient, grants []ScoredGrant, progress ProgressFunc) RemediationReport {
	report := RemediationReport{Total: len(grants)}

	for _, g := range grants {
		var err error
		switch g.GrantType {
		case GrantDelegated:
			err = client.DeletePermissionGrant(ctx, g.GrantID)
		case GrantApplication:
			err = client.DeleteAppRoleAssignment(ctx, g.ClientServicePrincipalID, g.GrantID)
		default:
			err = fmt.Errorf("unknown grant type %q", g.GrantType)
		}

		if err != nil {
			slog.Warn("failed to revoke grant", "grant_id", g.GrantID, "app", g.AppName, "error", err)
			report.Failures = append(report.Failures, RemediationFailure{
				GrantID: g.GrantID,
				AppName: g.AppName,
				Reason:  err.Error(),
			})
			continue
		}

		report.Revoked++
		if progress != nil {
			progress(fmt.Sprintf("Revoked %s (%s)", g.AppName, g.GrantType), 95)
		}
	}

	return report
}
