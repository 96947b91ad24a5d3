package shadowit

import (
	"context"
	"strings"
	"time"

	"github.com/entrascan/entrascan/pkg/azure/graph"
)

// unknownPermission is reported when an assignment's appRoleId cannot be
// matched against the resource principal's declared roles.
const unknownPermission = "Unknown"

// Collector retrieves raw grant material from the directory. Role
// declarations of resource principals are cached per run since many
// assignments target the same API.
type Collector struct {
	client  graph.DirectoryClient
	policy  *Policy
	timeout time.Duration

	appRoles map[string][]graph.AppRole
}

func NewCollector(client graph.DirectoryClient, policy *Policy, timeout time.Duration) *Collector {
	return &Collector{
		client:   client,
		policy:   policy,
		timeout:  timeout,
		appRoles: make(map[string][]graph.AppRole),
	}
}

// DelegatedGrants fetches all OAuth2 permission grants. Failure here is
// fatal for the run; there is nothing to scan without the listing.
func (c *Collector) DelegatedGrants(ctx context.Context) ([]graph.PermissionGrant, error) {
	return c.client.ListPermissionGrants(ctx)
}

// ServicePrincipals lists the tenant's service principals with first-party
// principals already removed: Microsoft resource principals by appId prefix
// and Microsoft-owned applications by owning organization. Filtering before
// any per-item work bounds the cost of the role-assignment pass.
func (c *Collector) ServicePrincipals(ctx context.Context) ([]graph.ServicePrincipalSummary, error) {
	all, err := c.client.ListServicePrincipals(ctx)
	if err != nil {
		return nil, err
	}

	var surviving []graph.ServicePrincipalSummary
	for _, sp := range all {
		if sp.AppID == "" {
			continue
		}
		if strings.HasPrefix(sp.AppID, c.policy.FirstPartyAppIDPrefix) {
			continue
		}
		if sp.AppOwnerOrganizationID == c.policy.FirstPartyOrgID {
			continue
		}
		surviving = append(surviving, sp)
	}
	return surviving, nil
}

// RoleAssignments fetches one service principal's app role assignments under
// the per-principal deadline, so a single unresponsive principal cannot stall
// the run. On timeout or error the caller skips the principal.
func (c *Collector) RoleAssignments(ctx context.Context, servicePrincipalID string) ([]graph.AppRoleAssignment, error) {
	return graph.CallWithDeadline(ctx, c.timeout, func(ctx context.Context) ([]graph.AppRoleAssignment, error) {
		return c.client.ListAppRoleAssignments(ctx, servicePrincipalID)
	})
}

// ResolvePermissionValue maps an assignment's appRoleId to the resource
// principal's human-readable permission string, "Unknown" when the role is
// not declared (the assignment is still evaluated against the risk rules).
func (c *Collector) ResolvePermissionValue(ctx context.Context, assignment graph.AppRoleAssignment) (string, error) {
	roles, ok := c.appRoles[assignment.ResourceID]
	if !ok {
		var err error
		roles, err = c.client.GetAppRoles(ctx, assignment.ResourceID)
		if err != nil {
			return "", err
		}
		c.appRoles[assignment.ResourceID] = roles
	}

	for _, role := range roles {
		if role.ID == assignment.AppRoleID {
			if role.Value != "" {
				return role.Value, nil
			}
			break
		}
	}
	return unknownPermission, nil
}
