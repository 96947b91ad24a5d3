package shadowit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/entrascan/entrascan/pkg/azure/graph"
)

const (
	// managerUnknown is cached when a user has no resolvable manager.
	managerUnknown = "No Manager"

	// tenantWideUserID is the synthetic principal representing tenant-wide
	// admin consent; it never reaches the directory API.
	tenantWideUserID = "admin"
)

// EntityCache memoizes the three entity lookups the scan performs per grant.
// Entries are write-once per id per run; failed lookups are cached too so a
// deleted object costs exactly one round trip. Single scan use only, no
// locking by design of the sequential pipeline.
type EntityCache struct {
	client graph.DirectoryClient

	apps     map[string]*appEntry
	users    map[string]*graph.DirectoryUser
	managers map[string]string
}

type appEntry struct {
	sp  *graph.ServicePrincipal
	err error
}

func NewEntityCache(client graph.DirectoryClient) *EntityCache {
	return &EntityCache{
		client:   client,
		apps:     make(map[string]*appEntry),
		users:    make(map[string]*graph.DirectoryUser),
		managers: make(map[string]string),
	}
}

// ResolveApplication returns the full service principal for an id. A lookup
// failure is returned to the caller (an app that cannot be resolved cannot be
// risk-assessed) and remembered, so repeated grants against a deleted app
// short-circuit.
func (c *EntityCache) ResolveApplication(ctx context.Context, id string) (*graph.ServicePrincipal, error) {
	if entry, ok := c.apps[id]; ok {
		return entry.sp, entry.err
	}

	sp, err := c.client.GetServicePrincipal(ctx, id)
	if err != nil {
		err = fmt.Errorf("application %s unavailable: %w", id, err)
		c.apps[id] = &appEntry{err: err}
		return nil, err
	}

	c.apps[id] = &appEntry{sp: sp}
	return sp, nil
}

// ResolveUser returns the directory user for an id, or a disabled
// "Unknown/Deleted" placeholder when the lookup fails. A missing user is a
// signal, not a hard error, so scoring proceeds with the placeholder.
func (c *EntityCache) ResolveUser(ctx context.Context, id string) *graph.DirectoryUser {
	if user, ok := c.users[id]; ok {
		return user
	}

	user, err := c.client.GetUser(ctx, id)
	if err != nil {
		slog.Debug("user lookup failed, using placeholder", "user_id", id, "error", err)
		user = unknownUser(id)
	}

	c.users[id] = user
	return user
}

// ResolveManager returns the manager's email (or UPN) for a user, or the
// "No Manager" sentinel. Never called for the tenant-wide synthetic user.
func (c *EntityCache) ResolveManager(ctx context.Context, userID string) string {
	if manager, ok := c.managers[userID]; ok {
		return manager
	}

	manager, err := c.client.GetUserManager(ctx, userID)
	if err != nil || manager == "" {
		manager = managerUnknown
	}

	c.managers[userID] = manager
	return manager
}

// unknownUser is the placeholder for users that vanished mid-scan.
func unknownUser(id string) *graph.DirectoryUser {
	return &graph.DirectoryUser{
		ID:                id,
		DisplayName:       "Unknown/Deleted",
		UserPrincipalName: "N/A",
		JobTitle:          "N/A",
		Department:        "N/A",
		AccountEnabled:    false,
		UserType:          "Unknown",
	}
}

// tenantWideUser is the synthetic principal used when a grant carries no
// individual user (admin consent).
func tenantWideUser() *graph.DirectoryUser {
	return &graph.DirectoryUser{
		ID:                tenantWideUserID,
		DisplayName:       "Organization Wide",
		UserPrincipalName: "All Users (Tenant-Wide)",
		JobTitle:          "N/A",
		Department:        "N/A",
		AccountEnabled:    true,
		UserType:          "N/A",
	}
}
