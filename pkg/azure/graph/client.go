// Package graph wraps the Microsoft Graph directory API surface the scan
// engine consumes. The engine only sees the DirectoryClient interface; the
// production implementation lives in msgraph.go.
package graph

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrDeadline marks a directory call abandoned because its per-call deadline
// elapsed. The recovery policy treats it like any other per-item failure.
var ErrDeadline = errors.New("directory call deadline exceeded")

// DirectoryClient is the directory API surface consumed by the engine.
// Transport, auth, retries and rate limiting are the implementation's
// problem; callers treat every method as a blocking request/response pair.
type DirectoryClient interface {
	// OrganizationID returns the tenant id of the signed-in organization.
	OrganizationID(ctx context.Context) (string, error)

	ListPermissionGrants(ctx context.Context) ([]PermissionGrant, error)
	ListServicePrincipals(ctx context.Context) ([]ServicePrincipalSummary, error)
	GetServicePrincipal(ctx context.Context, id string) (*ServicePrincipal, error)
	GetUser(ctx context.Context, id string) (*DirectoryUser, error)
	// GetUserManager returns the manager's mail address or UPN.
	GetUserManager(ctx context.Context, userID string) (string, error)
	ListAppRoleAssignments(ctx context.Context, servicePrincipalID string) ([]AppRoleAssignment, error)
	// GetAppRoles returns the roles declared by a resource service principal.
	GetAppRoles(ctx context.Context, resourceID string) ([]AppRole, error)

	DeletePermissionGrant(ctx context.Context, grantID string) error
	DeleteAppRoleAssignment(ctx context.Context, servicePrincipalID, assignmentID string) error

	// Offboarding operations: sequential one-shot account controls.
	DisableUser(ctx context.Context, userID string) error
	RevokeSignInSessions(ctx context.Context, userID string) error
}

// CallWithDeadline races fn against a fixed timer so one unresponsive
// downstream call cannot stall the whole scan. On deadline the call is
// treated as failed and its eventual result is discarded.
func CallWithDeadline[T any](ctx context.Context, deadline time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}

	// Buffered so the late goroutine can exit after a deadline loss.
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(ctx)
		done <- outcome{value: v, err: err}
	}()

	select {
	case o := <-done:
		return o.value, o.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%w (%s)", ErrDeadline, deadline)
	}
}
