package shadowit

import (
	"context"
	"fmt"
	"time"

	"github.com/entrascan/entrascan/pkg/azure/graph"
)

// fakeDirectory is an in-memory DirectoryClient. Lookups miss with an error
// when the id is absent from the relevant map; calls are counted per method
// so cache behavior is observable.
type fakeDirectory struct {
	tenantID   string
	grants     []graph.PermissionGrant
	principals []graph.ServicePrincipalSummary
	sps        map[string]*graph.ServicePrincipal
	users      map[string]*graph.DirectoryUser
	managers   map[string]string
	assigns    map[string][]graph.AppRoleAssignment
	roles      map[string][]graph.AppRole

	grantsErr     error
	principalsErr error
	assignDelay   map[string]time.Duration
	deleteErr     map[string]error

	calls              map[string]int
	deletedGrants      []string
	deletedAssignments []string
	disabledUsers      []string
	revokedSessions    []string
}

var _ graph.DirectoryClient = (*fakeDirectory)(nil)

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		tenantID:    "tenant-1",
		sps:         make(map[string]*graph.ServicePrincipal),
		users:       make(map[string]*graph.DirectoryUser),
		managers:    make(map[string]string),
		assigns:     make(map[string][]graph.AppRoleAssignment),
		roles:       make(map[string][]graph.AppRole),
		assignDelay: make(map[string]time.Duration),
		deleteErr:   make(map[string]error),
		calls:       make(map[string]int),
	}
}

func (f *fakeDirectory) count(method string) {
	f.calls[method]++
}

func (f *fakeDirectory) OrganizationID(ctx context.Context) (string, error) {
	f.count("OrganizationID")
	return f.tenantID, nil
}

func (f *fakeDirectory) ListPermissionGrants(ctx context.Context) ([]graph.PermissionGrant, error) {
	f.count("ListPermissionGrants")
	if f.grantsErr != nil {
		return nil, f.grantsErr
	}
	return f.grants, nil
}

func (f *fakeDirectory) ListServicePrincipals(ctx context.Context) ([]graph.ServicePrincipalSummary, error) {
	f.count("ListServicePrincipals")
	if f.principalsErr != nil {
		return nil, f.principalsErr
	}
	return f.principals, nil
}

func (f *fakeDirectory) GetServicePrincipal(ctx context.Context, id string) (*graph.ServicePrincipal, error) {
	f.count("GetServicePrincipal")
	sp, ok := f.sps[id]
	if !ok {
		return nil, fmt.Errorf("service principal %s not found", id)
	}
	return sp, nil
}

func (f *fakeDirectory) GetUser(ctx context.Context, id string) (*graph.DirectoryUser, error) {
	f.count("GetUser")
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s not found", id)
	}
	return u, nil
}

func (f *fakeDirectory) GetUserManager(ctx context.Context, userID string) (string, error) {
	f.count("GetUserManager")
	m, ok := f.managers[userID]
	if !ok {
		return "", fmt.Errorf("manager of %s not found", userID)
	}
	return m, nil
}

func (f *fakeDirectory) ListAppRoleAssignments(ctx context.Context, servicePrincipalID string) ([]graph.AppRoleAssignment, error) {
	f.count("ListAppRoleAssignments")
	if delay, ok := f.assignDelay[servicePrincipalID]; ok {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.assigns[servicePrincipalID], nil
}

func (f *fakeDirectory) GetAppRoles(ctx context.Context, resourceID string) ([]graph.AppRole, error) {
	f.count("GetAppRoles")
	roles, ok := f.roles[resourceID]
	if !ok {
		return nil, fmt.Errorf("resource %s not found", resourceID)
	}
	return roles, nil
}

func (f *fakeDirectory) DeletePermissionGrant(ctx context.Context, grantID string) error {
	f.count("DeletePermissionGrant")
	if err, ok := f.deleteErr[grantID]; ok {
		return err
	}
	f.deletedGrants = append(f.deletedGrants, grantID)
	return nil
}

func (f *fakeDirectory) DeleteAppRoleAssignment(ctx context.Context, servicePrincipalID, assignmentID string) error {
	f.count("DeleteAppRoleAssignment")
	if err, ok := f.deleteErr[assignmentID]; ok {
		return err
	}
	f.deletedAssignments = append(f.deletedAssignments, servicePrincipalID+"/"+assignmentID)
	return nil
}

func (f *fakeDirectory) DisableUser(ctx context.Context, userID string) error {
	f.count("DisableUser")
	if err, ok := f.deleteErr[userID]; ok {
		return err
	}
	f.disabledUsers = append(f.disabledUsers, userID)
	return nil
}

func (f *fakeDirectory) RevokeSignInSessions(ctx context.Context, userID string) error {
	f.count("RevokeSignInSessions")
	if err, ok := f.deleteErr[userID]; ok {
		return err
	}
	f.revokedSessions = append(f.revokedSessions, userID)
	return nil
}
