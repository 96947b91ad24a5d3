package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/google/uuid"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	msgraphcore "github.com/microsoftgraph/msgraph-sdk-go-core"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/microsoftgraph/msgraph-sdk-go/organization"
	"github.com/microsoftgraph/msgraph-sdk-go/serviceprincipals"
	"github.com/microsoftgraph/msgraph-sdk-go/users"
)

var graphScopes = []string{"https://graph.microsoft.com/.default"}

// MSGraphClient is the production DirectoryClient backed by the Microsoft
// Graph SDK with DefaultAzureCredential auth.
type MSGraphClient struct {
	sdk *msgraphsdk.GraphServiceClient
}

var _ DirectoryClient = (*MSGraphClient)(nil)

// NewMSGraphClient authenticates with DefaultAzureCredential and verifies the
// token by reading the organization object. Auth failure here is fatal for
// the whole run.
func NewMSGraphClient(ctx context.Context) (*MSGraphClient, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get Azure credentials: %w", err)
	}

	sdk, err := msgraphsdk.NewGraphServiceClientWithCredentials(cred, graphScopes)
	if err != nil {
		return nil, fmt.Errorf("failed to create Graph client: %w", err)
	}

	c := &MSGraphClient{sdk: sdk}

	testCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tenantID, err := c.OrganizationID(testCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate to Graph API: %w", err)
	}
	slog.Debug("authenticated to Graph API", "tenant_id", tenantID)

	return c, nil
}

func (c *MSGraphClient) OrganizationID(ctx context.Context) (string, error) {
	org, err := c.sdk.Organization().Get(ctx, &organization.OrganizationRequestBuilderGetRequestConfiguration{})
	if err != nil {
		return "", fmt.Errorf("failed to get organization details: %w", err)
	}

	if value := org.GetValue(); len(value) > 0 {
		if id := value[0].GetId(); id != nil {
			return *id, nil
		}
	}
	return "", fmt.Errorf("organization listing returned no tenant id")
}

func (c *MSGraphClient) ListPermissionGrants(ctx context.Context) ([]PermissionGrant, error) {
	result, err := c.sdk.Oauth2PermissionGrants().Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list oauth2 permission grants: %w", err)
	}

	iterator, err := msgraphcore.NewPageIterator[models.OAuth2PermissionGrantable](
		result,
		c.sdk.GetAdapter(),
		models.CreateOAuth2PermissionGrantCollectionResponseFromDiscriminatorValue)
	if err != nil {
		return nil, fmt.Errorf("failed to create grant page iterator: %w", err)
	}

	var grants []PermissionGrant
	err = iterator.Iterate(ctx, func(g models.OAuth2PermissionGrantable) bool {
		if g == nil {
			return true
		}
		grants = append(grants, decodeGrant(g))
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate oauth2 permission grants: %w", err)
	}

	return grants, nil
}

// decodeGrant maps a Graph oauth2PermissionGrant onto the wire-neutral type.
// Graph v1.0 grants carry no start/expiry properties; those fields stay nil
// and render as "Unknown"/"Never" downstream.
func decodeGrant(g models.OAuth2PermissionGrantable) PermissionGrant {
	return PermissionGrant{
		ID:          deref(g.GetId()),
		ClientID:    deref(g.GetClientId()),
		PrincipalID: deref(g.GetPrincipalId()),
		ConsentType: deref(g.GetConsentType()),
		Scope:       deref(g.GetScope()),
	}
}

func (c *MSGraphClient) ListServicePrincipals(ctx context.Context) ([]ServicePrincipalSummary, error) {
	top := int32(999)
	result, err := c.sdk.ServicePrincipals().Get(ctx, &serviceprincipals.ServicePrincipalsRequestBuilderGetRequestConfiguration{
		QueryParameters: &serviceprincipals.ServicePrincipalsRequestBuilderGetQueryParameters{
			Select: []string{"id", "appId", "displayName", "appOwnerOrganizationId"},
			Top:    &top,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list service principals: %w", err)
	}

	iterator, err := msgraphcore.NewPageIterator[models.ServicePrincipalable](
		result,
		c.sdk.GetAdapter(),
		models.CreateServicePrincipalCollectionResponseFromDiscriminatorValue)
	if err != nil {
		return nil, fmt.Errorf("failed to create service principal page iterator: %w", err)
	}

	var sps []ServicePrincipalSummary
	err = iterator.Iterate(ctx, func(sp models.ServicePrincipalable) bool {
		if sp == nil {
			return true
		}
		sps = append(sps, ServicePrincipalSummary{
			ID:                     deref(sp.GetId()),
			AppID:                  deref(sp.GetAppId()),
			DisplayName:            deref(sp.GetDisplayName()),
			AppOwnerOrganizationID: uuidString(sp.GetAppOwnerOrganizationId()),
		})
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate service principals: %w", err)
	}

	return sps, nil
}

var servicePrincipalSelect = []string{
	"id", "appId", "displayName", "homepage", "replyUrls",
	"passwordCredentials", "keyCredentials", "verifiedPublisher",
	"appOwnerOrganizationId", "signInAudience",
}

func (c *MSGraphClient) GetServicePrincipal(ctx context.Context, id string) (*ServicePrincipal, error) {
	sp, err := c.sdk.ServicePrincipals().ByServicePrincipalId(id).Get(ctx, &serviceprincipals.ServicePrincipalItemRequestBuilderGetRequestConfiguration{
		QueryParameters: &serviceprincipals.ServicePrincipalItemRequestBuilderGetQueryParameters{
			Select: servicePrincipalSelect,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get service principal %s: %w", id, err)
	}

	return decodeServicePrincipal(sp), nil
}

// decodeServicePrincipal maps a Graph servicePrincipal onto the wire-neutral
// type. The publisher name only exists on the verifiedPublisher facet; an
// empty value renders as "Unverified" downstream.
func decodeServicePrincipal(sp models.ServicePrincipalable) *ServicePrincipal {
	publisher := ""
	if vp := sp.GetVerifiedPublisher(); vp != nil {
		publisher = deref(vp.GetDisplayName())
	}

	return &ServicePrincipal{
		ID:                     deref(sp.GetId()),
		AppID:                  deref(sp.GetAppId()),
		DisplayName:            deref(sp.GetDisplayName()),
		PublisherName:          publisher,
		VerifiedPublisher:      publisher != "",
		Homepage:               deref(sp.GetHomepage()),
		ReplyURLs:              sp.GetReplyUrls(),
		PasswordCredentials:    passwordCredentials(sp.GetPasswordCredentials()),
		KeyCredentials:         keyCredentials(sp.GetKeyCredentials()),
		AppOwnerOrganizationID: uuidString(sp.GetAppOwnerOrganizationId()),
		SignInAudience:         deref(sp.GetSignInAudience()),
	}
}

func (c *MSGraphClient) GetUser(ctx context.Context, id string) (*DirectoryUser, error) {
	u, err := c.sdk.Users().ByUserId(id).Get(ctx, &users.UserItemRequestBuilderGetRequestConfiguration{
		QueryParameters: &users.UserItemRequestBuilderGetQueryParameters{
			Select: []string{
				"id", "displayName", "userPrincipalName", "jobTitle",
				"department", "signInActivity", "accountEnabled", "userType",
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}

	user := &DirectoryUser{
		ID:                deref(u.GetId()),
		DisplayName:       deref(u.GetDisplayName()),
		UserPrincipalName: deref(u.GetUserPrincipalName()),
		JobTitle:          deref(u.GetJobTitle()),
		Department:        deref(u.GetDepartment()),
		AccountEnabled:    true,
		UserType:          "Member",
	}
	if enabled := u.GetAccountEnabled(); enabled != nil {
		user.AccountEnabled = *enabled
	}
	if userType := u.GetUserType(); userType != nil && *userType != "" {
		user.UserType = *userType
	}
	if activity := u.GetSignInActivity(); activity != nil {
		user.LastSignIn = activity.GetLastSignInDateTime()
	}

	return user, nil
}

func (c *MSGraphClient) GetUserManager(ctx context.Context, userID string) (string, error) {
	obj, err := c.sdk.Users().ByUserId(userID).Manager().Get(ctx, &users.ItemManagerRequestBuilderGetRequestConfiguration{
		QueryParameters: &users.ItemManagerRequestBuilderGetQueryParameters{
			Select: []string{"mail", "userPrincipalName"},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to get manager for %s: %w", userID, err)
	}

	manager, ok := obj.(models.Userable)
	if !ok {
		return "", fmt.Errorf("manager of %s is not a user object", userID)
	}
	if mail := manager.GetMail(); mail != nil && *mail != "" {
		return *mail, nil
	}
	return deref(manager.GetUserPrincipalName()), nil
}

func (c *MSGraphClient) ListAppRoleAssignments(ctx context.Context, servicePrincipalID string) ([]AppRoleAssignment, error) {
	result, err := c.sdk.ServicePrincipals().ByServicePrincipalId(servicePrincipalID).AppRoleAssignments().Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list app role assignments for %s: %w", servicePrincipalID, err)
	}

	var assignments []AppRoleAssignment
	for _, a := range result.GetValue() {
		if a == nil {
			continue
		}
		assignments = append(assignments, AppRoleAssignment{
			ID:              deref(a.GetId()),
			ResourceID:      uuidString(a.GetResourceId()),
			AppRoleID:       uuidString(a.GetAppRoleId()),
			CreatedDateTime: a.GetCreatedDateTime(),
		})
	}

	return assignments, nil
}

func (c *MSGraphClient) GetAppRoles(ctx context.Context, resourceID string) ([]AppRole, error) {
	sp, err := c.sdk.ServicePrincipals().ByServicePrincipalId(resourceID).Get(ctx, &serviceprincipals.ServicePrincipalItemRequestBuilderGetRequestConfiguration{
		QueryParameters: &serviceprincipals.ServicePrincipalItemRequestBuilderGetQueryParameters{
			Select: []string{"appRoles"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get app roles for %s: %w", resourceID, err)
	}

	var roles []AppRole
	for _, r := range sp.GetAppRoles() {
		if r == nil {
			continue
		}
		roles = append(roles, AppRole{
			ID:    uuidString(r.GetId()),
			Value: deref(r.GetValue()),
		})
	}

	return roles, nil
}

func (c *MSGraphClient) DeletePermissionGrant(ctx context.Context, grantID string) error {
	err := c.sdk.Oauth2PermissionGrants().ByOAuth2PermissionGrantId(grantID).Delete(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to delete oauth2 permission grant %s: %w", grantID, err)
	}
	return nil
}

func (c *MSGraphClient) DeleteAppRoleAssignment(ctx context.Context, servicePrincipalID, assignmentID string) error {
	err := c.sdk.ServicePrincipals().ByServicePrincipalId(servicePrincipalID).AppRoleAssignments().ByAppRoleAssignmentId(assignmentID).Delete(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to delete app role assignment %s: %w", assignmentID, err)
	}
	return nil
}

func (c *MSGraphClient) DisableUser(ctx context.Context, userID string) error {
	body := models.NewUser()
	body.SetAccountEnabled(to.Ptr(false))

	_, err := c.sdk.Users().ByUserId(userID).Patch(ctx, body, nil)
	if err != nil {
		return fmt.Errorf("failed to disable account for %s: %w", userID, err)
	}
	return nil
}

func (c *MSGraphClient) RevokeSignInSessions(ctx context.Context, userID string) error {
	_, err := c.sdk.Users().ByUserId(userID).RevokeSignInSessions().Post(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to revoke sign-in sessions for %s: %w", userID, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func uuidString(u *uuid.UUID) string {
	if u == nil {
		return ""
	}
	return u.String()
}

func passwordCredentials(creds []models.PasswordCredentialable) []Credential {
	out := make([]Credential, 0, len(creds))
	for _, c := range creds {
		if c == nil {
			continue
		}
		out = append(out, Credential{EndDateTime: c.GetEndDateTime()})
	}
	return out
}

func keyCredentials(creds []models.KeyCredentialable) []Credential {
	out := make([]Credential, 0, len(creds))
	for _, c := range creds {
		if c == nil {
			continue
		}
		out = append(out, Credential{EndDateTime: c.GetEndDateTime()})
	}
	return out
}
