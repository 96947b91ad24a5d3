package graph

import (
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/google/uuid"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeGrant(t *testing.T) {
	g := models.NewOAuth2PermissionGrant()
	g.SetId(to.Ptr("grant-1"))
	g.SetClientId(to.Ptr("sp-1"))
	g.SetPrincipalId(to.Ptr("user-1"))
	g.SetConsentType(to.Ptr("AllPrincipals"))
	g.SetScope(to.Ptr("Mail.Read offline_access"))

	got := decodeGrant(g)

	assert.Equal(t, "grant-1", got.ID)
	assert.Equal(t, "sp-1", got.ClientID)
	assert.Equal(t, "user-1", got.PrincipalID)
	assert.Equal(t, "AllPrincipals", got.ConsentType)
	assert.Equal(t, "Mail.Read offline_access", got.Scope)
	// Graph v1.0 grants expose no validity window.
	assert.Nil(t, got.StartTime)
	assert.Nil(t, got.ExpiryTime)
}

func TestDecodeGrantEmpty(t *testing.T) {
	got := decodeGrant(models.NewOAuth2PermissionGrant())
	assert.Equal(t, PermissionGrant{}, got)
}

func TestDecodeServicePrincipalVerified(t *testing.T) {
	orgID := uuid.New()
	expiry := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	vp := models.NewVerifiedPublisher()
	vp.SetDisplayName(to.Ptr("Contoso Ltd"))

	secret := models.NewPasswordCredential()
	secret.SetEndDateTime(to.Ptr(expiry))

	sp := models.NewServicePrincipal()
	sp.SetId(to.Ptr("sp-1"))
	sp.SetAppId(to.Ptr("app-1"))
	sp.SetDisplayName(to.Ptr("Legacy Mail Sync"))
	sp.SetVerifiedPublisher(vp)
	sp.SetHomepage(to.Ptr("https://contoso.example"))
	sp.SetReplyUrls([]string{"https://contoso.example/cb"})
	sp.SetPasswordCredentials([]models.PasswordCredentialable{secret})
	sp.SetAppOwnerOrganizationId(&orgID)
	sp.SetSignInAudience(to.Ptr("AzureADMultipleOrgs"))

	got := decodeServicePrincipal(sp)

	assert.Equal(t, "sp-1", got.ID)
	assert.Equal(t, "app-1", got.AppID)
	assert.Equal(t, "Legacy Mail Sync", got.DisplayName)
	assert.Equal(t, "Contoso Ltd", got.PublisherName)
	assert.True(t, got.VerifiedPublisher)
	assert.Equal(t, "https://contoso.example", got.Homepage)
	assert.Equal(t, []string{"https://contoso.example/cb"}, got.ReplyURLs)
	require.Len(t, got.PasswordCredentials, 1)
	assert.Equal(t, expiry, *got.PasswordCredentials[0].EndDateTime)
	assert.Empty(t, got.KeyCredentials)
	assert.Equal(t, orgID.String(), got.AppOwnerOrganizationID)
	assert.Equal(t, "AzureADMultipleOrgs", got.SignInAudience)
}

func TestDecodeServicePrincipalUnverified(t *testing.T) {
	// No verifiedPublisher facet means no publisher name at all.
	sp := models.NewServicePrincipal()
	sp.SetId(to.Ptr("sp-2"))
	sp.SetDisplayName(to.Ptr("Mystery App"))

	got := decodeServicePrincipal(sp)

	assert.Empty(t, got.PublisherName)
	assert.False(t, got.VerifiedPublisher)
	assert.Empty(t, got.AppOwnerOrganizationID)
}
