package shadowit

// GrantType distinguishes delegated consents from application-only (admin
// consent) role assignments.
type GrantType string

const (
	GrantDelegated   GrantType = "Delegated"
	GrantApplication GrantType = "Application"
)

// ScoredGrant is one surviving risky grant with every derived fact attached.
// Field values are presentation-ready strings where the directory may return
// nothing ("N/A", "Never", "Unverified").
type ScoredGrant struct {
	GrantID   string    `json:"grantId"`
	GrantType GrantType `json:"grantType"`

	AppName           string    `json:"appName"`
	AppID             string    `json:"appId"`
	Publisher         string    `json:"publisher"`
	PublisherVerified bool      `json:"publisherVerified"`
	AppOwnerType      OwnerType `json:"appOwnerType"`
	Homepage          string    `json:"homepage"`
	ReplyURLs         string    `json:"replyUrls"`

	SecretStatus     string `json:"secretStatus"`
	CertStatus       string `json:"certStatus"`
	CredentialHealth string `json:"credentialHealth"`

	HasWildcardPermissions bool `json:"hasWildcardPermissions"`
	HasOfflineAccess       bool `json:"hasOfflineAccess"`

	RiskScore          int       `json:"riskScore"`
	RiskLevel          RiskLevel `json:"riskLevel"`
	PermissionSeverity Severity  `json:"permissionSeverity"`
	Recommendation     string    `json:"recommendation"`

	User                string `json:"user"`
	UserDisplayName     string `json:"userDisplayName"`
	UserEnabled         bool   `json:"userEnabled"`
	UserType            string `json:"userType"`
	JobTitle            string `json:"jobTitle"`
	Department          string `json:"department"`
	Manager             string `json:"manager"`
	LastSignIn          string `json:"lastSignIn"`
	DaysSinceLastSignIn int    `json:"daysSinceLastSignIn"`

	GrantStart  string `json:"grantStart"`
	GrantExpiry string `json:"grantExpiry"`
	ConsentType string `json:"consentType"`
	Scopes      string `json:"scopes"`
	RiskyScopes string `json:"riskyScopes"`

	// ClientServicePrincipalID is the service principal an application grant
	// was assigned to, kept for remediation addressing. Empty for delegated
	// grants, which revoke by grant id alone.
	ClientServicePrincipalID string `json:"-"`
}

// TenantWide reports whether the grant applies tenant-wide rather than to a
// single user.
func (g *ScoredGrant) TenantWide() bool {
	return g.ConsentType == "AllPrincipals" || g.ConsentType == "Admin"
}
