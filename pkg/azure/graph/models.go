package graph

import (
	"time"
)

// Consent types recorded on an OAuth2 permission grant. AllPrincipals and
// Admin both denote tenant-wide consent.
const (
	ConsentTypePrincipal     = "Principal"
	ConsentTypeAllPrincipals = "AllPrincipals"
	ConsentTypeAdmin         = "Admin"
)

// PermissionGrant is a delegated OAuth2 consent. PrincipalID is empty for
// tenant-wide admin consent. StartTime and ExpiryTime are nil when the
// directory does not report a validity window, which Graph v1.0 never does.
type PermissionGrant struct {
	ID          string
	ClientID    string
	PrincipalID string
	ConsentType string
	Scope       string
	StartTime   *time.Time
	ExpiryTime  *time.Time
}

// ServicePrincipalSummary is the slim projection used for tenant-wide
// service principal listings.
type ServicePrincipalSummary struct {
	ID                     string
	AppID                  string
	DisplayName            string
	AppOwnerOrganizationID string
}

// Credential is a password or certificate credential on a service principal.
type Credential struct {
	EndDateTime *time.Time
}

type ServicePrincipal struct {
	ID                     string
	AppID                  string
	DisplayName            string
	PublisherName          string
	VerifiedPublisher      bool
	Homepage               string
	ReplyURLs              []string
	PasswordCredentials    []Credential
	KeyCredentials         []Credential
	AppOwnerOrganizationID string
	SignInAudience         string
}

type DirectoryUser struct {
	ID                string
	DisplayName       string
	UserPrincipalName string
	JobTitle          string
	Department        string
	LastSignIn        *time.Time
	AccountEnabled    bool
	UserType          string
}

// AppRoleAssignment is an application-only (admin consent) grant of an app
// role on a resource API. The principal is always the tenant.
type AppRoleAssignment struct {
	ID              string
	ResourceID      string
	AppRoleID       string
	CreatedDateTime *time.Time
}

// AppRole is a role declared by a resource service principal. Value is the
// human-readable permission string, e.g. "Mail.Read".
type AppRole struct {
	ID    string
	Value string
}
