package shadowit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/entrascan/entrascan/pkg/azure/graph"
)

// DefaultAssignmentTimeout bounds the app-role-assignment fetch per service
// principal.
const DefaultAssignmentTimeout = 10 * time.Second

// ProgressFunc receives coarse progress milestones (message, percent 0-100).
type ProgressFunc func(message string, percent float64)

// Scanner drives the per-grant pipeline: collect, filter, enrich, score,
// classify, record. All mutable state is owned by one scan invocation;
// nothing persists across runs.
type Scanner struct {
	client   graph.DirectoryClient
	policy   *Policy
	timeout  time.Duration
	progress ProgressFunc
	now      func() time.Time

	cache     *EntityCache
	collector *Collector
	tenantID  string
}

type ScannerOption func(*Scanner)

func WithProgress(fn ProgressFunc) ScannerOption {
	return func(s *Scanner) { s.progress = fn }
}

func WithAssignmentTimeout(d time.Duration) ScannerOption {
	return func(s *Scanner) { s.timeout = d }
}

// WithClock overrides the scan's notion of now. Tests use it to pin
// credential expiry and inactivity math.
func WithClock(now func() time.Time) ScannerOption {
	return func(s *Scanner) { s.now = now }
}

func NewScanner(client graph.DirectoryClient, policy *Policy, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		client:  client,
		policy:  policy,
		timeout: DefaultAssignmentTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = NewEntityCache(client)
	s.collector = NewCollector(client, policy, s.timeout)
	return s
}

func (s *Scanner) report(message string, percent float64) {
	if s.progress != nil {
		s.progress(message, percent)
	}
}

// Scan runs the full audit and returns the recorded risky grants in
// discovery order. Only a failed grant or service principal listing aborts
// the run; every per-item failure degrades that item and continues.
func (s *Scanner) Scan(ctx context.Context) ([]ScoredGrant, error) {
	s.report("Starting Shadow IT audit...", 0)

	// Hoisted so every ownership classification uses one cached lookup.
	tenantID, err := s.client.OrganizationID(ctx)
	if err != nil {
		slog.Warn("tenant id lookup failed, internal apps will classify as third-party", "error", err)
		tenantID = "unknown"
	}
	s.tenantID = tenantID

	s.report("Fetching OAuth2 permission grants (delegated)...", 5)
	grants, err := s.collector.DelegatedGrants(ctx)
	if err != nil {
		return nil, fmt.Errorf("delegated grant collection failed: %w", err)
	}

	s.report("Fetching application permissions (app roles)...", 10)
	principals, err := s.collector.ServicePrincipals(ctx)
	if err != nil {
		return nil, fmt.Errorf("service principal collection failed: %w", err)
	}

	s.report(fmt.Sprintf("Analyzing %d delegated + application permissions...", len(grants)), 15)

	var recorded []ScoredGrant
	totalItems := len(grants) + len(principals)

	for i, grant := range grants {
		if (i+1)%10 == 0 {
			s.report(
				fmt.Sprintf("Processing delegated grants: %d/%d", i+1, len(grants)),
				20+float64(i+1)/float64(totalItems)*60)
		}
		if scored := s.processDelegated(ctx, grant); scored != nil {
			recorded = append(recorded, *scored)
		}
	}

	s.report("Scanning application permissions (admin consents)...", 80)
	s.report(fmt.Sprintf("Checking %d service principals for risky app permissions...", len(principals)), 80)

	for i, sp := range principals {
		if (i+1)%5 == 0 {
			s.report(
				fmt.Sprintf("Processing app roles: %d/%d", i+1, len(principals)),
				80+float64(i+1)/float64(len(principals))*10)
		}
		recorded = append(recorded, s.processServicePrincipal(ctx, sp)...)
	}

	return recorded, nil
}

// processDelegated runs one delegated grant through the pipeline. A nil
// return means the grant exited early: no risky scopes, excluded, or its
// application could not be resolved.
func (s *Scanner) processDelegated(ctx context.Context, grant graph.PermissionGrant) *ScoredGrant {
	riskyScopes := s.policy.RiskyScopes(strings.Fields(grant.Scope))
	if len(riskyScopes) == 0 {
		return nil
	}

	app, err := s.cache.ResolveApplication(ctx, grant.ClientID)
	if err != nil {
		// An app that cannot be resolved cannot be risk-assessed.
		slog.Debug("skipping grant, application unresolvable", "grant_id", grant.ID, "error", err)
		return nil
	}

	if s.excluded(app) {
		return nil
	}

	var user *graph.DirectoryUser
	if grant.PrincipalID == "" {
		user = tenantWideUser()
	} else {
		user = s.cache.ResolveUser(ctx, grant.PrincipalID)
	}

	manager := "N/A"
	if user.ID != tenantWideUserID && user.UserType != "Unknown" {
		manager = s.cache.ResolveManager(ctx, user.ID)
	}

	now := s.now()
	credHealth := AssessCredentialHealth(allCredentials(app), now)
	daysSince := daysSinceSignIn(user.LastSignIn, now)

	hasWildcard := s.policy.HasWildcard(riskyScopes)
	hasOffline := contains(riskyScopes, "offline_access")
	owner := s.ownerType(app.AppOwnerOrganizationID)

	score := Score(RiskFactors{
		RiskyScopes:         riskyScopes,
		HasWildcard:         hasWildcard,
		HasOfflineAccess:    hasOffline,
		PublisherVerified:   app.VerifiedPublisher,
		AppOwnerType:        owner,
		CredentialHealth:    credHealth,
		DaysSinceLastSignIn: daysSince,
		UserEnabled:         user.AccountEnabled,
		UserType:            user.UserType,
		ConsentType:         grant.ConsentType,
	})

	severity, recommendation := s.classifyGrant(riskyScopes, RecommendationFacts{
		PublisherVerified:   app.VerifiedPublisher,
		AppOwnerType:        owner,
		CredentialHealth:    credHealth,
		DaysSinceLastSignIn: daysSince,
		UserEnabled:         user.AccountEnabled,
		ConsentType:         grant.ConsentType,
	})

	return &ScoredGrant{
		GrantID:                grant.ID,
		GrantType:              GrantDelegated,
		AppName:                app.DisplayName,
		AppID:                  app.AppID,
		Publisher:              orDefault(app.PublisherName, "Unverified"),
		PublisherVerified:      app.VerifiedPublisher,
		AppOwnerType:           owner,
		Homepage:               orDefault(app.Homepage, "N/A"),
		ReplyURLs:              joinOrDefault(app.ReplyURLs, "N/A"),
		SecretStatus:           credentialStatus(len(app.PasswordCredentials)),
		CertStatus:             credentialStatus(len(app.KeyCredentials)),
		CredentialHealth:       credHealth,
		HasWildcardPermissions: hasWildcard,
		HasOfflineAccess:       hasOffline,
		RiskScore:              score,
		RiskLevel:              LevelFor(score),
		PermissionSeverity:     severity,
		Recommendation:         recommendation,
		User:                   user.UserPrincipalName,
		UserDisplayName:        user.DisplayName,
		UserEnabled:            user.AccountEnabled,
		UserType:               user.UserType,
		JobTitle:               orDefault(user.JobTitle, "N/A"),
		Department:             orDefault(user.Department, "N/A"),
		Manager:                manager,
		LastSignIn:             formatTime(user.LastSignIn, "N/A"),
		DaysSinceLastSignIn:    daysSince,
		GrantStart:             formatTime(grant.StartTime, "Unknown"),
		GrantExpiry:            formatTime(grant.ExpiryTime, "Never"),
		ConsentType:            grant.ConsentType,
		Scopes:                 grant.Scope,
		RiskyScopes:            strings.Join(riskyScopes, " "),
	}
}

// processServicePrincipal evaluates one service principal's app role
// assignments. Failures inside are scoped to the principal or a single
// assignment and never abort the batch.
func (s *Scanner) processServicePrincipal(ctx context.Context, sp graph.ServicePrincipalSummary) []ScoredGrant {
	assignments, err := s.collector.RoleAssignments(ctx, sp.ID)
	if err != nil {
		slog.Debug("skipping service principal", "sp_id", sp.ID, "name", sp.DisplayName, "error", err)
		return nil
	}

	var recorded []ScoredGrant
	for _, assignment := range assignments {
		if scored := s.processAssignment(ctx, sp, assignment); scored != nil {
			recorded = append(recorded, *scored)
		}
	}
	return recorded
}

func (s *Scanner) processAssignment(ctx context.Context, sp graph.ServicePrincipalSummary, assignment graph.AppRoleAssignment) *ScoredGrant {
	app, err := s.cache.ResolveApplication(ctx, sp.ID)
	if err != nil {
		slog.Debug("skipping assignment, application unresolvable", "assignment_id", assignment.ID, "error", err)
		return nil
	}

	if s.excluded(app) {
		return nil
	}

	permission, err := s.collector.ResolvePermissionValue(ctx, assignment)
	if err != nil {
		slog.Debug("skipping assignment, resource roles unavailable", "assignment_id", assignment.ID, "error", err)
		return nil
	}

	if !s.policy.IsHighRisk(permission) && !s.policy.IsWildcard(permission) {
		return nil
	}

	now := s.now()
	credHealth := AssessCredentialHealth(allCredentials(app), now)
	hasWildcard := s.policy.IsWildcard(permission)
	owner := s.ownerType(app.AppOwnerOrganizationID)

	// Application grants have no user context: scored as enabled, non-guest,
	// zero inactivity.
	score := Score(RiskFactors{
		RiskyScopes:       []string{permission},
		HasWildcard:       hasWildcard,
		PublisherVerified: app.VerifiedPublisher,
		AppOwnerType:      owner,
		CredentialHealth:  credHealth,
		UserEnabled:       true,
		UserType:          "N/A",
		ConsentType:       graph.ConsentTypeAdmin,
	})

	severity, recommendation := s.classifyGrant([]string{permission}, RecommendationFacts{
		PublisherVerified: app.VerifiedPublisher,
		AppOwnerType:      owner,
		CredentialHealth:  credHealth,
		UserEnabled:       true,
		ConsentType:       graph.ConsentTypeAdmin,
	})

	return &ScoredGrant{
		GrantID:                  assignment.ID,
		GrantType:                GrantApplication,
		AppName:                  app.DisplayName,
		AppID:                    app.AppID,
		Publisher:                orDefault(app.PublisherName, "Unverified"),
		PublisherVerified:        app.VerifiedPublisher,
		AppOwnerType:             owner,
		Homepage:                 orDefault(app.Homepage, "N/A"),
		ReplyURLs:                joinOrDefault(app.ReplyURLs, "N/A"),
		SecretStatus:             credentialStatus(len(app.PasswordCredentials)),
		CertStatus:               credentialStatus(len(app.KeyCredentials)),
		CredentialHealth:         credHealth,
		HasWildcardPermissions:   hasWildcard,
		RiskScore:                score,
		RiskLevel:                LevelFor(score),
		PermissionSeverity:       severity,
		Recommendation:           recommendation,
		User:                     "Tenant-Wide (App-Only)",
		UserDisplayName:          "Admin Consent",
		UserEnabled:              true,
		UserType:                 "N/A",
		JobTitle:                 "N/A",
		Department:               "N/A",
		Manager:                  "N/A",
		LastSignIn:               "N/A",
		GrantStart:               formatTime(assignment.CreatedDateTime, "Unknown"),
		GrantExpiry:              "Never",
		ConsentType:              graph.ConsentTypeAdmin,
		Scopes:                   permission,
		RiskyScopes:              permission,
		ClientServicePrincipalID: sp.ID,
	}
}

// classifyGrant wraps classification and recommendation so an internal
// failure degrades one record instead of aborting the batch.
func (s *Scanner) classifyGrant(scopes []string, facts RecommendationFacts) (severity Severity, recommendation string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("classification failed, degrading record", "panic", r)
			severity = SeverityLow
			recommendation = degradedRecommendation
		}
	}()

	severity = s.policy.ClassifySeverity(scopes)
	facts.PermissionSeverity = severity
	recommendation = Recommend(facts)
	return severity, recommendation
}

func (s *Scanner) excluded(app *graph.ServicePrincipal) bool {
	if app.AppOwnerOrganizationID == s.policy.FirstPartyOrgID {
		return true
	}
	return s.policy.IsAllowedApp(app.AppID)
}

func (s *Scanner) ownerType(appOwnerOrgID string) OwnerType {
	switch appOwnerOrgID {
	case s.policy.FirstPartyOrgID:
		return OwnerMicrosoft
	case s.tenantID:
		return OwnerInternal
	default:
		return OwnerThirdParty
	}
}

func allCredentials(app *graph.ServicePrincipal) []graph.Credential {
	creds := make([]graph.Credential, 0, len(app.PasswordCredentials)+len(app.KeyCredentials))
	creds = append(creds, app.PasswordCredentials...)
	creds = append(creds, app.KeyCredentials...)
	return creds
}

func daysSinceSignIn(last *time.Time, now time.Time) int {
	if last == nil {
		return 0
	}
	days := int(now.Sub(*last).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func formatTime(t *time.Time, fallback string) string {
	if t == nil || t.IsZero() {
		return fallback
	}
	return t.UTC().Format(time.RFC3339)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func joinOrDefault(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, "; ")
}
