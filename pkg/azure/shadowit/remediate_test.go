package shadowit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemediateRevokesByGrantType(t *testing.T) {
	fake := newFakeDirectory()
	grants := []ScoredGrant{
		{GrantID: "g-1", GrantType: GrantDelegated, AppName: "Legacy Mail Sync"},
		{GrantID: "a-1", GrantType: GrantApplication, AppName: "Backup Tool", ClientServicePrincipalID: "sp-3"},
	}

	report := Remediate(context.Background(), fake, grants, nil)

	assert.Equal(t, 2, report.Revoked)
	assert.Equal(t, 2, report.Total)
	assert.Empty(t, report.Failures)
	assert.Equal(t, []string{"g-1"}, fake.deletedGrants)
	assert.Equal(t, []string{"sp-3/a-1"}, fake.deletedAssignments)
	assert.Equal(t, "Revoked 2/2 risky grants", report.Message())
}

func TestRemediateBestEffort(t *testing.T) {
	fake := newFakeDirectory()
	fake.deleteErr["g-stuck"] = errors.New("insufficient privileges")

	grants := []ScoredGrant{
		{GrantID: "g-1", GrantType: GrantDelegated, AppName: "First"},
		{GrantID: "g-stuck", GrantType: GrantDelegated, AppName: "Stuck"},
		{GrantID: "g-2", GrantType: GrantDelegated, AppName: "Last"},
	}

	report := Remediate(context.Background(), fake, grants, nil)

	assert.Equal(t, 2, report.Revoked)
	assert.Equal(t, 3, report.Total)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "g-stuck", report.Failures[0].GrantID)
	assert.Equal(t, "Stuck", report.Failures[0].AppName)
	assert.Contains(t, report.Failures[0].Reason, "insufficient privileges")

	// The failure did not stop the grants after it.
	assert.Equal(t, []string{"g-1", "g-2"}, fake.deletedGrants)
	assert.Equal(t, "Revoked 2/3 risky grants", report.Message())
}

func TestRemediateReportsProgress(t *testing.T) {
	fake := newFakeDirectory()
	grants := []ScoredGrant{{GrantID: "g-1", GrantType: GrantDelegated, AppName: "Legacy Mail Sync"}}

	var messages []string
	Remediate(context.Background(), fake, grants, func(msg string, pct float64) {
		messages = append(messages, msg)
	})

	require.Len(t, messages, 1)
	assert.Equal(t, "Revoked Legacy Mail Sync (Delegated)", messages[0])
}

func TestRemediateEmpty(t *testing.T) {
	fake := newFakeDirectory()
	report := Remediate(context.Background(), fake, nil, nil)
	assert.Equal(t, "Revoked 0/0 risky grants", report.Message())
}
