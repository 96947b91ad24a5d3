package shadowit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrascan/entrascan/pkg/azure/graph"
)

func TestResolveApplicationCachesHits(t *testing.T) {
	fake := newFakeDirectory()
	fake.sps["sp-1"] = &graph.ServicePrincipal{ID: "sp-1", AppID: "app-1", DisplayName: "CRM Sync"}

	cache := NewEntityCache(fake)
	ctx := context.Background()

	first, err := cache.ResolveApplication(ctx, "sp-1")
	require.NoError(t, err)
	second, err := cache.ResolveApplication(ctx, "sp-1")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, fake.calls["GetServicePrincipal"])
}

func TestResolveApplicationCachesMisses(t *testing.T) {
	fake := newFakeDirectory()
	cache := NewEntityCache(fake)
	ctx := context.Background()

	_, err := cache.ResolveApplication(ctx, "gone")
	require.Error(t, err)
	_, err = cache.ResolveApplication(ctx, "gone")
	require.Error(t, err)

	// Deleted apps cost exactly one round trip.
	assert.Equal(t, 1, fake.calls["GetServicePrincipal"])
}

func TestResolveUserPlaceholderOnMiss(t *testing.T) {
	fake := newFakeDirectory()
	cache := NewEntityCache(fake)
	ctx := context.Background()

	user := cache.ResolveUser(ctx, "gone")
	assert.Equal(t, "Unknown/Deleted", user.DisplayName)
	assert.Equal(t, "Unknown", user.UserType)
	assert.False(t, user.AccountEnabled)

	cache.ResolveUser(ctx, "gone")
	assert.Equal(t, 1, fake.calls["GetUser"])
}

func TestResolveUserCachesHits(t *testing.T) {
	fake := newFakeDirectory()
	fake.users["u-1"] = &graph.DirectoryUser{ID: "u-1", DisplayName: "Dana Oliver", UserType: "Member", AccountEnabled: true}

	cache := NewEntityCache(fake)
	ctx := context.Background()

	first := cache.ResolveUser(ctx, "u-1")
	second := cache.ResolveUser(ctx, "u-1")
	assert.Same(t, first, second)
	assert.Equal(t, 1, fake.calls["GetUser"])
}

func TestResolveManagerFallback(t *testing.T) {
	fake := newFakeDirectory()
	fake.managers["u-1"] = "boss@contoso.com"

	cache := NewEntityCache(fake)
	ctx := context.Background()

	assert.Equal(t, "boss@contoso.com", cache.ResolveManager(ctx, "u-1"))
	assert.Equal(t, "No Manager", cache.ResolveManager(ctx, "u-2"))

	// Both outcomes are cached.
	cache.ResolveManager(ctx, "u-1")
	cache.ResolveManager(ctx, "u-2")
	assert.Equal(t, 2, fake.calls["GetUserManager"])
}
