package cache_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/redscript/internal/cache"
	"github.com/aretw0/redscript/internal/prelude"
	"github.com/aretw0/redscript/internal/resolve"
	"github.com/aretw0/redscript/internal/testutils"
	"github.com/aretw0/redscript/pkg/adapters/memory"
	"github.com/aretw0/redscript/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(registry *cache.Registry, cfg domain.SharedConfig, reader *memory.Reader, client *testutils.FakeClient, opts ...cache.Option) *cache.Cache {
	p := prelude.New(cfg, resolve.New("/lua", ""), reader)
	return cache.New(registry, p, reader, client, opts...)
}

func fixtures() *memory.Reader {
	return memory.NewReader(map[string]string{
		"/lua/get-key.lua": "return redis.call('GET', KEYS[1])",
		"/lua/shared.lua":  "local shared = true",
	})
}

func TestCache_RegistersOnce(t *testing.T) {
	client := testutils.NewFakeClient()
	c := newCache(cache.NewRegistry(), domain.SharedConfig{}, fixtures(), client)
	ctx := context.Background()

	first, err := c.Load(ctx, "/lua/get-key.lua")
	require.NoError(t, err)
	second, err := c.Load(ctx, "/lua/get-key.lua")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "/lua/get-key.lua", first.Source)
	assert.Equal(t, "return redis.call('GET', KEYS[1])", first.CombinedBody)
	assert.NotEmpty(t, first.Hash)
	assert.Equal(t, 1, client.Count("load"))
}

func TestCache_ConcurrentLoadsCollapse(t *testing.T) {
	client := testutils.NewFakeClient()
	client.LoadDelay = 30 * time.Millisecond
	reader := fixtures()
	c := newCache(cache.NewRegistry(), domain.SharedConfig{}, reader, client)

	var wg sync.WaitGroup
	hashes := make([]string, 25)
	for i := range hashes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reg, err := c.Load(context.Background(), "/lua/get-key.lua")
			assert.NoError(t, err)
			hashes[i] = reg.Hash
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, client.Count("load"))
	assert.Equal(t, 1, reader.Reads("/lua/get-key.lua"))
	for _, h := range hashes {
		assert.Equal(t, hashes[0], h)
	}
}

func TestCache_ComposesPrelude(t *testing.T) {
	client := testutils.NewFakeClient()
	cfg := domain.SharedConfig{Path: "shared", Args: domain.Values("a")}
	c := newCache(cache.NewRegistry(), cfg, fixtures(), client)

	reg, err := c.Load(context.Background(), "/lua/get-key.lua")
	require.NoError(t, err)
	assert.Equal(t,
		"local shared = true\nlocal KEYS = { unpack(KEYS, 1) }\nlocal ARGV = { unpack(ARGV, 2) }\nreturn redis.call('GET', KEYS[1])",
		reg.CombinedBody)
}

func TestCache_FailedReadIsEvicted(t *testing.T) {
	client := testutils.NewFakeClient()
	reader := fixtures()
	c := newCache(cache.NewRegistry(), domain.SharedConfig{}, reader, client)
	ctx := context.Background()

	_, err := c.Load(ctx, "/lua/later.lua")
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
	assert.Equal(t, 0, c.Table().Len())

	reader.Set("/lua/later.lua", "return 1")
	reg, err := c.Load(ctx, "/lua/later.lua")
	require.NoError(t, err)
	assert.Equal(t, "return 1", reg.CombinedBody)
	assert.Equal(t, 1, client.Count("load"))
}

func TestCache_FailedRegistrationIsEvicted(t *testing.T) {
	client := testutils.NewFakeClient()
	client.LoadErr = errors.New("ERR Error compiling script")
	c := newCache(cache.NewRegistry(), domain.SharedConfig{}, fixtures(), client)
	ctx := context.Background()

	_, err := c.Load(ctx, "/lua/get-key.lua")
	assert.ErrorIs(t, err, client.LoadErr)

	client.LoadErr = nil
	_, err = c.Load(ctx, "/lua/get-key.lua")
	assert.NoError(t, err)
	assert.Equal(t, 2, client.Count("load"))
}

func TestCache_PartitioningByCacheKey(t *testing.T) {
	tests := []struct {
		name      string
		a, b      domain.SharedConfig
		wantLoads int
	}{
		{"no prelude on both", domain.SharedConfig{}, domain.SharedConfig{}, 1},
		{"same prelude path", domain.SharedConfig{Path: "shared"}, domain.SharedConfig{Path: "/lua/shared.lua"}, 1},
		{"same counts different values",
			domain.SharedConfig{Path: "shared", Keys: domain.Values("k1")},
			domain.SharedConfig{Path: "shared", Keys: domain.Values("k2")}, 1},
		{"with and without prelude", domain.SharedConfig{}, domain.SharedConfig{Path: "shared"}, 2},
		{"different key counts",
			domain.SharedConfig{Path: "shared", Keys: domain.Values("k1")},
			domain.SharedConfig{Path: "shared"}, 2},
		{"different arg counts",
			domain.SharedConfig{Path: "shared", Args: domain.Values("a1")},
			domain.SharedConfig{Path: "shared"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := cache.NewRegistry()
			client := testutils.NewFakeClient()
			reader := fixtures()
			c1 := newCache(registry, tt.a, reader, client)
			c2 := newCache(registry, tt.b, reader, client)

			var wg sync.WaitGroup
			for _, c := range []*cache.Cache{c1, c2} {
				wg.Add(1)
				go func(c *cache.Cache) {
					defer wg.Done()
					_, err := c.Load(context.Background(), "/lua/get-key.lua")
					assert.NoError(t, err)
				}(c)
			}
			wg.Wait()

			assert.Equal(t, tt.wantLoads, client.Count("load"))
			assert.Equal(t, tt.wantLoads, registry.Len())
		})
	}
}

func TestCache_SeparateRegistriesDoNotShare(t *testing.T) {
	client := testutils.NewFakeClient()
	reader := fixtures()
	c1 := newCache(cache.NewRegistry(), domain.SharedConfig{}, reader, client)
	c2 := newCache(cache.NewRegistry(), domain.SharedConfig{}, reader, client)

	_, err := c1.Load(context.Background(), "/lua/get-key.lua")
	require.NoError(t, err)
	_, err = c2.Load(context.Background(), "/lua/get-key.lua")
	require.NoError(t, err)

	assert.Equal(t, 2, client.Count("load"))
}

func TestCache_EmitsRegisterHook(t *testing.T) {
	var events []*domain.ScriptEvent
	hooks := domain.Hooks{
		OnRegister: func(_ context.Context, e *domain.ScriptEvent) { events = append(events, e) },
	}
	c := newCache(cache.NewRegistry(), domain.SharedConfig{}, fixtures(), testutils.NewFakeClient(), cache.WithHooks(hooks))

	reg, err := c.Load(context.Background(), "/lua/get-key.lua")
	require.NoError(t, err)
	_, err = c.Load(context.Background(), "/lua/get-key.lua")
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, "/lua/get-key.lua", events[0].Script)
	assert.Equal(t, reg.Hash, events[0].Hash)
	assert.False(t, events[0].Timestamp.IsZero())
}
