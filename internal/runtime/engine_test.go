package runtime_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/redscript/internal/cache"
	"github.com/aretw0/redscript/internal/prelude"
	"github.com/aretw0/redscript/internal/resolve"
	"github.com/aretw0/redscript/internal/runtime"
	"github.com/aretw0/redscript/internal/testutils"
	"github.com/aretw0/redscript/pkg/adapters/memory"
	"github.com/aretw0/redscript/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	engine *runtime.Engine
	client *testutils.FakeClient
	reader *memory.Reader
}

func setup(t *testing.T, registry *cache.Registry, cfg domain.SharedConfig, opts ...runtime.EngineOption) fixture {
	t.Helper()
	reader := memory.NewReader(map[string]string{
		"/lua/script.lua":  "local a = 1\nreturn a",
		"/lua/shared.lua":  "local s1 = 1\nlocal s2 = 2\nlocal s3 = 3",
		"/lua/get-key.lua": "return redis.call('GET', KEYS[1])",
	})
	client := testutils.NewFakeClient()
	r := resolve.New("/lua", "")
	p := prelude.New(cfg, r, reader)
	c := cache.New(registry, p, reader, client)
	return fixture{
		engine: runtime.NewEngine(r, p, c, client, opts...),
		client: client,
		reader: reader,
	}
}

func TestEngine_RunByHash(t *testing.T) {
	f := setup(t, cache.NewRegistry(), domain.SharedConfig{})
	f.client.Result = "value"

	res, err := f.engine.Run(context.Background(), "get-key", domain.Values("test"), nil)
	require.NoError(t, err)
	assert.Equal(t, "value", res)

	assert.Equal(t, 1, f.client.Count("load"))
	assert.Equal(t, 1, f.client.Count("evalsha"))
	assert.Equal(t, 0, f.client.Count("eval"))

	call := f.client.Calls("evalsha")[0]
	assert.Equal(t, []string{"test"}, call.Keys)
	assert.Empty(t, call.Args)
}

func TestEngine_FallbackOnUnknownHash(t *testing.T) {
	f := setup(t, cache.NewRegistry(), domain.SharedConfig{})
	ctx := context.Background()

	_, err := f.engine.Run(ctx, "get-key", domain.Values("test"), nil)
	require.NoError(t, err)

	f.client.Forget()
	f.client.Reset()

	_, err = f.engine.Run(ctx, "get-key", domain.Values("test"), nil)
	require.NoError(t, err)

	assert.Equal(t, 0, f.client.Count("load"), "fallback must not re-register")
	assert.Equal(t, 1, f.client.Count("evalsha"))
	require.Equal(t, 1, f.client.Count("eval"))

	eval := f.client.Calls("eval")[0]
	assert.Equal(t, "return redis.call('GET', KEYS[1])", eval.Arg)
	assert.Equal(t, []string{"test"}, eval.Keys)
}

func TestEngine_FallbackFailureIsNotRetried(t *testing.T) {
	f := setup(t, cache.NewRegistry(), domain.SharedConfig{})
	ctx := context.Background()

	_, err := f.engine.Run(ctx, "get-key", nil, nil)
	require.NoError(t, err)

	f.client.Forget()
	f.client.Reset()
	f.client.ExecErr = errors.New("ERR user_script:1: boom")

	_, err = f.engine.Run(ctx, "get-key", nil, nil)
	require.Error(t, err)
	assert.Equal(t, "ERR /lua/get-key.lua:1: boom", err.Error())
	assert.Equal(t, 1, f.client.Count("evalsha"))
	assert.Equal(t, 1, f.client.Count("eval"))
}

func TestIsUnknownHash(t *testing.T) {
	assert.True(t, runtime.IsUnknownHash(domain.ErrUnknownHash))
	assert.True(t, runtime.IsUnknownHash(fmt.Errorf("wrapped: %w", domain.ErrUnknownHash)))
	assert.True(t, runtime.IsUnknownHash(errors.New("NOSCRIPT No matching script. Please use EVAL.")))
	assert.True(t, runtime.IsUnknownHash(errors.New("ERR NOSCRIPT No matching script")))
	assert.False(t, runtime.IsUnknownHash(errors.New("ERR user_script:1: NOSCRIPT later in message")))
}

func TestEngine_SharedParamsOrdering(t *testing.T) {
	cfg := domain.SharedConfig{
		Path: "shared",
		Keys: domain.Values("k1", "k2"),
		Args: domain.Values("v1"),
	}
	f := setup(t, cache.NewRegistry(), cfg)

	_, err := f.engine.Run(context.Background(), "script", domain.Values("k3"), domain.Values("v2", "v3"))
	require.NoError(t, err)

	call := f.client.Calls("evalsha")[0]
	assert.Equal(t, []string{"k1", "k2", "k3"}, call.Keys)
	assert.Equal(t, []string{"v1", "v2", "v3"}, call.Args)
}

func TestEngine_GeneratorsRunOncePerCall(t *testing.T) {
	i := 0
	counter := domain.Generated(func() string {
		i++
		return fmt.Sprintf("the key %d", i)
	})
	f := setup(t, cache.NewRegistry(), domain.SharedConfig{Path: "shared", Keys: []domain.Param{counter}})
	ctx := context.Background()

	_, err := f.engine.Run(ctx, "script", nil, []domain.Param{domain.Generated(func() string { return "the arg" })})
	require.NoError(t, err)
	_, err = f.engine.Run(ctx, "script", nil, nil)
	require.NoError(t, err)

	calls := f.client.Calls("evalsha")
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"the key 1"}, calls[0].Keys)
	assert.Equal(t, []string{"the arg"}, calls[0].Args)
	assert.Equal(t, []string{"the key 2"}, calls[1].Keys)
	assert.Equal(t, 2, i)
}

func TestEngine_OffsetCorrectness(t *testing.T) {
	cfg := domain.SharedConfig{Path: "shared", Keys: domain.Values("k1")}

	t.Run("body error", func(t *testing.T) {
		f := setup(t, cache.NewRegistry(), cfg)
		// 3 prelude lines + 2 slicing lines + body line 2.
		f.client.ExecErr = errors.New("ERR user_script:7: Script attempted to access nonexistent global variable 'x'")

		_, err := f.engine.Run(context.Background(), "script", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "/lua/script.lua:2")
	})

	t.Run("prelude error", func(t *testing.T) {
		f := setup(t, cache.NewRegistry(), cfg)
		f.client.ExecErr = errors.New("ERR user_script:2: boom")

		_, err := f.engine.Run(context.Background(), "script", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "/lua/shared.lua:2")
	})
}

func TestEngine_RemapUsesPreludeOfSharingRunner(t *testing.T) {
	registry := cache.NewRegistry()
	cfg := domain.SharedConfig{Path: "shared", Keys: domain.Values("k1")}

	first := setup(t, registry, cfg)
	_, err := first.engine.Run(context.Background(), "script", nil, nil)
	require.NoError(t, err)

	// Shares first's table: the script is already registered, so this runner
	// never read its prelude before failing.
	second := setup(t, registry, cfg)
	second.client.ExecErr = errors.New("ERR user_script:6: boom")

	_, err = second.engine.Run(context.Background(), "script", nil, nil)
	require.Error(t, err)
	assert.Equal(t, "ERR /lua/script.lua:1: boom", err.Error())
}

func TestEngine_SourceNotFoundPassesThrough(t *testing.T) {
	f := setup(t, cache.NewRegistry(), domain.SharedConfig{})

	_, err := f.engine.Run(context.Background(), "non-existing", nil, nil)
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
	var serr *domain.ScriptError
	assert.False(t, errors.As(err, &serr))
	assert.Equal(t, 0, f.client.Count("evalsha"))
}

func TestEngine_RegistrationFailureIsRemapped(t *testing.T) {
	f := setup(t, cache.NewRegistry(), domain.SharedConfig{})
	f.client.LoadErr = errors.New("ERR Error compiling script (new function): user_script line:2(column:1) near 'x'")

	_, err := f.engine.Run(context.Background(), "script", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/lua/script.lua:2(column:1)")
	assert.ErrorIs(t, err, f.client.LoadErr)
}

func TestEngine_Hooks(t *testing.T) {
	var got []domain.EventType
	record := func(_ context.Context, e *domain.ScriptEvent) { got = append(got, e.Type) }
	hooks := domain.Hooks{OnFallback: record, OnFailure: record}

	f := setup(t, cache.NewRegistry(), domain.SharedConfig{}, runtime.WithHooks(hooks))
	ctx := context.Background()

	_, err := f.engine.Run(ctx, "get-key", nil, nil)
	require.NoError(t, err)

	f.client.Forget()
	_, err = f.engine.Run(ctx, "get-key", nil, nil)
	require.NoError(t, err)

	_, err = f.engine.Run(ctx, "missing", nil, nil)
	require.Error(t, err)

	assert.Equal(t, []domain.EventType{domain.EventFallback, domain.EventFailure}, got)
}
