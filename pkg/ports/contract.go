package ports

import (
	"context"
	"testing"

	"github.com/aretw0/redscript/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSourceReaderContract verifies that a SourceReader returns content for
// locator and reports missing locators as domain.ErrSourceNotFound.
func RunSourceReaderContract(t *testing.T, reader SourceReader, locator, want string) {
	ctx := context.Background()

	t.Run("Read Existing", func(t *testing.T) {
		got, err := reader.ReadText(ctx, locator)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Read Non-Existent", func(t *testing.T) {
		_, err := reader.ReadText(ctx, locator+".missing")
		assert.ErrorIs(t, err, domain.ErrSourceNotFound)
	})
}

// RunScriptClientContract verifies the load/evalsha/eval protocol of a
// ScriptClient. forget must make the store drop every registered hash.
func RunScriptClientContract(t *testing.T, client ScriptClient, forget func()) {
	ctx := context.Background()
	body := "return {KEYS[1], ARGV[1]}"

	t.Run("Load Is Idempotent", func(t *testing.T) {
		h1, err := client.ScriptLoad(ctx, body)
		require.NoError(t, err)
		h2, err := client.ScriptLoad(ctx, body)
		require.NoError(t, err)
		assert.NotEmpty(t, h1)
		assert.Equal(t, h1, h2)
	})

	t.Run("EvalSha", func(t *testing.T) {
		hash, err := client.ScriptLoad(ctx, body)
		require.NoError(t, err)

		res, err := client.EvalSha(ctx, hash, []string{"k"}, []string{"v"})
		require.NoError(t, err)
		assert.Equal(t, []any{"k", "v"}, res)
	})

	t.Run("Unknown Hash", func(t *testing.T) {
		hash, err := client.ScriptLoad(ctx, body)
		require.NoError(t, err)
		forget()

		_, err = client.EvalSha(ctx, hash, []string{"k"}, []string{"v"})
		assert.ErrorIs(t, err, domain.ErrUnknownHash)
	})

	t.Run("Eval", func(t *testing.T) {
		res, err := client.Eval(ctx, body, []string{"k"}, []string{"v"})
		require.NoError(t, err)
		assert.Equal(t, []any{"k", "v"}, res)
	})
}
