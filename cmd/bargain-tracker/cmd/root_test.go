package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/bargain-tracker/internal/config"
	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

const memoryConfig = `
store:
  backend: memory
channels:
  backend: log
logging:
  level: error
schedule:
  distribution_interval: 1h
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(memoryConfig), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "bargain-tracker dev\n", out)
}

func TestDistributeCommand_EmptyCatalog(t *testing.T) {
	out, err := execute(t, "--config", writeConfig(t), "--env-file", "", "distribute")
	require.NoError(t, err)
	assert.Contains(t, out, "Enqueued 0 task(s)")
}

func TestMigrateCommand_MemoryBackendIsNoop(t *testing.T) {
	_, err := execute(t, "--config", writeConfig(t), "--env-file", "", "migrate")
	require.NoError(t, err)
}

func TestDistributeCommand_MissingConfig(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "distribute")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

func TestLoadEnv(t *testing.T) {
	require.NoError(t, loadEnv(""))
	require.NoError(t, loadEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BT_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("BT_TEST_DOTENV") })

	require.NoError(t, loadEnv(path))
	assert.Equal(t, "loaded", os.Getenv("BT_TEST_DOTENV"))
}

func TestNewApp_MemoryBackends(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg, err := config.Parse([]byte(memoryConfig))
	require.NoError(t, err)

	a, err := newApp(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.close(ctx) })

	require.NoError(t, a.store.Ping(ctx))
	_, err = a.catalog.Upsert(ctx, "https://shop.example/p/1", "Phone", domain.Price(100))
	require.NoError(t, err)

	n, err := a.scheduler.RunDistribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	depth, err := a.engine.QueueDepth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, depth)

	assert.NotNil(t, a.pool())
}
