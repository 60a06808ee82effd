package growbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("growbox"),
		postgres.WithUsername("growbox"),
		postgres.WithPassword("growbox"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestPostgresRuleStoreRoundTrip(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	store, err := NewPostgresRuleStore(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	rules := []string{`["SET","relay_0",1]`, `["IF",["GT",["getTemperature"],25],["SET","relay_1",1]]`}
	require.NoError(t, store.SaveRules(ctx, rules))

	loaded, err := store.LoadRules(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, rules, loaded)

	// Overwrites replace, not append.
	require.NoError(t, store.SaveRules(ctx, []string{`["NOP"]`, `["NOP"]`}))
	loaded, err = store.LoadRules(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{`["NOP"]`, `["NOP"]`}, loaded)
}

func TestPostgresRuleStoreLabels(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	store, err := NewPostgresRuleStore(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SaveLabels(ctx, []string{"heater", "fan"}))
	labels, err := store.LoadLabels(ctx, 3)
	require.NoError(t, err)
	require.Len(t, labels, 3)
	assert.Equal(t, "heater", labels[0])
	assert.Equal(t, "fan", labels[1])
}

func TestPostgresRuleStoreEmpty(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	store, err := NewPostgresRuleStore(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	rules, err := store.LoadRules(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultRule, DefaultRule}, rules)
}
