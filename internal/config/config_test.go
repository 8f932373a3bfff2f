// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/neighborly")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("PAYMENT_KEY_SECRET", "secret")
	t.Setenv("ENVIRONMENT", "development")
}

func TestLoadDefaults(t *testing.T) {
	requiredEnv(t)

	c, err := load("")
	require.NoError(t, err)

	basic, ok := c.Subscription.Plans["basic"]
	require.True(t, ok)
	assert.Equal(t, int64(49900), basic.Amount)
	assert.Equal(t, "INR", basic.Currency)
	assert.Equal(t, 1, basic.PeriodMonths)

	assert.Equal(t, 168*time.Hour, c.Subscription.ExpiryWarning)
	assert.Equal(t, "rating:stale", c.Rating.QueueKey)
	assert.Equal(t, 3, c.Rating.RetryAttempts)
	assert.False(t, c.IsProduction())
}

func TestLoadEnvOverrides(t *testing.T) {
	requiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("RATING_REPAIR_INTERVAL", "2m")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	c, err := load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, 2*time.Minute, c.Rating.RepairInterval)
}

func TestLoadFileAddsPlans(t *testing.T) {
	requiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
subscription:
  plans:
    annual:
      amount: 499000
      currency: INR
      period_months: 12
`), 0o600))

	c, err := load(path)
	require.NoError(t, err)
	assert.Len(t, c.Subscription.Plans, 2)
	assert.Equal(t, 12, c.Subscription.Plans["annual"].PeriodMonths)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		yaml string
	}{
		{
			name: "missing payment secret",
			env:  map[string]string{"PAYMENT_KEY_SECRET": ""},
		},
		{
			name: "production without payment key id",
			env:  map[string]string{"ENVIRONMENT": "production"},
		},
		{
			name: "free plan",
			yaml: "subscription:\n  plans:\n    free:\n      amount: 0\n      currency: INR\n      period_months: 1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.yaml != "" {
				path = filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))
			}

			_, err := load(path)
			assert.Error(t, err)
		})
	}
}
