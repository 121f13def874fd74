package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/enrich-cli/internal/config"
	"github.com/sells-group/enrich-cli/internal/reconcile"
	"github.com/sells-group/enrich-cli/pkg/surfe"
)

func setConfig(t *testing.T, c *config.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func TestInitStore_None(t *testing.T) {
	setConfig(t, &config.Config{Store: config.StoreConfig{Driver: "none"}})

	st, err := initStore(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st)

	st, closeStore, err := openLedger(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st)
	assert.Nil(t, ledger(st))
	closeStore()
}

func TestInitStore_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db")
	setConfig(t, &config.Config{Store: config.StoreConfig{Driver: "sqlite", DatabaseURL: dsn}})

	st, closeStore, err := openLedger(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer closeStore()

	run, err := st.CreateRun(context.Background(), "contacts", "in.csv")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.NotNil(t, ledger(st))
}

func TestInitStore_SQLiteDefaultDSN(t *testing.T) {
	tmpDir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(origDir) //nolint:errcheck

	setConfig(t, &config.Config{Store: config.StoreConfig{Driver: "sqlite"}})

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck

	_, err = os.Stat(filepath.Join(tmpDir, defaultSQLitePath))
	assert.NoError(t, err)
}

func TestInitStore_Unsupported(t *testing.T) {
	setConfig(t, &config.Config{Store: config.StoreConfig{Driver: "mysql"}})

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestSurfeVersion(t *testing.T) {
	setConfig(t, &config.Config{})

	v, err := surfeVersion(surfeWebinar)
	require.NoError(t, err)
	assert.Equal(t, surfe.V2, v)

	cfg.Surfe.Version = "V1"
	v, err = surfeVersion(surfeWebinar)
	require.NoError(t, err)
	assert.Equal(t, surfe.V1, v)

	cfg.Surfe.Version = "v9"
	_, err = surfeVersion(surfePeople)
	assert.Error(t, err)
	_, err = newSurfe(surfePeople)
	assert.Error(t, err)
}

func TestSurfeVersion_V1OnlyIgnoresV2Override(t *testing.T) {
	setConfig(t, &config.Config{Surfe: config.SurfeConfig{Version: "v2"}})

	v, err := surfeVersion(surfePeople)
	require.NoError(t, err)
	assert.Equal(t, surfe.V2, v)

	v, err = surfeVersion(surfeV1Only)
	require.NoError(t, err)
	assert.Equal(t, surfe.V1, v)

	sc, err := newSurfe(surfeV1Only)
	require.NoError(t, err)
	assert.Equal(t, surfe.V1, sc.Version())

	cfg.Surfe.Version = "v9"
	_, err = surfeVersion(surfeV1Only)
	assert.Error(t, err)
}

func TestNewEngine(t *testing.T) {
	setConfig(t, &config.Config{Reconcile: config.ReconcileConfig{Strategy: "fill_only"}})

	e, err := newEngine("")
	require.NoError(t, err)
	assert.Equal(t, reconcile.FillOnly, e.Strategy())

	e, err = newEngine("overwrite")
	require.NoError(t, err)
	assert.Equal(t, reconcile.Overwrite, e.Strategy())

	_, err = newEngine("merge")
	assert.Error(t, err)
}

func TestPollOptions_FallBackToConfig(t *testing.T) {
	setConfig(t, &config.Config{Surfe: config.SurfeConfig{PollIntervalSecs: 7, MaxAttempts: 3}})

	assert.Len(t, pollOptions(0, 0), 2)

	interval, attempts := pollSettings(0, 0)
	assert.Equal(t, 7*time.Second, interval)
	assert.Equal(t, 3, attempts)

	interval, attempts = pollSettings(1, 90)
	assert.Equal(t, time.Second, interval)
	assert.Equal(t, 90, attempts)
}

func TestFileFlags_DeferToConfiguredPolling(t *testing.T) {
	setConfig(t, &config.Config{Surfe: config.SurfeConfig{PollIntervalSecs: 12, MaxAttempts: 9}})

	for _, cmd := range []*cobra.Command{contactsCmd, companiesCmd} {
		pi, err := cmd.Flags().GetInt("poll-interval")
		require.NoError(t, err)
		ma, err := cmd.Flags().GetInt("max-attempts")
		require.NoError(t, err)

		interval, attempts := pollSettings(pi, ma)
		assert.Equal(t, 12*time.Second, interval, cmd.Name())
		assert.Equal(t, 9, attempts, cmd.Name())
	}
}

func TestValidateWrapsMode(t *testing.T) {
	setConfig(t, &config.Config{Store: config.StoreConfig{Driver: "none"}})

	err := validate(config.ModeHubSpot)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config for hubspot")
	assert.Contains(t, err.Error(), "hubspot.access_token is required")
}

func TestFetchZoomToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "cid", user)
		assert.Equal(t, "secret", pass)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	tok, err := fetchZoomToken(context.Background(), config.ZoomConfig{
		AccountID:    "acct",
		ClientID:     "cid",
		ClientSecret: "secret",
		TokenURL:     srv.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok.AccessToken)

	setConfig(t, &config.Config{Zoom: config.ZoomConfig{
		AccountID:    "acct",
		ClientID:     "cid",
		ClientSecret: "secret",
		TokenURL:     srv.URL,
		BaseURL:      "https://api.zoom.example",
	}})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	zc, err := newZoom(ctx)
	require.NoError(t, err)
	assert.NotNil(t, zc)
}

func TestNewZoom_StaticToken(t *testing.T) {
	setConfig(t, &config.Config{Zoom: config.ZoomConfig{APIToken: "static"}})

	zc, err := newZoom(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, zc)
}

func TestInitSalesforce_MissingKey(t *testing.T) {
	setConfig(t, &config.Config{Salesforce: config.SalesforceConfig{
		ClientID: "cid",
		KeyPath:  filepath.Join(t.TempDir(), "missing.pem"),
	}})

	_, err := initSalesforce()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read salesforce JWT private key")
}
