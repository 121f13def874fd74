package main

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/config"
	"github.com/sells-group/enrich-cli/internal/reconcile"
	"github.com/sells-group/enrich-cli/internal/store"
	"github.com/sells-group/enrich-cli/internal/workflow"
	"github.com/sells-group/enrich-cli/pkg/hubspot"
	"github.com/sells-group/enrich-cli/pkg/intercom"
	"github.com/sells-group/enrich-cli/pkg/outreach"
	"github.com/sells-group/enrich-cli/pkg/pipedrive"
	"github.com/sells-group/enrich-cli/pkg/salesforce"
	"github.com/sells-group/enrich-cli/pkg/surfe"
	"github.com/sells-group/enrich-cli/pkg/zoom"
)

const defaultSQLitePath = "enrich.db"

// validate checks the loaded config for the given command mode.
func validate(mode string) error {
	if err := cfg.Validate(mode); err != nil {
		return eris.Wrapf(err, "invalid config for %s", mode)
	}
	return nil
}

// initStore opens the configured run ledger. It returns a nil Store when the
// driver is "none".
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "", "none":
		return nil, nil
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = defaultSQLitePath
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openLedger opens and migrates the run ledger. The returned close func is
// always safe to call.
func openLedger(ctx context.Context) (store.Store, func(), error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, func() {}, err
	}
	if st == nil {
		return nil, func() {}, nil
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, func() {}, eris.Wrap(err, "migrate store")
	}
	return st, func() { _ = st.Close() }, nil
}

// ledger converts a possibly nil Store into a workflow.Ledger without
// producing a typed nil.
func ledger(st store.Store) workflow.Ledger {
	if st == nil {
		return nil
	}
	return st
}

// surfeUse names how a command talks to Surfe: the API generation it
// defaults to, and whether it calls endpoints that exist only in that one.
type surfeUse struct {
	def    surfe.Version
	pinned bool
}

var (
	surfePeople  = surfeUse{def: surfe.V1}
	surfeWebinar = surfeUse{def: surfe.V2}
	// Organization enrichment, lookalikes and person search exist only in v1.
	surfeV1Only = surfeUse{def: surfe.V1, pinned: true}
)

// surfeVersion returns the configured API generation, or the default when
// unset. Pinned uses keep their default and log the ignored override.
func surfeVersion(use surfeUse) (surfe.Version, error) {
	if cfg.Surfe.Version == "" {
		return use.def, nil
	}
	v, err := surfe.ParseVersion(cfg.Surfe.Version)
	if err != nil {
		return "", err
	}
	if use.pinned && v != use.def {
		zap.L().Warn("surfe version override ignored, command needs a single API generation",
			zap.String("configured", string(v)), zap.String("using", string(use.def)))
		return use.def, nil
	}
	return v, nil
}

func newSurfe(use surfeUse) (surfe.Client, error) {
	v, err := surfeVersion(use)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("surfe client", zap.String("version", string(v)))
	return surfe.NewClient(cfg.Surfe.APIKey, surfe.WithBaseURL(cfg.Surfe.BaseURL), surfe.WithVersion(v)), nil
}

// pollOptions builds the Surfe polling options. Non-positive flag values fall
// back to the config.
func pollOptions(intervalSecs, maxAttempts int) []surfe.PollOption {
	interval, attempts := pollSettings(intervalSecs, maxAttempts)
	return []surfe.PollOption{
		surfe.WithPollInterval(interval),
		surfe.WithMaxAttempts(attempts),
	}
}

// pollSettings resolves flag values against the configured poll settings.
// Zero flags defer to config.
func pollSettings(intervalSecs, maxAttempts int) (time.Duration, int) {
	if intervalSecs <= 0 {
		intervalSecs = cfg.Surfe.PollIntervalSecs
	}
	if maxAttempts <= 0 {
		maxAttempts = cfg.Surfe.MaxAttempts
	}
	return time.Duration(intervalSecs) * time.Second, maxAttempts
}

// newEngine builds the reconcile engine from a flag value, falling back to the
// configured strategy.
func newEngine(flagStrategy string) (*reconcile.Engine, error) {
	name := flagStrategy
	if name == "" {
		name = cfg.Reconcile.Strategy
	}
	strategy, err := reconcile.ParseStrategy(name)
	if err != nil {
		return nil, err
	}
	return reconcile.New(strategy), nil
}

// newBase assembles the shared workflow dependencies.
func newBase(st store.Store, use surfeUse, intervalSecs, maxAttempts int) (workflow.Base, error) {
	sc, err := newSurfe(use)
	if err != nil {
		return workflow.Base{}, err
	}
	return workflow.Base{
		Surfe:  sc,
		Ledger: ledger(st),
		Poll:   pollOptions(intervalSecs, maxAttempts),
	}, nil
}

func newPipedrive() pipedrive.Client {
	return pipedrive.NewClient(cfg.Pipedrive.APIKey, pipedrive.WithBaseURL(cfg.Pipedrive.BaseURL))
}

func newHubSpot() hubspot.Client {
	return hubspot.NewClient(cfg.HubSpot.AccessToken, hubspot.WithBaseURL(cfg.HubSpot.BaseURL))
}

func newOutreach() outreach.Client {
	return outreach.NewClient(cfg.Outreach.AccessToken, outreach.WithBaseURL(cfg.Outreach.BaseURL))
}

func newIntercom() intercom.Client {
	return intercom.NewClient(cfg.Intercom.AccessToken, intercom.WithBaseURL(cfg.Intercom.BaseURL))
}

// newZoom returns a Zoom client. Without a static API token it exchanges the
// server-to-server credentials for one.
func newZoom(ctx context.Context) (zoom.Client, error) {
	token := cfg.Zoom.APIToken
	if token == "" {
		tok, err := fetchZoomToken(ctx, cfg.Zoom)
		if err != nil {
			return nil, err
		}
		token = tok.AccessToken
	}
	return zoom.NewClient(token, zoom.WithBaseURL(cfg.Zoom.BaseURL)), nil
}

func fetchZoomToken(ctx context.Context, zc config.ZoomConfig) (*zoom.Token, error) {
	return zoom.FetchAccessToken(ctx, zoom.TokenRequest{
		AccountID:    zc.AccountID,
		ClientID:     zc.ClientID,
		ClientSecret: zc.ClientSecret,
		TokenURL:     zc.TokenURL,
	})
}

func initSalesforce() (salesforce.Client, error) {
	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	return salesforce.Connect(salesforce.Credentials{
		LoginURL:       cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	}, salesforce.WithRequestsPerSecond(cfg.Salesforce.RequestsPerSecond))
}
