package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// validDefaults returns a Config with the defaults validation relies on.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "none"
	cfg.Reconcile.Strategy = "overwrite"
	cfg.Server.Port = 5000
	cfg.Surfe.APIKey = "sf-key"
	return cfg
}

func TestValidateFile(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate(ModeFile))

	cfg.Surfe.APIKey = ""
	err := cfg.Validate(ModeFile)
	assert.ErrorContains(t, err, "surfe.api_key is required")
}

func TestValidateOutreach_MissingFields(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate(ModeOutreach)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "outreach.access_token is required")
	assert.Contains(t, err.Error(), "outreach.sequence_id is required")
	assert.Contains(t, err.Error(), "outreach.mailbox_id is required")
}

func TestValidateDeals(t *testing.T) {
	cfg := validDefaults()
	cfg.Pipedrive.APIKey = "pd"
	cfg.Pipedrive.PipelineID = 1

	err := cfg.Validate(ModeDeals)
	assert.ErrorContains(t, err, "pipedrive.stage_id is required")

	cfg.Pipedrive.StageID = 2
	assert.NoError(t, cfg.Validate(ModeDeals))
}

func TestValidateSalesforce(t *testing.T) {
	cfg := validDefaults()
	cfg.Salesforce.ClientID = "cid"
	cfg.Salesforce.Username = "ops@acme.com"

	err := cfg.Validate(ModeSalesforce)
	assert.ErrorContains(t, err, "salesforce.key_path is required")
	assert.NotContains(t, err.Error(), "client_id")
}

func TestValidateServe(t *testing.T) {
	cfg := validDefaults()
	cfg.Intercom.WebhookSecret = "shh"
	cfg.Intercom.AccessToken = "ic"
	assert.NoError(t, cfg.Validate(ModeServe))

	cfg.Server.Port = 0
	assert.ErrorContains(t, cfg.Validate(ModeServe), "server.port must be > 0")
}

func TestValidateStoreDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "sqlite"
	assert.ErrorContains(t, cfg.Validate(ModeFile), "store.database_url is required")

	cfg.Store.Driver = "mysql"
	assert.ErrorContains(t, cfg.Validate(ModeFile), "store.driver must be one of")
}

func TestValidateRuns(t *testing.T) {
	cfg := validDefaults()
	assert.ErrorContains(t, cfg.Validate(ModeRuns), "store.driver must be sqlite or postgres")

	cfg.Store.Driver = "postgres"
	cfg.Store.DatabaseURL = "postgres://localhost/enrich"
	assert.NoError(t, cfg.Validate(ModeRuns))
}

func TestValidateStrategy(t *testing.T) {
	cfg := validDefaults()
	cfg.Reconcile.Strategy = "merge"
	assert.ErrorContains(t, cfg.Validate(ModeFile), "reconcile.strategy must be overwrite or fill_only")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
