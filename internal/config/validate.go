package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Validation modes, one per command family.
const (
	ModeFile       = "file"
	ModeHubSpot    = "hubspot"
	ModePipedrive  = "pipedrive"
	ModeLookalikes = "lookalikes"
	ModeSalesforce = "salesforce"
	ModeOutreach   = "zoom_outreach"
	ModeDeals      = "zoom_deals"
	ModeZoomToken  = "zoom_token"
	ModeServe      = "serve"
	ModeRuns       = "runs"
)

// Validate checks that the settings mode needs are present and well formed.
// Every problem is reported in a single error.
func (c *Config) Validate(mode string) error {
	var errs []string
	require := func(ok bool, key string) {
		if !ok {
			errs = append(errs, key+" is required")
		}
	}

	switch c.Store.Driver {
	case "", "none":
	case "sqlite", "postgres":
		require(c.Store.DatabaseURL != "", "store.database_url")
	default:
		errs = append(errs, "store.driver must be one of none, sqlite, postgres")
	}
	switch strings.ToLower(c.Reconcile.Strategy) {
	case "", "overwrite", "fill_only":
	default:
		errs = append(errs, "reconcile.strategy must be overwrite or fill_only")
	}

	switch mode {
	case ModeFile:
		require(c.Surfe.APIKey != "", "surfe.api_key")
	case ModeHubSpot:
		require(c.Surfe.APIKey != "", "surfe.api_key")
		require(c.HubSpot.AccessToken != "", "hubspot.access_token")
	case ModePipedrive, ModeLookalikes:
		require(c.Surfe.APIKey != "", "surfe.api_key")
		require(c.Pipedrive.APIKey != "", "pipedrive.api_key")
	case ModeSalesforce:
		require(c.Surfe.APIKey != "", "surfe.api_key")
		require(c.Salesforce.ClientID != "", "salesforce.client_id")
		require(c.Salesforce.Username != "", "salesforce.username")
		require(c.Salesforce.KeyPath != "", "salesforce.key_path")
	case ModeOutreach:
		require(c.Surfe.APIKey != "", "surfe.api_key")
		require(c.Outreach.AccessToken != "", "outreach.access_token")
		require(c.Outreach.SequenceID != 0, "outreach.sequence_id")
		require(c.Outreach.MailboxID != 0, "outreach.mailbox_id")
	case ModeDeals:
		require(c.Surfe.APIKey != "", "surfe.api_key")
		require(c.Pipedrive.APIKey != "", "pipedrive.api_key")
		require(c.Pipedrive.PipelineID != 0, "pipedrive.pipeline_id")
		require(c.Pipedrive.StageID != 0, "pipedrive.stage_id")
	case ModeZoomToken:
		require(c.Zoom.AccountID != "", "zoom.account_id")
		require(c.Zoom.ClientID != "", "zoom.client_id")
		require(c.Zoom.ClientSecret != "", "zoom.client_secret")
	case ModeServe:
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		require(c.Intercom.WebhookSecret != "", "intercom.webhook_secret")
		require(c.Intercom.AccessToken != "", "intercom.access_token")
		require(c.Surfe.APIKey != "", "surfe.api_key")
	case ModeRuns:
		if c.Store.Driver == "" || c.Store.Driver == "none" {
			errs = append(errs, "store.driver must be sqlite or postgres to read runs")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
