package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Surfe      SurfeConfig      `yaml:"surfe" mapstructure:"surfe"`
	Pipedrive  PipedriveConfig  `yaml:"pipedrive" mapstructure:"pipedrive"`
	HubSpot    HubSpotConfig    `yaml:"hubspot" mapstructure:"hubspot"`
	Outreach   OutreachConfig   `yaml:"outreach" mapstructure:"outreach"`
	Zoom       ZoomConfig       `yaml:"zoom" mapstructure:"zoom"`
	Intercom   IntercomConfig   `yaml:"intercom" mapstructure:"intercom"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Reconcile  ReconcileConfig  `yaml:"reconcile" mapstructure:"reconcile"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// SurfeConfig holds Surfe API settings.
type SurfeConfig struct {
	APIKey           string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL          string `yaml:"base_url" mapstructure:"base_url"`
	// Version overrides each workflow's default API generation.
	Version          string `yaml:"version" mapstructure:"version"`
	PollIntervalSecs int    `yaml:"poll_interval_secs" mapstructure:"poll_interval_secs"`
	MaxAttempts      int    `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// PipedriveConfig holds Pipedrive API settings and deal placement ids.
type PipedriveConfig struct {
	APIKey         string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	PipelineID     int64  `yaml:"pipeline_id" mapstructure:"pipeline_id"`
	StageID        int64  `yaml:"stage_id" mapstructure:"stage_id"`
	DefaultOwnerID int64  `yaml:"default_owner_id" mapstructure:"default_owner_id"`
	// Territories maps an uppercase department name to an owner id.
	Territories map[string]int64 `yaml:"territories" mapstructure:"territories"`
}

// TerritoryOwners returns Territories keyed by uppercase department, or nil
// when none are configured. Viper lowercases map keys on load.
func (c PipedriveConfig) TerritoryOwners() map[string]int64 {
	if len(c.Territories) == 0 {
		return nil
	}
	out := make(map[string]int64, len(c.Territories))
	for dept, owner := range c.Territories {
		out[strings.ToUpper(dept)] = owner
	}
	return out
}

// HubSpotConfig holds HubSpot private app settings.
type HubSpotConfig struct {
	AccessToken string `yaml:"access_token" mapstructure:"access_token"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
}

// OutreachConfig holds Outreach API settings and the target sequence.
type OutreachConfig struct {
	AccessToken string `yaml:"access_token" mapstructure:"access_token"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	SequenceID  int64  `yaml:"sequence_id" mapstructure:"sequence_id"`
	MailboxID   int64  `yaml:"mailbox_id" mapstructure:"mailbox_id"`
}

// ZoomConfig holds Zoom API settings and server-to-server OAuth credentials.
type ZoomConfig struct {
	APIToken     string `yaml:"api_token" mapstructure:"api_token"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	TokenURL     string `yaml:"token_url" mapstructure:"token_url"`
	WebinarID    string `yaml:"webinar_id" mapstructure:"webinar_id"`
	AccountID    string `yaml:"account_id" mapstructure:"account_id"`
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
}

// IntercomConfig holds Intercom API and webhook settings.
type IntercomConfig struct {
	AccessToken   string `yaml:"access_token" mapstructure:"access_token"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	WebhookSecret string `yaml:"webhook_secret" mapstructure:"webhook_secret"`
	AdminID       string `yaml:"admin_id" mapstructure:"admin_id"`
	TagID         string `yaml:"tag_id" mapstructure:"tag_id"`
	SetPriority   bool   `yaml:"set_priority" mapstructure:"set_priority"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID          string  `yaml:"client_id" mapstructure:"client_id"`
	Username          string  `yaml:"username" mapstructure:"username"`
	KeyPath           string  `yaml:"key_path" mapstructure:"key_path"`
	LoginURL          string  `yaml:"login_url" mapstructure:"login_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// ReconcileConfig selects how enriched values are merged.
type ReconcileConfig struct {
	Strategy string `yaml:"strategy" mapstructure:"strategy"`
}

// StoreConfig configures the run ledger backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// legacyEnv maps config keys to the bare environment names the integration
// scripts were deployed with.
var legacyEnv = map[string]string{
	"surfe.api_key":              "SURFE_API_KEY",
	"hubspot.access_token":       "HUBSPOT_ACCESS_TOKEN",
	"pipedrive.api_key":          "PIPEDRIVE_API_KEY",
	"pipedrive.pipeline_id":      "PIPEDRIVE_PIPELINE_ID",
	"pipedrive.stage_id":         "PIPEDRIVE_STAGE_ID",
	"pipedrive.default_owner_id": "PIPEDRIVE_DEFAULT_OWNER_ID",
	"outreach.access_token":      "OUTREACH_ACCESS_TOKEN",
	"outreach.sequence_id":       "OUTREACH_SEQUENCE_ID",
	"outreach.mailbox_id":        "OUTREACH_MAILBOX_ID",
	"zoom.api_token":             "ZOOM_API_TOKEN",
	"zoom.webinar_id":            "ZOOM_WEBINAR_ID",
	"zoom.account_id":            "ZOOM_ACCOUNT_ID",
	"zoom.client_id":             "ZOOM_CLIENT_ID",
	"zoom.client_secret":         "ZOOM_CLIENT_SECRET",
	"intercom.access_token":      "INTERCOM_ACCESS_TOKEN",
	"intercom.webhook_secret":    "WEBHOOK_SECRET",
}

const envPrefix = "ENRICH"

// Load reads configuration from an optional .env file, config.yaml, and the
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("surfe.base_url", "https://api.surfe.com")
	v.SetDefault("surfe.poll_interval_secs", 5)
	v.SetDefault("surfe.max_attempts", 60)
	v.SetDefault("pipedrive.base_url", "https://api.pipedrive.com/api/v2")
	v.SetDefault("hubspot.base_url", "https://api.hubapi.com")
	v.SetDefault("outreach.base_url", "https://api.outreach.io/api/v2")
	v.SetDefault("zoom.base_url", "https://api.zoom.us/v2")
	v.SetDefault("zoom.token_url", "https://zoom.us/oauth/token")
	v.SetDefault("intercom.base_url", "https://api.intercom.io")
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("reconcile.strategy", "overwrite")
	v.SetDefault("store.driver", "none")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
