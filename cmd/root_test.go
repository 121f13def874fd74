package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subcommandNames(c *cobra.Command) map[string]bool {
	names := make(map[string]bool)
	for _, sub := range c.Commands() {
		names[sub.Name()] = true
	}
	return names
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := subcommandNames(rootCmd)

	expected := []string{"contacts", "companies", "hubspot", "pipedrive", "salesforce", "zoom", "serve", "runs"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "enrich-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestNestedSubcommands(t *testing.T) {
	assert.True(t, subcommandNames(hubspotCmd)["sync"])
	assert.True(t, subcommandNames(pipedriveCmd)["sync"])
	assert.True(t, subcommandNames(pipedriveCmd)["lookalikes"])
	assert.True(t, subcommandNames(salesforceCmd)["sync"])

	zoomNames := subcommandNames(zoomCmd)
	for _, name := range []string{"outreach", "deals", "token"} {
		assert.True(t, zoomNames[name], "expected zoom subcommand %q", name)
	}

	runsNames := subcommandNames(runsCmd)
	assert.True(t, runsNames["list"])
	assert.True(t, runsNames["show"])
}

func TestContactsCommand_Flags(t *testing.T) {
	for _, name := range []string{"input", "output"} {
		flag := contactsCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "contacts should have --%s", name)
		assert.Equal(t, []string{"true"}, flag.Annotations[cobra.BashCompOneRequiredFlag])
	}
	assert.Equal(t, "0", contactsCmd.Flags().Lookup("poll-interval").DefValue)
	assert.Equal(t, "0", contactsCmd.Flags().Lookup("max-attempts").DefValue)
	assert.Equal(t, "0", companiesCmd.Flags().Lookup("poll-interval").DefValue)
	assert.Equal(t, "0", companiesCmd.Flags().Lookup("max-attempts").DefValue)
	require.NotNil(t, contactsCmd.Flags().Lookup("strategy"))
	require.NotNil(t, contactsCmd.Flags().Lookup("format"))

	assert.Nil(t, companiesCmd.Flags().Lookup("strategy"))
	require.NotNil(t, companiesCmd.Flags().Lookup("input"))
}

func TestSyncCommand_LimitDefaults(t *testing.T) {
	assert.Equal(t, "100", hubspotSyncCmd.Flags().Lookup("limit").DefValue)
	assert.Equal(t, "100", pipedriveSyncCmd.Flags().Lookup("limit").DefValue)
	assert.Equal(t, "200", salesforceSyncCmd.Flags().Lookup("limit").DefValue)
}

func TestLookalikesCommand_Flags(t *testing.T) {
	assert.Equal(t, "30", pipedriveLookalikesCmd.Flags().Lookup("days").DefValue)
	assert.Equal(t, "10", pipedriveLookalikesCmd.Flags().Lookup("max").DefValue)
	assert.Equal(t, "false", pipedriveLookalikesCmd.Flags().Lookup("create").DefValue)
}

func TestZoomCommand_Flags(t *testing.T) {
	require.NotNil(t, zoomOutreachCmd.Flags().Lookup("webinar-id"))
	require.NotNil(t, zoomDealsCmd.Flags().Lookup("registrants-file"))
	require.NotNil(t, zoomDealsCmd.Flags().Lookup("topic"))
	assert.Nil(t, zoomOutreachCmd.Flags().Lookup("topic"))
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestRunsShowCommand_Flags(t *testing.T) {
	flag := runsShowCmd.Flags().Lookup("format")
	require.NotNil(t, flag)
	assert.Equal(t, "json", flag.DefValue)
	assert.Equal(t, "50", runsListCmd.Flags().Lookup("limit").DefValue)
}
