package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/enrich-cli/internal/config"
	"github.com/sells-group/enrich-cli/internal/workflow"
)

// -- hubspot --

var hubspotCmd = &cobra.Command{
	Use:   "hubspot",
	Short: "HubSpot contact enrichment",
}

var hubspotSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Enrich HubSpot contacts in place",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := validate(config.ModeHubSpot); err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		engine, err := newEngine("")
		if err != nil {
			return err
		}

		st, closeStore, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		base, err := newBase(st, surfePeople, 0, 0)
		if err != nil {
			return err
		}
		w := &workflow.HubSpot{Base: base, Engine: engine, Client: newHubSpot(), Limit: limit}
		report, err := w.Run(ctx)
		if err != nil {
			return err
		}
		printReport(os.Stdout, report)
		return nil
	},
}

// -- pipedrive --

var pipedriveCmd = &cobra.Command{
	Use:   "pipedrive",
	Short: "Pipedrive person enrichment and lookalike prospecting",
}

var pipedriveSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Enrich Pipedrive persons in place",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := validate(config.ModePipedrive); err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		engine, err := newEngine("")
		if err != nil {
			return err
		}

		st, closeStore, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		base, err := newBase(st, surfePeople, 0, 0)
		if err != nil {
			return err
		}
		w := &workflow.Pipedrive{Base: base, Engine: engine, Client: newPipedrive(), Limit: limit}
		report, err := w.Run(ctx)
		if err != nil {
			return err
		}
		printReport(os.Stdout, report)
		return nil
	},
}

var pipedriveLookalikesCmd = &cobra.Command{
	Use:   "lookalikes",
	Short: "Find companies similar to recently won customers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := validate(config.ModeLookalikes); err != nil {
			return err
		}
		days, _ := cmd.Flags().GetInt("days")
		maxResults, _ := cmd.Flags().GetInt("max")
		create, _ := cmd.Flags().GetBool("create")

		st, closeStore, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		base, err := newBase(st, surfeV1Only, 0, 0)
		if err != nil {
			return err
		}
		w := &workflow.Lookalikes{
			Base:       base,
			Pipedrive:  newPipedrive(),
			Days:       days,
			Max:        maxResults,
			Create:     create,
			PipelineID: cfg.Pipedrive.PipelineID,
			StageID:    cfg.Pipedrive.StageID,
			OwnerID:    cfg.Pipedrive.DefaultOwnerID,
		}
		report, err := w.Run(ctx)
		if err != nil {
			return err
		}
		printReport(os.Stdout, report)
		return nil
	},
}

// -- salesforce --

var salesforceCmd = &cobra.Command{
	Use:   "salesforce",
	Short: "Salesforce contact enrichment",
}

var salesforceSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Enrich Salesforce Contacts in place",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := validate(config.ModeSalesforce); err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		engine, err := newEngine("")
		if err != nil {
			return err
		}
		sf, err := initSalesforce()
		if err != nil {
			return err
		}

		st, closeStore, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		base, err := newBase(st, surfePeople, 0, 0)
		if err != nil {
			return err
		}
		w := &workflow.Salesforce{Base: base, Engine: engine, Client: sf, Limit: limit}
		report, err := w.Run(ctx)
		if err != nil {
			return err
		}
		printReport(os.Stdout, report)
		return nil
	},
}

func init() {
	hubspotSyncCmd.Flags().Int("limit", 100, "contacts to fetch")
	hubspotCmd.AddCommand(hubspotSyncCmd)

	pipedriveSyncCmd.Flags().Int("limit", 100, "persons to fetch")
	pipedriveLookalikesCmd.Flags().Int("days", 30, "look back this many days for won deals")
	pipedriveLookalikesCmd.Flags().Int("max", 10, "maximum lookalike companies")
	pipedriveLookalikesCmd.Flags().Bool("create", false, "create an organization and prospect deal per lookalike")
	pipedriveCmd.AddCommand(pipedriveSyncCmd)
	pipedriveCmd.AddCommand(pipedriveLookalikesCmd)

	salesforceSyncCmd.Flags().Int("limit", 200, "contacts to fetch")
	salesforceCmd.AddCommand(salesforceSyncCmd)

	rootCmd.AddCommand(hubspotCmd)
	rootCmd.AddCommand(pipedriveCmd)
	rootCmd.AddCommand(salesforceCmd)
}
