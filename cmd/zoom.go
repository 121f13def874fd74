package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/enrich-cli/internal/config"
	"github.com/sells-group/enrich-cli/internal/workflow"
)

var zoomCmd = &cobra.Command{
	Use:   "zoom",
	Short: "Webinar registrant enrichment into Outreach and Pipedrive",
}

// webinar builds the registrant source from flags, falling back to the
// configured webinar id. The Zoom client is only created when registrants
// come from the API.
func webinar(ctx context.Context, cmd *cobra.Command) (workflow.Webinar, error) {
	id, _ := cmd.Flags().GetString("webinar-id")
	if id == "" {
		id = cfg.Zoom.WebinarID
	}
	wb := workflow.Webinar{WebinarID: id}
	if f := cmd.Flags().Lookup("registrants-file"); f != nil {
		wb.RegistrantsFile = f.Value.String()
	}
	if f := cmd.Flags().Lookup("topic"); f != nil {
		wb.Topic = f.Value.String()
	}
	if wb.RegistrantsFile != "" {
		return wb, nil
	}
	zc, err := newZoom(ctx)
	if err != nil {
		return workflow.Webinar{}, err
	}
	wb.Zoom = zc
	return wb, nil
}

var zoomOutreachCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Enroll enriched webinar registrants in an Outreach sequence",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := validate(config.ModeOutreach); err != nil {
			return err
		}
		wb, err := webinar(ctx, cmd)
		if err != nil {
			return err
		}

		st, closeStore, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		base, err := newBase(st, surfeWebinar, 0, 0)
		if err != nil {
			return err
		}
		w := &workflow.ZoomOutreach{
			Base:       base,
			Webinar:    wb,
			Outreach:   newOutreach(),
			SequenceID: cfg.Outreach.SequenceID,
			MailboxID:  cfg.Outreach.MailboxID,
		}
		report, err := w.Run(ctx)
		if err != nil {
			return err
		}
		printReport(os.Stdout, report)
		return nil
	},
}

var zoomDealsCmd = &cobra.Command{
	Use:   "deals",
	Short: "Create scored Pipedrive deals from enriched webinar registrants",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := validate(config.ModeDeals); err != nil {
			return err
		}
		wb, err := webinar(ctx, cmd)
		if err != nil {
			return err
		}

		st, closeStore, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		base, err := newBase(st, surfeWebinar, 0, 0)
		if err != nil {
			return err
		}
		territories := cfg.Pipedrive.TerritoryOwners()
		if territories == nil {
			territories = workflow.DefaultTerritories(cfg.Pipedrive.DefaultOwnerID)
		}
		w := &workflow.ZoomDeals{
			Base:           base,
			Webinar:        wb,
			Pipedrive:      newPipedrive(),
			PipelineID:     cfg.Pipedrive.PipelineID,
			StageID:        cfg.Pipedrive.StageID,
			DefaultOwnerID: cfg.Pipedrive.DefaultOwnerID,
			Territories:    territories,
		}
		report, err := w.Run(ctx)
		if err != nil {
			return err
		}
		printReport(os.Stdout, report)
		return nil
	},
}

var zoomTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Exchange server-to-server OAuth credentials for an access token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := validate(config.ModeZoomToken); err != nil {
			return err
		}
		tok, err := fetchZoomToken(cmd.Context(), cfg.Zoom)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tok)
	},
}

func init() {
	zoomOutreachCmd.Flags().String("webinar-id", "", "Zoom webinar id (default from config)")
	zoomOutreachCmd.Flags().String("registrants-file", "", "read registrants from a JSON file instead of the Zoom API")

	zoomDealsCmd.Flags().String("webinar-id", "", "Zoom webinar id (default from config)")
	zoomDealsCmd.Flags().String("registrants-file", "", "read registrants from a JSON file instead of the Zoom API")
	zoomDealsCmd.Flags().String("topic", "", "webinar topic used for deal scoring (default from Zoom)")

	zoomCmd.AddCommand(zoomOutreachCmd)
	zoomCmd.AddCommand(zoomDealsCmd)
	zoomCmd.AddCommand(zoomTokenCmd)
	rootCmd.AddCommand(zoomCmd)
}
