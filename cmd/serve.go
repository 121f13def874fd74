package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/enrich-cli/internal/config"
	"github.com/sells-group/enrich-cli/internal/server"
	"github.com/sells-group/enrich-cli/internal/workflow"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Intercom priority triage webhook server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := validate(config.ModeServe); err != nil {
			return err
		}

		sc, err := newSurfe(surfeV1Only)
		if err != nil {
			return err
		}

		st, closeStore, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		opts := server.Options{
			Port:          cfg.Server.Port,
			CORSOrigins:   cfg.Server.CORSOrigins,
			WebhookSecret: cfg.Intercom.WebhookSecret,
			Triage: &workflow.Triage{
				Surfe:       sc,
				Intercom:    newIntercom(),
				AdminID:     cfg.Intercom.AdminID,
				TagID:       cfg.Intercom.TagID,
				SetPriority: cfg.Intercom.SetPriority,
			},
		}
		if st != nil {
			opts.Runs = st
		}

		return server.New(opts).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
