package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/enrich-cli/internal/config"
	"github.com/sells-group/enrich-cli/internal/contactfile"
	"github.com/sells-group/enrich-cli/internal/workflow"
)

type fileFlags struct {
	input        string
	output       string
	format       string
	pollInterval int
	maxAttempts  int
}

func (f *fileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.input, "input", "", "input CSV or XLSX file (required)")
	cmd.Flags().StringVar(&f.output, "output", "", "output file (required)")
	cmd.Flags().StringVar(&f.format, "format", "", "output format: csv or xlsx (default from output extension)")
	cmd.Flags().IntVar(&f.pollInterval, "poll-interval", 0, "seconds between enrichment status checks (default from surfe.poll_interval_secs)")
	cmd.Flags().IntVar(&f.maxAttempts, "max-attempts", 0, "status checks before giving up (default from surfe.max_attempts)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
}

func (f *fileFlags) fileInput() (workflow.FileInput, error) {
	format, err := contactfile.ResolveFormat(f.output, f.format)
	if err != nil {
		return workflow.FileInput{}, err
	}
	return workflow.FileInput{Input: f.input, Output: f.output, Format: format}, nil
}

var (
	contactsFlags    fileFlags
	contactsStrategy string
	companiesFlags   fileFlags
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Enrich a contact table with emails, phones, and job titles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := validate(config.ModeFile); err != nil {
			return err
		}
		in, err := contactsFlags.fileInput()
		if err != nil {
			return err
		}
		engine, err := newEngine(contactsStrategy)
		if err != nil {
			return err
		}

		st, closeStore, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		base, err := newBase(st, surfePeople, contactsFlags.pollInterval, contactsFlags.maxAttempts)
		if err != nil {
			return err
		}
		w := &workflow.ContactFile{Base: base, Engine: engine}
		report, err := w.Run(ctx, in)
		if err != nil {
			return err
		}
		printReport(os.Stdout, report)
		return nil
	},
}

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Enrich the companies behind each contact's email domain",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := validate(config.ModeFile); err != nil {
			return err
		}
		in, err := companiesFlags.fileInput()
		if err != nil {
			return err
		}

		st, closeStore, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		base, err := newBase(st, surfeV1Only, companiesFlags.pollInterval, companiesFlags.maxAttempts)
		if err != nil {
			return err
		}
		w := &workflow.CompanyFile{Base: base}
		report, err := w.Run(ctx, in)
		if err != nil {
			return err
		}
		printReport(os.Stdout, report)
		return nil
	},
}

func init() {
	contactsFlags.register(contactsCmd)
	contactsCmd.Flags().StringVar(&contactsStrategy, "strategy", "", "merge strategy: overwrite or fill_only (default from config)")
	companiesFlags.register(companiesCmd)

	rootCmd.AddCommand(contactsCmd)
	rootCmd.AddCommand(companiesCmd)
}
