package main

import (
	"fmt"
	"time"

	"resurface-backend/internal/app"
	notedomain "resurface-backend/internal/note/domain"
	"resurface-backend/pkg/config"

	"github.com/spf13/cobra"
)

// RootOptions holds the global flags shared by every job command.
type RootOptions struct {
	Now    string // RFC3339 override of the job clock
	DryRun bool
}

func (o *RootOptions) now() (time.Time, error) {
	if o.Now == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, o.Now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now value %q: must be RFC3339", o.Now)
	}
	return t, nil
}

// NewRootCommand builds the batch runner CLI. The application graph is wired
// lazily so `runner --help` works without a reachable database.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "runner",
		Short: "Resurface batch jobs",
		Long: `Run the Resurface batch jobs: digest generation and sending, drip
sequences, and source sync. Each job is idempotent and safe to re-invoke;
scheduling is left to cron or the platform's job runner.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Now, "now", "", "override the job clock (RFC3339)")
	cmd.PersistentFlags().BoolVar(&opts.DryRun, "dry-run", false, "report what would happen without sending or mutating state (send-digests and run-sequences only)")

	cmd.AddCommand(newGenerateDigestsCommand(opts))
	cmd.AddCommand(newSendDigestsCommand(opts))
	cmd.AddCommand(newRunSequencesCommand(opts))
	cmd.AddCommand(newSyncCommand(opts))

	return cmd
}

func wireApp() (*app.App, error) {
	return app.New(config.Load())
}

func newGenerateDigestsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "generate-digests",
		Short: "Build or refresh every user's scheduled digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.DryRun {
				return fmt.Errorf("generate-digests has no dry-run mode: generation always rewrites scheduled digests")
			}
			now, err := opts.now()
			if err != nil {
				return err
			}
			application, err := wireApp()
			if err != nil {
				return err
			}
			report, err := application.DigestRunner.GenerateForAllUsers(cmd.Context(), now)
			if err != nil {
				return err
			}
			fmt.Printf("generated %d digests (%d empty, %d failed) across %d users\n",
				report.Generated, report.Empty, report.Failed, report.Users)
			return nil
		},
	}
}

func newSendDigestsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send-digests",
		Short: "Deliver scheduled digests whose users are in their send window",
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := opts.now()
			if err != nil {
				return err
			}
			application, err := wireApp()
			if err != nil {
				return err
			}
			report, err := application.DigestRunner.SendDue(cmd.Context(), now, opts.DryRun)
			if err != nil {
				return err
			}
			if opts.DryRun {
				fmt.Printf("dry-run: %d of %d scheduled digests would send (%d not due)\n",
					report.WouldSend, report.Scheduled, report.NotDue)
				return nil
			}
			fmt.Printf("sent %d of %d scheduled digests (%d not due, %d failed)\n",
				report.Sent, report.Scheduled, report.NotDue, report.Failed)
			return nil
		},
	}
}

func newRunSequencesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run-sequences",
		Short: "Advance every active drip sequence by at most one step",
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := opts.now()
			if err != nil {
				return err
			}
			application, err := wireApp()
			if err != nil {
				return err
			}
			report, err := application.SequenceRunner.Run(cmd.Context(), now, opts.DryRun)
			if err != nil {
				return err
			}
			if opts.DryRun {
				fmt.Printf("dry-run: %d of %d active states would send\n", report.WouldSend, report.Active)
				return nil
			}
			fmt.Printf("sequences: %d sent, %d not due, %d blocked, %d exited, %d completed, %d failed\n",
				report.Sent, report.NotDue, report.Blocked, report.Exited, report.Completed, report.Failed)
			return nil
		},
	}
}

func newSyncCommand(opts *RootOptions) *cobra.Command {
	var sourceKind string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull and ingest note changes for every active connection of a source",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.DryRun {
				return fmt.Errorf("sync has no dry-run mode: ingestion always writes documents and cursors")
			}
			kind := notedomain.SourceKind(sourceKind)
			if kind != notedomain.SourcePages && kind != notedomain.SourceVault {
				return fmt.Errorf("--source must be pages or vault")
			}
			now, err := opts.now()
			if err != nil {
				return err
			}
			application, err := wireApp()
			if err != nil {
				return err
			}
			report, err := application.Syncer.SyncAllForKind(cmd.Context(), kind, now)
			if err != nil {
				return err
			}
			fmt.Printf("synced %d connections (%d failed): %d accepted, %d skipped, %d rejected\n",
				report.Connections, report.Failed, report.Accepted, report.Skipped, report.Rejected)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceKind, "source", "", "source kind to sync (pages|vault)")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}
