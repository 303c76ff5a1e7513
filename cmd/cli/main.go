package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dzine-mind/internal/app"
	"dzine-mind/internal/config"
	"dzine-mind/internal/modes"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		envFile string
		verbose bool
	)
	root := &cobra.Command{
		Use:           "dzine-mind",
		Short:         "Design critique assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "load variables from this file instead of .env")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")

	load := func() (config.Config, *slog.Logger, error) {
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		cfg, err := config.Load(files...)
		if err != nil {
			return config.Config{}, nil, err
		}
		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		} else if level < slog.LevelWarn {
			// Keep the REPL readable unless asked otherwise.
			level = slog.LevelWarn
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return cfg, logger, nil
	}

	root.AddCommand(newChatCmd(load), newModesCmd(), newIncidentsCmd(load))
	return root
}

type loader func() (config.Config, *slog.Logger, error)

func newChatCmd(load loader) *cobra.Command {
	var (
		mode    string
		attach  string
		capture string
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			comps, err := app.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			r := newREPL(comps.Session, cmd.InOrStdin(), cmd.OutOrStdout())
			if mode != "" {
				if err := r.setMode(mode); err != nil {
					return err
				}
			}
			if attach != "" {
				if err := r.attachFile(attach); err != nil {
					return err
				}
			}
			if capture != "" {
				if err := r.captureFile(cmd.Context(), capture); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %s · mode %s · /help for commands\n", comps.Session.ID(), comps.Session.Mode())
			return r.run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "initial mode (critic, creative, advisor, trends)")
	cmd.Flags().StringVarP(&attach, "attach", "a", "", "attach a file to the first message")
	cmd.Flags().StringVar(&capture, "capture", "", "attach a downscaled still of this image to the first message")
	return cmd
}

func newModesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List the available modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODE\tLABEL\tENTROPY\tRIGOR\tDEPTH")
			for _, d := range modes.Descriptors() {
				fmt.Fprintf(tw, "%s\t%s\t%d%%\t%d%%\t%d%%\n", d.Mode, d.Label, d.Attributes.Entropy, d.Attributes.Rigor, d.Attributes.Depth)
			}
			return tw.Flush()
		},
	}
}

func newIncidentsCmd(load loader) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "incidents SESSION_ID",
		Short: "Show recorded model failures for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			if cfg.IncidentTable == "" {
				return errors.New("INCIDENT_TABLE is not set")
			}
			comps, err := app.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			list, err := comps.Incidents.ListIncidents(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tMODE\tCODE\tCAUSE")
			for _, in := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", in.OccurredAt.Format("2006-01-02 15:04:05"), in.Mode, in.Code, in.Cause)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum incidents to show (0 for all)")
	return cmd
}
