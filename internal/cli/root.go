// Package cli provides the command-line interface of whload.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"go.nownabe.dev/whloader"
)

// Version is set at build time.
var Version = "0.1.0"

// NewRootCmd creates the whload command.
func NewRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "whload",
		Short: "Reload a public dataset into a warehouse table",
		Long: `whload downloads a tabular dataset, normalizes its column names and reloads it
into a warehouse table: drop, create with text columns, stage, copy.

Connection settings come from SNOWFLAKE_* variables (account, user, authenticator,
password, database, warehouse, role ...), WHLOAD_* variables and flags.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := LoadSettings(cmd.Flags(), envFile)
			if err != nil {
				return err
			}

			return run(cmd, s)
		},
	}

	f := cmd.Flags()
	f.StringVar(&envFile, "env-file", ".env", "Load environment variables from this file if it exists")
	f.String("url", "", "Source URL (http, https or gs)")
	f.String("user-agent", "", "User-Agent header sent to the source")
	f.String("format", "", "Source format (csv|xls)")
	f.Uint("skip-head", 0, "Lines to drop before the CSV header")
	f.Uint("skip-tail", 0, "Lines to drop at the end of the CSV source")
	f.String("platform", "", "Destination platform (snowflake|bigquery)")
	f.String("account", "", "Snowflake account identifier")
	f.String("user", "", "Snowflake user")
	f.String("authenticator", "", "Snowflake authenticator (snowflake|externalbrowser|oauth|snowflake_jwt|username_password_mfa|<okta url>)")
	f.String("private-key-path", "", "PKCS#8 private key for key-pair authentication")
	f.String("database", "", "Snowflake database or BigQuery project")
	f.String("warehouse", "", "Snowflake warehouse")
	f.String("role", "", "Snowflake role")
	f.String("schema", "", "Snowflake schema or BigQuery dataset")
	f.String("table", "", "Destination table")
	f.Int("max-text-width", 0, "Width of every text column")
	f.String("on-collision", "", "What to do when column names collide after normalization (reject|suffix)")
	f.String("temp-dir", "", "Directory of the transient staging file")
	f.String("log-level", "", "Log level (debug|info|warn|error)")
	f.Bool("pretty", false, "Print human friendly logs")

	_ = cmd.RegisterFlagCompletionFunc("platform", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"snowflake", "bigquery"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func run(cmd *cobra.Command, s *Settings) error {
	opts := []whloader.Option{
		whloader.WithLogLevel(s.LogLevel),
		whloader.WithLogOutput(cmd.ErrOrStderr()),
	}
	if s.Pretty {
		opts = append(opts, whloader.WithPrettyLogging())
	}

	loader, err := whloader.New(opts...)
	if err != nil {
		return err
	}

	h, err := s.Handler()
	if err != nil {
		return err
	}

	res, err := loader.Load(cmd.Context(), h)
	if err != nil {
		var werr *whloader.WarehouseError
		if errors.As(err, &werr) {
			dest := h.Destination
			dest.Normalize()
			fmt.Fprintf(cmd.ErrOrStderr(), "%s\nattempted to load to: %s\n", werr.Hint(), dest.TablePath())
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.Text())

	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
