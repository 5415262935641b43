// Package main provides the spout command line tool.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/openspout/openspout-sub000/pkg/spout"
	"github.com/openspout/openspout-sub000/pkg/spout/logging"
)

var version = "0.1.0"

// app holds the state shared by the commands of one invocation.
type app struct {
	v      *viper.Viper
	logger *zap.Logger
	out    io.Writer
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop(), out: out}
	a.v.SetEnvPrefix("SPOUT")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "spout",
		Short: "Stream rows between XLSX, ODS and CSV files",
		Long: `spout reads and writes spreadsheets one row at a time.
Every flag can also be set with a SPOUT_ environment variable
(SPOUT_LOG_LEVEL=debug) or in the file given with --config.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().String("config", "", "Configuration file (json, yaml or toml)")
	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "console", "Log encoding (console, json)")
	root.PersistentFlags().String("temp-dir", "", "Directory for temporary files")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.out, "spout v%s\n", version)
		},
	})
	root.AddCommand(a.newConvertCmd(), a.newDumpCmd(), a.newSheetsCmd())
	return root
}

// setup binds the flags of the running command, loads the config file and
// builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := a.v.BindPFlags(cmd.InheritedFlags()); err != nil {
		return err
	}
	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	logger, err := logging.New(logging.Config{
		Level:    a.v.GetString("log-level"),
		Encoding: a.v.GetString("log-format"),
	})
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// addReadFlags registers the flags that configure the input reader.
func addReadFlags(cmd *cobra.Command) {
	cmd.Flags().String("type", "", "Input type (csv, xlsx, ods); default from the extension")
	cmd.Flags().String("delimiter", ",", "CSV input field delimiter")
	cmd.Flags().String("enclosure", `"`, "CSV input field enclosure")
	cmd.Flags().String("encoding", "UTF-8", "CSV input encoding, or auto")
	cmd.Flags().Bool("format-dates", false, "Return dates as displayed text")
	cmd.Flags().Bool("preserve-empty-rows", false, "Keep empty rows")
}

func (a *app) readerOptions() (spout.ReaderOptions, error) {
	delim, err := parseRune("delimiter", a.v.GetString("delimiter"))
	if err != nil {
		return spout.ReaderOptions{}, err
	}
	encl, err := parseRune("enclosure", a.v.GetString("enclosure"))
	if err != nil {
		return spout.ReaderOptions{}, err
	}
	formatDates := a.v.GetBool("format-dates")
	preserve := a.v.GetBool("preserve-empty-rows")
	return spout.ReaderOptions{
		Type:              spout.Type(a.v.GetString("type")),
		FormatDates:       &formatDates,
		PreserveEmptyRows: &preserve,
		TempDir:           a.v.GetString("temp-dir"),
		FieldDelimiter:    delim,
		FieldEnclosure:    encl,
		Encoding:          a.v.GetString("encoding"),
		Logger:            a.logger,
	}, nil
}

// parseRune reads a single character flag. "\t" and "tab" select a tab.
func parseRune(name, s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("--%s must be a single character, got %q", name, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
