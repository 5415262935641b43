package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openspout/openspout-sub000/pkg/spout"
)

func (a *app) newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert INPUT OUTPUT",
		Short: "Convert a spreadsheet to another format",
		Long: `Convert streams every sheet of INPUT into OUTPUT. Formats follow the
file extensions unless --type or --to-type is given. A CSV output receives
the active sheet only.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ropts, err := a.readerOptions()
			if err != nil {
				return err
			}
			wopts, err := a.writerOptions()
			if err != nil {
				return err
			}
			a.logger.Info("converting", zap.String("input", args[0]), zap.String("output", args[1]))
			return spout.Convert(args[0], args[1], ropts, wopts)
		},
	}
	addReadFlags(cmd)
	cmd.Flags().String("to-type", "", "Output type (csv, xlsx, ods); default from the extension")
	cmd.Flags().String("out-delimiter", ",", "CSV output field delimiter")
	cmd.Flags().String("out-enclosure", `"`, "CSV output field enclosure")
	cmd.Flags().Bool("no-bom", false, "Do not write a byte order mark to CSV output")
	cmd.Flags().Bool("shared-strings", false, "Write XLSX strings to a shared string table")
	cmd.Flags().Int("max-rows-per-sheet", 0, "Continue on a new sheet after this many rows")
	cmd.Flags().Bool("drop-extra-rows", false, "Drop rows past the sheet limit instead of adding sheets")
	cmd.Flags().Int("compression-level", 0, "Deflate level for XLSX and ODS output (1-9)")
	cmd.Flags().String("creator", "", "Creator stored in the document properties")
	return cmd
}

func (a *app) writerOptions() (spout.WriterOptions, error) {
	delim, err := parseRune("out-delimiter", a.v.GetString("out-delimiter"))
	if err != nil {
		return spout.WriterOptions{}, err
	}
	encl, err := parseRune("out-enclosure", a.v.GetString("out-enclosure"))
	if err != nil {
		return spout.WriterOptions{}, err
	}
	addBOM := !a.v.GetBool("no-bom")
	inline := !a.v.GetBool("shared-strings")
	autoSheets := !a.v.GetBool("drop-extra-rows")
	return spout.WriterOptions{
		Type:                         spout.Type(a.v.GetString("to-type")),
		TempDir:                      a.v.GetString("temp-dir"),
		MaxRowsPerSheet:              a.v.GetInt("max-rows-per-sheet"),
		CreateNewSheetsAutomatically: &autoSheets,
		UseInlineStrings:             &inline,
		CompressionLevel:             a.v.GetInt("compression-level"),
		Creator:                      a.v.GetString("creator"),
		FieldDelimiter:               delim,
		FieldEnclosure:               encl,
		AddBOM:                       &addBOM,
		Logger:                       a.logger,
	}, nil
}
