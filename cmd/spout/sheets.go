package main

import (
	"github.com/spf13/cobra"

	"github.com/openspout/openspout-sub000/pkg/spout"
	"github.com/openspout/openspout-sub000/pkg/spout/output"
)

func (a *app) newSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets INPUT",
		Short: "List the sheets of a spreadsheet as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.readerOptions()
			if err != nil {
				return err
			}
			r, err := spout.OpenReader(args[0], opts)
			if err != nil {
				return err
			}
			defer r.Close()

			enc := output.NewEncoder(a.out, a.v.GetBool("pretty"))
			sheets := r.Sheets()
			for sheets.Next() {
				s := sheets.Sheet()
				rec := output.SheetRecord{Index: s.Index(), Name: s.Name(), Active: s.IsActive(), Visible: s.IsVisible()}
				if err := enc.Encode(rec); err != nil {
					return err
				}
			}
			return sheets.Err()
		},
	}
	addReadFlags(cmd)
	cmd.Flags().Bool("pretty", false, "Pretty-print JSON output")
	return cmd
}
