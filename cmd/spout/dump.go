package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openspout/openspout-sub000/pkg/spout"
	"github.com/openspout/openspout-sub000/pkg/spout/output"
	"github.com/openspout/openspout-sub000/pkg/spout/reader"
)

func (a *app) newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump INPUT",
		Short: "Print rows as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dump(args[0])
		},
	}
	addReadFlags(cmd)
	cmd.Flags().String("sheet", "", "Only dump the sheet with this name or 0-based index")
	cmd.Flags().Bool("pretty", false, "Pretty-print JSON output")
	return cmd
}

func (a *app) dump(path string) error {
	opts, err := a.readerOptions()
	if err != nil {
		return err
	}
	r, err := spout.OpenReader(path, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	selected := a.v.GetString("sheet")
	enc := output.NewEncoder(a.out, a.v.GetBool("pretty"))
	found := selected == ""
	sheets := r.Sheets()
	for sheets.Next() {
		s := sheets.Sheet()
		if !matchesSheet(s, selected) {
			continue
		}
		found = true
		if err := dumpSheet(enc, s); err != nil {
			return err
		}
	}
	if err := sheets.Err(); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("sheet %q: %w", selected, spout.ErrSheetNotFound)
	}
	return nil
}

func matchesSheet(s reader.Sheet, selected string) bool {
	if selected == "" || s.Name() == selected {
		return true
	}
	index, err := strconv.Atoi(selected)
	return err == nil && index == s.Index()
}

func dumpSheet(enc *output.Encoder, s reader.Sheet) error {
	it := s.RowIterator()
	n := 0
	for it.Next() {
		n++
		if err := enc.WriteRow(s.Name(), n, it.Row()); err != nil {
			return err
		}
	}
	return it.Err()
}
