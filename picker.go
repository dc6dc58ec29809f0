package main

import (
	"io"

	"github.com/charmbracelet/huh"
	"github.com/olekukonko/tablewriter"

	"vox.town/studio"
)

// pickExportKind resolves the --format flag into an export kind. With an
// empty flag it asks interactively, and "skip" means no export at all.
func pickExportKind(format string) (studio.ExportKind, error) {
	if format != "" {
		kind := studio.ExportKind(format)
		for _, known := range studio.ExportKinds {
			if kind == known {
				return kind, nil
			}
		}
		return "", studio.ErrUnknownExportKind
	}

	options := make([]huh.Option[string], 0, len(studio.ExportKinds)+1)
	options = append(options, huh.NewOption("Don't export", ""))
	for _, kind := range studio.ExportKinds {
		options = append(options, huh.NewOption(string(kind), string(kind)))
	}

	var selected string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Export the transcription?").
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}
	return studio.ExportKind(selected), nil
}

func newExportsTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Size", "Modified", "Path"})
	table.SetBorder(false)
	table.SetCenterSeparator("|")
	table.SetColumnSeparator("|")
	table.SetRowSeparator("-")
	table.SetAutoWrapText(false)
	return table
}
