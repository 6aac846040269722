package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"dynastyglobe/dataset"
)

func newDynastiesCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "dynasties",
		Short: "List the selectable dynasties",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printDynasties(cmd.OutOrStdout(), format)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "text", "output format (text, json)")
	return cmd
}

func printDynasties(w io.Writer, format string) error {
	entries := dataset.Entries()

	switch format {
	case "json":
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "text", "":
		table := tablewriter.NewWriter(w)
		table.Header("SLOT", "KEY", "NAME", "YEARS", "FILE")
		for i, e := range entries {
			row := []string{strconv.Itoa(i + 1), e.Key, e.Name, years(e.Start, e.End), e.File}
			if err := table.Append(row); err != nil {
				return err
			}
		}
		return table.Render()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func years(start, end int) string {
	return year(start) + " - " + year(end)
}

func year(y int) string {
	if y < 0 {
		return fmt.Sprintf("%d BCE", -y)
	}
	return fmt.Sprintf("%d", y)
}
