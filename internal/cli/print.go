package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/pkordes/dive-logbook/internal/divelist"
	"github.com/pkordes/dive-logbook/internal/domain"
	"github.com/pkordes/dive-logbook/internal/service"
	"github.com/pkordes/dive-logbook/internal/units"
)

var (
	headerStyle   = color.New(color.Bold, color.Underline)
	tripStyle     = color.New(color.Bold, color.FgCyan)
	selectedStyle = color.New(color.FgHiYellow)
	faintStyle    = color.New(color.Faint)
)

// printList renders the rows of v. Children of collapsed trips are hidden.
func printList(w io.Writer, v service.ListView) {
	var cols []divelist.Column
	header := []any{""}
	for _, c := range v.Columns {
		if c.Visible {
			cols = append(cols, c.Column)
			header = append(header, headerStyle.Sprint(c.Title))
		}
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.AddRow(header...)

	expanded := map[int]bool{}
	for _, row := range v.Rows {
		if row.Ref.Kind == divelist.KindTrip {
			expanded[row.Ref.ID] = row.Expanded
		} else if row.Parent >= 0 && !expanded[row.Parent] {
			continue
		}
		tbl.AddRow(rowCells(row, cols)...)
	}
	_, _ = fmt.Fprintln(w, tbl)

	_, _ = faintStyle.Fprintf(w, "%d rows, %d selected. %s\n", len(v.Rows), v.Selected, v.EditLabel)
}

func rowCells(row service.RowView, cols []divelist.Column) []any {
	style := color.New()
	marker := " "
	switch {
	case row.Ref.Kind == divelist.KindTrip:
		style = tripStyle
		marker = "+"
		if row.Expanded {
			marker = "-"
		}
	case row.Selected:
		style = selectedStyle
		marker = ">"
	}

	out := make([]any, 0, len(cols)+1)
	out = append(out, style.Sprint(marker))
	for i, c := range cols {
		text := row.Fields.Text(c)
		if i == 0 && row.Depth > 0 {
			text = "  " + text
		}
		out = append(out, style.Sprint(text))
	}
	return out
}

func printTrips(w io.Writer, trips []service.TripView) {
	if len(trips) == 0 {
		_, _ = faintStyle.Fprintln(w, "no trips")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(headerStyle.Sprint("Node"), headerStyle.Sprint("Trip"), headerStyle.Sprint("Location"), headerStyle.Sprint("Dives"))
	for _, t := range trips {
		members := make([]string, 0, len(t.Members))
		for _, m := range t.Members {
			members = append(members, strconv.Itoa(m))
		}
		tbl.AddRow(t.Node, tripStyle.Sprint(units.TripLabel(t.Trip.When, t.Trip.Count)), t.Trip.Location, strings.Join(members, ","))
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func printDive(w io.Writer, d domain.Dive, u units.Units) {
	_, _ = headerStyle.Fprintf(w, "Dive #%d\n", d.Number)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.Wrap = true
	tbl.MaxColWidth = 60
	tbl.AddRow("Index", d.Index)
	tbl.AddRow("Date", units.DiveDate(d.When))
	tbl.AddRow("Duration", units.Duration(d.DurationSec)+" min")
	tbl.AddRow("Max depth", u.Depth(d.MaxDepthMM)+" "+u.DepthTitle())
	tbl.AddRow("Rating", units.Stars(d.Rating))
	tbl.AddRow("Location", d.Location)
	tbl.AddRow("Suit", d.Suit)
	tbl.AddRow("Trip", d.TripFlag.String())
	for i, c := range d.Cylinders {
		tbl.AddRow(fmt.Sprintf("Cylinder %d", i+1), fmt.Sprintf("%s %s", c.Description, units.Nitrox(c.Mix.O2, c.Mix.He, c.Mix.O2)))
	}
	tbl.AddRow("Weight", u.WeightText(d.TotalWeightGrams)+" "+u.WeightTitle())
	tbl.AddRow("SAC", u.SAC(d.SAC))
	tbl.AddRow("OTU", units.OTU(d.OTU))
	_, _ = fmt.Fprintln(w, tbl)
}
