package main

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/couchcryptid/storm-geocoder/internal/domain"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func writeTable(w io.Writer, places []domain.PlaceResult, withTypes bool) error {
	table := tablewriter.NewWriter(w)

	header := []string{"Address", "Lat", "Lng"}
	if withTypes {
		header = append(header, "Types")
	}
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, p := range places {
		row := []string{p.Address, formatCoord(p.Lat), formatCoord(p.Lng)}
		if withTypes {
			row = append(row, strings.Join(p.Types, ", "))
		}
		table.Append(row)
	}

	table.Render()
	return nil
}

func writeJSON(w io.Writer, places []domain.PlaceResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(places)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
