// Package report projects batch results into a summary, a terminal table and a CSV export.
// Nothing here mutates the results.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"decalup/internal/models"

	"github.com/fatih/color"
)

// IDToken is replaced with the asset id in a link template.
const IDToken = "{id}"

// Header is the CSV column order.
var Header = []string{"file", "success", "asset_id", "error", "operation_id", "link"}

type Summary struct {
	Succeeded int `json:"succeeded"`
	Total     int `json:"total"`
}

func (s Summary) String() string {
	return fmt.Sprintf("%d of %d", s.Succeeded, s.Total)
}

func Summarize(results []models.UploadResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Success {
			s.Succeeded++
		}
	}
	return s
}

// Reporter renders results. Color only affects RenderTable.
type Reporter struct {
	LinkTemplate string
	Color        bool
}

// Link is empty when the result has no asset id or no template is set.
func (r Reporter) Link(result models.UploadResult) string {
	if result.AssetID == "" || r.LinkTemplate == "" {
		return ""
	}
	return strings.ReplaceAll(r.LinkTemplate, IDToken, result.AssetID)
}

// Rows returns one row per result in Header order.
func (r Reporter) Rows(results []models.UploadResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		rows = append(rows, []string{
			res.File,
			strconv.FormatBool(res.Success),
			res.AssetID,
			res.Error,
			res.OperationID,
			r.Link(res),
		})
	}
	return rows
}

func (r Reporter) WriteCSV(w io.Writer, results []models.UploadResult) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, row := range r.Rows(results) {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush CSV: %w", err)
	}
	return nil
}

// CSV is WriteCSV into memory.
func (r Reporter) CSV(results []models.UploadResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WriteCSV(&buf, results); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderTable writes an aligned table followed by the summary line.
func (r Reporter) RenderTable(w io.Writer, results []models.UploadResult) error {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	if r.Color {
		green.EnableColor()
		red.EnableColor()
	} else {
		green.DisableColor()
		red.DisableColor()
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tFILE\tASSET ID\tDETAIL\tSTATUS")
	for i, res := range results {
		status := green.Sprint("OK")
		detail := r.Link(res)
		if !res.Success {
			status = red.Sprint("FAILED")
			detail = res.Error
		} else if res.AssetID == "" && res.OperationID != "" {
			detail = "processing (operation " + res.OperationID + ")"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, res.File, res.AssetID, oneLine(detail), status)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	_, err := fmt.Fprintf(w, "\nUploaded %s decals\n", Summarize(results))
	return err
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
