package render

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/ppiankov/umactually/internal/history"
	"github.com/ppiankov/umactually/internal/model"
)

// HistoryTable writes entries as an aligned table, most recent first
func HistoryTable(w io.Writer, entries []model.HistoryEntry, now time.Time) {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.ID,
			string(e.Kind),
			history.FormatAge(e.CreatedAt, now),
			scoreCell(e.Result),
			e.PreviewText,
		})
	}

	table.Header([]string{"id", "type", "age", "score", "preview"})
	table.Bulk(rows)
	table.Render()
}

func scoreCell(r model.AnalysisResult) string {
	if !r.Scored() {
		return "-"
	}
	return fmt.Sprintf("%d%%", r.ConfidenceScore)
}
