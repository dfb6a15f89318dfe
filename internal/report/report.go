// Package report renders the outcome of a reconciliation pass: the
// chronological match log and the residual report of unmatched entries.
package report

import (
	"fmt"
	"os"
	"strings"

	"fjacquet/txn-recon/internal/dateutils"
	"fjacquet/txn-recon/internal/logging"
	"fjacquet/txn-recon/internal/models"
	"fjacquet/txn-recon/internal/reconciler"

	"github.com/gocarina/gocsv"
)

// matchRow is the CSV shape of one match log line.
type matchRow struct {
	OrderID      string `csv:"OrderNumber"`
	LedgerDate   string `csv:"LedgerDate"`
	LedgerAmount string `csv:"LedgerAmount"`
	RecordDate   string `csv:"RecordDate"`
	RecordAmount string `csv:"RecordAmount"`
}

// residualRow is the CSV shape of one residual report line. The closest
// columns are empty when no same-amount record was seen at all.
type residualRow struct {
	LedgerDate     string `csv:"LedgerDate"`
	LedgerAmount   string `csv:"LedgerAmount"`
	ClosestOrderID string `csv:"ClosestOrderNumber"`
	ClosestDate    string `csv:"ClosestDate"`
	DaysApart      string `csv:"DaysApart"`
}

// Generator writes reconciliation reports.
type Generator struct {
	logger logging.Logger
}

// NewGenerator creates a report Generator.
func NewGenerator(logger logging.Logger) *Generator {
	return &Generator{logger: logger.WithField(logging.FieldComponent, "report")}
}

// WriteMatchLog writes the chronological match log as CSV.
func (g *Generator) WriteMatchLog(path string, matches []models.MatchEvent) error {
	rows := make([]matchRow, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, matchRow{
			OrderID:      m.OrderID,
			LedgerDate:   dateutils.FormatDate(m.Entry.Date, ""),
			LedgerAmount: m.Entry.Amount.String(),
			RecordDate:   dateutils.FormatDate(m.RecordDate, ""),
			RecordAmount: m.RecordAmount.String(),
		})
	}
	return g.writeCSV(path, &rows, len(rows))
}

// WriteResidual writes the residual report of unmatched entries as CSV.
func (g *Generator) WriteResidual(path string, residual []models.ResidualEntry) error {
	rows := make([]residualRow, 0, len(residual))
	for _, r := range residual {
		row := residualRow{
			LedgerDate:   dateutils.FormatDate(r.Entry.Date, ""),
			LedgerAmount: r.Entry.Amount.String(),
		}
		if r.Closest != nil {
			row.ClosestOrderID = r.Closest.OrderID
			row.ClosestDate = dateutils.FormatDate(r.Closest.Date, "")
			row.DaysApart = fmt.Sprintf("%d", r.DaysApart)
		}
		rows = append(rows, row)
	}
	return g.writeCSV(path, &rows, len(rows))
}

func (g *Generator) writeCSV(path string, rows interface{}, count int) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := gocsv.MarshalFile(rows, file); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	g.logger.WithFields(
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: count},
	).Info("Report written")
	return nil
}

// Summarize renders a human-readable summary of one pass.
func Summarize(result *reconciler.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "run %s: %d records seen, %d matched, %d unmatched\n",
		result.RunID, result.RecordsSeen, len(result.Matches), len(result.Residual))
	for _, m := range result.Matches {
		fmt.Fprintf(&sb, "  matched %s with %s: %s\n",
			m.OrderID, dateutils.FormatDate(m.Entry.Date, ""), m.Entry.Amount.String())
	}
	for _, r := range result.Residual {
		if r.Closest != nil {
			fmt.Fprintf(&sb, "  unmatched %s %s (closest by amount: %s on %s, %d days apart)\n",
				dateutils.FormatDate(r.Entry.Date, ""), r.Entry.Amount.String(),
				r.Closest.OrderID, dateutils.FormatDate(r.Closest.Date, ""), r.DaysApart)
		} else {
			fmt.Fprintf(&sb, "  unmatched %s %s (no same-amount record seen)\n",
				dateutils.FormatDate(r.Entry.Date, ""), r.Entry.Amount.String())
		}
	}
	return sb.String()
}
