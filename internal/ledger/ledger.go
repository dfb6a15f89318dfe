// Package ledger loads the caller-supplied unknown ledger entries from CSV or
// YAML files.
package ledger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/txn-recon/internal/dateutils"
	"fjacquet/txn-recon/internal/models"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// csvEntry maps one ledger CSV row. Amounts and dates stay strings at the
// file boundary and are normalized into models.UnknownEntry.
type csvEntry struct {
	Date   string `csv:"Date"`
	Amount string `csv:"Amount"`
}

type yamlEntry struct {
	Date   string `yaml:"date"`
	Amount string `yaml:"amount"`
}

// Load reads unknown entries from path, picking the format by extension
// (.csv, .yaml, .yml).
func Load(path string) ([]models.UnknownEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(file)
	case ".yaml", ".yml":
		return ReadYAML(file)
	default:
		return nil, fmt.Errorf("unsupported ledger format: %s", path)
	}
}

// ReadCSV reads unknown entries from CSV with Date and Amount columns.
func ReadCSV(r io.Reader) ([]models.UnknownEntry, error) {
	var rows []csvEntry
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parsing ledger CSV: %w", err)
	}

	entries := make([]models.UnknownEntry, 0, len(rows))
	for i, row := range rows {
		entry, err := parseEntry(row.Date, row.Amount)
		if err != nil {
			return nil, fmt.Errorf("ledger row %d: %w", i+1, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ReadYAML reads unknown entries from a YAML list of {date, amount} items.
func ReadYAML(r io.Reader) ([]models.UnknownEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading ledger YAML: %w", err)
	}

	var rows []yamlEntry
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing ledger YAML: %w", err)
	}

	entries := make([]models.UnknownEntry, 0, len(rows))
	for i, row := range rows {
		entry, err := parseEntry(row.Date, row.Amount)
		if err != nil {
			return nil, fmt.Errorf("ledger item %d: %w", i+1, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseEntry(dateStr, amountStr string) (models.UnknownEntry, error) {
	date, err := dateutils.ParseDate(dateStr)
	if err != nil {
		return models.UnknownEntry{}, err
	}
	amount, err := models.ParseAmount(amountStr)
	if err != nil {
		return models.UnknownEntry{}, err
	}
	return models.UnknownEntry{Date: date, Amount: amount}, nil
}
