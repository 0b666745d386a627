// Package dataset loads wine measurement tables from CSV or XLSX files and
// prepares them for the clustering core: it selects the recognized columns,
// coerces the numeric ones and drops samples with missing values.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/TrevorS/winecluster"
)

const (
	columnName   = "name"
	columnOrigin = "origin"
)

// ErrMissingColumn is returned when a required feature column is absent.
var ErrMissingColumn = errors.New("dataset: missing feature column")

// headerAliases maps normalized header text to a column key. Both English
// names and the Portuguese headers of the published wine table are accepted.
var headerAliases = map[string]string{
	"nome do vinho": columnName,
	"name":          columnName,
	"wine":          columnName,
	"wine name":     columnName,
	"origem":        columnOrigin,
	"origin":        columnOrigin,

	"teor alcoólico":          "alcohol",
	"alcohol":                 "alcohol",
	"acidez málica":           "malic_acid",
	"malic acid":              "malic_acid",
	"cinzas":                  "ash",
	"ash":                     "ash",
	"alcalinidade das cinzas": "ash_alkalinity",
	"ash alkalinity":          "ash_alkalinity",
	"alcalinity of ash":       "ash_alkalinity",
	"magnésio":                "magnesium",
	"magnesium":               "magnesium",
	"fenóis totais":           "total_phenols",
	"total phenols":           "total_phenols",
	"flavonoides":             "flavonoids",
	"flavonoids":              "flavonoids",
	"flavanoids":              "flavonoids",
}

// Wine is one sample of the table.
type Wine struct {
	Name   string `json:"name"`
	Origin string `json:"origin"`

	// Features follow winecluster.FeatureNames order.
	Features []float64 `json:"features"`
}

// Dataset is a cleaned wine table.
type Dataset struct {
	Wines []Wine

	// Dropped counts rows discarded for missing or unparseable features.
	Dropped int
}

// Load reads a .csv or .xlsx file.
func Load(path string) (*Dataset, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("dataset: open %s: %w", path, err)
		}
		defer f.Close()
		return ReadCSV(f)
	case ".xlsx":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("dataset: open %s: %w", path, err)
		}
		defer f.Close()
		return ReadXLSX(f)
	default:
		return nil, fmt.Errorf("dataset: unsupported file type %q", ext)
	}
}

// ReadCSV parses a comma-separated table with a header row.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: read csv: %w", err)
	}
	return fromRecords(records)
}

// ReadXLSX parses the first sheet of a workbook; its first row is the header.
func ReadXLSX(r io.Reader) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("dataset: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("dataset: workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("dataset: read sheet %q: %w", sheets[0], err)
	}
	return fromRecords(rows)
}

func fromRecords(records [][]string) (*Dataset, error) {
	if len(records) == 0 {
		return nil, errors.New("dataset: no header row")
	}

	// First occurrence of a column wins.
	index := make(map[string]int)
	for i, h := range records[0] {
		key, ok := headerAliases[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	for _, f := range winecluster.FeatureNames {
		if _, ok := index[f]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, f)
		}
	}

	ds := &Dataset{}
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		features := make([]float64, len(winecluster.FeatureNames))
		ok := true
		for j, f := range winecluster.FeatureNames {
			v, err := parseNumber(cell(rec, index[f]))
			if err != nil {
				ok = false
				break
			}
			features[j] = v
		}
		if !ok {
			ds.Dropped++
			continue
		}
		w := Wine{Features: features}
		if i, found := index[columnName]; found {
			w.Name = strings.TrimSpace(cell(rec, i))
		}
		if i, found := index[columnOrigin]; found {
			w.Origin = strings.TrimSpace(cell(rec, i))
		}
		ds.Wines = append(ds.Wines, w)
	}

	log.Debug().Int("rows", len(ds.Wines)).Int("dropped", ds.Dropped).Msg("dataset loaded")
	return ds, nil
}

// Features returns the numeric table in winecluster.FeatureNames order.
func (d *Dataset) Features() [][]float64 {
	out := make([][]float64, len(d.Wines))
	for i, w := range d.Wines {
		out[i] = w.Features
	}
	return out
}

// Origins returns the distinct origins in order of first appearance.
func (d *Dataset) Origins() []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range d.Wines {
		if !seen[w.Origin] {
			seen[w.Origin] = true
			out = append(out, w.Origin)
		}
	}
	return out
}

// FeatureIndex returns the column of a feature name, or -1.
func FeatureIndex(name string) int {
	key, ok := headerAliases[normalizeHeader(name)]
	if !ok {
		key = name
	}
	for i, f := range winecluster.FeatureNames {
		if f == key {
			return i
		}
	}
	return -1
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ReplaceAll(h, "_", " ")
	return strings.ToLower(strings.TrimSpace(h))
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not finite")
	}
	return v, nil
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

func isBlank(rec []string) bool {
	for _, s := range rec {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}
