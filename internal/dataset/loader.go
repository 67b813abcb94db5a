package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// LoadCSV reads a dataset from a CSV file. Every column but the last is a
// feature; the last column is the integer label. A non-numeric first row is
// treated as a header and skipped.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: parse %s: %w", path, err)
	}
	return fromRecords(records, path)
}

// FetchCSV downloads a CSV dataset over HTTP. Model training data for the
// pipelines tends to live in object storage; this keeps the binaries
// usable without a local copy.
func FetchCSV(ctx context.Context, url string) (*Dataset, error) {
	client := resty.New().SetTimeout(30 * time.Second)
	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("dataset: fetch %s: %w", url, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("dataset: fetch %s: status %d", url, resp.StatusCode())
	}

	records, err := csv.NewReader(strings.NewReader(resp.String())).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: parse response from %s: %w", url, err)
	}
	log.Info().Str("url", url).Int("rows", len(records)).Msg("dataset fetched")
	return fromRecords(records, url)
}

func fromRecords(records [][]string, source string) (*Dataset, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset: %s is empty", source)
	}

	start := 0
	if _, err := strconv.ParseFloat(records[0][0], 64); err != nil {
		start = 1 // header row
	}
	if len(records) <= start {
		return nil, fmt.Errorf("dataset: %s has no data rows", source)
	}

	width := len(records[start])
	if width < 2 {
		return nil, fmt.Errorf("dataset: %s needs at least one feature and a label column", source)
	}

	ds := &Dataset{}
	for i := start; i < len(records); i++ {
		rec := records[i]
		if len(rec) != width {
			return nil, fmt.Errorf("dataset: %s row %d has %d columns, want %d", source, i, len(rec), width)
		}
		row := make([]float64, width-1)
		for j := 0; j < width-1; j++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[j]), 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: %s row %d column %d: %w", source, i, j, err)
			}
			row[j] = v
		}
		label, err := strconv.Atoi(strings.TrimSpace(rec[width-1]))
		if err != nil {
			return nil, fmt.Errorf("dataset: %s row %d label: %w", source, i, err)
		}
		ds.X = append(ds.X, row)
		ds.Y = append(ds.Y, label)
	}
	return ds, nil
}
