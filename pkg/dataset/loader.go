package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// RowNumberColumn is the explicit row-number column found in the raw tables.
const RowNumberColumn = "No."

const utf8BOM = "\ufeff"

var (
	// ErrNotFound is returned when the CSV file does not exist.
	ErrNotFound = errors.New("dataset: file not found")
	// ErrRead is returned for any other failure while reading or parsing the CSV.
	ErrRead = errors.New("dataset: read failed")
)

// Index columns written by other tools without a header end up named "Unnamed: N".
var unnamedColumn = regexp.MustCompile(`^Unnamed`)

type loadConfig struct {
	dropRowNumber bool
	logger        *slog.Logger
}

// LoadOption configures Load.
type LoadOption func(*loadConfig)

// WithoutRowNumber drops the "No." column if present.
func WithoutRowNumber() LoadOption { return func(c *loadConfig) { c.dropRowNumber = true } }

// WithLogger reports dropped columns to l.
func WithLogger(l *slog.Logger) LoadOption { return func(c *loadConfig) { c.logger = l } }

// Load reads a CSV file with a header row into a Frame. Index artifact columns
// are dropped, as are columns holding non-numeric text.
func Load(path string, opts ...LoadOption) (*Frame, error) {
	cfg := loadConfig{logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(&cfg)
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrRead, path, err)
	}
	defer file.Close()

	f, err := Read(bufio.NewReader(file), cfg.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRead, path, err)
	}
	if cfg.dropRowNumber {
		f.Drop(RowNumberColumn)
	}
	return f, nil
}

// Read parses CSV content with a header row. logger may be nil.
func Read(r io.Reader, logger *slog.Logger) (*Frame, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("empty file")
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	rows := records[1:]

	f := NewFrame()
	seen := map[string]int{}
	for j, raw := range header {
		name := strings.TrimSpace(raw)
		if name == "" || unnamedColumn.MatchString(name) {
			continue
		}
		// duplicate headers get a numeric suffix, "x", "x.1", ...
		if k := seen[name]; k > 0 {
			seen[name] = k + 1
			name = fmt.Sprintf("%s.%d", name, k)
		} else {
			seen[name] = 1
		}

		values, ok := parseColumn(rows, j)
		if !ok {
			logger.Warn("dropping non-numeric column", "column", name)
			continue
		}
		if err := f.AddColumn(name, values); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func parseColumn(rows [][]string, j int) ([]float64, bool) {
	values := make([]float64, len(rows))
	for i, rec := range rows {
		s := strings.TrimSpace(rec[j])
		if isMissing(s) {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

func isMissing(s string) bool {
	switch strings.ToLower(s) {
	case "", "na", "nan", "null", "none":
		return true
	}
	return false
}
