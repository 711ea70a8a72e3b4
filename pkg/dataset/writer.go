package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
)

// WriteCSV writes the frame to path as UTF-8 with a byte order mark,
// the encoding spreadsheet tools expect for the accented headers.
func WriteCSV(path string, f *Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(file, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Write writes the BOM, the header and every row of f to w.
func Write(w io.Writer, f *Frame) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(f.Names()); err != nil {
		return err
	}
	rec := make([]string, f.Width())
	for i := range f.Len() {
		for j := range rec {
			rec[j] = formatValue(f.cols[j][i])
		}
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
