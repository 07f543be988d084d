package removeditems

import (
	"encoding/csv"
	"io"
	"strconv"
)

// CSV download metadata.
const (
	CSVContentType = "text/csv; charset=UTF-8"
	CSVFilename    = "removed_items.csv"
)

var csvHeader = []string{"User ID", "Product ID", "Product Name"}

// CSVWriter renders records as CSV rows, flushing after each batch.
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter wraps out in a CSV encoder.
func NewCSVWriter(out io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(out)}
}

// WriteHeader emits the column header row.
func (c *CSVWriter) WriteHeader() error {
	if err := c.w.Write(csvHeader); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

// WriteRecords emits one row per record in input order.
func (c *CSVWriter) WriteRecords(records []Record) error {
	for _, r := range records {
		if err := c.w.Write(csvRow(r)); err != nil {
			return err
		}
	}
	c.w.Flush()
	return c.w.Error()
}

func csvRow(r Record) []string {
	userID := ""
	if r.UserID != nil {
		userID = strconv.FormatUint(uint64(*r.UserID), 10)
	}
	return []string{userID, strconv.FormatUint(uint64(r.ProductID), 10), r.Name}
}
