package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes the observations as Date,Fund,Value in dataset order.
func (d *Dataset) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{DateColumn, "Fund", "Value"}); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, o := range d.Observations {
		record := []string{o.Date, o.Entity, strconv.FormatFloat(o.Value, 'f', -1, 64)}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
