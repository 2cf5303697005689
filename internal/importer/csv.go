package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// readCSV parses the whole uploaded file, sniffing the field separator from
// the first physical line. Returns the header row and the data records.
// Records may have fewer fields than the header; that is tolerated here and
// handled per cell by rowValues.
func readCSV(content string) ([]string, [][]string, error) {
	firstLine := content
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		firstLine = content[:idx]
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = DetectSeparator(firstLine)
	reader.FieldsPerRecord = -1

	columns, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, fmt.Errorf("file has no header row")
		}
		return nil, nil, fmt.Errorf("failed to read header row: %w", err)
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("malformed CSV: %w", err)
		}
		records = append(records, record)
	}

	return columns, records, nil
}
