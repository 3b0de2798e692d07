package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
)

// ExportFileName is the file name of a run's CSV export.
func ExportFileName(run *domain.ReorderRun) string {
	return fmt.Sprintf("reorder_%s_%s.csv", run.Date.Format(domain.DateLayout), run.ID)
}

// WriteOrdersCSV writes orders with a sku,warehouse,quantity header.
func WriteOrdersCSV(w io.Writer, orders []domain.Order) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"sku", "warehouse", "quantity"}); err != nil {
		return err
	}
	for _, o := range orders {
		record := []string{
			o.SKU,
			o.Warehouse.String(),
			strconv.Itoa(o.Quantity),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// writeExport stores the run's orders under dir and returns the path and file contents.
func writeExport(dir string, run *domain.ReorderRun) (string, []byte, error) {
	var buf bytes.Buffer
	if err := WriteOrdersCSV(&buf, run.Orders); err != nil {
		return "", nil, fmt.Errorf("failed to encode export: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("failed to create export dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, ExportFileName(run))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", nil, fmt.Errorf("failed to write export %s: %w", path, err)
	}
	return path, buf.Bytes(), nil
}
