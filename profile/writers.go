package profile

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// csvWriter writes rows as CSV. The header is the first row's field order.
type csvWriter struct {
	name string
}

func (w csvWriter) path(destination string) string {
	return filepath.Join(destination, w.name+".csv")
}

func (w csvWriter) Write(rows []Row, destination string) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	header := rows[0]
	for i, row := range rows[1:] {
		if !sameFields(header, row) {
			return fmt.Errorf("%w: row %d", ErrHeterogeneousFields, i+2)
		}
	}

	f, err := os.Create(w.path(destination))
	if err != nil {
		return fmt.Errorf("failed to create CSV manifest: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	names := make([]string, len(header))
	for i, field := range header.Fields() {
		names[i] = string(field)
	}
	if err := cw.Write(names); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.Values()); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write CSV manifest: %w", err)
	}
	return f.Close()
}

func (w csvWriter) Done(destination string) map[string]string {
	return map[string]string{"csvPath": absPath(w.path(destination))}
}

// jsonWriter writes rows as a JSON array of objects.
type jsonWriter struct {
	name string
}

func (w jsonWriter) path(destination string) string {
	return filepath.Join(destination, w.name+".json")
}

func (w jsonWriter) Write(rows []Row, destination string) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON manifest: %w", err)
	}
	if err := os.WriteFile(w.path(destination), data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON manifest: %w", err)
	}
	return nil
}

func (w jsonWriter) Done(destination string) map[string]string {
	return map[string]string{"jsonPath": absPath(w.path(destination))}
}
