package climate

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ReadCSV parses a headered CSV. Numeric columns become table columns;
// everything else (timestamps, labels) is ignored.
func ReadCSV(r io.Reader) (*Table, error) {
	df := dataframe.ReadCSV(r, dataframe.HasHeader(true), dataframe.DetectTypes(true))
	if df.Err != nil {
		return nil, fmt.Errorf("read climate csv: %w", df.Err)
	}
	cols := make(map[string][]float64)
	for _, name := range df.Names() {
		s := df.Col(name)
		switch s.Type() {
		case series.Float, series.Int:
		default:
			continue
		}
		vals := s.Float()
		for i, v := range vals {
			if math.IsNaN(v) {
				return nil, fmt.Errorf("climate csv: column %s row %d is not a number", name, i+1)
			}
		}
		cols[name] = vals
	}
	return NewTable(cols)
}

// LoadCSV reads a climate table from a CSV file.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// LoadJSON reads a climate table stored as an object of column name to
// values.
func LoadJSON(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cols map[string][]float64
	if err := json.Unmarshal(raw, &cols); err != nil {
		return nil, fmt.Errorf("read climate json: %w", err)
	}
	return NewTable(cols)
}

// Load picks the reader from the file extension.
func Load(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(path)
	case ".csv", "":
		return LoadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported climate file %s", path)
	}
}
