package coupon

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteCatalogue writes rules as a gzipped catalogue readable by the loaders.
// Rules without a positive rate are written as a bare code.
func WriteCatalogue(w io.Writer, rules []Rule) error {
	gz := gzip.NewWriter(w)

	for _, r := range rules {
		line := Normalize(r.Code)
		if r.Rate.IsPositive() {
			line += "," + r.Rate.String()
		}
		if _, err := fmt.Fprintln(gz, line); err != nil {
			gz.Close()
			return fmt.Errorf("failed to write coupon: %w", err)
		}
	}

	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finish catalogue: %w", err)
	}
	return nil
}

// WriteCatalogueFile writes a catalogue to path, creating parent directories.
func WriteCatalogueFile(path string, rules []Rule) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := WriteCatalogue(file, rules); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
