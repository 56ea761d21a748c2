// Package sink persists enrichment results back to the tabular dataset.
// Each flush rewrites the whole output file through a temp-file rename, so
// rows flushed before a crash are never corrupted by the crash.
package sink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/tabular"
)

// FileSink writes the dataset to path after applying each record's accepted
// values. The format follows the path extension (.xlsx or .csv).
type FileSink struct {
	ds   *tabular.Dataset
	path string
}

// New creates a FileSink over the shared dataset.
func New(ds *tabular.Dataset, path string) (*FileSink, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".csv":
		return &FileSink{ds: ds, path: path}, nil
	default:
		return nil, eris.Errorf("sink: unsupported file extension %q", ext)
	}
}

// Flush applies the accepted values and rewrites the file.
func (s *FileSink) Flush(rec model.Record, accepted model.Accepted) error {
	s.ds.Apply(rec, accepted)
	return s.save()
}

func (s *FileSink) save() error {
	tmp := s.path + ".tmp"

	var err error
	if strings.EqualFold(filepath.Ext(s.path), ".csv") {
		err = writeCSV(tmp, s.ds)
	} else {
		err = writeXLSX(tmp, s.ds)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return eris.Wrapf(err, "sink: rename %s", s.path)
	}
	return nil
}

func writeXLSX(path string, ds *tabular.Dataset) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	if err != nil {
		return eris.Wrap(err, "sink: add sheet")
	}

	writeRow := func(cells []string) {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}
	writeRow(ds.Header)
	for _, r := range ds.Rows {
		writeRow(r)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "sink: save xlsx %s", path)
	}
	return nil
}

func writeCSV(path string, ds *tabular.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "sink: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(ds.Header); err != nil {
		return eris.Wrap(err, "sink: write header")
	}
	for _, r := range ds.Rows {
		// Ragged input rows pad out to the header width.
		row := r
		for len(row) < len(ds.Header) {
			row = append(row, "")
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "sink: write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "sink: flush csv")
	}
	return f.Close()
}
