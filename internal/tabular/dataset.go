package tabular

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/enrich-cli/internal/model"
)

// Dataset is the loaded table: header plus data rows, with the mapping's
// roles resolved to column indexes. The target columns are appended to the
// header when the input lacks them.
type Dataset struct {
	Header []string
	Rows   [][]string

	idCol      int // -1 when unmapped
	nameCols   []int
	addressCol int // -1 when unmapped
	websiteCol int
	phoneCol   int
}

// Load reads an xlsx or csv file (by extension) and resolves the mapping.
func Load(path string, m Mapping) (*Dataset, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	var (
		header []string
		rows   [][]string
		err    error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		header, rows, err = readXLSX(path)
	case ".csv":
		header, rows, err = readCSV(path)
	default:
		return nil, eris.Errorf("tabular: unsupported file extension %q", ext)
	}
	if err != nil {
		return nil, err
	}
	if len(header) == 0 {
		return nil, eris.Errorf("tabular: %s has no header row", path)
	}

	return newDataset(header, rows, m)
}

func newDataset(header []string, rows [][]string, m Mapping) (*Dataset, error) {
	d := &Dataset{
		Header:     header,
		Rows:       rows,
		idCol:      -1,
		addressCol: -1,
	}

	find := func(name string) int {
		for i, h := range d.Header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
		return -1
	}

	for _, c := range m.Name {
		idx := find(c)
		if idx < 0 {
			return nil, eris.Errorf("tabular: name column %q not found in header", c)
		}
		d.nameCols = append(d.nameCols, idx)
	}
	if m.ID != "" {
		if d.idCol = find(m.ID); d.idCol < 0 {
			return nil, eris.Errorf("tabular: id column %q not found in header", m.ID)
		}
	}
	if m.Address != "" {
		if d.addressCol = find(m.Address); d.addressCol < 0 {
			return nil, eris.Errorf("tabular: address column %q not found in header", m.Address)
		}
	}

	// Target columns are created when missing, like the original sheets
	// that arrive without them.
	if d.websiteCol = find(m.Website); d.websiteCol < 0 {
		d.Header = append(d.Header, m.Website)
		d.websiteCol = len(d.Header) - 1
	}
	if d.phoneCol = find(m.Phone); d.phoneCol < 0 {
		d.Header = append(d.Header, m.Phone)
		d.phoneCol = len(d.Header) - 1
	}

	return d, nil
}

// Records materializes the rows into pipeline records, preserving input
// order. Row anchors each record back to its source row for write-back.
func (d *Dataset) Records() []model.Record {
	out := make([]model.Record, 0, len(d.Rows))
	for i, row := range d.Rows {
		rec := model.Record{
			ID:    fmt.Sprintf("row-%d", i+1),
			Row:   i,
			Known: make(map[model.Field]string, 2),
		}
		if d.idCol >= 0 {
			if v := d.cell(row, d.idCol); v != "" {
				rec.ID = v
			}
		}
		for _, c := range d.nameCols {
			rec.NameTokens = append(rec.NameTokens, strings.Fields(d.cell(row, c))...)
		}
		if d.addressCol >= 0 {
			rec.Address = d.cell(row, d.addressCol)
		}
		if v := d.cell(row, d.websiteCol); v != "" {
			rec.Known[model.FieldWebsite] = v
		}
		if v := d.cell(row, d.phoneCol); v != "" {
			rec.Known[model.FieldPhone] = v
		}
		out = append(out, rec)
	}
	return out
}

// Apply writes a record's accepted values into its source row. Messenger
// fallbacks land in the website column; the resolver guarantees that only
// happens when no real website exists.
func (d *Dataset) Apply(rec model.Record, accepted model.Accepted) {
	if rec.Row < 0 || rec.Row >= len(d.Rows) {
		return
	}
	for f, av := range accepted {
		switch f {
		case model.FieldWebsite, model.FieldMessenger:
			d.setCell(rec.Row, d.websiteCol, av.Value)
		case model.FieldPhone:
			d.setCell(rec.Row, d.phoneCol, av.Value)
		}
	}
}

func (d *Dataset) cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func (d *Dataset) setCell(row, col int, value string) {
	for len(d.Rows[row]) <= col {
		d.Rows[row] = append(d.Rows[row], "")
	}
	d.Rows[row][col] = value
}
