package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"absencecli/internal/errors"
	"absencecli/internal/infrastructure"
	"absencecli/pkg/contracts/domain"
)

// Column headers of the attendance export
const (
	HeaderAbsence   = "Abwesenheitszeit"
	HeaderName      = "Name"
	HeaderStatus    = "Status"
	HeaderUpdatedAt = "Aktualisiert am"
)

// Input encodings
const (
	EncodingAuto        = "auto"
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

var requiredHeaders = []string{HeaderAbsence, HeaderName, HeaderStatus}

// ReadOptions controls how an export is decoded
type ReadOptions struct {
	Delimiter rune
	Encoding  string
}

// DefaultReadOptions returns ';' separated input with encoding detection
func DefaultReadOptions() ReadOptions {
	return ReadOptions{Delimiter: ';', Encoding: EncodingAuto}
}

// ExportReader turns attendance exports into raw entries
type ExportReader struct {
	logger *slog.Logger
	opts   ReadOptions
}

// NewExportReader creates a reader. Zero option fields take their defaults.
func NewExportReader(logger *slog.Logger, opts ReadOptions) *ExportReader {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ';'
	}
	if opts.Encoding == "" {
		opts.Encoding = EncodingAuto
	}
	return &ExportReader{
		logger: infrastructure.WithComponent(logger, "export_reader"),
		opts:   opts,
	}
}

// ReadFile reads a .csv/.txt or .xlsx export from disk
func (er *ExportReader) ReadFile(ctx context.Context, path string) ([]domain.RawEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	er.logger.InfoContext(ctx, "reading attendance export", slog.String("file", path))

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return er.ReadXLSX(ctx, f)
	}
	return er.ReadCSV(ctx, f)
}

// ReadCSV reads a delimited export. Row numbers are physical line numbers,
// the header being row 1.
func (er *ExportReader) ReadCSV(ctx context.Context, r io.Reader) ([]domain.RawEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewStorageError("failed to read export", err)
	}
	text, err := decodeInput(data, er.opts.Encoding)
	if err != nil {
		return nil, errors.NewParsingError("failed to decode export", err).WithContext("encoding", er.opts.Encoding)
	}

	cr := csv.NewReader(bytes.NewReader(text))
	cr.Comma = er.opts.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewParsingError("export has no header row", nil)
	}
	if err != nil {
		return nil, errors.NewParsingError("failed to read header row", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var raws []domain.RawEntry
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParsingError("malformed export line", err)
		}
		line, _ := cr.FieldPos(0)
		if isBlank(record) {
			continue
		}
		raws = append(raws, cols.entry(line, record))
	}

	er.logger.DebugContext(ctx, "read delimited export",
		slog.Int("rows", len(raws)),
		slog.String("delimiter", string(er.opts.Delimiter)))
	return raws, nil
}

// ReadXLSX reads the first sheet of a workbook. The first non-empty row is the
// header; row numbers are the sheet's own row numbers.
func (er *ExportReader) ReadXLSX(ctx context.Context, r io.Reader) ([]domain.RawEntry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewParsingError("workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewParsingError("failed to read sheet", err).WithContext("sheet", sheets[0])
	}

	headerIdx := -1
	for i, row := range rows {
		if !isBlank(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, errors.NewParsingError("export has no header row", nil)
	}

	cols, err := mapColumns(rows[headerIdx])
	if err != nil {
		return nil, err
	}

	var raws []domain.RawEntry
	for i := headerIdx + 1; i < len(rows); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isBlank(rows[i]) {
			continue
		}
		raws = append(raws, cols.entry(i+1, rows[i]))
	}

	er.logger.DebugContext(ctx, "read workbook export",
		slog.String("sheet", sheets[0]),
		slog.Int("rows", len(raws)))
	return raws, nil
}

// columnMap holds the position of each known header, -1 if absent
type columnMap struct {
	absence, name, status, updatedAt int
}

func mapColumns(header []string) (columnMap, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := foldHeader(h)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	lookup := func(name string) int {
		if i, ok := index[foldHeader(name)]; ok {
			return i
		}
		return -1
	}

	var missing []string
	for _, h := range requiredHeaders {
		if lookup(h) < 0 {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return columnMap{}, errors.NewParsingError(
			fmt.Sprintf("export is missing required columns: %s", strings.Join(missing, ", ")), nil).
			WithContext("missing", missing)
	}

	return columnMap{
		absence:   lookup(HeaderAbsence),
		name:      lookup(HeaderName),
		status:    lookup(HeaderStatus),
		updatedAt: lookup(HeaderUpdatedAt),
	}, nil
}

func (c columnMap) entry(row int, record []string) domain.RawEntry {
	return domain.RawEntry{
		Row:          row,
		AbsenceField: cell(record, c.absence),
		PersonName:   strings.TrimSpace(cell(record, c.name)),
		StatusText:   cell(record, c.status),
		UpdatedAt:    strings.TrimSpace(cell(record, c.updatedAt)),
	}
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// foldHeader makes header matching independent of case, Unicode form,
// surrounding whitespace and a leading BOM
func foldHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.Join(strings.Fields(h), " ")
	return cases.Fold().String(norm.NFC.String(h))
}

// decodeInput converts the export to UTF-8. Auto mode strips a UTF-8 BOM and
// falls back to Windows-1252 when the bytes are not valid UTF-8.
func decodeInput(data []byte, encoding string) ([]byte, error) {
	switch strings.ToLower(encoding) {
	case EncodingUTF8:
		out, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), data)
		return out, err
	case EncodingWindows1252:
		out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
		return out, err
	case EncodingAuto, "":
		stripped := bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
		if utf8.Valid(stripped) {
			return stripped, nil
		}
		out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
		return out, err
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}
