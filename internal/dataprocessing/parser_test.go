package dataprocessing

import (
	"context"
	stderrors "errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"absencecli/internal/errors"
	"absencecli/internal/shared/testutil"
	"absencecli/pkg/contracts/domain"
)

func TestExportReader_ReadCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		opts    ReadOptions
		want    []domain.RawEntry
		wantErr string
	}{
		{
			name:  "standard export",
			input: testutil.ExportCSV(testutil.SampleExportRows()[:2]),
			want: []domain.RawEntry{
				{Row: 2, AbsenceField: "04.03.2024 (08:00 - 09:07)", PersonName: "Alice", StatusText: "entschuldigt", UpdatedAt: "04.03.2024 10:00"},
				{Row: 3, AbsenceField: "01.03.2024 - 03.03.2024", PersonName: "Bob", StatusText: "Unentschuldigt", UpdatedAt: "04.03.2024 10:05"},
			},
		},
		{
			name:  "reordered headers with BOM, case and extra column",
			input: "\xef\xbb\xbfSTATUS;Klasse;name;aktualisiert  am;ABWESENHEITSZEIT\r\nentschuldigt;7a; Alice ;heute;ganztägig\r\n",
			want: []domain.RawEntry{
				{Row: 2, AbsenceField: "ganztägig", PersonName: "Alice", StatusText: "entschuldigt", UpdatedAt: "heute"},
			},
		},
		{
			name:  "blank lines keep physical row numbers",
			input: "Abwesenheitszeit;Name;Status\n\nganztägig;Alice;x\n;;\nganztägig;Bob;y\n",
			want: []domain.RawEntry{
				{Row: 3, AbsenceField: "ganztägig", PersonName: "Alice", StatusText: "x"},
				{Row: 5, AbsenceField: "ganztägig", PersonName: "Bob", StatusText: "y"},
			},
		},
		{
			name:  "short rows fill missing cells",
			input: "Abwesenheitszeit;Name;Status;Aktualisiert am\nganztägig;Alice\n",
			want: []domain.RawEntry{
				{Row: 2, AbsenceField: "ganztägig", PersonName: "Alice"},
			},
		},
		{
			name:  "custom delimiter",
			input: "Abwesenheitszeit,Name,Status\nganztägig,Alice,entschuldigt\n",
			opts:  ReadOptions{Delimiter: ','},
			want: []domain.RawEntry{
				{Row: 2, AbsenceField: "ganztägig", PersonName: "Alice", StatusText: "entschuldigt"},
			},
		},
		{
			name:    "missing required column",
			input:   "Abwesenheitszeit;Status\nganztägig;x\n",
			wantErr: "missing required columns: Name",
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: "no header row",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewExportReader(nil, tt.opts)
			got, err := reader.ReadCSV(context.Background(), strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				var appErr *errors.AppError
				require.True(t, stderrors.As(err, &appErr))
				assert.Equal(t, errors.ErrTypeParsing, appErr.Type)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExportReader_Encodings(t *testing.T) {
	utf8Text := "Abwesenheitszeit;Name;Status\nganztägig;Jürgen;entschuldigt\n"
	cp1252, err := charmap.Windows1252.NewEncoder().String(utf8Text)
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		encoding string
		wantName string
		wantErr  bool
	}{
		{"auto detects utf-8", utf8Text, EncodingAuto, "Jürgen", false},
		{"auto falls back to windows-1252", cp1252, EncodingAuto, "Jürgen", false},
		{"explicit windows-1252", cp1252, EncodingWindows1252, "Jürgen", false},
		{"explicit utf-8 with BOM", "\xef\xbb\xbf" + utf8Text, EncodingUTF8, "Jürgen", false},
		{"unknown encoding", utf8Text, "latin-9", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewExportReader(nil, ReadOptions{Encoding: tt.encoding})
			got, err := reader.ReadCSV(context.Background(), strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantName, got[0].PersonName)
			assert.Equal(t, "ganztägig", got[0].AbsenceField)
		})
	}
}

func TestExportReader_ReadFile(t *testing.T) {
	dir := t.TempDir()
	rows := testutil.SampleExportRows()

	t.Run("csv", func(t *testing.T) {
		got, err := NewExportReader(nil, DefaultReadOptions()).ReadFile(context.Background(), testutil.WriteExport(t, dir, rows))
		require.NoError(t, err)
		require.Len(t, got, len(rows))
		assert.Equal(t, 5, got[3].Row)
	})

	t.Run("xlsx", func(t *testing.T) {
		got, err := NewExportReader(nil, DefaultReadOptions()).ReadFile(context.Background(), testutil.WriteWorkbook(t, dir, rows))
		require.NoError(t, err)
		require.Len(t, got, len(rows))
		assert.Equal(t, domain.RawEntry{
			Row: 2, AbsenceField: "04.03.2024 (08:00 - 09:07)", PersonName: "Alice",
			StatusText: "entschuldigt", UpdatedAt: "04.03.2024 10:00",
		}, got[0])
		assert.Equal(t, 5, got[3].Row)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewExportReader(nil, DefaultReadOptions()).ReadFile(context.Background(), dir+"/absent.csv")
		var appErr *errors.AppError
		require.True(t, stderrors.As(err, &appErr))
		assert.Equal(t, errors.ErrTypeStorage, appErr.Type)
		assert.True(t, stderrors.Is(err, os.ErrNotExist))
	})
}

func TestExportReader_ReadXLSXInvalid(t *testing.T) {
	_, err := NewExportReader(nil, DefaultReadOptions()).ReadXLSX(context.Background(), strings.NewReader("not a workbook"))
	assert.ErrorContains(t, err, "failed to open workbook")
}
