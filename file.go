package fileclean

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/nao1215/fileclean/domain/model"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// LoadOptions configures how a table is read.
//
// Example:
//
//	options := NewLoadOptions().
//		WithNullMarkers("", "-", "n/a").
//		WithEncoding("windows-1252")
//
//	table, err := Load("dirty_data.csv", options)
type LoadOptions struct {
	// NullMarkers are the raw values read as null. The empty string is always null.
	NullMarkers []string
	// Encoding is a WHATWG encoding label for text formats. Empty means UTF-8.
	Encoding string
}

// NewLoadOptions creates default load options (model.DefaultNullMarkers, UTF-8).
func NewLoadOptions() LoadOptions {
	return LoadOptions{
		NullMarkers: model.DefaultNullMarkers,
	}
}

// WithNullMarkers replaces the null markers.
func (o LoadOptions) WithNullMarkers(markers ...string) LoadOptions {
	o.NullMarkers = markers
	return o
}

// WithEncoding sets the character encoding of CSV, TSV and LTSV input.
func (o LoadOptions) WithEncoding(label string) LoadOptions {
	o.Encoding = label
	return o
}

// nullMarkers returns the markers with the empty string included
func (o LoadOptions) nullMarkers() []string {
	for _, m := range o.NullMarkers {
		if m == "" {
			return o.NullMarkers
		}
	}
	return append([]string{""}, o.NullMarkers...)
}

// decode wraps r with a decoder for the configured encoding. A byte order mark always wins.
func (o LoadOptions) decode(r io.Reader) (io.Reader, error) {
	label := strings.TrimSpace(o.Encoding)
	if label == "" {
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, label)
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

// mergeLoadOptions returns the last option or the defaults
func mergeLoadOptions(opts []LoadOptions) LoadOptions {
	if len(opts) == 0 {
		return NewLoadOptions()
	}
	return opts[len(opts)-1]
}

// Load reads a table from path. The format and compression are taken from the
// file extension, the table name from the file name.
func Load(path string, opts ...LoadOptions) (*model.Table, error) {
	ec := NewErrorContext("load", path)
	if err := validatePath(path); err != nil {
		return nil, ec.Error(err)
	}

	reader, err := openFileReader(path)
	if err != nil {
		return nil, ec.Error(err)
	}
	defer func() {
		_ = reader.Close() // Ignore close error after a completed read
	}()

	fileType := detectFileType(path)
	table, err := readTable(reader, fileType, model.TableFromFilePath(path), mergeLoadOptions(opts))
	if err != nil {
		return nil, ec.WithDetails(fileType.String() + " format").Error(err)
	}
	return table, nil
}

// LoadReader reads an uncompressed table of the given type from r.
// Wrap r with CompressionType.NewReader for compressed input.
func LoadReader(r io.Reader, fileType FileType, tableName string, opts ...LoadOptions) (*model.Table, error) {
	ec := NewErrorContext("load", "").WithTable(tableName)
	if err := validateReader(r, tableName, fileType); err != nil {
		return nil, ec.Error(err)
	}
	table, err := readTable(r, fileType, tableName, mergeLoadOptions(opts))
	if err != nil {
		return nil, ec.WithDetails(fileType.String() + " format").Error(err)
	}
	return table, nil
}

func readTable(r io.Reader, fileType FileType, tableName string, opts LoadOptions) (*model.Table, error) {
	var (
		header  model.Header
		records []model.Record
		kinds   []model.Kind
		err     error
	)

	switch fileType {
	case FileTypeCSV, FileTypeTSV, FileTypeLTSV:
		decoded, decErr := opts.decode(r)
		if decErr != nil {
			return nil, decErr
		}
		switch fileType {
		case FileTypeCSV:
			header, records, err = parseDelimited(decoded, csvDelimiter)
		case FileTypeTSV:
			header, records, err = parseDelimited(decoded, tsvDelimiter)
		default:
			header, records, err = parseLTSV(decoded)
		}
	case FileTypeXLSX:
		header, records, err = parseXLSX(r)
	case FileTypeParquet:
		header, records, kinds, err = parseParquet(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}

	return model.NewTableFromTypedRecords(tableName, header, records, kinds, opts.nullMarkers())
}

// parseDelimited parses CSV or TSV data with the specified delimiter
func parseDelimited(r io.Reader, delimiter rune) (model.Header, []model.Record, error) {
	csvReader := csv.NewReader(r)
	csvReader.Comma = delimiter
	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	if len(rows) == 0 {
		return nil, nil, ErrEmptyData
	}

	records := make([]model.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, model.NewRecord(row))
	}
	return model.NewHeader(rows[0]), records, nil
}

// parseLTSV parses LTSV data. Columns appear in order of first occurrence.
func parseLTSV(r io.Reader) (model.Header, []model.Record, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}

	var header model.Header
	seen := make(map[string]bool)
	var rows []map[string]string

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		row := make(map[string]string)
		for _, pair := range strings.Split(line, "\t") {
			kv := strings.SplitN(pair, ":", 2)
			if len(kv) != 2 {
				continue
			}
			key := strings.TrimSpace(kv[0])
			row[key] = kv[1]
			if !seen[key] {
				seen[key] = true
				header = append(header, key)
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return nil, nil, ErrEmptyData
	}

	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		record := make(model.Record, len(header))
		for i, key := range header {
			record[i] = row[key] // missing labels read as empty
		}
		records = append(records, record)
	}
	return header, records, nil
}

// parseXLSX parses the first sheet of an XLSX workbook. The first row is the header.
func parseXLSX(r io.Reader) (model.Header, []model.Record, error) {
	xlsxFile, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	defer func() {
		_ = xlsxFile.Close() // Ignore close error
	}()

	sheetNames := xlsxFile.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, nil, ErrEmptyData
	}

	rows, err := xlsxFile.GetRows(sheetNames[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheetNames[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, ErrEmptyData
	}

	header := model.NewHeader(append([]string(nil), rows[0]...))
	records := make([]model.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(model.Record, len(header))
		copy(record, row) // Pad with empty string if row is shorter
		records = append(records, record)
	}
	return header, records, nil
}

// parseParquet reads a whole Parquet file. Parquet requires random access, so
// the input is buffered in memory. Date and timestamp columns are declared as
// datetimes, the other kinds are inferred from the rendered values.
func parseParquet(r io.Reader) (model.Header, []model.Record, []model.Kind, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	if len(data) == 0 {
		return nil, nil, nil, ErrEmptyData
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read table: %w", err)
	}
	defer table.Release()

	schema := table.Schema()
	header := make(model.Header, schema.NumFields())
	kinds := make([]model.Kind, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
		switch field.Type.ID() {
		case arrow.DATE32, arrow.TIMESTAMP:
			kinds[i] = model.KindDatetime
		default:
			kinds[i] = model.KindUnknown
		}
	}

	tableReader := array.NewTableReader(table, 0)
	defer tableReader.Release()

	var records []model.Record
	for tableReader.Next() {
		batch := tableReader.Record()
		for i := range int(batch.NumRows()) {
			record := make(model.Record, batch.NumCols())
			for j, col := range batch.Columns() {
				record[j] = arrowValueString(col, i)
			}
			records = append(records, record)
		}
	}
	if err := tableReader.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("error reading table records: %w", err)
	}
	return header, records, kinds, nil
}

// arrowValueString renders one arrow cell the way a delimited file would hold it
func arrowValueString(col arrow.Array, i int) string {
	if col.IsNull(i) {
		return ""
	}
	switch a := col.(type) {
	case *array.String:
		return a.Value(i)
	case *array.Float64:
		return strconv.FormatFloat(a.Value(i), 'f', -1, 64)
	case *array.Float32:
		return strconv.FormatFloat(float64(a.Value(i)), 'f', -1, 32)
	case *array.Int64:
		return strconv.FormatInt(a.Value(i), 10)
	case *array.Int32:
		return strconv.FormatInt(int64(a.Value(i)), 10)
	case *array.Date32:
		return a.Value(i).ToTime().Format(model.DateLayout)
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).UTC().Format(model.DatetimeLayout)
	default:
		return col.ValueStr(i)
	}
}
