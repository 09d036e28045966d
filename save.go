package fileclean

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/nao1215/fileclean/domain/model"
	"github.com/xuri/excelize/v2"
)

// xlsxSheet is the sheet written by the XLSX sink
const xlsxSheet = "Sheet1"

// Dump writes t to path. Format and compression are taken from the file extension.
func Dump(t *model.Table, path string) error {
	ec := NewErrorContext("dump", path).WithTable(t.Name())
	if err := validateOutputPath(path); err != nil {
		return ec.Error(err)
	}

	opts, err := dumpOptionsForPath(path)
	if err != nil {
		return ec.Error(err)
	}

	writer, err := createFileWriter(path, opts.Compression)
	if err != nil {
		return ec.Error(err)
	}
	if err := writeTable(writer, t, opts.Format); err != nil {
		_ = writer.Close() // Ignore close error, the write error is more relevant
		return ec.Error(err)
	}
	if err := writer.Close(); err != nil {
		return ec.Error(err)
	}
	return nil
}

// DumpWriter writes t to w using options. w is not closed.
func DumpWriter(w io.Writer, t *model.Table, options DumpOptions) error {
	ec := NewErrorContext("dump", "").WithTable(t.Name())

	writer, err := options.Compression.NewWriter(w)
	if err != nil {
		return ec.Error(err)
	}
	if err := writeTable(writer, t, options.Format); err != nil {
		_ = writer.Close()
		return ec.Error(err)
	}
	if err := writer.Close(); err != nil {
		return ec.Error(err)
	}
	return nil
}

func writeTable(w io.Writer, t *model.Table, format OutputFormat) error {
	switch format {
	case OutputFormatCSV:
		return writeDelimited(w, t, csvDelimiter)
	case OutputFormatTSV:
		return writeDelimited(w, t, tsvDelimiter)
	case OutputFormatLTSV:
		return writeLTSV(w, t)
	case OutputFormatXLSX:
		return writeXLSX(w, t)
	case OutputFormatParquet:
		return writeParquet(w, t)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
}

// writeDelimited writes a header line followed by every row. Null is written empty.
func writeDelimited(w io.Writer, t *model.Table, delimiter rune) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delimiter

	if err := csvWriter.Write(t.Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, t.NumColumns())
	for r := range t.NumRows() {
		for i, v := range t.Row(r) {
			record[i] = v.String()
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// ltsvEscaper keeps labels and values on one LTSV field
var ltsvEscaper = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

// writeLTSV writes one label:value line per row
func writeLTSV(w io.Writer, t *model.Table) error {
	header := t.Header()
	fields := make([]string, len(header))
	for r := range t.NumRows() {
		for i, v := range t.Row(r) {
			fields[i] = ltsvEscaper.Replace(header[i]) + ":" + ltsvEscaper.Replace(v.String())
		}
		if _, err := io.WriteString(w, strings.Join(fields, "\t")+"\n"); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	return nil
}

// writeXLSX writes one sheet. Numbers are stored as numbers, datetimes as text.
func writeXLSX(w io.Writer, t *model.Table) error {
	file := excelize.NewFile()
	defer func() {
		_ = file.Close() // Ignore close error
	}()

	for i, name := range t.Header() {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(xlsxSheet, cell, name); err != nil {
			return err
		}
	}

	for i, col := range t.Columns() {
		integral := col.Integral()
		for r := range col.Len() {
			v := col.Value(r)
			if v.IsNull() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return err
			}
			var value any = v.String()
			if f, ok := v.Float(); ok {
				value = f
				if integral {
					value = int64(f)
				}
			}
			if err := file.SetCellValue(xlsxSheet, cell, value); err != nil {
				return err
			}
		}
	}

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

// parquetType maps a column to its arrow storage type
func parquetType(c *model.Column) arrow.DataType {
	switch c.Kind() {
	case model.KindNumeric:
		if c.Integral() {
			return arrow.PrimitiveTypes.Int64
		}
		return arrow.PrimitiveTypes.Float64
	case model.KindDatetime:
		for r := range c.Len() {
			if tm, ok := c.Value(r).Time(); ok && !tm.Equal(tm.Truncate(24*time.Hour)) {
				return arrow.FixedWidthTypes.Timestamp_us
			}
		}
		return arrow.FixedWidthTypes.Date32
	default:
		return arrow.BinaryTypes.String
	}
}

// nopCloseWriter hides Close from the parquet writer so the caller keeps ownership of w
type nopCloseWriter struct {
	io.Writer
}

// writeParquet writes one row group with typed columns
func writeParquet(w io.Writer, t *model.Table) error {
	columns := t.Columns()
	fields := make([]arrow.Field, len(columns))
	for i, c := range columns {
		fields[i] = arrow.Field{Name: c.Name(), Type: parquetType(c), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	for i, c := range columns {
		fb := builder.Field(i)
		for r := range c.Len() {
			v := c.Value(r)
			if v.IsNull() {
				fb.AppendNull()
				continue
			}
			switch b := fb.(type) {
			case *array.Int64Builder:
				f, _ := v.Float()
				b.Append(int64(f))
			case *array.Float64Builder:
				f, _ := v.Float()
				b.Append(f)
			case *array.Date32Builder:
				tm, _ := v.Time()
				b.Append(arrow.Date32FromTime(tm))
			case *array.TimestampBuilder:
				tm, _ := v.Time()
				b.Append(arrow.Timestamp(tm.UnixMicro()))
			case *array.StringBuilder:
				b.Append(v.String())
			}
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	writer, err := pqarrow.NewFileWriter(schema, nopCloseWriter{w}, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := writer.Write(record); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write parquet record: %w", err)
	}
	return writer.Close()
}
