package fileclean

// OutputFormat selects the table format written by Dump and DumpWriter.
type OutputFormat int

const (
	// OutputFormatCSV writes comma separated values
	OutputFormatCSV OutputFormat = iota
	// OutputFormatTSV writes tab separated values
	OutputFormatTSV
	// OutputFormatLTSV writes labeled tab separated values
	OutputFormatLTSV
	// OutputFormatParquet writes one typed Parquet row group
	OutputFormatParquet
	// OutputFormatXLSX writes a single sheet workbook
	OutputFormatXLSX
)

// outputFormats lists every writable format
var outputFormats = []OutputFormat{
	OutputFormatCSV,
	OutputFormatTSV,
	OutputFormatLTSV,
	OutputFormatParquet,
	OutputFormatXLSX,
}

// FileType returns the file type f produces. Unknown formats report CSV.
func (f OutputFormat) FileType() FileType {
	switch f {
	case OutputFormatTSV:
		return FileTypeTSV
	case OutputFormatLTSV:
		return FileTypeLTSV
	case OutputFormatParquet:
		return FileTypeParquet
	case OutputFormatXLSX:
		return FileTypeXLSX
	default:
		return FileTypeCSV
	}
}

// String returns the format name
func (f OutputFormat) String() string {
	return f.FileType().String()
}

// Extension returns the file extension for the format
func (f OutputFormat) Extension() string {
	return f.FileType().Extension()
}

// outputFormatFor maps a file type to the format that writes it
func outputFormatFor(ft FileType) (OutputFormat, bool) {
	for _, f := range outputFormats {
		if f.FileType() == ft {
			return f, true
		}
	}
	return OutputFormatCSV, false
}

// DumpOptions configures how a cleaned table is written. The zero value
// writes uncompressed CSV.
//
//	opts := NewDumpOptions().WithFormat(OutputFormatTSV).WithCompression(CompressionGZ)
//	err := DumpWriter(w, table, opts)
type DumpOptions struct {
	Format      OutputFormat
	Compression CompressionType
}

// NewDumpOptions returns options for uncompressed CSV.
func NewDumpOptions() DumpOptions {
	return DumpOptions{Format: OutputFormatCSV, Compression: CompressionNone}
}

// WithFormat sets the output file format.
func (o DumpOptions) WithFormat(format OutputFormat) DumpOptions {
	o.Format = format
	return o
}

// WithCompression sets the compression of the output stream.
// CompressionBZ2 is accepted here but rejected when writing.
func (o DumpOptions) WithCompression(compression CompressionType) DumpOptions {
	o.Compression = compression
	return o
}

// FileExtension returns the complete file extension including compression
func (o DumpOptions) FileExtension() string {
	return o.Format.Extension() + o.Compression.Extension()
}

// dumpOptionsForPath derives format and compression from a file name
func dumpOptionsForPath(path string) (DumpOptions, error) {
	format, ok := outputFormatFor(detectFileType(path))
	if !ok {
		return DumpOptions{}, ErrUnsupportedFormat
	}
	return NewDumpOptions().
		WithFormat(format).
		WithCompression(detectCompressionType(path)), nil
}
