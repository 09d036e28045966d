package fileclean

import (
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// errBZ2Write is returned when bzip2 output is requested
var errBZ2Write = errors.New("bzip2 compression is not supported for writing")

// CompressionType represents the compression type
type CompressionType int

const (
	// CompressionNone represents no compression
	CompressionNone CompressionType = iota
	// CompressionGZ represents gzip compression
	CompressionGZ
	// CompressionBZ2 represents bzip2 compression
	CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD
)

// codec holds the stream constructors of one compression type.
// A nil newWriter means the type can only be read.
type codec struct {
	name      string
	ext       string
	newReader func(io.Reader) (io.ReadCloser, error)
	newWriter func(io.Writer) (io.WriteCloser, error)
}

var codecs = map[CompressionType]codec{
	CompressionNone: {
		name: "none",
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(r), nil
		},
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			return nopWriteCloser{w}, nil
		},
	},
	CompressionGZ: {
		name: "gz",
		ext:  extGZ,
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		},
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			return gzip.NewWriter(w), nil
		},
	},
	CompressionBZ2: {
		name: "bz2",
		ext:  extBZ2,
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(bzip2.NewReader(r)), nil
		},
	},
	CompressionXZ: {
		name: "xz",
		ext:  extXZ,
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			xr, err := xz.NewReader(r)
			if err != nil {
				return nil, err
			}
			return io.NopCloser(xr), nil
		},
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			return xz.NewWriter(w)
		},
	},
	CompressionZSTD: {
		name: "zstd",
		ext:  extZSTD,
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			d, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return d.IOReadCloser(), nil
		},
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(w)
		},
	},
}

// String returns the string representation of CompressionType
func (c CompressionType) String() string {
	if cd, ok := codecs[c]; ok {
		return cd.name
	}
	return "none"
}

// Extension returns the file extension for the compression type
func (c CompressionType) Extension() string {
	return codecs[c].ext
}

// NewReader wraps r with the decompressor of c. Closing the result releases
// the decompressor but leaves r open.
func (c CompressionType) NewReader(r io.Reader) (io.ReadCloser, error) {
	cd, ok := codecs[c]
	if !ok {
		return nil, fmt.Errorf("unsupported compression type for reading: %d", int(c))
	}
	rc, err := cd.newReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s reader: %w", cd.name, err)
	}
	return rc, nil
}

// NewWriter wraps w with the compressor of c. Closing the result flushes the
// compressed stream but leaves w open.
func (c CompressionType) NewWriter(w io.Writer) (io.WriteCloser, error) {
	cd, ok := codecs[c]
	if !ok {
		return nil, fmt.Errorf("unsupported compression type for writing: %d", int(c))
	}
	if cd.newWriter == nil {
		return nil, errBZ2Write
	}
	wc, err := cd.newWriter(w)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s writer: %w", cd.name, err)
	}
	return wc, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// fileReader closes a decompressor and then the file under it
type fileReader struct {
	io.ReadCloser
	file *os.File
}

func (r *fileReader) Close() error {
	err := r.ReadCloser.Close()
	if closeErr := r.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// fileWriter flushes a compressor, then syncs and closes the file under it
type fileWriter struct {
	io.WriteCloser
	file *os.File
}

func (w *fileWriter) Close() error {
	err := w.WriteCloser.Close()
	if syncErr := w.file.Sync(); syncErr != nil && err == nil {
		err = syncErr
	}
	if closeErr := w.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// openFileReader opens path and decompresses it according to its extension.
// Close releases both the decompressor and the file.
func openFileReader(path string) (io.ReadCloser, error) {
	file, err := os.Open(path) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return nil, err
	}
	rc, err := detectCompressionType(path).NewReader(file)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return &fileReader{ReadCloser: rc, file: file}, nil
}

// createFileWriter creates path behind a compressor of compressionType.
// Close flushes the compressor, then syncs and closes the file.
func createFileWriter(path string, compressionType CompressionType) (io.WriteCloser, error) {
	if cd, ok := codecs[compressionType]; ok && cd.newWriter == nil {
		// fail before the file is created
		return nil, errBZ2Write
	}

	file, err := os.Create(path) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	wc, err := compressionType.NewWriter(file)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return &fileWriter{WriteCloser: wc, file: file}, nil
}
