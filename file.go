package gristle

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FileType represents the layout of an input file, independent of compression
type FileType int

const (
	// FileTypeDelimited represents delimited text of any extension
	FileTypeDelimited FileType = iota
	// FileTypeParquet represents Parquet file type
	FileTypeParquet
	// FileTypeXLSX represents Excel XLSX file type
	FileTypeXLSX
)

// String returns the name of the file type
func (ft FileType) String() string {
	switch ft {
	case FileTypeParquet:
		return "parquet"
	case FileTypeXLSX:
		return "xlsx"
	default:
		return "delimited"
	}
}

// File extensions
const (
	// extParquet is the Parquet file extension
	extParquet = ".parquet"
	// extXLSX is the Excel XLSX file extension
	extXLSX = ".xlsx"
	// extGZ is the gzip compression extension
	extGZ = ".gz"
	// extBZ2 is the bzip2 compression extension
	extBZ2 = ".bz2"
	// extXZ is the xz compression extension
	extXZ = ".xz"
	// extZSTD is the zstd compression extension
	extZSTD = ".zst"
)

// StdioPath names standard input or output on the command line.
const StdioPath = "-"

// isStdio reports whether path refers to stdin or stdout.
func isStdio(path string) bool {
	return path == "" || path == StdioPath
}

// Input is an opened input file or stream.
type Input struct {
	// Path is the file path, or "-" for stdin
	Path string
	// Type is the layout of the data
	Type FileType
	// Compression is the compression detected from the path
	Compression CompressionType

	reader  io.Reader
	cleanup func() error
}

// OpenInput opens path for reading, decompressing by extension. An empty path or
// "-" reads stdin, which is taken to be uncompressed delimited text.
func OpenInput(path string, stdin io.Reader) (*Input, error) {
	if isStdio(path) {
		if stdin == nil {
			return nil, errors.New("no standard input available")
		}
		return &Input{
			Path:    StdioPath,
			Type:    FileTypeDelimited,
			reader:  stdin,
			cleanup: func() error { return nil },
		}, nil
	}

	if err := newValidator().validatePath(path); err != nil {
		return nil, err
	}

	reader, cleanup, err := openCompressed(path)
	if err != nil {
		return nil, NewErrorContext("open", path).Error(err)
	}
	return &Input{
		Path:        path,
		Type:        fileTypeForPath(path),
		Compression: compressionForPath(path),
		reader:      reader,
		cleanup:     cleanup,
	}, nil
}

// Reader returns the decompressed byte stream. Delimited input is decoded from
// UTF-16 when it starts with a UTF-16 byte order mark, and a UTF-8 byte order mark is dropped.
func (in *Input) Reader() io.Reader {
	if in.Type != FileTypeDelimited {
		return in.reader
	}
	return transform.NewReader(in.reader, unicode.BOMOverride(transform.Nop))
}

// Close releases the file and any decompressor.
func (in *Input) Close() error {
	if in.cleanup == nil {
		return nil
	}
	cleanup := in.cleanup
	in.cleanup = nil
	return cleanup()
}

// Output is an opened output file or stream.
type Output struct {
	// Path is the file path, or "-" for stdout
	Path string

	writer  io.Writer
	cleanup func() error
}

// CreateOutput creates path for writing, compressing by extension. An empty path
// or "-" writes to stdout, which is never closed.
func CreateOutput(path string, stdout io.Writer) (*Output, error) {
	if isStdio(path) {
		if stdout == nil {
			return nil, errors.New("no standard output available")
		}
		return &Output{Path: StdioPath, writer: stdout, cleanup: func() error { return nil }}, nil
	}

	writer, cleanup, err := createCompressed(path)
	if err != nil {
		return nil, NewErrorContext("create output", path).Error(err)
	}
	return &Output{Path: path, writer: writer, cleanup: cleanup}, nil
}

// Write implements io.Writer.
func (out *Output) Write(p []byte) (int, error) {
	return out.writer.Write(p)
}

// Close flushes any compressor and closes the file.
func (out *Output) Close() error {
	if out.cleanup == nil {
		return nil
	}
	cleanup := out.cleanup
	out.cleanup = nil
	if err := cleanup(); err != nil {
		return NewErrorContext("close output", out.Path).Error(err)
	}
	return nil
}

// String describes the input for log lines and error messages.
func (in *Input) String() string {
	var b strings.Builder
	b.WriteString(in.Path)
	fmt.Fprintf(&b, " (%s", in.Type)
	if in.Compression != CompressionNone {
		fmt.Fprintf(&b, ", %s", in.Compression)
	}
	b.WriteString(")")
	return b.String()
}
