package gristle

import (
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// compressionSuffixes maps lower-case path suffixes to the compression they name.
var compressionSuffixes = []struct {
	ext         string
	compression CompressionType
}{
	{extGZ, CompressionGZ},
	{extBZ2, CompressionBZ2},
	{extXZ, CompressionXZ},
	{extZSTD, CompressionZSTD},
}

// compressionForPath returns the compression named by the suffix of path.
func compressionForPath(path string) CompressionType {
	lower := strings.ToLower(path)
	for _, s := range compressionSuffixes {
		if strings.HasSuffix(lower, s.ext) {
			return s.compression
		}
	}
	return CompressionNone
}

// fileTypeForPath returns the layout of the data in path once any compression
// suffix is removed. Anything that is not a workbook or a Parquet file is read
// as delimited text, whatever its extension.
func fileTypeForPath(path string) FileType {
	base := path
	if ext := compressionForPath(path).Extension(); ext != "" {
		base = path[:len(path)-len(ext)]
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case extParquet:
		return FileTypeParquet
	case extXLSX:
		return FileTypeXLSX
	default:
		return FileTypeDelimited
	}
}

// decompress wraps r so that reads return the decompressed stream.
// Closing the result releases the decompressor only, never r.
func (c CompressionType) decompress(r io.Reader) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionGZ:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read gzip header: %w", err)
		}
		return zr, nil
	case CompressionBZ2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	case CompressionXZ:
		zr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read xz header: %w", err)
		}
		return io.NopCloser(zr), nil
	case CompressionZSTD:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to start zstd decoder: %w", err)
		}
		return zstdReadCloser{zr}, nil
	default:
		return nil, fmt.Errorf("%w: compression %v", ErrUnsupportedFormat, c)
	}
}

// compress wraps w so that writes are compressed. Closing the result ends the
// compressed stream, never w.
func (c CompressionType) compress(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionGZ:
		return gzip.NewWriter(w), nil
	case CompressionBZ2:
		return nil, errors.New("bzip2 output is not supported, use .gz, .xz or .zst")
	case CompressionXZ:
		zw, err := xz.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to start xz encoder: %w", err)
		}
		return zw, nil
	case CompressionZSTD:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to start zstd encoder: %w", err)
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("%w: compression %v", ErrUnsupportedFormat, c)
	}
}

type zstdReadCloser struct{ *zstd.Decoder }

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// openCompressed opens path and decompresses it by suffix. The cleanup closes
// the decompressor, then the file.
func openCompressed(path string) (io.Reader, func() error, error) {
	file, err := os.Open(path) //nolint:gosec // reading user supplied paths is the point
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	r, err := compressionForPath(path).decompress(file)
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}
	return r, func() error {
		var result *multierror.Error
		result = multierror.Append(result, r.Close(), file.Close())
		return result.ErrorOrNil()
	}, nil
}

// createCompressed creates path and compresses what is written by suffix.
// The cleanup ends the compressed stream before syncing and closing the file.
func createCompressed(path string) (io.Writer, func() error, error) {
	compression := compressionForPath(path)
	if compression == CompressionBZ2 {
		// refuse before truncating anything
		_, err := compression.compress(io.Discard)
		return nil, nil, err
	}
	file, err := os.Create(path) //nolint:gosec // writing user supplied paths is the point
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create file: %w", err)
	}
	w, err := compression.compress(file)
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}
	return w, func() error {
		var result *multierror.Error
		result = multierror.Append(result, w.Close(), file.Sync(), file.Close())
		return result.ErrorOrNil()
	}, nil
}
