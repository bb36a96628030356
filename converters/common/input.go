package common

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CompressionType identifies how an input file is compressed.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionGZ
	CompressionBZ2
	CompressionXZ
	CompressionZSTD
)

var compressionExtensions = []struct {
	ext string
	typ CompressionType
}{
	{".gz", CompressionGZ},
	{".bz2", CompressionBZ2},
	{".xz", CompressionXZ},
	{".zst", CompressionZSTD},
}

// DetectCompression detects the compression type from a file path.
func DetectCompression(path string) CompressionType {
	lower := strings.ToLower(path)
	for _, c := range compressionExtensions {
		if strings.HasSuffix(lower, c.ext) {
			return c.typ
		}
	}
	return CompressionNone
}

// RemoveCompressionExtension removes the compression extension from a file path if present
func RemoveCompressionExtension(path string) string {
	lower := strings.ToLower(path)
	for _, c := range compressionExtensions {
		if strings.HasSuffix(lower, c.ext) {
			return path[:len(path)-len(c.ext)]
		}
	}
	return path
}

// BaseName strips directories, the compression extension and the format
// extension: "dir/sales-2024.csv.gz" becomes "sales-2024".
func BaseName(path string) string {
	base := filepath.Base(RemoveCompressionExtension(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FormatExtension returns the lower-cased format extension of path, ignoring
// any compression extension.
func FormatExtension(path string) string {
	return strings.ToLower(filepath.Ext(RemoveCompressionExtension(path)))
}

// NewDecompressingReader wraps r with a decompression reader if needed.
// The returned cleanup function releases decoder resources; it does not close r.
func NewDecompressingReader(r io.Reader, ct CompressionType) (io.Reader, func() error, error) {
	noop := func() error { return nil }
	switch ct {
	case CompressionNone:
		return r, noop, nil

	case CompressionGZ:
		gzReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzReader, gzReader.Close, nil

	case CompressionBZ2:
		return bzip2.NewReader(r), noop, nil

	case CompressionXZ:
		xzReader, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xzReader, noop, nil

	case CompressionZSTD:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return decoder, func() error {
			decoder.Close()
			return nil
		}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported compression type: %d", ct)
	}
}

// NewDecodingReader converts r from the named charset to UTF-8.
// With an empty name (or utf-8) bytes pass through untouched apart from a
// leading byte order mark, which is removed; a UTF-16 BOM switches decoding
// to UTF-16.
func NewDecodingReader(r io.Reader, name string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return transform.NewReader(r, unicode.BOMOverride(encoding.Nop.NewDecoder())), nil
	}
	enc, _ := charset.Lookup(name)
	if enc == nil {
		return nil, fmt.Errorf("unknown input encoding %q", name)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// OpenInput opens path ("-" for stdin) and returns a buffered UTF-8 stream
// with decompression and charset decoding applied.
// The cleanup function must be called on every exit path.
func OpenInput(path, encodingName string) (io.Reader, func() error, error) {
	var file *os.File
	if path == "-" {
		file = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open input: %w", err)
		}
		file = f
	}
	closeFile := func() error {
		if file == os.Stdin {
			return nil
		}
		return file.Close()
	}

	decompressed, cleanup, err := NewDecompressingReader(file, DetectCompression(path))
	if err != nil {
		_ = closeFile()
		return nil, nil, err
	}

	decoded, err := NewDecodingReader(decompressed, encodingName)
	if err != nil {
		_ = cleanup()
		_ = closeFile()
		return nil, nil, err
	}

	compositeCleanup := func() error {
		cleanupErr := cleanup()
		if closeErr := closeFile(); closeErr != nil && cleanupErr == nil {
			cleanupErr = closeErr
		}
		return cleanupErr
	}
	return bufio.NewReaderSize(decoded, 65536), compositeCleanup, nil
}
