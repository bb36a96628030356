package common

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

const sampleCSV = "id,name\n1,Ann\n2,Bob\n"

func TestDetectCompression(t *testing.T) {
	assert.Equal(t, CompressionGZ, DetectCompression("a.csv.gz"))
	assert.Equal(t, CompressionBZ2, DetectCompression("a.csv.BZ2"))
	assert.Equal(t, CompressionXZ, DetectCompression("a.csv.xz"))
	assert.Equal(t, CompressionZSTD, DetectCompression("a.csv.zst"))
	assert.Equal(t, CompressionNone, DetectCompression("a.csv"))
}

func TestPathHelpers(t *testing.T) {
	assert.Equal(t, "dir/a.csv", RemoveCompressionExtension("dir/a.csv.gz"))
	assert.Equal(t, "dir/a.csv", RemoveCompressionExtension("dir/a.csv"))
	assert.Equal(t, "sales-2024", BaseName("data/sales-2024.csv.gz"))
	assert.Equal(t, "people", BaseName("people.tsv"))
	assert.Equal(t, ".tsv", FormatExtension("x/people.TSV.zst"))
	assert.Equal(t, "", FormatExtension("README"))
}

func compress(t *testing.T, ct CompressionType, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	var err error
	switch ct {
	case CompressionGZ:
		w = gzip.NewWriter(&buf)
	case CompressionXZ:
		w, err = xz.NewWriter(&buf)
	case CompressionZSTD:
		w, err = zstd.NewWriter(&buf)
	default:
		t.Fatalf("no writer for compression %d", ct)
	}
	require.NoError(t, err)
	_, err = io.WriteString(w, data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestNewDecompressingReader(t *testing.T) {
	for _, ct := range []CompressionType{CompressionGZ, CompressionXZ, CompressionZSTD} {
		r, cleanup, err := NewDecompressingReader(bytes.NewReader(compress(t, ct, sampleCSV)), ct)
		require.NoError(t, err)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, sampleCSV, string(got))
		assert.NoError(t, cleanup())
	}

	r, cleanup, err := NewDecompressingReader(bytes.NewReader([]byte(sampleCSV)), CompressionNone)
	require.NoError(t, err)
	got, _ := io.ReadAll(r)
	assert.Equal(t, sampleCSV, string(got))
	assert.NoError(t, cleanup())

	_, _, err = NewDecompressingReader(bytes.NewReader([]byte("not gzip")), CompressionGZ)
	assert.Error(t, err)
}

func TestNewDecodingReader(t *testing.T) {
	r, err := NewDecodingReader(bytes.NewReader([]byte("\xef\xbb\xbfid\n1\n")), "")
	require.NoError(t, err)
	got, _ := io.ReadAll(r)
	assert.Equal(t, "id\n1\n", string(got))

	// "café" in ISO-8859-1.
	r, err = NewDecodingReader(bytes.NewReader([]byte("caf\xe9\n")), "latin1")
	require.NoError(t, err)
	got, _ = io.ReadAll(r)
	assert.Equal(t, "café\n", string(got))

	_, err = NewDecodingReader(bytes.NewReader(nil), "klingon")
	assert.Error(t, err)
}

func TestOpenInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.csv.gz")
	require.NoError(t, os.WriteFile(path, compress(t, CompressionGZ, sampleCSV), 0644))

	r, cleanup, err := OpenInput(path, "")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(got))
	assert.NoError(t, cleanup())

	_, _, err = OpenInput(filepath.Join(dir, "missing.csv"), "")
	assert.Error(t, err)
}
