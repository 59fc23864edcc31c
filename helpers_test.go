package csvinfer

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

// writeTestFile writes content to name inside a fresh temporary directory
func writeTestFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

// compressBytes compresses data with a writer available in Go (bzip2 has none)
func compressBytes(t *testing.T, compression CompressionType, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	switch compression {
	case CompressionNone:
		buf.Write(data)
	case CompressionGZ:
		w := gzip.NewWriter(&buf)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case CompressionXZ:
		w, err := xz.NewWriter(&buf)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case CompressionZSTD:
		w, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	default:
		t.Fatalf("no writer for %s", compression)
	}
	return buf.Bytes()
}

// generateCSV builds a CSV with a header and rows produced by row(i) for i in 1..n
func generateCSV(header string, n int, row func(i int) string) []byte {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n")
	for i := 1; i <= n; i++ {
		sb.WriteString(row(i))
		sb.WriteString("\n")
	}
	return []byte(sb.String())
}

// intRows produces rows "i,name-i" for generateCSV
func intRows(i int) string {
	return fmt.Sprintf("%d,name-%d", i, i)
}
