package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docquery/internal/errs"
)

// writeTestPDF writes a minimal single-page PDF containing text, with
// the cross-reference offsets computed from the actual byte positions.
func writeTestPDF(t *testing.T, path, text string) {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, 6)
	writeObj := func(n int, body string) {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, body)
	}

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
		"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	writeObj(4, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	writeObj(5, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))

	xrefOffset := buf.Len()
	buf.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestLoadFilesSkipsCorruptPDF(t *testing.T) {
	dir := t.TempDir()
	writeTestPDF(t, filepath.Join(dir, "good.pdf"), "Hello from the corpus")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("not a pdf at all"), 0o644))

	var diag bytes.Buffer
	l := NewWithConfig(LoaderConfig{DocumentsDir: dir, Diag: &diag})

	docs, err := l.LoadFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "good.pdf", docs[0].ID)
	assert.Contains(t, docs[0].Content, "Hello from the corpus")
	assert.Contains(t, diag.String(), "broken.pdf")
}

func TestLoadFilesIgnoresNonPDF(t *testing.T) {
	dir := t.TempDir()
	writeTestPDF(t, filepath.Join(dir, "doc.pdf"), "Only this one")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("plain text"), 0o644))

	l := NewWithConfig(LoaderConfig{DocumentsDir: dir, Diag: &bytes.Buffer{}})

	docs, err := l.LoadFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, filepath.Join(dir, "doc.pdf"), docs[0].Source)
}

func TestLoadFilesEmptyDirectory(t *testing.T) {
	l := NewWithConfig(LoaderConfig{DocumentsDir: t.TempDir(), Diag: &bytes.Buffer{}})

	_, err := l.LoadFiles(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrIngestion))
}

func TestLoadFilesMissingDirectory(t *testing.T) {
	l := NewWithConfig(LoaderConfig{
		DocumentsDir: filepath.Join(t.TempDir(), "missing"),
		Diag:         &bytes.Buffer{},
	})

	_, err := l.LoadFiles(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrIngestion))
}

func TestLoadFilesAllCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.pdf"), []byte("garbage"), 0o644))

	var diag bytes.Buffer
	l := NewWithConfig(LoaderConfig{DocumentsDir: dir, Diag: &diag})

	_, err := l.LoadFiles(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrIngestion))
	assert.Contains(t, diag.String(), "junk.pdf")
}
