package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_Status_PrintsMarkerAndMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Status("scan", "Scanning corpus...")

	output := buf.String()
	assert.Contains(t, output, "scan")
	assert.Contains(t, output, "Scanning corpus...")
}

func TestWriter_Success(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Successf("Indexed %d documents", 120)

	assert.Contains(t, buf.String(), "ok Indexed 120 documents")
}

func TestWriter_Warning(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Warning("index is stale")

	assert.Contains(t, buf.String(), "warn index is stale")
}

func TestWriter_Error(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Errorf("build failed: %s", "lock held")

	assert.Contains(t, buf.String(), "error build failed: lock held")
}

func TestWriter_NoColorWhenNotTerminal(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Success("done")

	// Buffers are never terminals, so no ANSI escapes appear.
	assert.NotContains(t, buf.String(), "\033[")
}

func TestWriter_Progress(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Progress(50, 100, "Indexing files")

	output := buf.String()
	assert.Contains(t, output, "50%")
	assert.Contains(t, output, "Indexing files")
}

func TestWriter_Progress_ZeroTotal_NoOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Progress(0, 0, "Processing")

	assert.Empty(t, buf.String())
}

func TestWriter_Progress_CompleteEndsLine(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Progress(100, 100, "done")

	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		total    int
		width    int
		wantFull int
	}{
		{"0 percent", 0, 100, 10, 0},
		{"50 percent", 50, 100, 10, 5},
		{"100 percent", 100, 100, 10, 10},
		{"over 100 percent clamps", 150, 100, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := renderProgressBar(tt.current, tt.total, tt.width)
			assert.Equal(t, tt.wantFull, strings.Count(bar, "="))
			assert.Len(t, bar, tt.width)
		})
	}
}

func TestWriter_Newline(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Newline()

	assert.Equal(t, "\n", buf.String())
}
