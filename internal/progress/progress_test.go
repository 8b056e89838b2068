package progress

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlainRendererUpdateFormatsStageAndCounts(t *testing.T) {
	buf := &bytes.Buffer{}
	r := newPlainRenderer(Config{Output: buf})

	r.Update(Event{Stage: StageScanning, Current: 5, Total: 10, CurrentFile: "main.go"})

	out := buf.String()
	assert.Contains(t, out, "[SCAN]")
	assert.Contains(t, out, "5/10")
	assert.Contains(t, out, "main.go")
}

func TestPlainRendererUpdateNoTotalOmitsFraction(t *testing.T) {
	buf := &bytes.Buffer{}
	r := newPlainRenderer(Config{Output: buf})

	r.Update(Event{Stage: StageEmbedding, CurrentFile: "a.go"})

	out := buf.String()
	assert.Contains(t, out, "[EMBED]")
	assert.NotContains(t, out, "/")
}

func TestPlainRendererAddErrorWithFile(t *testing.T) {
	buf := &bytes.Buffer{}
	r := newPlainRenderer(Config{Output: buf})

	r.AddError("broken.go", errors.New("parse failed"))

	out := buf.String()
	assert.Contains(t, out, "ERROR: broken.go: parse failed")
}

func TestPlainRendererAddErrorWithoutFile(t *testing.T) {
	buf := &bytes.Buffer{}
	r := newPlainRenderer(Config{Output: buf})

	r.AddError("", errors.New("boom"))

	assert.Contains(t, buf.String(), "ERROR: boom")
}

func TestPlainRendererCompleteReportsCountsAndErrors(t *testing.T) {
	buf := &bytes.Buffer{}
	r := newPlainRenderer(Config{Output: buf})

	r.Complete(CompletionStats{Files: 3, Chunks: 9, Duration: 2 * time.Second, Errors: 1})

	out := buf.String()
	assert.Contains(t, out, "3 files")
	assert.Contains(t, out, "9 chunks")
	assert.Contains(t, out, "1 errors")
}

func TestNewFallsBackToPlainForNonTTYOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	r := New(Config{Output: buf})

	_, ok := r.(*plainRenderer)
	assert.True(t, ok)
}

func TestNewForcePlainBypassesTTYDetection(t *testing.T) {
	r := New(Config{Output: nil, ForcePlain: true})
	_, ok := r.(*plainRenderer)
	assert.True(t, ok)
}

func TestStageStringAndIcon(t *testing.T) {
	assert.Equal(t, "Scanning", StageScanning.String())
	assert.Equal(t, "SCAN", StageScanning.Icon())
	assert.Equal(t, "Complete", StageComplete.String())
	assert.Equal(t, "DONE", StageComplete.Icon())
}

func TestStageUnknownValue(t *testing.T) {
	s := Stage(99)
	assert.Equal(t, "Unknown", s.String())
	assert.Equal(t, "???", s.Icon())
}
