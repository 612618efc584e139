package offline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	output string
	err    error
	calls  int
}

func (r *stubRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	r.calls++
	return []byte(r.output), r.err
}

const labelHTML = `<html><body>
<script>ignored()</script>
【适应症】用于缓解轻至中度疼痛 如头痛 牙痛 神经痛 肌肉痛
【禁忌】对本品过敏者禁用
</body></html>`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFetchPrefersHTMLOverPDF(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "阿司匹林说明书.html", labelHTML)
	writeFile(t, dir, "阿司匹林说明书.pdf", "%PDF-1.4 binary")

	runner := &stubRunner{output: strings.Repeat("pdf text ", 20)}
	s := NewScanner(dir, nil).WithRunner(runner)

	res, err := s.Fetch(context.Background(), "阿司匹林")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Contains(t, res.Text, "【适应症】")
	assert.NotContains(t, res.Text, "ignored")
	assert.Zero(t, runner.calls, "pdf must not be consulted when html succeeds")
}

func TestFetchFallsBackToPDF(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// Below the minimum length threshold, so the html candidate is rejected.
	writeFile(t, dir, "布洛芬.html", "<html><body>短</body></html>")
	writeFile(t, dir, "布洛芬.pdf", "%PDF-1.4 binary")

	runner := &stubRunner{output: "【适应症】" + strings.Repeat("用于解热镇痛", 10)}
	s := NewScanner(dir, nil).WithRunner(runner)

	res, err := s.Fetch(context.Background(), "布洛芬")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Contains(t, res.Text, "【适应症】")
	assert.Equal(t, 1, runner.calls)
}

func TestFetchNameMatchIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "ASPIRIN-label.html", labelHTML)

	s := NewScanner(dir, nil)

	res, err := s.Fetch(context.Background(), "aspirin")
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestFetchAbsentWhenNothingMatches(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "其他药品.html", labelHTML)
	writeFile(t, dir, "阿司匹林.txt", "unsupported type")

	s := NewScanner(dir, nil)

	res, err := s.Fetch(context.Background(), "阿司匹林")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestFetchAbsentOnMissingDirectory(t *testing.T) {
	t.Parallel()

	s := NewScanner(filepath.Join(t.TempDir(), "does-not-exist"), nil)

	res, err := s.Fetch(context.Background(), "阿司匹林")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestFetchAbsentWhenPDFToolFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "华法林.pdf", "%PDF-1.4 binary")

	runner := &stubRunner{err: errors.New("pdftotext: not found")}
	s := NewScanner(dir, nil).WithRunner(runner)

	res, err := s.Fetch(context.Background(), "华法林")
	require.NoError(t, err)
	assert.Nil(t, res)
}
