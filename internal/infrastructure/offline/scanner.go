// Package offline implements the terminal fallback source: a local
// directory of previously downloaded package-insert files (HTML or PDF).
// Nothing in this package ever fails the pipeline; unreadable directories
// or files simply yield no result.
package offline

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/FlosMume/CareMind/internal/source"
	"github.com/FlosMume/CareMind/internal/textenc"
)

const (
	sourceName = "NMPA (offline)"

	// minTextLength filters out stub files and failed extractions.
	minTextLength = 50
)

var multiNewlineRe = regexp.MustCompile(`\n+`)

// CommandRunner executes an external tool and returns its stdout. It
// exists so tests can stub out the pdftotext binary.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Scanner locates label documents whose filename contains the drug name.
type Scanner struct {
	dir    string
	runner CommandRunner
	logger *slog.Logger
}

var _ source.Source = (*Scanner)(nil)

// NewScanner wires the label directory; an empty dir disables the source.
func NewScanner(dir string, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{dir: dir, runner: execRunner{}, logger: logger}
}

// WithRunner swaps the external-tool runner, used by tests.
func (s *Scanner) WithRunner(r CommandRunner) *Scanner {
	s.runner = r
	return s
}

// Name identifies this source in record provenance.
func (s *Scanner) Name() string {
	return sourceName
}

// Fetch scans the directory for filenames containing the drug name
// (case-insensitive), preferring HTML over PDF, and returns the first
// candidate whose extracted text exceeds the minimum length.
func (s *Scanner) Fetch(ctx context.Context, drugName string) (*source.Result, error) {
	if s.dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Debug("offline directory unreadable", "dir", s.dir, "error", err)
		return nil, nil
	}

	candidates := matchCandidates(entries, drugName)
	for _, name := range candidates {
		path := filepath.Join(s.dir, name)

		var text string
		switch strings.ToLower(filepath.Ext(name)) {
		case ".html", ".htm":
			text = s.readHTMLText(path)
		case ".pdf":
			text = s.readPDFText(ctx, path)
		default:
			continue
		}

		if utf8.RuneCountInString(text) > minTextLength {
			return &source.Result{Text: text}, nil
		}
	}

	return nil, nil
}

// matchCandidates filters directory entries by name substring and orders
// them structured-markup-first: HTML before PDF, then by filename.
func matchCandidates(entries []os.DirEntry, drugName string) []string {
	needle := strings.ToLower(drugName)

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.Contains(strings.ToLower(e.Name()), needle) {
			names = append(names, e.Name())
		}
	}

	rank := func(name string) int {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".html", ".htm":
			return 0
		default:
			return 1
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		ri, rj := rank(names[i]), rank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})

	return names
}

func (s *Scanner) readHTMLText(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		s.logger.Debug("offline file unreadable", "path", path, "error", err)
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(textenc.Decode(raw)))
	if err != nil {
		return ""
	}
	doc.Find("script, style").Remove()

	text := multiNewlineRe.ReplaceAllString(doc.Text(), "\n")
	return strings.TrimSpace(text)
}

func (s *Scanner) readPDFText(ctx context.Context, path string) string {
	out, err := s.runner.Run(ctx, "pdftotext", "-enc", "UTF-8", path, "-")
	if err != nil {
		s.logger.Debug("pdftotext failed", "path", path, "error", err)
		return ""
	}
	return strings.TrimSpace(textenc.Decode(out))
}
