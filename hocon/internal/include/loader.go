// Package include resolves the `include` clauses produced by the raw
// parser (spec.md §4.6): probing file/URL/classpath locations across the
// configured syntax preference order, guarding against cycles and
// excessive depth, and decoding non-HOCON sub-syntaxes into raw.Value
// trees that fold back into the enclosing document at the inclusion's
// lexical position.
package include

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.jacobcolvin.com/hocon/internal/raw"
)

// Sentinel errors, translated to the public hocon.Err* values by facade.go.
var (
	ErrCycle       = errors.New("inclusion cycle")
	ErrDepthExceed = errors.New("inclusion depth exceeded")
	ErrNotFound    = errors.New("required inclusion not found")
	ErrRead        = errors.New("inclusion read error")
)

// Syntax mirrors hocon.Syntax without importing the public package
// (avoiding an import cycle); facade.go converts between the two.
type Syntax int

const (
	SyntaxHocon Syntax = iota
	SyntaxJSON
	SyntaxProperties
	SyntaxYAML
)

func (s Syntax) extension() string {
	switch s {
	case SyntaxHocon:
		return "conf"
	case SyntaxJSON:
		return "json"
	case SyntaxProperties:
		return "properties"
	case SyntaxYAML:
		return "yaml"
	default:
		return ""
	}
}

// Options configures the loader, mirroring the subset of hocon.Options
// relevant to include resolution.
type Options struct {
	MaxIncludeDepth int
	MaxParseDepth   int
	Classpath       []string
	SyntaxOrder     []Syntax
	AllowOverride   bool
	// BaseDir is the directory relative includes are probed against; it
	// changes as the loader descends into included files so that an
	// include's own relative includes resolve against its own location.
	BaseDir string
	// HTTPClient fetches url(...) includes. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Loader resolves Inclusion nodes into parsed raw.Value object trees.
type Loader struct {
	opts  Options
	chain []string // in-progress include identifiers, for cycle detection
}

// New builds a Loader rooted at opts.BaseDir.
func New(opts Options) *Loader {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	if len(opts.SyntaxOrder) == 0 {
		opts.SyntaxOrder = []Syntax{SyntaxHocon, SyntaxJSON, SyntaxProperties, SyntaxYAML}
	}

	return &Loader{opts: opts}
}

// Resolve implements merge.IncludeResolver: it locates, reads, and
// decodes inc's target, recursively resolving any includes nested within
// it via its own Loader rooted at the included file's directory.
func (l *Loader) Resolve(inc *raw.Inclusion) (*raw.Value, error) {
	id := fmt.Sprintf("%s:%s", inc.Location, inc.RawPath)

	if len(l.chain) >= max(l.opts.MaxIncludeDepth, 1) {
		return nil, fmt.Errorf("%w: depth %d at %s", ErrDepthExceed, len(l.chain), id)
	}

	for _, seen := range l.chain {
		if seen == id {
			return nil, fmt.Errorf("%w: %s", ErrCycle, id)
		}
	}

	data, base, syn, err := l.fetch(inc)
	if err != nil {
		if inc.Required {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, id, err)
		}

		return raw.NewObject(inc.Pos, nil), nil
	}

	child := &Loader{
		opts:  l.opts,
		chain: append(append([]string(nil), l.chain...), id),
	}
	child.opts.BaseDir = base

	decoded, err := child.decode(data, syn, inc.Pos)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, id, err)
	}

	return decoded, nil
}

// fetch locates inc's content across the syntax preference order,
// returning the winning bytes, the new base directory for nested
// relative includes, and which syntax decoded it.
func (l *Loader) fetch(inc *raw.Inclusion) ([]byte, string, Syntax, error) {
	switch inc.Location {
	case raw.LocURL:
		data, err := l.fetchURL(inc.RawPath)
		return data, l.opts.BaseDir, SyntaxHocon, err
	case raw.LocClasspath:
		return l.fetchSearchPath(inc.RawPath, l.opts.Classpath)
	case raw.LocFile, raw.LocAuto:
		if looksLikeURL(inc.RawPath) {
			data, err := l.fetchURL(inc.RawPath)
			return data, l.opts.BaseDir, SyntaxHocon, err
		}

		return l.fetchSearchPath(inc.RawPath, []string{l.opts.BaseDir})
	default:
		return nil, "", 0, fmt.Errorf("unknown inclusion location %v", inc.Location)
	}
}

// fetchSearchPath probes basePath joined with each directory, trying
// the literal name first, then each configured syntax extension in
// preference order (spec.md §4.6.2: "a bare include name with no
// extension probes each syntax in the comparator's order").
func (l *Loader) fetchSearchPath(basePath string, dirs []string) ([]byte, string, Syntax, error) {
	candidates := []string{basePath}

	if filepath.Ext(basePath) == "" {
		for _, s := range l.opts.SyntaxOrder {
			candidates = append(candidates, basePath+"."+s.extension())
		}
	}

	var lastErr error

	for _, dir := range dirs {
		for _, cand := range candidates {
			full := cand
			if dir != "" && !filepath.IsAbs(cand) {
				full = filepath.Join(dir, cand)
			}

			data, err := os.ReadFile(full)
			if err != nil {
				lastErr = err

				continue
			}

			return data, filepath.Dir(full), syntaxForPath(full), nil
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no candidate found for %s", basePath)
	}

	return nil, "", 0, lastErr
}

func (l *Loader) fetchURL(rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, rawURL)
	}

	return io.ReadAll(resp.Body)
}

func (l *Loader) decode(data []byte, syn Syntax, pos raw.Position) (*raw.Value, error) {
	switch syn {
	case SyntaxJSON:
		return decodeJSON(data)
	case SyntaxProperties:
		return decodeProperties(data)
	case SyntaxYAML:
		return decodeYAML(data)
	default:
		return raw.Parse(raw.NewSliceReader(data), l.opts.MaxParseDepth)
	}
}

func syntaxForPath(p string) Syntax {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".json":
		return SyntaxJSON
	case ".properties":
		return SyntaxProperties
	case ".yaml", ".yml":
		return SyntaxYAML
	default:
		return SyntaxHocon
	}
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
