package hocon

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Syntax names a concrete document format an include can resolve to.
type Syntax int

// Recognized include syntaxes. Hocon is spec.md's native grammar; Json and
// Properties are the two sub-decoders spec.md §4.6 names; Yaml is a
// supplemental syntax (see SPEC_FULL.md §4) wired to the teacher's YAML
// stack.
const (
	SyntaxHocon Syntax = iota
	SyntaxJSON
	SyntaxProperties
	SyntaxYAML
)

func (s Syntax) String() string {
	switch s {
	case SyntaxHocon:
		return "hocon"
	case SyntaxJSON:
		return "json"
	case SyntaxProperties:
		return "properties"
	case SyntaxYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Extension returns the conventional file extension (without a leading
// dot) probed for this syntax by the file include resolver.
func (s Syntax) Extension() string {
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

// SyntaxComparator orders the candidate files probed for an include base
// path that has no extension (e.g. base.conf, base.json). The first
// candidate in this order that exists is loaded; the remaining sibling
// files are not read or merged.
type SyntaxComparator func() []Syntax

// DefaultSyntaxComparator orders Hocon > Json > Properties > Yaml, the
// default named in spec.md §9's open questions.
func DefaultSyntaxComparator() []Syntax {
	return []Syntax{SyntaxHocon, SyntaxJSON, SyntaxProperties, SyntaxYAML}
}

// Options configures parsing, include resolution, and substitution
// fallback behavior for [Load], [ParseString], and friends.
//
// Build one with [NewOptions] and functional [Option] values, or use the
// zero value plus [Options.ApplyDefaults].
type Options struct {
	// MaxIncludeDepth caps nested include chains. Default 50.
	MaxIncludeDepth int
	// MaxParseDepth caps object/array nesting during parsing. Default 500.
	MaxParseDepth int
	// UseSystemEnvironment enables falling back to environment variables
	// for substitutions not found in the tree. Default true.
	UseSystemEnvironment bool
	// Classpath is an ordered list of base directories probed for
	// classpath(...) includes.
	Classpath []string
	// SyntaxComparator orders sibling-syntax include candidates. Defaults
	// to [DefaultSyntaxComparator].
	SyntaxComparator SyntaxComparator
	// AllowOverride is passed to the include loader, which does not read
	// it: only the first matching sibling-syntax file of an include is
	// loaded, so no override between sibling files takes place.
	AllowOverride bool
	// Environ returns the process environment as NAME=VALUE strings, used
	// for the substitution fallback. Defaults to os.Environ; tests may
	// override it.
	Environ func() []string
}

// Option mutates an [Options] under construction.
type Option func(*Options)

// NewOptions builds an [Options] with spec.md §6 defaults applied, then
// applies opts in order.
func NewOptions(opts ...Option) *Options {
	o := &Options{}
	o.ApplyDefaults()

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// ApplyDefaults fills zero-valued fields of o with spec.md §6 defaults.
// Safe to call on an Options built by hand instead of via [NewOptions].
func (o *Options) ApplyDefaults() {
	if o.MaxIncludeDepth == 0 {
		o.MaxIncludeDepth = 50
	}

	if o.MaxParseDepth == 0 {
		o.MaxParseDepth = 500
	}

	if o.SyntaxComparator == nil {
		o.SyntaxComparator = DefaultSyntaxComparator
	}

	if o.Environ == nil {
		o.Environ = defaultEnviron
	}

	// UseSystemEnvironment defaults true; ApplyDefaults is only meant to
	// run once (from NewOptions) so it sets this unconditionally when
	// called on a fresh zero value. WithUseSystemEnvironment(false) after
	// NewOptions still wins because it runs after ApplyDefaults.
	o.UseSystemEnvironment = true
}

// WithMaxIncludeDepth overrides the default include-depth cap.
func WithMaxIncludeDepth(n int) Option {
	return func(o *Options) { o.MaxIncludeDepth = n }
}

// WithMaxParseDepth overrides the default object/array nesting cap.
func WithMaxParseDepth(n int) Option {
	return func(o *Options) { o.MaxParseDepth = n }
}

// WithSystemEnvironment toggles environment-variable substitution
// fallback.
func WithSystemEnvironment(use bool) Option {
	return func(o *Options) { o.UseSystemEnvironment = use }
}

// WithClasspath sets the ordered base directories for classpath includes.
func WithClasspath(dirs ...string) Option {
	return func(o *Options) { o.Classpath = append([]string(nil), dirs...) }
}

// WithSyntaxComparator overrides the sibling-syntax preference order.
func WithSyntaxComparator(cmp SyntaxComparator) Option {
	return func(o *Options) { o.SyntaxComparator = cmp }
}

// WithAllowOverride sets [Options.AllowOverride].
func WithAllowOverride(allow bool) Option {
	return func(o *Options) { o.AllowOverride = allow }
}

// WithEnviron overrides the environment source, mainly for tests.
func WithEnviron(environ func() []string) Option {
	return func(o *Options) { o.Environ = environ }
}

// WithOptions overwrites every field of the Options under construction
// with a copy of o, letting callers that already assembled an [*Options]
// (e.g. from a [Config]) pass it to [ParseString] or [Load] directly.
func WithOptions(o *Options) Option {
	return func(dst *Options) { *dst = *o }
}

// Flags holds CLI flag names for [Config], allowing callers to customize
// flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	MaxIncludeDepth string
	Classpath       string
	NoEnv           string
	AllowOverride   string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{Flags: f}
}

// Config holds CLI flag values that build an [Options]. Create instances
// with [NewConfig], register flags with [Config.RegisterFlags], and build
// the final [Options] with [Config.Options].
type Config struct {
	Flags           Flags
	MaxIncludeDepth int
	Classpath       []string
	NoEnv           bool
	AllowOverride   bool
}

// NewConfig returns a new [Config] with default flag names and spec.md §6
// default values.
func NewConfig() *Config {
	f := Flags{
		MaxIncludeDepth: "max-include-depth",
		Classpath:       "classpath",
		NoEnv:           "no-env",
		AllowOverride:   "allow-override",
	}
	c := f.NewConfig()
	c.MaxIncludeDepth = 50

	return c
}

// RegisterFlags adds HOCON-loading flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.IntVar(&c.MaxIncludeDepth, c.Flags.MaxIncludeDepth, 50,
		"maximum nested include depth")
	flags.StringSliceVar(&c.Classpath, c.Flags.Classpath, nil,
		"ordered base directories for classpath(...) includes")
	flags.BoolVar(&c.NoEnv, c.Flags.NoEnv, false,
		"disable environment-variable substitution fallback")
	flags.BoolVar(&c.AllowOverride, c.Flags.AllowOverride, false,
		"set Options.AllowOverride (no effect: only the first matching sibling-syntax include file is loaded)")
}

// RegisterCompletions registers shell completions for flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	noFileComp := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	for _, flag := range []string{c.Flags.MaxIncludeDepth, c.Flags.NoEnv, c.Flags.AllowOverride} {
		err := cmd.RegisterFlagCompletionFunc(flag, noFileComp)
		if err != nil {
			return fmt.Errorf("registering %s completion: %w", flag, err)
		}
	}

	return nil
}

// Options builds an [Options] from the current flag values.
func (c *Config) Options() *Options {
	return NewOptions(
		WithMaxIncludeDepth(c.MaxIncludeDepth),
		WithClasspath(c.Classpath...),
		WithSystemEnvironment(!c.NoEnv),
		WithAllowOverride(c.AllowOverride),
	)
}

func defaultEnviron() []string {
	return osEnviron()
}

// lookupEnv searches o.Environ() for a verbatim NAME match (spec.md §9:
// verbatim match, not substring), returning (value, true) on hit.
func (o *Options) lookupEnv(name string) (string, bool) {
	for _, kv := range o.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k == name {
			return v, true
		}
	}

	return "", false
}

// preferredSyntaxOrder returns the configured comparator's order, falling
// back to the default if unset.
func (o *Options) preferredSyntaxOrder() []Syntax {
	if o.SyntaxComparator == nil {
		return DefaultSyntaxComparator()
	}

	order := o.SyntaxComparator()
	if len(order) == 0 {
		return DefaultSyntaxComparator()
	}

	return slices.Clone(order)
}
