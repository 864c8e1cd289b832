// Package sweep orchestrates flag-cleanup rewrites: it resolves rule
// sources (explicit rules vs. flag-name lookup with on-demand registry
// load), invokes the external engine, and normalizes outcomes and
// failures into a uniform shape.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hbg/mcp-flag-sweeper/engine"
	"github.com/hbg/mcp-flag-sweeper/metrics"
	"github.com/hbg/mcp-flag-sweeper/registry"
	"github.com/hbg/mcp-flag-sweeper/rules"
)

// FlagNotFoundError reports a flag absent from a successfully loaded
// registry. The message enumerates the known flag names so the caller
// can correct the request.
type FlagNotFoundError struct {
	Flag  string
	Known []string
}

func (e *FlagNotFoundError) Error() string {
	return fmt.Sprintf("flag %q not found in loaded config. Available flags: %s",
		e.Flag, strings.Join(e.Known, ", "))
}

// Request is one rewrite invocation. Either Rules/Edges or FlagName
// supplies the rule source; FlagName wins when both are present.
// Neither means an empty rule set (a no-op transformation).
type Request struct {
	Code     string
	Language string
	FlagName string
	Rules    []map[string]any
	Edges    []map[string]any
}

// Outcome is the normalized result of a rewrite. Code always holds a
// usable snippet: the transformed content on success, the original
// input otherwise.
type Outcome struct {
	Code           string
	Changed        bool
	RulesAttempted int
	// Message is set on the zero-match outcome ("no match" is valid,
	// not an error).
	Message string
	Debug   string
}

// Sweeper owns the registry cache and the engine handle for the
// lifetime of the process.
type Sweeper struct {
	eng     engine.Engine
	cache   *registry.Cache
	locator *registry.Locator
	formats *registry.FormatRegistry
	logger  *slog.Logger
}

// New creates a sweeper. Nil cache/locator/formats/logger get
// defaults; the engine is required.
func New(eng engine.Engine, cache *registry.Cache, locator *registry.Locator, formats *registry.FormatRegistry, logger *slog.Logger) *Sweeper {
	if cache == nil {
		cache = registry.NewCache()
	}
	if locator == nil {
		locator = registry.NewLocator()
	}
	if formats == nil {
		formats = registry.NewFormatRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		eng:     eng,
		cache:   cache,
		locator: locator,
		formats: formats,
		logger:  logger,
	}
}

// Cache exposes the sweeper's registry cache for wiring (watchers,
// status output).
func (s *Sweeper) Cache() *registry.Cache { return s.cache }

// Apply resolves the request's rule source, submits the rule graph to
// the engine, and normalizes the result. On error the returned
// Outcome still carries the original snippet.
func (s *Sweeper) Apply(ctx context.Context, req Request) (Outcome, error) {
	out := Outcome{Code: req.Code}

	ruleSet, edgeSet, err := s.resolveRules(ctx, req)
	if err != nil {
		return out, err
	}
	out.RulesAttempted = len(ruleSet)

	start := time.Now()
	summaries, err := s.eng.Rewrite(ctx, engine.Request{
		Code:     req.Code,
		Language: req.Language,
		Rules:    ruleSet,
		Edges:    edgeSet,
	})
	if err != nil {
		metrics.ObserveEngine(time.Since(start), "error")
		return out, engine.Classify(err)
	}
	metrics.ObserveEngine(time.Since(start), "success")

	if len(summaries) > 0 {
		out.Code = summaries[0].Content
		out.Changed = out.Code != req.Code
		return out, nil
	}

	out.Message = "No transformations applied"
	out.Debug = fmt.Sprintf("Generated %d rules", len(ruleSet))
	return out, nil
}

// resolveRules turns the request into a concrete rule graph. Flag
// lookups that miss the cache trigger a config-file load before the
// lookup is retried.
func (s *Sweeper) resolveRules(ctx context.Context, req Request) ([]rules.Rule, []rules.Edge, error) {
	if req.FlagName != "" {
		flag, ok := s.cache.Lookup(req.FlagName)
		if !ok {
			if err := s.loadRegistry(ctx); err != nil {
				return nil, nil, err
			}
			flag, ok = s.cache.Lookup(req.FlagName)
			if !ok {
				return nil, nil, &FlagNotFoundError{
					Flag:  req.FlagName,
					Known: s.cache.Snapshot().Names(),
				}
			}
		}
		snap := s.cache.Snapshot()
		synthesized := rules.ForFlag(req.FlagName, flag, snap.Patterns, req.Language)
		if len(synthesized) == 0 {
			s.logger.Debug("Empty pattern catalog, no rules synthesized",
				slog.String("flag", req.FlagName))
		}
		// Synthesized rules are all independent seed rules; no edges.
		return synthesized, nil, nil
	}

	var ruleSet []rules.Rule
	var edgeSet []rules.Edge
	for _, m := range req.Rules {
		ruleSet = append(ruleSet, rules.FromMap(m))
	}
	for _, m := range req.Edges {
		edgeSet = append(edgeSet, rules.EdgeFromMap(m))
	}
	return ruleSet, edgeSet, nil
}

// loadRegistry locates a flag config file, parses it, and installs it
// into the cache, wholesale-replacing whatever was loaded before.
func (s *Sweeper) loadRegistry(_ context.Context) error {
	path, err := s.locator.Locate()
	if err != nil {
		metrics.CountRegistryLoad("not_found")
		return err
	}

	reg, err := s.formats.ParseFile(path)
	if err != nil {
		metrics.CountRegistryLoad("parse_error")
		return err
	}

	s.cache.Replace(reg, path)
	metrics.CountRegistryLoad("success")
	s.logger.Debug("Loaded flag registry",
		slog.String("path", path),
		slog.Int("flags", len(reg.Flags)),
		slog.Int("patterns", len(reg.Patterns)),
		slog.Int("skipped_lines", reg.SkippedLines))
	return nil
}

// RegistryInfo is the normalized answer to a list-flags request.
type RegistryInfo struct {
	Names      []string                 `json:"flags"`
	Flags      map[string]registry.Flag `json:"flag_details"`
	Patterns   []string                 `json:"global_patterns"`
	SourceFile string                   `json:"source_file"`
}

// ListFlags loads the flag config from dir (or the configured search
// paths when dir is empty), replaces the cache, and returns the
// parsed registry.
func (s *Sweeper) ListFlags(_ context.Context, dir string) (*RegistryInfo, error) {
	var path string
	var err error
	if dir == "" {
		path, err = s.locator.Locate()
	} else {
		path, err = s.locator.LocateIn(dir)
	}
	if err != nil {
		metrics.CountRegistryLoad("not_found")
		return nil, err
	}

	reg, err := s.formats.ParseFile(path)
	if err != nil {
		metrics.CountRegistryLoad("parse_error")
		return nil, err
	}

	s.cache.Replace(reg, path)
	metrics.CountRegistryLoad("success")

	return &RegistryInfo{
		Names:      reg.Names(),
		Flags:      reg.Flags,
		Patterns:   append([]string(nil), reg.Patterns...),
		SourceFile: path,
	}, nil
}
