// Package server wires the flag sweeper components and creates the
// MCP server instance.
//
// This is the composition root: it creates concrete implementations
// and injects them into the tool executors. No business logic lives
// here, only wiring.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hbg/mcp-flag-sweeper/audit"
	"github.com/hbg/mcp-flag-sweeper/config"
	"github.com/hbg/mcp-flag-sweeper/engine"
	"github.com/hbg/mcp-flag-sweeper/metrics"
	"github.com/hbg/mcp-flag-sweeper/registry"
	"github.com/hbg/mcp-flag-sweeper/sweep"
	"github.com/hbg/mcp-flag-sweeper/tools"
	"github.com/hbg/mcp-flag-sweeper/tools/flags"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with the flag cleanup
// tools registered.
//
// The returned cleanup function releases background resources (audit
// sink, config watcher, metrics listener) and must be called on
// shutdown, typically via defer. It is always non-nil.
func New(cfg *config.Config, logger *slog.Logger) (*server.MCPServer, func(), error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	// --- Create shared dependencies ---

	cache := registry.NewCache()
	formats := registry.NewFormatRegistry()

	locator := registry.NewLocator(cfg.Registry.SearchPaths...)
	if len(cfg.Registry.Filenames) > 0 {
		locator.Filenames = cfg.Registry.Filenames
	}

	eng := engine.NewExecEngine(cfg.Engine.Command, cfg.Engine.Args, cfg.Engine.Timeout, logger)
	sweeper := sweep.New(eng, cache, locator, formats, logger)

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// --- Audit sink ---
	//
	// Audit is an independent subsystem: a NATS connection failure
	// downgrades to the log sink rather than blocking startup.

	var sink audit.Sink = audit.NewLogSink(logger)
	if cfg.Audit.NATSURL != "" {
		natsSink, err := audit.NewNATSSink(cfg.Audit.NATSURL, cfg.Audit.Subject)
		if err != nil {
			logger.Warn("Audit NATS sink unavailable, falling back to log sink",
				"url", cfg.Audit.NATSURL,
				"error", err)
		} else {
			sink = natsSink
			cleanups = append(cleanups, natsSink.Close)
		}
	}

	executor := tools.NewRecordingExecutor(flags.NewExecutor(sweeper), sink)

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"flagsweeper",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register tools ---

	for _, def := range executor.ListTools() {
		if !tools.Allowed(cfg.Tools.Allowlist, def.Name) {
			logger.Info("Tool excluded by allowlist", "tool", def.Name)
			continue
		}

		schema, err := json.Marshal(def.Parameters)
		if err != nil {
			cleanup()
			return nil, noop, fmt.Errorf("encoding schema for %s: %w", def.Name, err)
		}
		s.AddTool(
			mcp.NewToolWithRawSchema(def.Name, def.Description, schema),
			handlerFor(executor, def.Name),
		)
	}

	// --- Config watcher ---

	if cfg.Registry.Watch {
		if path, err := locator.Locate(); err == nil {
			watcher, werr := registry.NewWatcher(path, cache, formats, logger)
			if werr == nil {
				werr = watcher.Start()
			}
			if werr != nil {
				logger.Warn("Config watcher unavailable", "path", path, "error", werr)
			} else {
				cleanups = append(cleanups, func() { _ = watcher.Close() })
			}
		} else if errors.Is(err, registry.ErrConfigNotFound) {
			logger.Info("Config watching enabled but no flag config found yet")
		} else {
			logger.Warn("Config watcher unavailable", "error", err)
		}
	}

	// --- Metrics ---

	if cfg.Metrics.Addr != "" {
		srv := metrics.ListenAndServe(cfg.Metrics.Addr, logger)
		cleanups = append(cleanups, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		})
	}

	return s, cleanup, nil
}

// noop is the cleanup returned when wiring fails partway through.
func noop() {}

// handlerFor adapts a tool executor to the MCP handler signature.
func handlerFor(executor tools.Executor, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := executor.Execute(ctx, tools.ToolCall{
			Name:      name,
			Arguments: req.GetArguments(),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		// Failure payloads still carry usable fields (the untouched
		// snippet, a suggestion), so return the payload whenever one
		// exists and let the agent read the error field from it.
		if res.Content == "" && res.Error != "" {
			return mcp.NewToolResultError(res.Error), nil
		}
		return mcp.NewToolResultText(res.Content), nil
	}
}

// serverInstructions returns the system instructions that tell the AI
// how to use the flag cleanup tools effectively.
func serverInstructions() string {
	return `You have access to a feature-flag cleanup server.

## Workflow

1. Call list_flags first. It loads the flag definitions and the
   flag-check function catalog from a flags.json or flags.md file in
   the working directory, and caches them for later calls. Pass
   working_directory when the config lives somewhere other than the
   server's search paths.

2. Call apply_rewrite for each code snippet that checks a stale flag.
   The simplest form passes code, language, and flag_name: rewrite
   rules are synthesized automatically from the cached flag registry
   and the function catalog. The transformed code comes back in the
   transformed_code field.

3. For unusual call sites the synthesized rules miss, pass explicit
   rules (and optionally edges) instead of flag_name. Each rule needs
   a query, a replace string, and usually is_seed_rule: true.

## What the rewrite does

For an enabled flag, flag checks are replaced with the flag's
replace_with value (default "true"). For a disabled flag, checks are
replaced with "false". The engine then simplifies the surrounding
code: "if true" bodies are inlined, "if false" branches are deleted.

## Important

- "No transformations applied" is not an error: it means no call site
  in the snippet matched the synthesized rules. Check that the snippet
  actually uses one of the cataloged flag-check functions.
- The tools never touch files. They transform the snippet you pass
  and return it; you apply the result to the codebase.
- Flag names are case-sensitive and must match the config exactly.
  list_flags shows the available names.`
}
