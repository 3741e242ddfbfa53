package cardforge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/neetkit/cardforge/internal/catalog"
	"github.com/neetkit/cardforge/internal/engine"
	"github.com/neetkit/cardforge/internal/platform/otel"
	"github.com/neetkit/cardforge/internal/random"
	"github.com/neetkit/cardforge/internal/storage"
	"github.com/neetkit/cardforge/internal/storage/sqlite"
)

type app struct {
	cfg     Config
	out     io.Writer
	logger  *slog.Logger
	engine  *engine.Engine
	archive storage.Archive
	closeFn func() error
}

func newApp(ctx context.Context, cfg Config, out io.Writer, logger *slog.Logger) (*app, error) {
	cat := catalog.Default()
	if path := strings.TrimSpace(cfg.Templates); path != "" {
		loaded, err := catalog.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cat = loaded
	}

	opts := []engine.Option{
		engine.WithCatalog(cat),
		engine.WithLogger(logger),
		engine.WithPolicy(engine.TypePolicy(cfg.RollThreshold, splitList(cfg.SecurityType)...)),
	}
	seed, seeded, err := random.ParseSeed(cfg.Seed)
	if err != nil {
		return nil, err
	}
	if seeded {
		opts = append(opts, engine.WithSeed(seed))
	}
	e, err := engine.New(opts...)
	if err != nil {
		return nil, err
	}
	logger.Info("engine seed", "seed", e.Seed(), "templates", cat.Len())

	a := &app{cfg: cfg, out: out, logger: logger, engine: e, closeFn: func() error { return nil }}
	if path := strings.TrimSpace(cfg.DB); path != "" {
		store, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		a.archive = store
		a.closeFn = store.Close
	}
	return a, nil
}

func (a *app) close() {
	if err := a.closeFn(); err != nil {
		a.logger.Warn("close archive", "error", err)
	}
}

type command struct {
	name    string
	summary string
	run     func(a *app, ctx context.Context, args []string) error
}

var commands = []command{
	{name: "generate", summary: "generate -count objects", run: (*app).generate},
	{name: "scenario", summary: "scenario <name>: create a reproducible scenario", run: (*app).scenario},
	{name: "mark", summary: "mark <subject_id> <json>: record a security mark", run: (*app).mark},
	{name: "show-mark", summary: "show-mark <subject_id>: print an archived security mark", run: (*app).showMark},
	{name: "show-scenario", summary: "show-scenario <name>: print and verify an archived scenario", run: (*app).showScenario},
	{name: "templates", summary: "templates: list loaded templates", run: (*app).templates},
	{name: "presets", summary: "presets: list scenario presets", run: (*app).presets},
}

func (a *app) dispatch(ctx context.Context) error {
	for _, c := range commands {
		if c.name != a.cfg.Command {
			continue
		}
		ctx, span := otel.Tracer().Start(ctx, "cardforge."+c.name)
		defer span.End()
		span.SetAttributes(
			attribute.String("cardforge.command", c.name),
			attribute.Int64("cardforge.seed", int64(a.engine.Seed())),
		)
		if err := c.run(a, ctx, a.cfg.Args); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		return nil
	}
	return fmt.Errorf("unknown command %q (want one of: %s)", a.cfg.Command, strings.Join(commandNames(), ", "))
}

func (a *app) writeJSON(v any) error {
	encoder := json.NewEncoder(a.out)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
