// Package engine generates content-addressed objects and reproducible,
// name-keyed scenarios from a template catalog and a seeded stream.
//
// An Engine owns exactly one random stream. Generate and CreateScenario are
// serialized on that stream; callers that need independent determinism build
// independent engines.
package engine

import (
	"log/slog"
	"sync"

	"github.com/neetkit/cardforge/internal/catalog"
	"github.com/neetkit/cardforge/internal/platform/logging"
	"github.com/neetkit/cardforge/internal/random"
	"github.com/neetkit/cardforge/internal/security"
)

// Context carries caller-supplied hints into generation.
type Context map[string]any

// Well-known context keys.
const (
	ContextScenarioStep   = "scenario_step"
	ContextScenarioName   = "scenario_name"
	ContextUserPerception = "user_perception"
)

func (c Context) clone() Context {
	out := make(Context, len(c)+2)
	for key, value := range c {
		out[key] = value
	}
	return out
}

// Engine is the generation and scenario engine.
type Engine struct {
	mu        sync.Mutex
	src       *random.Source
	catalog   *catalog.Catalog
	annotator *security.Annotator
	scenarios *registry
	policy    Policy
	logger    *slog.Logger
}

type options struct {
	src       *random.Source
	seed      *uint32
	catalog   *catalog.Catalog
	annotator *security.Annotator
	policy    *Policy
	logger    *slog.Logger
}

// Option configures New.
type Option func(*options)

// WithSeed starts the stream at seed.
func WithSeed(seed uint32) Option {
	return func(o *options) { o.seed = &seed }
}

// WithSource hands the engine an existing stream. The engine becomes its
// only user.
func WithSource(src *random.Source) Option {
	return func(o *options) { o.src = src }
}

// WithCatalog replaces the built-in templates.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(o *options) { o.catalog = cat }
}

// WithAnnotator shares a mark store with the engine.
func WithAnnotator(annotator *security.Annotator) Option {
	return func(o *options) { o.annotator = annotator }
}

// WithPolicy replaces the annotation policy.
func WithPolicy(policy Policy) Option {
	return func(o *options) { o.policy = &policy }
}

// WithLogger sets the logger. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New builds an engine. Without WithSeed or WithSource the stream is seeded
// from crypto/rand; Seed reports the value used.
func New(opts ...Option) (*Engine, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	src := o.src
	switch {
	case src != nil:
	case o.seed != nil:
		src = random.NewSource(*o.seed)
	default:
		var err error
		src, err = random.NewUnseededSource()
		if err != nil {
			return nil, err
		}
	}

	e := &Engine{
		src:       src,
		catalog:   o.catalog,
		annotator: o.annotator,
		scenarios: newRegistry(),
		policy:    DefaultPolicy(),
		logger:    o.logger,
	}
	if e.catalog == nil {
		e.catalog = catalog.Default()
	}
	if e.annotator == nil {
		e.annotator = security.NewAnnotator()
	}
	if o.policy != nil {
		e.policy = *o.policy
	}
	if e.logger == nil {
		e.logger = logging.Discard()
	}
	e.logger.Debug("engine ready", "seed", src.Seed(), "templates", e.catalog.Len())
	return e, nil
}

// Seed returns the seed currently driving the stream.
func (e *Engine) Seed() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src.Seed()
}

// Catalog returns the engine's templates.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// MarkSecurityProcess records an integrity mark for subjectID.
func (e *Engine) MarkSecurityProcess(subjectID string, data any, perception string) (security.Mark, error) {
	mark, err := e.annotator.Mark(subjectID, data, perception)
	if err != nil {
		return security.Mark{}, err
	}
	e.logger.Info("security mark", "subject_id", subjectID, "perception", mark.Perception, "label", mark.Label())
	return mark, nil
}

// SecurityMark returns the mark for subjectID.
func (e *Engine) SecurityMark(subjectID string) (security.Mark, bool) {
	return e.annotator.Lookup(subjectID)
}

// SecurityMarks returns every mark ordered by subject id.
func (e *Engine) SecurityMarks() []security.Mark {
	return e.annotator.Marks()
}
