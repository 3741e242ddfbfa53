package engine

import (
	"fmt"
	"math"
	"strconv"

	"github.com/neetkit/cardforge/internal/catalog"
	"github.com/neetkit/cardforge/internal/contenthash"
	apperrors "github.com/neetkit/cardforge/internal/platform/errors"
	"github.com/neetkit/cardforge/internal/security"
)

// derivedSeedHexDigits is how much of the name digest feeds the seed.
const derivedSeedHexDigits = 8

// Scenario is a named, ordered, reproducible sequence of objects.
type Scenario struct {
	Name          string   `json:"name"`
	Objects       []Object `json:"objects"`
	DerivedSeed   uint32   `json:"derived_seed"`
	AggregateHash string   `json:"aggregate_hash"`
	StepCount     int      `json:"step_count"`
}

func (s Scenario) clone() Scenario {
	objects := make([]Object, len(s.Objects))
	for i, obj := range s.Objects {
		objects[i] = obj.clone()
	}
	s.Objects = objects
	return s
}

// DeriveSeed maps a scenario name to the seed its sequence starts from.
func DeriveSeed(name string) (uint32, error) {
	digest, err := contenthash.IdentifierDigest(name)
	if err != nil {
		return 0, err
	}
	prefix, err := strconv.ParseUint(digest[:derivedSeedHexDigits], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse name digest: %w", err)
	}
	return uint32(prefix % math.MaxUint32), nil
}

// AggregateHash is the identifier digest over the full ordered objects.
func AggregateHash(objects []Object) (string, error) {
	if objects == nil {
		objects = []Object{}
	}
	return contenthash.IdentifierDigest(objects)
}

// CreateScenario reseeds the stream from name, generates steps objects and
// registers the result under name. Re-creating a name overwrites the earlier
// registration and logs a warning. A failed scenario leaves the stream where
// it was and stores no marks.
func (e *Engine) CreateScenario(name string, steps int, ctx Context) (Scenario, error) {
	if steps < 0 {
		return Scenario{}, apperrors.WithMetadata(
			apperrors.CodeInvalidStepCount,
			fmt.Sprintf("step count %d is negative", steps),
			map[string]string{"Steps": strconv.Itoa(steps)},
		)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if steps > 0 && e.catalog.Len() == 0 {
		return Scenario{}, catalog.ErrEmptyCatalog
	}

	seed, err := DeriveSeed(name)
	if err != nil {
		return Scenario{}, err
	}
	saved, err := e.src.Save()
	if err != nil {
		return Scenario{}, fmt.Errorf("save stream: %w", err)
	}
	e.src.Reseed(seed)

	objects, marks, aggregate, err := e.plotLocked(name, steps, ctx)
	if err != nil {
		if restoreErr := e.src.Restore(saved); restoreErr != nil {
			return Scenario{}, fmt.Errorf("%w (restore stream: %v)", err, restoreErr)
		}
		return Scenario{}, err
	}
	for i, mark := range marks {
		if mark != nil {
			e.recordMark(*mark, Context{ContextScenarioName: name, ContextScenarioStep: i + 1})
		}
	}

	scenario := Scenario{
		Name:          name,
		Objects:       objects,
		DerivedSeed:   seed,
		AggregateHash: aggregate,
		StepCount:     steps,
	}
	if previous, replaced := e.scenarios.put(scenario); replaced {
		e.logger.Warn("scenario overwritten",
			"name", name,
			"previous_hash", previous.AggregateHash,
			"aggregate_hash", aggregate,
		)
	}
	e.logger.Debug("scenario created", "name", name, "steps", steps, "derived_seed", seed, "aggregate_hash", aggregate)
	return scenario.clone(), nil
}

// plotLocked generates the steps of a scenario from the already reseeded
// stream. Marks are indexed by step and nil where no mark was drawn.
func (e *Engine) plotLocked(name string, steps int, ctx Context) ([]Object, []*security.Mark, string, error) {
	objects := make([]Object, 0, steps)
	marks := make([]*security.Mark, 0, steps)
	for i := 0; i < steps; i++ {
		stepCtx := ctx.clone()
		stepCtx[ContextScenarioStep] = i + 1
		stepCtx[ContextScenarioName] = name
		obj, mark, err := e.generateLocked(stepCtx)
		if err != nil {
			return nil, nil, "", fmt.Errorf("scenario %s step %d: %w", name, i+1, err)
		}
		objects = append(objects, obj)
		marks = append(marks, mark)
	}

	aggregate, err := AggregateHash(objects)
	if err != nil {
		return nil, nil, "", fmt.Errorf("scenario %s aggregate: %w", name, err)
	}
	return objects, marks, aggregate, nil
}

// Scenario returns the registered scenario called name.
func (e *Engine) Scenario(name string) (Scenario, bool) {
	return e.scenarios.get(name)
}

// Scenarios returns every registered scenario ordered by name.
func (e *Engine) Scenarios() []Scenario {
	return e.scenarios.list()
}
