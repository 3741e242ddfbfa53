package engine

import (
	"fmt"

	"github.com/neetkit/cardforge/internal/catalog"
	"github.com/neetkit/cardforge/internal/contenthash"
	"github.com/neetkit/cardforge/internal/security"
)

// Object is one generated, content-addressed object.
type Object struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	ObjectType  string         `json:"object_type"`
	Attributes  map[string]any `json:"attributes"`
	// SecurityTag holds the mark label when the object was annotated.
	SecurityTag string `json:"security_tag,omitempty"`
}

func (o Object) clone() Object {
	o.Attributes = catalog.CloneAttributes(o.Attributes)
	return o
}

type identityInput struct {
	TemplateName string `json:"template_name"`
	SeedPrefix   uint32 `json:"seed_prefix"`
	RandomSuffix int    `json:"random_suffix"`
}

// Generate produces one object from a randomly chosen template. It fails
// with catalog.ErrEmptyCatalog when no templates are loaded.
func (e *Engine) Generate(ctx Context) (Object, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	obj, mark, err := e.generateLocked(ctx)
	if err != nil {
		return Object{}, err
	}
	if mark != nil {
		e.recordMark(*mark, ctx)
	}
	return obj, nil
}

// generateLocked builds one object. A mark for the object is returned rather
// than stored so callers can commit it once the whole operation succeeds.
func (e *Engine) generateLocked(ctx Context) (Object, *security.Mark, error) {
	tmpl, attributes, err := e.catalog.SelectAndPopulate(e.src)
	if err != nil {
		return Object{}, nil, err
	}

	identity := identityInput{TemplateName: tmpl.Name, SeedPrefix: e.src.Seed()}
	identity.RandomSuffix = e.src.IntRange(0, 99999)
	id, err := contenthash.IdentifierDigest(identity)
	if err != nil {
		return Object{}, nil, fmt.Errorf("object identity: %w", err)
	}

	obj := Object{
		ID:          id,
		Name:        tmpl.Name,
		Description: tmpl.Description,
		ObjectType:  tmpl.ObjectType,
		Attributes:  attributes,
	}

	var mark *security.Mark
	if e.policy.classifies(obj.ObjectType) && e.src.IntRange(0, 100) > e.policy.RollThreshold {
		subjectID := "process_" + id[:8]
		m, err := security.NewMark(subjectID, obj, perceptionOf(ctx))
		if err != nil {
			return Object{}, nil, fmt.Errorf("annotate %s: %w", subjectID, err)
		}
		obj.SecurityTag = m.Label()
		mark = &m
	}

	e.logger.Debug("object generated",
		"id", obj.ID,
		"template", obj.Name,
		"scenario", ctx[ContextScenarioName],
		"step", ctx[ContextScenarioStep],
	)
	return obj, mark, nil
}

func (e *Engine) recordMark(mark security.Mark, ctx Context) {
	e.annotator.Put(mark)
	e.logger.Info("security mark",
		"subject_id", mark.SubjectID,
		"perception", mark.Perception,
		"scenario", ctx[ContextScenarioName],
		"step", ctx[ContextScenarioStep],
	)
}

func perceptionOf(ctx Context) string {
	raw, ok := ctx[ContextUserPerception]
	if !ok || raw == nil {
		return string(security.PerceptionNeutral)
	}
	if text, ok := raw.(string); ok {
		return text
	}
	return fmt.Sprint(raw)
}
