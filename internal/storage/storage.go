// Package storage defines the archive records for generated scenarios and
// security marks.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neetkit/cardforge/internal/contenthash"
	"github.com/neetkit/cardforge/internal/engine"
	apperrors "github.com/neetkit/cardforge/internal/platform/errors"
	"github.com/neetkit/cardforge/internal/security"
)

// ErrNotFound indicates a requested scenario or mark is not archived.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ScenarioRecord is one archived scenario run.
type ScenarioRecord struct {
	Name          string
	RunID         string
	DerivedSeed   uint32
	AggregateHash string
	StepCount     int
	CreatedAt     time.Time
	// Objects is empty in list results.
	Objects []ObjectRecord
}

// ObjectRecord is one object of an archived scenario.
type ObjectRecord struct {
	Position       int
	ID             string
	Name           string
	Description    string
	ObjectType     string
	AttributesJSON string
	SecurityTag    string
}

// MarkRecord is one archived security mark.
type MarkRecord struct {
	SubjectID       string
	IntegrityDigest string
	Perception      string
	UpdatedAt       time.Time
}

// Archive persists scenarios and marks.
type Archive interface {
	PutScenario(ctx context.Context, record ScenarioRecord) (ScenarioRecord, error)
	GetScenario(ctx context.Context, name string) (ScenarioRecord, error)
	ListScenarios(ctx context.Context) ([]ScenarioRecord, error)
	PutMark(ctx context.Context, record MarkRecord) error
	GetMark(ctx context.Context, subjectID string) (MarkRecord, error)
	ListMarks(ctx context.Context) ([]MarkRecord, error)
}

// NewScenarioRecord converts a scenario into its archive form. Attributes are
// stored in canonical JSON.
func NewScenarioRecord(s engine.Scenario, createdAt time.Time) (ScenarioRecord, error) {
	objects := make([]ObjectRecord, 0, len(s.Objects))
	for i, obj := range s.Objects {
		attributes, err := contenthash.Canonicalize(obj.Attributes)
		if err != nil {
			return ScenarioRecord{}, fmt.Errorf("object %d attributes: %w", i, err)
		}
		objects = append(objects, ObjectRecord{
			Position:       i,
			ID:             obj.ID,
			Name:           obj.Name,
			Description:    obj.Description,
			ObjectType:     obj.ObjectType,
			AttributesJSON: string(attributes),
			SecurityTag:    obj.SecurityTag,
		})
	}
	return ScenarioRecord{
		Name:          s.Name,
		DerivedSeed:   s.DerivedSeed,
		AggregateHash: s.AggregateHash,
		StepCount:     s.StepCount,
		CreatedAt:     createdAt,
		Objects:       objects,
	}, nil
}

// Scenario rebuilds the scenario from an archive record.
func (r ScenarioRecord) Scenario() (engine.Scenario, error) {
	objects := make([]engine.Object, 0, len(r.Objects))
	for _, obj := range r.Objects {
		decoder := json.NewDecoder(bytes.NewReader([]byte(obj.AttributesJSON)))
		decoder.UseNumber()
		var attributes map[string]any
		if err := decoder.Decode(&attributes); err != nil {
			return engine.Scenario{}, fmt.Errorf("decode object %d attributes: %w", obj.Position, err)
		}
		objects = append(objects, engine.Object{
			ID:          obj.ID,
			Name:        obj.Name,
			Description: obj.Description,
			ObjectType:  obj.ObjectType,
			Attributes:  attributes,
			SecurityTag: obj.SecurityTag,
		})
	}
	return engine.Scenario{
		Name:          r.Name,
		Objects:       objects,
		DerivedSeed:   r.DerivedSeed,
		AggregateHash: r.AggregateHash,
		StepCount:     r.StepCount,
	}, nil
}

// Verify recomputes the aggregate hash of the archived objects and reports
// whether it still matches the recorded one.
func (r ScenarioRecord) Verify() (bool, error) {
	s, err := r.Scenario()
	if err != nil {
		return false, err
	}
	aggregate, err := engine.AggregateHash(s.Objects)
	if err != nil {
		return false, err
	}
	return aggregate == r.AggregateHash, nil
}

// NewMarkRecord converts a security mark into its archive form.
func NewMarkRecord(mark security.Mark, updatedAt time.Time) MarkRecord {
	return MarkRecord{
		SubjectID:       mark.SubjectID,
		IntegrityDigest: mark.IntegrityDigest,
		Perception:      string(mark.Perception),
		UpdatedAt:       updatedAt,
	}
}

// Mark rebuilds the security mark from an archive record.
func (r MarkRecord) Mark() security.Mark {
	return security.Mark{
		SubjectID:       r.SubjectID,
		IntegrityDigest: r.IntegrityDigest,
		Perception:      security.ParsePerception(r.Perception),
	}
}
