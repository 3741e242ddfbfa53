package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/neetkit/cardforge/internal/engine"
	apperrors "github.com/neetkit/cardforge/internal/platform/errors"
	"github.com/neetkit/cardforge/internal/security"
	"github.com/neetkit/cardforge/internal/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cardforge.db")
	store, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func scenarioRecord(t *testing.T, name string, steps int) storage.ScenarioRecord {
	t.Helper()
	e, err := engine.New(engine.WithSeed(1))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	scenario, err := e.CreateScenario(name, steps, nil)
	if err != nil {
		t.Fatalf("create scenario: %v", err)
	}
	record, err := storage.NewScenarioRecord(scenario, time.Date(2026, 2, 21, 21, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	return record
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cardforge.db")
	for i := 0; i < 2; i++ {
		store, err := Open(context.Background(), path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}
}

func TestPutGetScenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)
	record := scenarioRecord(t, "alpha", 6)

	saved, err := store.PutScenario(ctx, record)
	if err != nil {
		t.Fatalf("put scenario: %v", err)
	}
	if saved.RunID == "" {
		t.Fatal("expected generated run id")
	}

	got, err := store.GetScenario(ctx, "alpha")
	if err != nil {
		t.Fatalf("get scenario: %v", err)
	}
	if got.RunID != saved.RunID || got.AggregateHash != record.AggregateHash || got.DerivedSeed != record.DerivedSeed {
		t.Fatalf("scenario header = %+v, want %+v", got, saved)
	}
	if !got.CreatedAt.Equal(record.CreatedAt) {
		t.Fatalf("created at = %v, want %v", got.CreatedAt, record.CreatedAt)
	}
	if len(got.Objects) != 6 {
		t.Fatalf("objects = %d, want 6", len(got.Objects))
	}
	for i, obj := range got.Objects {
		if obj != record.Objects[i] {
			t.Fatalf("object %d = %+v, want %+v", i, obj, record.Objects[i])
		}
	}

	ok, err := got.Verify()
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("archived scenario failed verification")
	}
}

func TestPutScenarioReplacesEarlierRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)

	first, err := store.PutScenario(ctx, scenarioRecord(t, "alpha", 5))
	if err != nil {
		t.Fatalf("put first: %v", err)
	}
	second, err := store.PutScenario(ctx, scenarioRecord(t, "alpha", 2))
	if err != nil {
		t.Fatalf("put second: %v", err)
	}
	if first.RunID == second.RunID {
		t.Fatal("expected a fresh run id per save")
	}

	got, err := store.GetScenario(ctx, "alpha")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RunID != second.RunID || len(got.Objects) != 2 {
		t.Fatalf("got run %s with %d objects, want run %s with 2", got.RunID, len(got.Objects), second.RunID)
	}

	var orphans int
	if err := store.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM scenario_objects WHERE run_id = ?", first.RunID).Scan(&orphans); err != nil {
		t.Fatalf("count orphans: %v", err)
	}
	if orphans != 0 {
		t.Fatalf("orphaned objects = %d, want 0", orphans)
	}
}

func TestPutScenarioEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)
	if _, err := store.PutScenario(ctx, scenarioRecord(t, "empty", 0)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.GetScenario(ctx, "empty")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Objects) != 0 || got.StepCount != 0 {
		t.Fatalf("unexpected empty scenario: %+v", got)
	}
	if ok, err := got.Verify(); err != nil || !ok {
		t.Fatalf("verify = %v, %v", ok, err)
	}
}

func TestPutScenarioRequiresName(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.PutScenario(context.Background(), storage.ScenarioRecord{Name: "  "}); err == nil {
		t.Fatal("expected missing name error")
	}
}

func TestPutScenarioKeepsNameVerbatim(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	saved, err := store.PutScenario(ctx, scenarioRecord(t, " x", 1))
	if err != nil {
		t.Fatalf("put scenario: %v", err)
	}
	if saved.Name != " x" {
		t.Fatalf("saved name = %q, want %q", saved.Name, " x")
	}
	got, err := store.GetScenario(ctx, " x")
	if err != nil {
		t.Fatalf("get scenario: %v", err)
	}
	if ok, err := got.Verify(); err != nil || !ok {
		t.Fatalf("verify = %v, %v", ok, err)
	}
	if _, err := store.GetScenario(ctx, "x"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("trimmed lookup err = %v, want ErrNotFound", err)
	}
}

func TestGetScenarioNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.GetScenario(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeNotFound {
		t.Fatalf("code = %q, want %q", code, apperrors.CodeNotFound)
	}
}

func TestListScenarios(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)
	for _, name := range []string{"gamma", "alpha", "beta"} {
		if _, err := store.PutScenario(ctx, scenarioRecord(t, name, 1)); err != nil {
			t.Fatalf("put %s: %v", name, err)
		}
	}
	records, err := store.ListScenarios(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"alpha", "beta", "gamma"}
	if len(records) != len(want) {
		t.Fatalf("records = %d, want %d", len(records), len(want))
	}
	for i, name := range want {
		if records[i].Name != name {
			t.Fatalf("records[%d] = %s, want %s", i, records[i].Name, name)
		}
		if len(records[i].Objects) != 0 {
			t.Fatal("list results should not carry objects")
		}
	}
}

func TestPutGetListMarks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)
	now := time.Date(2026, 2, 21, 21, 0, 0, 0, time.UTC)

	annotator := security.NewAnnotator()
	first, err := annotator.Mark("process_b", map[string]any{"pid": 2}, "neutral")
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	second, err := annotator.Mark("process_a", map[string]any{"pid": 1}, "critical")
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	for _, mark := range []security.Mark{first, second} {
		if err := store.PutMark(ctx, storage.NewMarkRecord(mark, now)); err != nil {
			t.Fatalf("put mark: %v", err)
		}
	}

	got, err := store.GetMark(ctx, "process_a")
	if err != nil {
		t.Fatalf("get mark: %v", err)
	}
	if got.Mark() != second || !got.UpdatedAt.Equal(now) {
		t.Fatalf("mark = %+v, want %+v", got, second)
	}

	updated, err := annotator.Mark("process_a", map[string]any{"pid": 1}, "suspicious")
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := store.PutMark(ctx, storage.NewMarkRecord(updated, now.Add(time.Minute))); err != nil {
		t.Fatalf("update mark: %v", err)
	}

	records, err := store.ListMarks(ctx)
	if err != nil {
		t.Fatalf("list marks: %v", err)
	}
	if len(records) != 2 || records[0].SubjectID != "process_a" || records[1].SubjectID != "process_b" {
		t.Fatalf("unexpected marks: %+v", records)
	}
	if records[0].Perception != "suspicious" {
		t.Fatalf("perception = %q, want suspicious", records[0].Perception)
	}

	if _, err := store.GetMark(ctx, "process_missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := store.PutMark(ctx, storage.MarkRecord{}); err == nil {
		t.Fatal("expected missing subject error")
	}
}

func TestStoreHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.GetScenario(ctx, "alpha"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
