package cardforge

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/neetkit/cardforge/internal/engine"
	"github.com/neetkit/cardforge/internal/security"
	"github.com/neetkit/cardforge/internal/storage"
)

func (a *app) generate(_ context.Context, args []string) error {
	if len(args) != 0 {
		return usageError("generate takes no arguments")
	}
	if a.cfg.Count < 1 {
		return usageError("-count must be at least 1")
	}
	ctx := engine.Context{}
	if a.cfg.Perception != "" {
		ctx[engine.ContextUserPerception] = a.cfg.Perception
	}
	objects := make([]engine.Object, 0, a.cfg.Count)
	for i := 0; i < a.cfg.Count; i++ {
		obj, err := a.engine.Generate(ctx)
		if err != nil {
			return err
		}
		objects = append(objects, obj)
	}
	return a.writeJSON(struct {
		Seed    uint32          `json:"seed"`
		Objects []engine.Object `json:"objects"`
	}{Seed: a.engine.Seed(), Objects: objects})
}

func (a *app) scenario(ctx context.Context, args []string) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return usageError("scenario <name>")
	}
	name := args[0]

	var overrides []engine.PresetOverride
	if a.cfg.Steps >= 0 {
		overrides = append(overrides, engine.OverrideSteps(a.cfg.Steps))
	}
	if a.cfg.Perception != "" {
		overrides = append(overrides, engine.OverridePerception(a.cfg.Perception))
	}

	scenario, err := a.engine.RunPreset(name, engine.Preset(a.cfg.Preset), overrides...)
	if err != nil {
		return err
	}
	if err := a.archiveScenario(ctx, scenario); err != nil {
		return err
	}
	return a.writeJSON(scenario)
}

func (a *app) archiveScenario(ctx context.Context, scenario engine.Scenario) error {
	if a.archive == nil {
		return nil
	}
	now := time.Now()
	record, err := storage.NewScenarioRecord(scenario, now)
	if err != nil {
		return err
	}
	saved, err := a.archive.PutScenario(ctx, record)
	if err != nil {
		return err
	}
	for _, mark := range a.engine.SecurityMarks() {
		if err := a.archive.PutMark(ctx, storage.NewMarkRecord(mark, now)); err != nil {
			return err
		}
	}
	a.logger.Info("scenario archived", "name", saved.Name, "run_id", saved.RunID)
	return nil
}

func (a *app) mark(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("mark <subject_id> <json>")
	}
	var data any
	if err := json.Unmarshal([]byte(args[1]), &data); err != nil {
		return usageError("mark data must be JSON: %v", err)
	}
	perception := a.cfg.Perception
	if perception == "" {
		perception = string(security.PerceptionNeutral)
	}
	mark, err := a.engine.MarkSecurityProcess(args[0], data, perception)
	if err != nil {
		return err
	}
	if a.archive != nil {
		if err := a.archive.PutMark(ctx, storage.NewMarkRecord(mark, time.Now())); err != nil {
			return err
		}
	}
	return a.writeJSON(markView(mark))
}

func (a *app) showMark(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("show-mark <subject_id>")
	}
	if mark, ok := a.engine.SecurityMark(args[0]); ok {
		return a.writeJSON(markView(mark))
	}
	if a.archive == nil {
		return storage.ErrNotFound
	}
	record, err := a.archive.GetMark(ctx, args[0])
	if err != nil {
		return err
	}
	return a.writeJSON(markView(record.Mark()))
}

func (a *app) showScenario(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("show-scenario <name>")
	}
	if a.archive == nil {
		return errors.New("show-scenario needs an archive (-db)")
	}
	record, err := a.archive.GetScenario(ctx, args[0])
	if err != nil {
		return err
	}
	scenario, err := record.Scenario()
	if err != nil {
		return err
	}
	verified, err := record.Verify()
	if err != nil {
		return err
	}
	if !verified {
		a.logger.Warn("archived scenario does not match its aggregate hash", "name", record.Name, "run_id", record.RunID)
	}
	return a.writeJSON(struct {
		engine.Scenario
		RunID     string    `json:"run_id"`
		CreatedAt time.Time `json:"created_at"`
		Verified  bool      `json:"verified"`
	}{Scenario: scenario, RunID: record.RunID, CreatedAt: record.CreatedAt, Verified: verified})
}

func (a *app) templates(_ context.Context, args []string) error {
	if len(args) != 0 {
		return usageError("templates takes no arguments")
	}
	type fieldView struct {
		Name string `json:"name"`
		Rule string `json:"rule"`
	}
	type templateView struct {
		Name        string      `json:"name"`
		ObjectType  string      `json:"object_type"`
		Description string      `json:"description"`
		Fields      []fieldView `json:"fields"`
	}
	var views []templateView
	for _, tmpl := range a.engine.Catalog().Templates() {
		view := templateView{Name: tmpl.Name, ObjectType: tmpl.ObjectType, Description: tmpl.Description, Fields: []fieldView{}}
		for _, field := range tmpl.Fields {
			view.Fields = append(view.Fields, fieldView{Name: field.Name, Rule: field.Rule.String()})
		}
		views = append(views, view)
	}
	return a.writeJSON(views)
}

func (a *app) presets(_ context.Context, args []string) error {
	if len(args) != 0 {
		return usageError("presets takes no arguments")
	}
	type presetView struct {
		Name       string `json:"name"`
		Steps      int    `json:"steps"`
		Perception string `json:"perception"`
	}
	var views []presetView
	for _, preset := range engine.Presets() {
		cfg := engine.GetPresetConfig(preset)
		views = append(views, presetView{Name: string(preset), Steps: cfg.Steps, Perception: string(cfg.Perception)})
	}
	return a.writeJSON(views)
}

type markJSON struct {
	security.Mark
	Label string `json:"label"`
}

func markView(mark security.Mark) markJSON {
	return markJSON{Mark: mark, Label: mark.Label()}
}
