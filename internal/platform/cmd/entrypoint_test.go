package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
	"time"
)

type testConfig struct {
	Templates string `env:"CMD_TEST_TEMPLATES" envDefault:"templates.yaml"`
	Steps     int    `env:"CMD_TEST_STEPS" envDefault:"3"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("CARDFORGE_CMD_TEST_TEMPLATES", "env.yaml")
	t.Setenv("CARDFORGE_CMD_TEST_STEPS", "7")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfgRef := testConfig{}
	if err := ParseConfig(&cfgRef); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.StringVar(&cfgRef.Templates, "templates", cfgRef.Templates, "templates")
	fs.IntVar(&cfgRef.Steps, "steps", cfgRef.Steps, "steps")

	if err := ParseArgs(fs, []string{"-templates", "flag.yaml"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfgRef.Templates != "flag.yaml" {
		t.Fatalf("expected flag value for templates, got %q", cfgRef.Templates)
	}
	if cfgRef.Steps != 7 {
		t.Fatalf("expected env value for steps, got %d", cfgRef.Steps)
	}
}

func TestParseConfigUsesDefaults(t *testing.T) {
	cfgRef := testConfig{}
	if err := ParseConfig(&cfgRef); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	fs := flag.NewFlagSet("defaults", flag.ContinueOnError)
	if err := ParseArgs(fs, nil); err != nil {
		t.Fatalf("parse args: %v", err)
	}
	if cfgRef.Templates != "templates.yaml" || cfgRef.Steps != 3 {
		t.Fatalf("unexpected defaults: %+v", cfgRef)
	}
}

func TestParseConfigRejectsNilTarget(t *testing.T) {
	var cfg *testConfig
	if err := ParseConfig(cfg); err == nil {
		t.Fatal("expected nil config target to be rejected")
	}
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	if err := ParseArgs(nil, []string{}); err == nil {
		t.Fatal("expected parse args to reject nil parser")
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(context.Background(), "", RunOptions{}, func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceCardforge, RunOptions{}, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryReturnsRunError(t *testing.T) {
	t.Setenv("CARDFORGE_OTEL_ENDPOINT", "")
	want := errors.New("boom")

	err := RunWithTelemetry(context.Background(), ServiceCardforge, RunOptions{ShutdownTimeout: time.Second}, func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}
