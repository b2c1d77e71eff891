package prefabs

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadEmbeddedKinds(t *testing.T) {
	spec, err := LoadKinds(Source{})
	if err != nil {
		t.Fatalf("load kinds: %v", err)
	}
	for _, name := range []string{"circle", "box", "plank", "pipe", "static", "line", "link"} {
		if _, ok := spec.Kind(name); !ok {
			t.Fatalf("embedded kinds missing %q", name)
		}
	}
	link, _ := spec.Kind("link")
	if !link.Decorative {
		t.Fatalf("link kind must be decorative")
	}
	line, _ := spec.Kind("LINE")
	if !line.Locked || line.Body != "static" {
		t.Fatalf("line kind must be a locked static body, got %+v", line)
	}
	if line.Color == nil {
		t.Fatalf("expected line color")
	}
}

func TestDiskOverride(t *testing.T) {
	dir := t.TempDir()
	override := `kinds:
  circle:
    body: dynamic
    shape: circle
    radius: 40
    mass: 3
    color: "#ff000080"
`
	if err := os.WriteFile(filepath.Join(dir, KindsFile), []byte(override), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}
	spec, err := LoadKinds(Source{Dir: dir})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c, ok := spec.Kind("circle")
	if !ok || c.Radius != 40 {
		t.Fatalf("override not applied: %+v", c)
	}
	got := color.NRGBAModel.Convert(c.Color.Color).(color.NRGBA)
	if got != (color.NRGBA{R: 255, A: 128}) {
		t.Fatalf("unexpected color %v", got)
	}
	if _, ok := spec.Kind("box"); ok {
		t.Fatalf("override replaces the whole file")
	}
}

func TestValidateRejectsBadKinds(t *testing.T) {
	tests := []struct {
		name string
		kind KindSpec
		want string
	}{
		{"massless_dynamic", KindSpec{Body: "dynamic", Shape: "circle", Radius: 4}, "needs mass"},
		{"unknown_body", KindSpec{Body: "floating", Shape: "circle", Radius: 4}, "unknown body"},
		{"unknown_shape", KindSpec{Body: "static", Shape: "hexagon"}, "unknown shape"},
		{"jitter_too_big", KindSpec{Body: "static", Shape: "circle", Radius: 1, RadiusJitter: 2}, "too small"},
		{"flat_box", KindSpec{Body: "static", Shape: "box", Width: 4}, "needs height"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := KindsSpec{Kinds: map[string]KindSpec{"k": tc.kind}}.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
	if err := (KindsSpec{}).Validate(); err == nil {
		t.Fatalf("empty spec must not validate")
	}
}

func TestDecodeSpec(t *testing.T) {
	type pipeOptions struct {
		VX   float64 `yaml:"vx"`
		VY   float64 `yaml:"vy"`
		Emit string  `yaml:"emit"`
	}
	got, err := DecodeSpec[pipeOptions](map[string]any{"vx": 120, "vy": -3.5, "emit": "box"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.VX != 120 || got.VY != -3.5 || got.Emit != "box" {
		t.Fatalf("unexpected decode %+v", got)
	}
	zero, err := DecodeSpec[pipeOptions](nil)
	if err != nil || zero != (pipeOptions{}) {
		t.Fatalf("nil input should decode to zero value, got %+v %v", zero, err)
	}
}

func TestScenePaths(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"bridge", "scenes/bridge.tengo"},
		{"bridge.tengo", "scenes/bridge.tengo"},
		{"scenes/bridge.tengo", "scenes/bridge.tengo"},
		{"prefabs/scenes/bridge", "scenes/bridge.tengo"},
	}
	for _, tc := range tests {
		if got := cleanScenePath(tc.in); got != tc.want {
			t.Fatalf("cleanScenePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if _, err := (Source{}).LoadScene("bridge"); err != nil {
		t.Fatalf("embedded bridge scene: %v", err)
	}
	found := false
	for _, name := range Scenes() {
		if name == "playground" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected playground in %v", Scenes())
	}
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, KindsFile), []byte("kinds: {}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case ch := <-w.Changes:
		if ch.Kind != ChangeKinds || filepath.Base(ch.Path) != KindsFile {
			t.Fatalf("unexpected change %+v", ch)
		}
	case err := <-w.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("no change reported")
	}
}
