package cue

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writePlugin(t *testing.T, root string, m Manifest) string {
	t.Helper()
	dir := filepath.Join(root, m.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "plugin.json"), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return dir
}

func TestManager_Discover(t *testing.T) {
	root := t.TempDir()
	dir := writePlugin(t, root, Manifest{
		Name:        "beeper",
		Version:     "1.0.0",
		Description: "Beeps",
		Executable:  "beeper",
		Cues:        []string{CueCountdown, CueWin},
	})

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}

	p := plugins[0]
	if p.Manifest.Name != "beeper" {
		t.Errorf("name = %q, want beeper", p.Manifest.Name)
	}
	if p.Path != dir {
		t.Errorf("path = %q, want %q", p.Path, dir)
	}
	if p.Executable != filepath.Join(dir, "beeper") {
		t.Errorf("executable = %q", p.Executable)
	}
}

func TestManager_Discover_SkipsInvalid(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, Manifest{Name: "good", Executable: "good"})
	writePlugin(t, root, Manifest{Name: "no-exec"})

	bad := filepath.Join(root, "bad")
	if err := os.MkdirAll(bad, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bad, "plugin.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 || plugins[0].Manifest.Name != "good" {
		t.Errorf("expected only the good plugin, got %d plugins", len(plugins))
	}
}

func TestManager_Discover_MissingDir(t *testing.T) {
	manager := NewManager(filepath.Join(t.TempDir(), "nope"))
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() on missing dir should not fail: %v", err)
	}
	if len(manager.List()) != 0 {
		t.Error("expected no plugins")
	}
}

func TestManager_Get(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, Manifest{Name: "beeper", Executable: "beeper"})

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatal(err)
	}

	if _, err := manager.Get("beeper"); err != nil {
		t.Errorf("Get(beeper) error = %v", err)
	}
	if _, err := manager.Get("missing"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrPluginNotFound", err)
	}
}

func TestManager_For(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, Manifest{Name: "b-outcomes", Executable: "x", Cues: []string{CueWin, CueLose, CueDraw}})
	writePlugin(t, root, Manifest{Name: "a-all", Executable: "x", Cues: []string{"*"}})
	writePlugin(t, root, Manifest{Name: "c-beeps", Executable: "x", Cues: []string{CueCountdown}})

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		cue  string
		want []string
	}{
		{CueCountdown, []string{"a-all", "c-beeps"}},
		{CueWin, []string{"a-all", "b-outcomes"}},
		{CueSessionEnd, []string{"a-all"}},
	}

	for _, tt := range tests {
		t.Run(tt.cue, func(t *testing.T) {
			got := manager.For(tt.cue)
			if len(got) != len(tt.want) {
				t.Fatalf("For(%s) returned %d plugins, want %d", tt.cue, len(got), len(tt.want))
			}
			for i, p := range got {
				if p.Manifest.Name != tt.want[i] {
					t.Errorf("For(%s)[%d] = %s, want %s", tt.cue, i, p.Manifest.Name, tt.want[i])
				}
			}
		})
	}
}
