package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "computor.yaml")
	data := "prompt: \"computor> \"\nmax_depth: 8\ncolor: false\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Prompt != "computor> " || cfg.MaxDepth != 8 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Color == nil || *cfg.Color {
		t.Errorf("want colour disabled")
	}
	if cfg.Database == "" || cfg.HistoryFile == "" {
		t.Errorf("want defaults kept for unset fields, got %+v", cfg)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("want error for a missing explicit file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("max_depth: [1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Errorf("want error for malformed yaml")
	}
}

func TestRun_OneShot(t *testing.T) {
	db := filepath.Join(t.TempDir(), "computor.db")
	if code := run([]string{"computor", "-n", "-d", db, "-e", "2 * 21"}); code != 0 {
		t.Errorf("want exit 0, got %d", code)
	}
	if code := run([]string{"computor", "-n", "-d", db, "-e", "a = 4"}); code != 0 {
		t.Errorf("want exit 0, got %d", code)
	}
	if code := run([]string{"computor", "-n", "-d", db, "-e", "a * 2"}); code != 0 {
		t.Errorf("want stored a to be reloaded, got exit %d", code)
	}
	if code := run([]string{"computor", "-n", "-d", db, "-e", "nope"}); code != 1 {
		t.Errorf("want exit 1, got %d", code)
	}
	if code := run([]string{"computor", "-m", "0"}); code != 2 {
		t.Errorf("want exit 2 for bad -m, got %d", code)
	}
}

func TestShutdown_RunsStepsOnceInReverse(t *testing.T) {
	var sd shutdown
	var got []int
	sd.add(func() { got = append(got, 1) })
	sd.add(func() { got = append(got, 2) })
	sd.run()
	sd.run()
	if len(got) != 2 || got[0] != 2 || got[1] != 1 {
		t.Errorf("want [2 1], got %v", got)
	}
}

func TestShutdown_ClosesStore(t *testing.T) {
	st, err := openStore(filepath.Join(t.TempDir(), "computor.db"))
	if err != nil {
		t.Fatal(err)
	}
	var sd shutdown
	sd.add(func() { _ = st.Close() })
	sd.run()
	if err := st.AppendHistory("1 + 1"); err == nil {
		t.Errorf("want the store closed after shutdown")
	}
}
