package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AUTH_TOKEN", "secret")
	t.Setenv("DISPATCHER", "broadcast, jellyfin,")
	t.Setenv("WATCH_DIRS", "/sdcard/DCIM,/sdcard/Download")
	t.Setenv("LEGACY_SILENT_DISPATCH", "true")
	t.Setenv("MDNS", "1")
	t.Setenv("SHOW_QR", "false")

	cfg := FromEnv()

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.Token != "secret" {
		t.Errorf("expected token secret, got %q", cfg.Token)
	}
	if !reflect.DeepEqual(cfg.Dispatchers, []string{"broadcast", "jellyfin"}) {
		t.Errorf("unexpected dispatchers %v", cfg.Dispatchers)
	}
	if !reflect.DeepEqual(cfg.WatchDirs, []string{"/sdcard/DCIM", "/sdcard/Download"}) {
		t.Errorf("unexpected watch dirs %v", cfg.WatchDirs)
	}
	if !cfg.LegacySilent || !cfg.MDNS || cfg.ShowQR {
		t.Errorf("unexpected bools %+v", cfg)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("DISPATCHER", " , ")
	t.Setenv("DEV_MODE", "maybe")

	cfg := FromEnv()

	if cfg.Port != defaultPort {
		t.Errorf("expected default port, got %d", cfg.Port)
	}
	if !reflect.DeepEqual(cfg.Dispatchers, []string{defaultDispatcher()}) {
		t.Errorf("expected default dispatcher, got %v", cfg.Dispatchers)
	}
	if cfg.DevMode {
		t.Error("expected DevMode false for unparsable value")
	}
	if !cfg.ShowQR {
		t.Error("expected ShowQR default true")
	}
}

func TestFromEnv_BaseDir(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	t.Setenv("BASE_DIR", "")
	if got := FromEnv().BaseDir; got != wd {
		t.Errorf("expected working directory %q, got %q", wd, got)
	}

	t.Setenv("BASE_DIR", "exports")
	if got := FromEnv().BaseDir; got != filepath.Join(wd, "exports") {
		t.Errorf("expected %q, got %q", filepath.Join(wd, "exports"), got)
	}

	t.Setenv("BASE_DIR", "/storage/emulated/0")
	if got := FromEnv().BaseDir; got != "/storage/emulated/0" {
		t.Errorf("expected /storage/emulated/0, got %q", got)
	}
}

func TestValidate(t *testing.T) {
	if err := (Config{Token: "t", Port: 8080}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (Config{Port: 8080}).Validate(); err == nil {
		t.Error("expected error for missing token")
	}
	if err := (Config{Token: "t", Port: 70000}).Validate(); err == nil {
		t.Error("expected error for invalid port")
	}
}

func TestDispatch_SplitsCommand(t *testing.T) {
	cfg := Config{
		Dispatchers: []string{"command"},
		Command:     `tracker3 index --file "{path}"`,
	}

	dc, err := cfg.Dispatch()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"tracker3", "index", "--file", "{path}"}
	if !reflect.DeepEqual(dc.Command, want) {
		t.Errorf("command = %v, want %v", dc.Command, want)
	}

	cfg.Command = `broken "quote`
	if _, err := cfg.Dispatch(); err == nil {
		t.Error("expected error for unterminated quote")
	}
}
