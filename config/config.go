// Package config reads relay settings from the environment. Command-line
// flags layer on top of these values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/datakeeper/scanrelay/dispatch"
	"github.com/kballard/go-shellquote"
)

const defaultPort = 8080

type Config struct {
	Port    int
	Token   string
	DataDir string
	DevMode bool

	Dispatchers   []string
	Command       string
	JellyfinURL   string
	JellyfinToken string
	BaseDir       string
	LegacySilent  bool
	WatchDirs     []string
	MDNS          bool
	MDNSInstance  string
	ShowQR        bool
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for anything unset or unparsable.
func FromEnv() Config {
	return Config{
		Port:          envInt("PORT", defaultPort),
		Token:         os.Getenv("AUTH_TOKEN"),
		DataDir:       os.Getenv("DATA_DIR"),
		DevMode:       envBool("DEV_MODE", false),
		Dispatchers:   envList("DISPATCHER", []string{defaultDispatcher()}),
		Command:       os.Getenv("DISPATCH_COMMAND"),
		JellyfinURL:   os.Getenv("JELLYFIN_URL"),
		JellyfinToken: os.Getenv("JELLYFIN_TOKEN"),
		BaseDir:       baseDir(),
		LegacySilent:  envBool("LEGACY_SILENT_DISPATCH", false),
		WatchDirs:     envList("WATCH_DIRS", nil),
		MDNS:          envBool("MDNS", false),
		MDNSInstance:  os.Getenv("MDNS_INSTANCE"),
		ShowQR:        envBool("SHOW_QR", true),
	}
}

// baseDir returns BASE_DIR made absolute, or the working directory when
// unset. Empty only if neither can be determined.
func baseDir() string {
	if v := os.Getenv("BASE_DIR"); v != "" {
		abs, err := filepath.Abs(v)
		if err != nil {
			return ""
		}
		return abs
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

// defaultDispatcher picks the Android broadcast on Android hosts and
// log-only elsewhere.
func defaultDispatcher() string {
	if runtime.GOOS == "android" {
		return dispatch.BackendBroadcast
	}
	return dispatch.BackendLog
}

// Validate checks the settings the serve command needs.
func (c Config) Validate() error {
	var errs []error
	if c.Token == "" {
		errs = append(errs, errors.New("AUTH_TOKEN is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}
	return errors.Join(errs...)
}

// Dispatch translates the dispatcher settings for dispatch.New.
func (c Config) Dispatch() (dispatch.Config, error) {
	var argv []string
	if c.Command != "" {
		var err error
		argv, err = shellquote.Split(c.Command)
		if err != nil {
			return dispatch.Config{}, fmt.Errorf("DISPATCH_COMMAND: %w", err)
		}
	}
	return dispatch.Config{
		Backends:      c.Dispatchers,
		Command:       argv,
		JellyfinURL:   c.JellyfinURL,
		JellyfinToken: c.JellyfinToken,
	}, nil
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// envList splits a comma-separated variable, dropping empty entries.
func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
