// Package app assembles the annotation engine for an embedding map UI:
// preferences, persistence, tool state, layer manager and editor wired
// together with one lifetime.
package app

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Alatreon/catamap-sub000/internal/annotation"
	"github.com/Alatreon/catamap-sub000/internal/editor"
	"github.com/Alatreon/catamap-sub000/internal/layers"
	"github.com/Alatreon/catamap-sub000/internal/store"
	"github.com/Alatreon/catamap-sub000/internal/tools"
)

// Options tunes how the engine is assembled. The zero value gives the
// standard locations and a stderr logger.
type Options struct {
	// DataDir is where annotation documents are persisted. Empty means the
	// storage.dir preference, defaulting to a directory next to the
	// preference file.
	DataDir string

	// Prefs overrides the preference store, mainly for tests. Nil opens
	// the standard one.
	Prefs *viper.Viper

	// DarkMode reports the presentation mode when colors are stamped onto
	// new annotations. Nil means always light.
	DarkMode func() bool

	// Logger, when non-nil, replaces the default stderr logger.
	Logger *zerolog.Logger
}

// App owns one instance of the annotation engine.
type App struct {
	Log    zerolog.Logger
	Prefs  *viper.Viper
	Store  *store.Store
	Tools  *tools.State
	Layers *layers.Manager
	Editor *editor.Editor
}

// New assembles the engine around the given surface.
func New(surface editor.Surface, opts Options) (*App, error) {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	prefs := opts.Prefs
	if prefs == nil {
		var err error
		prefs, err = tools.OpenPreferences()
		if err != nil {
			return nil, err
		}
	}

	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = storageDir(prefs)
	}

	darkMode := opts.DarkMode
	if darkMode == nil {
		darkMode = func() bool { return false }
	}

	st := store.New(dataDir, log)
	ts := tools.NewState(prefs)
	mgr := layers.NewManager(st, log)
	ed := editor.New(mgr, ts, surface, darkMode, log)

	return &App{
		Log:    log,
		Prefs:  prefs,
		Store:  st,
		Tools:  ts,
		Layers: mgr,
		Editor: ed,
	}, nil
}

func storageDir(prefs *viper.Viper) string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	prefs.SetDefault("storage.dir", filepath.Join(base, "catamap", "annotations"))
	return prefs.GetString("storage.dir")
}

// OpenMap loads the annotation document for a map, creating the default
// document when none is persisted.
func (a *App) OpenMap(mapID string) (*annotation.Document, error) {
	return a.Layers.Load(mapID)
}

// CloseMap flushes and drops the loaded document.
func (a *App) CloseMap() error {
	return a.Layers.Unload()
}

// Close shuts the engine down, flushing every pending save.
func (a *App) Close() error {
	unloadErr := a.Layers.Unload()
	if err := a.Store.Close(); err != nil {
		return err
	}
	return unloadErr
}
