package tools

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	prefsDirName  = "catamap"
	prefsFileName = "preferences.json"
)

// OpenPreferences returns the preference store backing tool parameters,
// located at <user config dir>/catamap/preferences.json. A missing file is
// not an error; defaults apply until the first write.
func OpenPreferences() (*viper.Viper, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	dir := filepath.Join(configDir, prefsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, prefsFileName))
	v.SetConfigType("json")
	// A missing or unreadable file falls back to defaults.
	_ = v.ReadInConfig()
	return v, nil
}
