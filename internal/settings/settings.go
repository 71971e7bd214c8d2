// Package settings loads and saves per-profile browser preferences.
// Settings live in settings.toml inside the profile directory; any key
// can be overridden with a BLATTWERK_ environment variable, e.g.
// BLATTWERK_GENERAL_HOMEPAGE.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/lotas/blattwerk/internal/search"
)

const fileName = "settings.toml"

// Settings holds all browser preferences.
type Settings struct {
	General    GeneralSettings    `mapstructure:"general"`
	Appearance AppearanceSettings `mapstructure:"appearance"`
	Privacy    PrivacySettings    `mapstructure:"privacy"`
	Advanced   AdvancedSettings   `mapstructure:"advanced"`
}

type GeneralSettings struct {
	Homepage             string `mapstructure:"homepage"`
	SearchEngine         string `mapstructure:"search_engine"`
	DownloadDirectory    string `mapstructure:"download_directory"`
	RestoreTabsOnStartup bool   `mapstructure:"restore_tabs_on_startup"`
	AskWhereToSave       bool   `mapstructure:"ask_where_to_save"`
}

type AppearanceSettings struct {
	Theme            string `mapstructure:"theme"`
	FontSize         int    `mapstructure:"font_size"`
	ShowBookmarksBar bool   `mapstructure:"show_bookmarks_bar"`
	ShowStatusBar    bool   `mapstructure:"show_status_bar"`
}

type PrivacySettings struct {
	TrackingProtection     bool `mapstructure:"tracking_protection"`
	DoNotTrack             bool `mapstructure:"do_not_track"`
	BlockThirdPartyCookies bool `mapstructure:"block_third_party_cookies"`
	ClearOnExit            bool `mapstructure:"clear_on_exit"`
	HTTPSOnly              bool `mapstructure:"https_only"`
	SaveHistory            bool `mapstructure:"save_history"`
}

type AdvancedSettings struct {
	FetchTimeoutSeconds int    `mapstructure:"fetch_timeout_seconds"`
	UserAgent           string `mapstructure:"user_agent"`
	ControlPort         int    `mapstructure:"control_port"`
}

// Path returns the settings file location inside a profile directory.
func Path(dir string) string {
	return filepath.Join(dir, fileName)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.homepage", "about:home")
	v.SetDefault("general.search_engine", string(search.DefaultEngine))
	v.SetDefault("general.download_directory", defaultDownloadDir())
	v.SetDefault("general.restore_tabs_on_startup", false)
	v.SetDefault("general.ask_where_to_save", true)
	v.SetDefault("appearance.theme", "dark")
	v.SetDefault("appearance.font_size", 14)
	v.SetDefault("appearance.show_bookmarks_bar", true)
	v.SetDefault("appearance.show_status_bar", true)
	v.SetDefault("privacy.tracking_protection", true)
	v.SetDefault("privacy.do_not_track", true)
	v.SetDefault("privacy.block_third_party_cookies", true)
	v.SetDefault("privacy.clear_on_exit", false)
	v.SetDefault("privacy.https_only", false)
	v.SetDefault("privacy.save_history", true)
	v.SetDefault("advanced.fetch_timeout_seconds", 15)
	// Empty means the fetch client's built-in agent string.
	v.SetDefault("advanced.user_agent", "")
	// 0 keeps the control server off unless -port asks for one.
	v.SetDefault("advanced.control_port", 0)
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/downloads"
	}
	return filepath.Join(home, "Downloads")
}

// Default returns the built-in settings without touching disk or env.
func Default() Settings {
	v := viper.New()
	setDefaults(v)
	var s Settings
	// only defaults are set, cannot fail
	_ = v.Unmarshal(&s)
	return s
}

// Load reads settings.toml from dir, falling back to defaults for any
// missing key. Env var overrides use prefix BLATTWERK_. A missing file
// is not an error; a malformed one is.
func Load(dir string) (Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	v.SetConfigFile(Path(dir))

	v.SetEnvPrefix("BLATTWERK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	return s, nil
}

// Save writes settings to settings.toml in dir, creating the directory
// if needed.
func Save(s Settings, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir profile dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("general.homepage", s.General.Homepage)
	v.Set("general.search_engine", s.General.SearchEngine)
	v.Set("general.download_directory", s.General.DownloadDirectory)
	v.Set("general.restore_tabs_on_startup", s.General.RestoreTabsOnStartup)
	v.Set("general.ask_where_to_save", s.General.AskWhereToSave)
	v.Set("appearance.theme", s.Appearance.Theme)
	v.Set("appearance.font_size", s.Appearance.FontSize)
	v.Set("appearance.show_bookmarks_bar", s.Appearance.ShowBookmarksBar)
	v.Set("appearance.show_status_bar", s.Appearance.ShowStatusBar)
	v.Set("privacy.tracking_protection", s.Privacy.TrackingProtection)
	v.Set("privacy.do_not_track", s.Privacy.DoNotTrack)
	v.Set("privacy.block_third_party_cookies", s.Privacy.BlockThirdPartyCookies)
	v.Set("privacy.clear_on_exit", s.Privacy.ClearOnExit)
	v.Set("privacy.https_only", s.Privacy.HTTPSOnly)
	v.Set("privacy.save_history", s.Privacy.SaveHistory)
	v.Set("advanced.fetch_timeout_seconds", s.Advanced.FetchTimeoutSeconds)
	v.Set("advanced.user_agent", s.Advanced.UserAgent)
	v.Set("advanced.control_port", s.Advanced.ControlPort)

	if err := v.WriteConfigAs(Path(dir)); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// SearchEngine resolves the configured engine, falling back to the
// default when the stored value is unknown.
func (s Settings) SearchEngine() search.Engine {
	e, err := search.ParseEngine(s.General.SearchEngine)
	if err != nil {
		return search.DefaultEngine
	}
	return e
}
