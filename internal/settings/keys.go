package settings

import (
	"fmt"
	"strconv"

	"github.com/lotas/blattwerk/internal/search"
)

// Keys returns every settings key in file order.
func Keys() []string {
	return []string{
		"general.homepage",
		"general.search_engine",
		"general.download_directory",
		"general.restore_tabs_on_startup",
		"general.ask_where_to_save",
		"appearance.theme",
		"appearance.font_size",
		"appearance.show_bookmarks_bar",
		"appearance.show_status_bar",
		"privacy.tracking_protection",
		"privacy.do_not_track",
		"privacy.block_third_party_cookies",
		"privacy.clear_on_exit",
		"privacy.https_only",
		"privacy.save_history",
		"advanced.fetch_timeout_seconds",
		"advanced.user_agent",
		"advanced.control_port",
	}
}

// Get returns the string form of one dotted key.
func Get(s Settings, key string) (string, bool) {
	switch key {
	case "general.homepage":
		return s.General.Homepage, true
	case "general.search_engine":
		return s.General.SearchEngine, true
	case "general.download_directory":
		return s.General.DownloadDirectory, true
	case "general.restore_tabs_on_startup":
		return strconv.FormatBool(s.General.RestoreTabsOnStartup), true
	case "general.ask_where_to_save":
		return strconv.FormatBool(s.General.AskWhereToSave), true
	case "appearance.theme":
		return s.Appearance.Theme, true
	case "appearance.font_size":
		return strconv.Itoa(s.Appearance.FontSize), true
	case "appearance.show_bookmarks_bar":
		return strconv.FormatBool(s.Appearance.ShowBookmarksBar), true
	case "appearance.show_status_bar":
		return strconv.FormatBool(s.Appearance.ShowStatusBar), true
	case "privacy.tracking_protection":
		return strconv.FormatBool(s.Privacy.TrackingProtection), true
	case "privacy.do_not_track":
		return strconv.FormatBool(s.Privacy.DoNotTrack), true
	case "privacy.block_third_party_cookies":
		return strconv.FormatBool(s.Privacy.BlockThirdPartyCookies), true
	case "privacy.clear_on_exit":
		return strconv.FormatBool(s.Privacy.ClearOnExit), true
	case "privacy.https_only":
		return strconv.FormatBool(s.Privacy.HTTPSOnly), true
	case "privacy.save_history":
		return strconv.FormatBool(s.Privacy.SaveHistory), true
	case "advanced.fetch_timeout_seconds":
		return strconv.Itoa(s.Advanced.FetchTimeoutSeconds), true
	case "advanced.user_agent":
		return s.Advanced.UserAgent, true
	case "advanced.control_port":
		return strconv.Itoa(s.Advanced.ControlPort), true
	}
	return "", false
}

// Set assigns the field named by a dotted key, parsing value per the
// field's type. Unknown keys are an error, as are values that do not
// parse.
func Set(s *Settings, key, value string) error {
	switch key {
	case "general.homepage":
		s.General.Homepage = value
	case "general.search_engine":
		if _, err := search.ParseEngine(value); err != nil {
			return err
		}
		s.General.SearchEngine = value
	case "general.download_directory":
		s.General.DownloadDirectory = value
	case "general.restore_tabs_on_startup":
		return setBool(&s.General.RestoreTabsOnStartup, key, value)
	case "general.ask_where_to_save":
		return setBool(&s.General.AskWhereToSave, key, value)
	case "appearance.theme":
		s.Appearance.Theme = value
	case "appearance.font_size":
		return setInt(&s.Appearance.FontSize, key, value)
	case "appearance.show_bookmarks_bar":
		return setBool(&s.Appearance.ShowBookmarksBar, key, value)
	case "appearance.show_status_bar":
		return setBool(&s.Appearance.ShowStatusBar, key, value)
	case "privacy.tracking_protection":
		return setBool(&s.Privacy.TrackingProtection, key, value)
	case "privacy.do_not_track":
		return setBool(&s.Privacy.DoNotTrack, key, value)
	case "privacy.block_third_party_cookies":
		return setBool(&s.Privacy.BlockThirdPartyCookies, key, value)
	case "privacy.clear_on_exit":
		return setBool(&s.Privacy.ClearOnExit, key, value)
	case "privacy.https_only":
		return setBool(&s.Privacy.HTTPSOnly, key, value)
	case "privacy.save_history":
		return setBool(&s.Privacy.SaveHistory, key, value)
	case "advanced.fetch_timeout_seconds":
		return setInt(&s.Advanced.FetchTimeoutSeconds, key, value)
	case "advanced.user_agent":
		s.Advanced.UserAgent = value
	case "advanced.control_port":
		return setInt(&s.Advanced.ControlPort, key, value)
	default:
		return fmt.Errorf("unknown settings key %q", key)
	}
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s wants true or false, got %q", key, value)
	}
	*dst = b
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s wants a number, got %q", key, value)
	}
	*dst = n
	return nil
}
