package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// AppName names the per-user config and data directories
const AppName = "wordpredict"

// ConfigDir returns the platform config directory for the app:
// XDG_CONFIG_HOME on Linux, APPDATA on Windows, ~/.config elsewhere.
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return platformDir(homeDir, "XDG_CONFIG_HOME", filepath.Join(homeDir, ".config")), nil
}

// DataDir returns the platform data directory where models are kept:
// XDG_DATA_HOME on Linux, APPDATA on Windows, ~/.local/share elsewhere.
func DataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return platformDir(homeDir, "XDG_DATA_HOME", filepath.Join(homeDir, ".local", "share")), nil
}

func platformDir(homeDir, xdgVar, fallback string) string {
	switch runtime.GOOS {
	case "linux":
		if base := os.Getenv(xdgVar); base != "" {
			return filepath.Join(base, AppName)
		}
		return filepath.Join(fallback, AppName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", AppName)
	default:
		return filepath.Join(fallback, AppName)
	}
}

// ResolveWritableDir returns the first candidate directory that exists or can
// be created and is writable. The executable dir and then the temp dir are
// tried last.
func ResolveWritableDir(candidates ...string) string {
	if execDir, err := GetExecutableDir(); err == nil {
		candidates = append(candidates, execDir)
	}
	candidates = append(candidates, filepath.Join(os.TempDir(), AppName))

	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		if result := CheckDirStatus(dir); result.Writable {
			return dir
		}
		log.Debugf("Directory candidate not writable: %s", dir)
	}
	return os.TempDir()
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path == "~" || (len(path) > 1 && path[0] == '~' && os.IsPathSeparator(path[1])) {
		if homeDir, err := os.UserHomeDir(); err == nil {
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}
