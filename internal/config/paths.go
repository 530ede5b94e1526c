package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".takeout2sms"

// Paths holds resolved filesystem paths for takeout2sms data.
type Paths struct {
	Base   string // ~/.takeout2sms
	Config string // ~/.takeout2sms/config.yaml
	Cache  string // ~/.takeout2sms/images.db
}

// ResolvePaths computes all standard paths from the home directory.
// If TAKEOUT2SMS_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("TAKEOUT2SMS_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:   base,
		Config: filepath.Join(base, "config.yaml"),
		Cache:  filepath.Join(base, "images.db"),
	}, nil
}

// EnsureDirs creates the base directory if it doesn't exist.
func (p Paths) EnsureDirs() error {
	return os.MkdirAll(p.Base, 0o700)
}
