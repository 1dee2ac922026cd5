package model

import (
	"os"
	"path/filepath"
)

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "rugscan")
	}
	return filepath.Join(os.TempDir(), "rugscan-cache")
}
