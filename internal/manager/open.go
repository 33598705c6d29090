package manager

import (
	"os"
	"path/filepath"

	"todobreeze/internal/config"
	"todobreeze/internal/utils"
	"todobreeze/store"
	"todobreeze/store/file"
	"todobreeze/store/kv"
)

// Open assembles the persistence stack from configuration: the JSON file
// backend as primary with the SQLite key-value store as mirror. Backends are
// checked at open time; an unavailable primary degrades to mirror-only, and
// vice versa. At least one side must come up.
func Open(cfg *config.Config) (store.Store, error) {
	var primary, mirror store.Store

	if dirUsable(cfg.Storage.File) {
		fb, err := file.New(file.Config{FilePath: cfg.Storage.File})
		if err != nil {
			utils.Warnf("file backend unavailable: %v", err)
		} else {
			primary = fb
		}
	} else {
		utils.Warnf("file backend unavailable: cannot use directory of %s", cfg.Storage.File)
	}

	kb, err := kv.New(cfg.Storage.KV)
	if err != nil {
		utils.Warnf("fallback store unavailable: %v", err)
	} else {
		mirror = kb
	}

	if primary == nil && mirror == nil {
		return nil, utils.ErrStorageUnavailable(err)
	}
	return store.NewDual(primary, mirror), nil
}

// dirUsable reports whether the parent directory of path exists or can be
// created.
func dirUsable(path string) bool {
	if path == "" {
		return false
	}
	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err == nil {
		return info.IsDir()
	}
	return os.MkdirAll(dir, 0755) == nil
}
