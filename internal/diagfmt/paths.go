package diagfmt

import (
	"os"
	"path/filepath"

	"meterc/internal/source"
)

// displayPath formats a diagnostic path. Files known to fs use their own
// FormatPath so in-memory documents keep their label.
func displayPath(path string, fs *source.FileSet, mode PathMode, baseDir string) string {
	if path == "" {
		return ""
	}
	if baseDir == "" && fs != nil {
		baseDir = fs.BaseDir()
	}
	if fs != nil {
		if f, ok := fs.GetByPath(path); ok {
			return f.FormatPath(mode.String(), baseDir)
		}
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := source.AbsolutePath(path); err == nil {
			return abs
		}
	case PathModeRelative:
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		if rel, err := source.RelativePath(path, baseDir); err == nil {
			return rel
		}
	case PathModeBasename:
		return source.BaseName(path)
	case PathModeAuto:
		if len(path) >= 40 && filepath.IsAbs(path) {
			return source.BaseName(path)
		}
	}
	return filepath.ToSlash(path)
}
