package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyStage      = "stage"
	KeyRecipe     = "recipe"
	KeySection    = "section"
	KeyPath       = "path"
	KeyError      = "error"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyBuildID    = "build_id"
	KeyArtifact   = "artifact"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Recipe(path string) slog.Attr     { return slog.String(KeyRecipe, path) }
func Section(s string) slog.Attr       { return slog.String(KeySection, s) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Artifact(path string) slog.Attr   { return slog.String(KeyArtifact, path) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
