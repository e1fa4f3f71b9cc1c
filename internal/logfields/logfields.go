package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyCount      = "count"
	KeyDateSource = "date_source"
	KeySortDate   = "sort_date"
	KeyEvent      = "event"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func File(name string) slog.Attr       { return slog.String(KeyFile, name) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func DateSource(s string) slog.Attr    { return slog.String(KeyDateSource, s) }
func SortDate(date string) slog.Attr   { return slog.String(KeySortDate, date) }
func Event(op string) slog.Attr        { return slog.String(KeyEvent, op) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
