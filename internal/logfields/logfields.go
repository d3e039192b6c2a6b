package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyFile       = "file"
	KeyLink       = "link"
	KeyDelimiter  = "delimiter"
	KeyKind       = "kind"
	KeyCount      = "count"
	KeyReportID   = "report_id"
	KeyDurationMS = "duration_ms"
	KeyAddr       = "addr"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr      { return slog.String(KeyPath, p) }
func File(f string) slog.Attr      { return slog.String(KeyFile, f) }
func Link(text string) slog.Attr   { return slog.String(KeyLink, text) }
func Delimiter(s string) slog.Attr { return slog.String(KeyDelimiter, s) }
func Kind(k string) slog.Attr      { return slog.String(KeyKind, k) }
func Count(n int) slog.Attr        { return slog.Int(KeyCount, n) }
func ReportID(id string) slog.Attr { return slog.String(KeyReportID, id) }
func Addr(a string) slog.Attr      { return slog.String(KeyAddr, a) }

// Duration reports d in fractional milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
