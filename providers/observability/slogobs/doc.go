// Package slogobs is the log/slog backed observability.Provider used by the
// chatbridge command.
//
// [NewHandler] builds a compact text or JSON handler that knows the TRACE
// level ([LevelTrace]) the bridge logs skipped stream lines at. [Observer]
// turns spans into one summary record per span, so a generation shows up
// in the logs as its outcome line plus one line per provider request.
package slogobs
