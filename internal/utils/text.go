package utils

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// DefaultTruncateLength bounds response bodies and stream lines copied into
// errors and log records.
const DefaultTruncateLength = 500

// Truncate returns s cut to at most limit bytes, followed by a note with the
// original length. The cut never splits a UTF-8 sequence, so a truncated
// answer in a log line stays valid text. A limit of zero or less uses
// [DefaultTruncateLength].
func Truncate(s string, limit int) string {
	if limit <= 0 {
		limit = DefaultTruncateLength
	}
	if len(s) <= limit {
		return s
	}

	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s... (%d bytes)", s[:cut], len(s))
}

// JSONPreview encodes v as compact JSON and truncates it to limit bytes.
// Request bodies hold base64 images, so the preview is never the full body.
func JSONPreview(v any, limit int) string {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<unencodable %T: %v>", v, err)
	}
	return Truncate(string(encoded), limit)
}
