package dump

import "strings"

// CleanRow is a row of unquoted, unescaped field values.
type CleanRow []string

var unescapes = []struct{ from, to string }{
	{`\"`, `"`},
	{`\'`, `'`},
	{`\\`, `\`},
}

// CleanField strips one layer of surrounding quotes and unescapes \" \' and \\,
// in that order.
func CleanField(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if s[0] == '\'' || s[0] == '"' {
		s = s[1:]
	}
	if n := len(s); n > 0 && (s[n-1] == '\'' || s[n-1] == '"') {
		s = s[:n-1]
	}

	for _, u := range unescapes {
		s = strings.ReplaceAll(s, u.from, u.to)
	}
	return s
}

// Clean returns the cleaned form of every field in the tuple.
func (t RawTuple) Clean() CleanRow {
	row := make(CleanRow, len(t))
	for i, f := range t {
		row[i] = CleanField(f)
	}
	return row
}

// IsNull reports whether a cleaned value is one of the dump's null sentinels.
func IsNull(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "nil", "undefined":
		return true
	}
	return false
}
