// Package dump extracts rows from SQL dump text without a SQL grammar.
//
// Only the tuple shape matters: `VALUES` followed by comma-chained groups,
// repeated per statement, or a single statement followed by bare
// parenthesized groups.
package dump

import (
	"iter"
	"strings"
	"unicode"
)

// RawTuple is one row's field strings exactly as they appear in the dump,
// quotes included. Doubled quotes are already collapsed.
type RawTuple []string

// span is the inner text of one top-level parenthesized group. inValues marks
// groups in a VALUES list: right after the keyword or comma-chained to such
// a group.
type span struct {
	start, end int
	inValues   bool
}

// Tuples returns the rows found in a dump file's text. The sequence is lazy
// and can be ranged over any number of times; every iteration rescans text.
func Tuples(text string) iter.Seq[RawTuple] {
	return func(yield func(RawTuple) bool) {
		for _, sp := range selectGroups(text) {
			fields := SplitFields(text[sp.start:sp.end])
			if len(fields) == 0 {
				continue
			}
			if !yield(RawTuple(fields)) {
				return
			}
		}
	}
}

// Count returns the number of rows Tuples would yield.
func Count(text string) int {
	n := 0
	for range Tuples(text) {
		n++
	}
	return n
}

// selectGroups picks the extraction strategy. Groups in VALUES lists are
// preferred; when that finds at most one group the dump is assumed to list
// bare groups after a single VALUES and every top-level group is used.
func selectGroups(text string) []span {
	all, firstValues := scanGroups(text)

	primary := make([]span, 0, len(all))
	for _, sp := range all {
		if sp.inValues {
			primary = append(primary, sp)
		}
	}
	if len(primary) > 1 {
		return primary
	}

	loose := make([]span, 0, len(all))
	for _, sp := range all {
		// skips column lists such as INSERT INTO t (a, b) VALUES ...
		if firstValues >= 0 && sp.start < firstValues {
			continue
		}
		loose = append(loose, sp)
	}
	if len(loose) < len(primary) {
		return primary
	}
	return loose
}

// scanGroups walks the text once, tracking quoted literals and nesting depth,
// and returns every top-level group plus the offset of the first VALUES
// keyword (or -1).
func scanGroups(text string) ([]span, int) {
	var (
		groups      []span
		depth       int
		quote       byte
		groupStart  = -1
		firstValues = -1
		lastValues  = -1
		chainEnd    = -1 // just past the last group of the current VALUES list
	)

	for i := 0; i < len(text); i++ {
		c := text[i]

		if quote != 0 {
			switch {
			case c == '\\' && i+1 < len(text):
				i++
			case c == quote && i+1 < len(text) && text[i+1] == quote:
				i++
			case c == quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '\'', '"':
			quote = c
		case '(':
			if depth == 0 {
				groupStart = i + 1
			}
			depth++
		case ')':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && groupStart >= 0 {
				open := groupStart - 1
				inValues := lastValues >= 0 && onlySpaceBetween(text, lastValues, open) ||
					chainEnd >= 0 && onlyCommaBetween(text, chainEnd, open)
				groups = append(groups, span{start: groupStart, end: i, inValues: inValues})
				chainEnd = -1
				if inValues {
					chainEnd = i + 1
				}
				groupStart = -1
			}
		default:
			if depth == 0 && isValuesKeyword(text, i) {
				if firstValues < 0 {
					firstValues = i
				}
				lastValues = i + len("values")
				i = lastValues - 1
			}
		}
	}

	return groups, firstValues
}

func isValuesKeyword(text string, i int) bool {
	const kw = "values"
	if i+len(kw) > len(text) || !strings.EqualFold(text[i:i+len(kw)], kw) {
		return false
	}
	if i > 0 && isIdentByte(text[i-1]) {
		return false
	}
	if end := i + len(kw); end < len(text) && isIdentByte(text[end]) {
		return false
	}
	return true
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func onlySpaceBetween(text string, from, to int) bool {
	if from > to {
		return false
	}
	return strings.TrimFunc(text[from:to], unicode.IsSpace) == ""
}

func onlyCommaBetween(text string, from, to int) bool {
	if from > to {
		return false
	}
	return strings.TrimFunc(text[from:to], unicode.IsSpace) == ","
}

// SplitFields splits the inside of one parenthesized group into raw fields.
// Commas delimit fields only outside quoted literals and nested parentheses.
// A quote doubled inside a literal is emitted once; backslash escapes are kept
// verbatim for the field cleaner.
func SplitFields(inner string) []string {
	if strings.TrimSpace(inner) == "" {
		return nil
	}

	var (
		fields []string
		cur    strings.Builder
		quote  byte
		depth  int
	)

	flush := func() {
		fields = append(fields, strings.TrimSpace(cur.String()))
		cur.Reset()
	}

	for i := 0; i < len(inner); i++ {
		c := inner[i]

		if quote != 0 {
			switch {
			case c == '\\' && i+1 < len(inner):
				cur.WriteByte(c)
				cur.WriteByte(inner[i+1])
				i++
			case c == quote && i+1 < len(inner) && inner[i+1] == quote:
				cur.WriteByte(c)
				i++
			case c == quote:
				cur.WriteByte(c)
				quote = 0
			default:
				cur.WriteByte(c)
			}
			continue
		}

		switch c {
		case '\'', '"':
			quote = c
			cur.WriteByte(c)
		case '(':
			depth++
			cur.WriteByte(c)
		case ')':
			if depth > 0 {
				depth--
			}
			cur.WriteByte(c)
		case ',':
			if depth > 0 {
				cur.WriteByte(c)
				continue
			}
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()

	return fields
}
