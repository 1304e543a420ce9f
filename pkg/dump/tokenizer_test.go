package dump

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(text string) []CleanRow {
	var rows []CleanRow
	for t := range Tuples(text) {
		rows = append(rows, t.Clean())
	}
	return rows
}

// escapeSingle renders v as a single-quoted literal using backslash escapes.
func escapeSingle(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func TestTuples_RoundTrip(t *testing.T) {
	values := [][]string{
		{"1", "Hello, world", `It's "quoted"`},
		{"2", "a,b,c", "(nested, parens)"},
		{"3", "", "trailing comma,"},
		{"4", `back\slash`, "multi\nline"},
	}

	for n := 1; n <= len(values); n++ {
		t.Run(fmt.Sprintf("%d tuples", n), func(t *testing.T) {
			var sb strings.Builder
			for _, row := range values[:n] {
				lits := make([]string, len(row))
				for i, v := range row {
					lits[i] = escapeSingle(v)
				}
				fmt.Fprintf(&sb, "INSERT INTO `tips` (`id`, `a`, `b`) VALUES (%s);\n", strings.Join(lits, ", "))
			}

			rows := collect(sb.String())
			require.Len(t, rows, n)
			for i, row := range rows {
				assert.Equal(t, CleanRow(values[i]), row)
			}
		})
	}
}

func TestTuples_DoubledQuote(t *testing.T) {
	rows := collect(`INSERT INTO t VALUES ('it''s', "say ""hi""", 3);`)
	require.Len(t, rows, 1)
	assert.Equal(t, CleanRow{"it's", `say "hi"`, "3"}, rows[0])
}

func TestTuples_BareGroupFallback(t *testing.T) {
	text := "INSERT INTO tips (id, title) VALUES\n(1, 'first'),\n(2, 'second, with comma'),\n(3, NULL);"

	rows := collect(text)
	require.Len(t, rows, 3)
	assert.Equal(t, CleanRow{"1", "first"}, rows[0])
	assert.Equal(t, CleanRow{"2", "second, with comma"}, rows[1])
	assert.Equal(t, CleanRow{"3", "NULL"}, rows[2])
}

func TestTuples_ExtendedInserts(t *testing.T) {
	text := "INSERT INTO t VALUES (1,'a'),(2,'b');\n" +
		"INSERT INTO t VALUES (3,'c, d'),\n  (4,'e');\n" +
		"INSERT INTO t VALUES (5,'f');"

	rows := collect(text)
	require.Len(t, rows, 5)
	for i, row := range rows {
		assert.Equal(t, fmt.Sprint(i+1), row[0])
	}
	assert.Equal(t, "c, d", rows[2][1])
	assert.Equal(t, 5, Count(text))
}

func TestTuples_ChainStopsAtStatementEnd(t *testing.T) {
	text := "INSERT INTO t VALUES (1,'a'),(2,'b');\nSELECT f(x);\nINSERT INTO t VALUES (3,'c'),(4,'d');"

	rows := collect(text)
	require.Len(t, rows, 4)
	assert.Equal(t, CleanRow{"4", "d"}, rows[3])
}

func TestTuples_BareGroupsWithoutKeyword(t *testing.T) {
	rows := collect("(1, 'a')\n(2, 'b')\n")
	require.Len(t, rows, 2)
	assert.Equal(t, CleanRow{"2", "b"}, rows[1])
}

func TestTuples_EmptyGroupDiscarded(t *testing.T) {
	rows := collect("INSERT INTO t VALUES ();\nINSERT INTO t VALUES (1, 'x');\nINSERT INTO t VALUES (2, 'y');")
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[0][0])
}

func TestTuples_NestedParensPreserved(t *testing.T) {
	rows := collect("INSERT INTO t VALUES (1, point(2.35, 48.85), 'x');INSERT INTO t VALUES (2, 'y (z)', 'w');")
	require.Len(t, rows, 2)
	assert.Equal(t, CleanRow{"1", "point(2.35, 48.85)", "x"}, rows[0])
	assert.Equal(t, CleanRow{"2", "y (z)", "w"}, rows[1])
}

func TestTuples_ValuesInsideLiteralIgnored(t *testing.T) {
	text := "INSERT INTO t VALUES (1, 'see VALUES (x)');\nINSERT INTO t VALUES (2, 'ok');"
	rows := collect(text)
	require.Len(t, rows, 2)
	assert.Equal(t, "see VALUES (x)", rows[0][1])
}

func TestTuples_Restartable(t *testing.T) {
	seq := Tuples("INSERT INTO t VALUES (1);INSERT INTO t VALUES (2);")

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
	assert.Equal(t, 2, Count("INSERT INTO t VALUES (1);INSERT INTO t VALUES (2);"))
}

func TestTuples_EmptyInput(t *testing.T) {
	assert.Empty(t, collect(""))
	assert.Empty(t, collect("-- nothing here\n"))
}

func TestSplitFields(t *testing.T) {
	tests := []struct {
		name  string
		inner string
		want  []string
	}{
		{"empty", "   ", nil},
		{"bare tokens", "1, null ,true", []string{"1", "null", "true"}},
		{"quoted comma", `'a, b', "c"`, []string{`'a, b'`, `"c"`}},
		{"escaped quote kept", `'it\'s', 2`, []string{`'it\'s'`, "2"}},
		{"doubled quote collapsed", `'it''s'`, []string{`'it's'`}},
		{"other quote inside literal", `'say "x, y"'`, []string{`'say "x, y"'`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitFields(tt.inner))
		})
	}
}
