package converter

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/content-migrate/pkg/dump"
	"github.com/David-Botos/content-migrate/pkg/model"
)

// ParseTags recovers a tag list from a blob that should be an array of strings
// but may use set braces, unquoted elements or null/empty sentinels.
// It never fails; the Outcome reports whether a fallback was needed.
func (c *TypeConverter) ParseTags(blob string) model.Parsed[model.TagSet] {
	if dump.IsNull(blob) || c.isEmptySet(blob) {
		return model.Clean(model.TagSet{})
	}

	s := normalizeBlob(blob)
	if dump.IsNull(s) || c.isEmptySet(s) {
		return model.Clean(model.TagSet{})
	}

	candidate := s
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		candidate = braceSetToArray(s)
	}

	var elems []any
	if err := json.Unmarshal([]byte(candidate), &elems); err == nil {
		// a well-formed array of nulls or blanks is an empty set, not a split candidate
		if tags := toTagSet(elems); len(tags) > 0 || candidate == s {
			return model.Clean(tags)
		}
	}

	tags := splitTags(s)
	if len(tags) > 0 {
		c.logger.Debug("Recovered tags by manual split",
			zap.String("blob", truncate(blob, 120)),
			zap.Strings("tags", tags))
		return model.Recovered(tags, "manual_split")
	}

	c.logger.Warn("Unparseable tag blob, using empty tag set",
		zap.String("blob", truncate(blob, 120)))
	return model.Defaulted(model.TagSet{}, "unparseable_tag_blob")
}

// braceSetToArray rewrites {a,"b",c} to ["a","b","c"]. Segments that are not
// already double-quoted strings get quoted, the first segment included.
func braceSetToArray(s string) string {
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return "[]"
	}

	segments := dump.SplitFields(inner)
	quoted := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch {
		case isQuoted(seg, '"'):
			quoted = append(quoted, seg)
		case isQuoted(seg, '\''):
			quoted = append(quoted, jsonString(seg[1:len(seg)-1]))
		default:
			if seg = strings.Trim(seg, "{}[]\"' \t\n"); seg != "" {
				quoted = append(quoted, jsonString(seg))
			}
		}
	}
	return "[" + strings.Join(quoted, ",") + "]"
}

func isQuoted(s string, q byte) bool {
	return len(s) >= 2 && s[0] == q && s[len(s)-1] == q
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// toTagSet keeps non-empty elements, rendering non-strings with fmt
func toTagSet(elems []any) model.TagSet {
	tags := make(model.TagSet, 0, len(elems))
	for _, e := range elems {
		var tag string
		switch v := e.(type) {
		case nil:
			continue
		case string:
			tag = strings.TrimSpace(v)
		default:
			tag = fmt.Sprint(v)
		}
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// splitTags strips one outer brace or bracket pair and splits on commas
func splitTags(s string) model.TagSet {
	if len(s) >= 2 && (s[0] == '{' && s[len(s)-1] == '}' || s[0] == '[' && s[len(s)-1] == ']') {
		s = s[1 : len(s)-1]
	}

	tags := model.TagSet{}
	for _, piece := range strings.Split(s, ",") {
		piece = strings.TrimSpace(strings.Trim(piece, "\"'{}[] \t\n"))
		if piece != "" {
			tags = append(tags, piece)
		}
	}
	return tags
}
