// Package address splits free-text French postal addresses.
package address

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/David-Botos/content-migrate/pkg/dump"
	"github.com/David-Botos/content-migrate/pkg/model"
)

var (
	// the marker must stand alone: "Île-de-France" and "Place de France" keep it
	countrySuffix   = regexp.MustCompile(`(?i)(^|[,;]|\s+-)\s*france(\s+m[ée]tropolitaine)?[\s.]*$`)
	splitPostalCode = regexp.MustCompile(`\b(\d{2}) (\d{3})\b`)
	postalToken     = regexp.MustCompile(`\b\d{5}\b`)
)

// Parser splits addresses into street, postal code and city
type Parser struct {
	logger *zap.Logger
	rules  []Rule
}

// NewParser creates a parser. With no rules the default rule list is used.
func NewParser(logger *zap.Logger, rules ...Rule) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Parser{logger: logger, rules: rules}
}

// Normalize removes a trailing country marker, collapses whitespace and joins
// a postal code written as two groups ("75 000").
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = countrySuffix.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	s = splitPostalCode.ReplaceAllString(s, "$1$2")
	return strings.Trim(s, " ,;")
}

// Parse splits one address. It never fails; the outcome is clean when a
// structural rule matched, recovered when only a postal code token anchored
// the split, and defaulted when the whole string became the street.
func (p *Parser) Parse(raw string) model.Parsed[model.ParsedAddress] {
	if dump.IsNull(raw) {
		return model.Clean(model.ParsedAddress{})
	}

	s := Normalize(raw)
	if s == "" {
		return model.Clean(model.ParsedAddress{})
	}

	for _, rule := range p.rules {
		if street, postal, city, ok := rule.match(s); ok {
			p.logger.Debug("Address matched rule",
				zap.String("rule", rule.Name),
				zap.String("address", s))
			return model.Clean(model.ParsedAddress{
				Street:     strings.Trim(street, " ,"),
				City:       strings.Trim(city, " ,"),
				PostalCode: postal,
			})
		}
	}

	if loc := postalToken.FindStringIndex(s); loc != nil {
		return model.Recovered(splitAround(s, loc[0], loc[1]), "postal_code_anchor")
	}

	p.logger.Warn("Address has no postal code, keeping it as street",
		zap.String("address", s))
	return model.Defaulted(model.ParsedAddress{Street: s}, "unsplittable_address")
}

// splitAround assigns the text before and after the postal code token
func splitAround(s string, start, end int) model.ParsedAddress {
	before := strings.TrimRight(strings.TrimSpace(s[:start]), ", ")
	after := strings.TrimLeft(strings.TrimSpace(s[end:]), ", ")

	addr := model.ParsedAddress{PostalCode: s[start:end]}
	if before == "" {
		parts := strings.SplitN(after, ",", 2)
		addr.Street = strings.TrimSpace(parts[0])
		if len(parts) == 2 {
			addr.City = strings.TrimSpace(parts[1])
		}
		return addr
	}

	addr.Street = before
	addr.City = after
	return addr
}
