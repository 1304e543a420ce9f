package address

import "regexp"

// Rule is one structural address pattern. Pattern must be anchored and define
// the named groups street, postal and city.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// DefaultRules returns the structural patterns in evaluation order.
// Comma-anchored shapes come before the space-only ones.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "comma_code_city",
			Pattern: regexp.MustCompile(`^(?P<street>.+?),\s*(?P<postal>\d{5})\s+(?P<city>.+)$`),
		},
		{
			Name:    "comma_city_code",
			Pattern: regexp.MustCompile(`^(?P<street>.+?),\s*(?P<city>[^,]+?)\s+(?P<postal>\d{5})$`),
		},
		{
			Name:    "space_code_city",
			Pattern: regexp.MustCompile(`^(?P<street>.+?)\s+(?P<postal>\d{5})\s+(?P<city>.+)$`),
		},
		{
			Name:    "space_city_code",
			Pattern: regexp.MustCompile(`^(?P<street>.+)\s+(?P<city>\S+)\s+(?P<postal>\d{5})$`),
		},
	}
}

// match applies the rule, returning the three named groups
func (r Rule) match(s string) (street, postal, city string, ok bool) {
	m := r.Pattern.FindStringSubmatch(s)
	if m == nil {
		return "", "", "", false
	}
	for i, name := range r.Pattern.SubexpNames() {
		switch name {
		case "street":
			street = m[i]
		case "postal":
			postal = m[i]
		case "city":
			city = m[i]
		}
	}
	return street, postal, city, true
}
