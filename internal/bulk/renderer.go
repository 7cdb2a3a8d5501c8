package bulk

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var placeholderRegexp = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Render substitutes every {key} placeholder in the template with the
// matching field value. Missing keys render as the empty string, never the
// literal placeholder. Pure function, safe for concurrent use.
func Render(template string, fields map[string]string) string {
	return placeholderRegexp.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		return fields[key]
	})
}

// DisplayName normalizes a recipient name for message greetings using the
// seller's locale casing rules.
func DisplayName(name, locale string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return cases.Title(tag).String(strings.ToLower(name))
}
