package translator

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LanguageName turns a BCP 47 tag ("ko", "pt-BR") into its English name
// ("Korean", "Brazilian Portuguese"). Anything that is not a known tag is
// treated as a name and title-cased. Empty input yields fallback.
func LanguageName(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	if tag, err := language.Parse(s); err == nil {
		if name := display.English.Tags().Name(tag); name != "" {
			return name
		}
	}
	return cases.Title(language.English).String(s)
}
