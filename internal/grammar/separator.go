package grammar

import "golang.org/x/text/language"

const defaultSeparator = "point"

var (
	separatorTags = []language.Tag{
		language.English,
		language.German,
		language.Dutch,
		language.French,
		language.Spanish,
		language.Italian,
		language.Portuguese,
	}
	separatorWords = []string{
		defaultSeparator,
		"komma",
		"komma",
		"virgule",
		"coma",
		"virgola",
		"vírgula",
	}
	separatorMatcher = language.NewMatcher(separatorTags)
)

// Separator returns the spoken decimal separator for a BCP 47 language tag.
// Unknown or unparsable tags fall back to English.
func Separator(tag string) string {
	parsed, err := language.Parse(tag)
	if err != nil {
		return defaultSeparator
	}
	_, idx, confidence := separatorMatcher.Match(parsed)
	if confidence == language.No || idx < 0 || idx >= len(separatorWords) {
		return defaultSeparator
	}
	return separatorWords[idx]
}
