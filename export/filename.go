package export

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ByLCY/lessonplan/lesson"
	"github.com/ByLCY/lessonplan/record"
)

// DefaultFilenameTemplate names artifacts "{subject} - {date}".
const DefaultFilenameTemplate = "${subject} - ${date}"

const fallbackName = "lesson-plan"

var placeholder = regexp.MustCompile(`\$\{[^}]*\}`)

// Filename builds the download name for doc. Template placeholders are
// ${subject}, ${date}, ${grade} and ${language}; unknown ones are dropped.
func Filename(doc lesson.Document, format Format, template string) string {
	if strings.TrimSpace(template) == "" {
		template = DefaultFilenameTemplate
	}
	vars := record.NewMap()
	vars.Set("subject", sanitizeName(doc.Subject))
	vars.Set("date", sanitizeDate(doc.Date))
	vars.Set("grade", sanitizeName(doc.Grade))
	vars.Set("language", string(doc.Language))

	name := record.Interpolate(template, vars)
	name = placeholder.ReplaceAllString(name, "")
	name = strings.NewReplacer("/", "-", `\`, "-").Replace(name)
	name = collapseSeparators(name)
	name = strings.Trim(name, " -_")
	if name == "" {
		name = fallbackName
	}
	return name + format.Extension()
}

// sanitizeName keeps letters, digits, spaces, hyphens and underscores.
func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func sanitizeDate(s string) string {
	s = strings.NewReplacer("/", "-", ".", "-", ":", "-").Replace(strings.TrimSpace(s))
	return sanitizeName(s)
}

// collapseSeparators turns "A -  - B" left by empty fields into "A - B".
func collapseSeparators(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	for strings.Contains(s, "- -") {
		s = strings.ReplaceAll(s, "- -", "-")
	}
	return s
}
