package document

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// BodyField is inserted without escaping; callers supply trusted LaTeX markup in it
const BodyField = "CORPO_TEXTO"

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// EscapeLaTeX escapes LaTeX special characters in a single pass, so the
// backslashes and braces it introduces are never escaped again
func EscapeLaTeX(s string) string {
	return latexEscaper.Replace(s)
}

// Placeholder returns the template token for key
func Placeholder(key string) string {
	return "{{" + key + "}}"
}

// FillTemplate replaces every {{KEY}} with its escaped value. BodyField is
// inserted verbatim. Placeholders without a value are left untouched.
func FillTemplate(template string, fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := template
	for _, key := range keys {
		value := fields[key]
		if key != BodyField {
			value = EscapeLaTeX(value)
		}
		out = strings.ReplaceAll(out, Placeholder(key), value)
	}
	return out
}

var months = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// FormatLongDate formats t the Brazilian way, e.g. "13 de janeiro de 2025"
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), months[t.Month()-1], t.Year())
}
