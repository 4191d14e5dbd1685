// Package template resolves %{field} placeholder strings against events.
package template

import (
	"strings"

	"github.com/anynines/logstash-output-syslog/internal/model"
)

// Joda-style date tokens accepted in %{+PATTERN} placeholders, mapped to
// the Go reference time. Longest tokens first so "SSS" wins over "ss".
var dateTokens = strings.NewReplacer(
	"yyyy", "2006",
	"SSS", "000",
	"MMM", "Jan",
	"MM", "01",
	"dd", "02",
	"HH", "15",
	"mm", "04",
	"ss", "05",
	"ZZ", "-07:00",
	"Z", "-0700",
)

// Resolve substitutes every %{name} placeholder in tmpl with the named
// event field and every %{+PATTERN} placeholder with the event timestamp
// rendered through the pattern. Unknown fields are left as literal
// placeholder text; resolution never fails. A string without placeholders
// is returned unchanged.
func Resolve(tmpl string, ev model.Event) string {
	if !strings.Contains(tmpl, "%{") {
		return tmpl
	}

	var b strings.Builder
	for {
		i := strings.Index(tmpl, "%{")
		if i < 0 {
			b.WriteString(tmpl)
			break
		}
		b.WriteString(tmpl[:i])
		rest := tmpl[i+2:]
		j := strings.IndexByte(rest, '}')
		if j < 0 {
			// Unterminated placeholder, keep it verbatim.
			b.WriteString(tmpl[i:])
			break
		}
		name := rest[:j]
		tmpl = rest[j+1:]

		if pattern, ok := strings.CutPrefix(name, "+"); ok {
			b.WriteString(ev.Timestamp.Format(Layout(pattern)))
			continue
		}
		if v, ok := ev.Field(name); ok {
			b.WriteString(v)
		} else {
			b.WriteString("%{" + name + "}")
		}
	}
	return b.String()
}

// Layout translates a Joda-style date pattern into a Go time layout.
func Layout(pattern string) string {
	return dateTokens.Replace(pattern)
}
