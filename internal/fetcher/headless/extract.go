package headless

import "strings"

// fieldSelectors maps extraction field names to the CSS selectors of the
// Google Flights results list. Order defines the tabular store's columns.
var fieldSelectors = []struct {
	name     string
	selector string
}{
	{"prices", "div.YMlIz.FpEdX > span"},
	{"airlines", "div.sSHqwe.tPgKwe.ogfYpf"},
	{"times", "div.zxVSec.YMlIz.tPgKwe.ogfYpf > span"},
	{"durations", "div.Ak5kof > div"},
	{"stops", "div.EfT7Ae.AdWm1c.tPgKwe > span"},
}

// Fields returns the extraction field names in column order.
func Fields() []string {
	names := make([]string, 0, len(fieldSelectors))
	for _, f := range fieldSelectors {
		names = append(names, f.name)
	}
	return names
}

// unicode noise that shows up in scraped flight listings
var specialRunes = strings.NewReplacer(
	" ", "", // narrow no-break space
	"–", "", // en dash
	"€", "", // euro sign
)

// CleanText normalizes one extracted value: newlines become '/', special
// unicode characters are stripped and whitespace is collapsed.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\n", "/")
	text = specialRunes.Replace(text)
	return strings.Join(strings.Fields(text), " ")
}
