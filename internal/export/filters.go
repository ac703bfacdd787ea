package export

import (
	"net/url"
	"sort"
	"strings"
)

// ResultsPath is where the filter form submits to
const ResultsPath = "/results"

// FilterFields are the inputs of the results filter form
var FilterFields = []string{"hash_value", "plaintext", "task_id"}

// ClearFilters blanks every field of the filter form, including ones
// not listed in FilterFields, and returns the URL the form resubmits to.
func ClearFilters(form url.Values) (url.Values, string) {
	cleared := url.Values{}
	for _, k := range FilterFields {
		cleared.Set(k, "")
	}
	for k := range form {
		cleared.Set(k, "")
	}

	return cleared, ResultsPath + "?" + encodeOrdered(cleared)
}

// encodeOrdered keeps the form's field order first, then the rest sorted
func encodeOrdered(v url.Values) string {
	seen := make(map[string]bool, len(v))
	keys := make([]string, 0, len(v))
	for _, k := range FilterFields {
		if _, ok := v[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}

	var rest []string
	for k := range v {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v.Get(k)))
	}

	return b.String()
}
