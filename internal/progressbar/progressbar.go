// Package progressbar sets the width of progress indicators from the
// percentage values rendered next to them.
package progressbar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	taskBarSelector     = `.h-2\.5.bg-blue-600`
	recoveryBarSelector = ".recovery-progress-bar"
	agentIndicatorID    = "#agent-progress-indicator"
	agentDataID         = "#agent-progress-data"
	agentBarID          = "#agent-progress-bar"
	legacyBarSelector   = ".progress-bar[data-width]"

	percentTextSelector = ".text-xs.text-gray-500"
)

// triggerSelector matches any node whose insertion requires a re-scan
const triggerSelector = taskBarSelector + ", " + recoveryBarSelector + ", " +
	agentIndicatorID + ", " + agentBarID + ", .progress-bar, .task-progress-bar, " +
	agentDataID + ", .progress-data, .recovery-data"

var percentPattern = regexp.MustCompile(`([\d.]+)%`)

// leadingFloat matches the longest numeric prefix a browser would parse
var leadingFloat = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// Sync sets the width of every known progress indicator in doc and
// returns how many it touched. Running it again without changes to the
// percentage text leaves the document as it was.
func Sync(doc *goquery.Document) int {
	n := 0

	doc.Find(taskBarSelector).Each(func(_ int, bar *goquery.Selection) {
		if v, ok := valueNear(bar, ".mb-4", ".progress-data"); ok {
			setWidth(bar, v)
			n++
		}
	})

	doc.Find(recoveryBarSelector).Each(func(_ int, bar *goquery.Selection) {
		if v, ok := valueNear(bar, ".mb-3", ".recovery-data"); ok {
			setWidth(bar, v)
			n++
		}
	})

	if bar := doc.Find(agentIndicatorID).First(); bar.Length() > 0 {
		if data := doc.Find(agentDataID).First(); data.Length() > 0 {
			if v, ok := ParseFloat(data.Text()); ok {
				setWidth(bar, v)
				n++
			}
		}
	}

	if bar := doc.Find(agentBarID).First(); bar.Length() > 0 {
		if container := containerOf(bar, ".mb-3"); container.Length() > 0 {
			if v, ok := ParsePercentText(container.Find(percentTextSelector).First().Text()); ok {
				setWidth(bar, v)
				n++
			}
		}
	}

	doc.Find(legacyBarSelector).Each(func(_ int, bar *goquery.Selection) {
		if w, _ := bar.Attr("data-width"); w != "" {
			bar.SetAttr("style", SetStyleWidth(bar.AttrOr("style", ""), w+"%"))
			n++
		}
	})

	return n
}

// valueNear finds the value for bar in its container: the data element
// if there is one, otherwise the first "N%" of the caption text.
func valueNear(bar *goquery.Selection, containerSel, dataSel string) (float64, bool) {
	container := containerOf(bar, containerSel)
	if container.Length() == 0 {
		return 0, false
	}

	if data := container.Find(dataSel).First(); data.Length() > 0 {
		return ParseFloat(data.Text())
	}

	caption := container.Find(percentTextSelector).First()
	if caption.Length() == 0 {
		return 0, false
	}

	return ParsePercentText(caption.Text())
}

func containerOf(bar *goquery.Selection, sel string) *goquery.Selection {
	if c := bar.Closest(sel); c.Length() > 0 {
		return c
	}
	return bar.Parent().Parent()
}

// ParseFloat parses the leading number of s, ignoring whatever follows
// it. "42.5% done" is 42.5, "abc" is not a number.
func ParseFloat(s string) (float64, bool) {
	m := leadingFloat.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

// ParsePercentText extracts the first "N%" from s
func ParsePercentText(s string) (float64, bool) {
	m := percentPattern.FindStringSubmatch(s)
	if len(m) < 2 {
		return 0, false
	}
	return ParseFloat(m[1])
}

func setWidth(bar *goquery.Selection, v float64) {
	bar.SetAttr("style", SetStyleWidth(bar.AttrOr("style", ""), strconv.FormatFloat(v, 'f', -1, 64)+"%"))
}

// SetStyleWidth replaces the width declaration of an inline style,
// keeping every other declaration in place.
func SetStyleWidth(style, width string) string {
	var decls []string
	replaced := false

	for _, d := range strings.Split(style, ";") {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}

		prop, _, _ := strings.Cut(d, ":")
		if strings.EqualFold(strings.TrimSpace(prop), "width") {
			if replaced {
				continue
			}
			d = "width: " + width
			replaced = true
		}
		decls = append(decls, d)
	}

	if !replaced {
		decls = append(decls, "width: "+width)
	}

	return strings.Join(decls, "; ")
}
