// Package taskform decides which inputs of the new task form are shown
// for the selected attack mode.
package taskform

import (
	"strconv"
	"strings"
	"sync"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// Element ids of the optional form sections
const (
	SelectID        = "attack_mode"
	WordlistSection = "wordlist_section"
	RuleSection     = "rule_section"
	MaskSection     = "mask_section"

	hiddenClass = "hidden"
)

// Sections says which optional sections are visible
type Sections struct {
	Wordlist bool `json:"wordlist"`
	Rule     bool `json:"rule"`
	Mask     bool `json:"mask"`
}

// Visible reports whether the section with the given id is shown
func (s Sections) Visible(id string) bool {
	switch id {
	case WordlistSection:
		return s.Wordlist
	case RuleSection:
		return s.Rule
	case MaskSection:
		return s.Mask
	}
	return false
}

// Class is the CSS class for the section with the given id
func (s Sections) Class(id string) string {
	if s.Visible(id) {
		return ""
	}
	return hiddenClass
}

// ParseMode reads the leading integer of a select value, so "6" and
// "6 (hybrid)" are both mode 6. ok is false when there is no number.
func ParseMode(value string) (mode domain.AttackMode, ok bool) {
	s := strings.TrimLeft(value, " \t\r\n")

	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}

	return domain.AttackMode(n), true
}

// Visibility maps an attack mode to its sections. Unknown modes show
// none of them.
func Visibility(mode domain.AttackMode) Sections {
	switch mode {
	case domain.AttackModeStraight:
		return Sections{Wordlist: true, Rule: true}
	case domain.AttackModeCombination:
		return Sections{Wordlist: true}
	case domain.AttackModeBruteForce:
		return Sections{Mask: true}
	case domain.AttackModeHybridWordlistMask, domain.AttackModeHybridMaskWordlist:
		return Sections{Wordlist: true, Mask: true}
	}
	return Sections{}
}

// VisibilityOf is Visibility for a raw select value
func VisibilityOf(value string) Sections {
	mode, ok := ParseMode(value)
	if !ok {
		return Sections{}
	}
	return Visibility(mode)
}

// Form tracks the attack mode selector of one rendered form
type Form struct {
	mu       sync.Mutex
	selected string
	sections Sections
}

// Init applies the mapping to the server-rendered default selection
func (f *Form) Init(selected string) Sections {
	return f.Change(selected)
}

// Change applies the mapping for a newly selected value
func (f *Form) Change(value string) Sections {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.selected = value
	f.sections = VisibilityOf(value)
	return f.sections
}

func (f *Form) Selected() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selected
}

func (f *Form) Sections() Sections {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sections
}
