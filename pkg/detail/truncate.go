// Package detail holds the presentation logic of the token detail view:
// description truncation, data reconciliation and the safety warning gate.
package detail

import (
	"unicode"
	"unicode/utf8"
)

// TruncateCharacterCount is the description budget in runes.
const TruncateCharacterCount = 400

// Ellipsis is appended to truncated descriptions.
const Ellipsis = "…"

// TruncateDescription shortens desc to the last whitespace inside the first
// TruncateCharacterCount runes. A cut with no whitespace collapses to the
// bare ellipsis.
func TruncateDescription(desc string) (string, bool) {
	if utf8.RuneCountInString(desc) <= TruncateCharacterCount {
		return desc, false
	}
	cut := []rune(desc)[:TruncateCharacterCount]
	end := 0
	for i := len(cut) - 1; i >= 0; i-- {
		if unicode.IsSpace(cut[i]) {
			end = i
			break
		}
	}
	return string(cut[:end]) + Ellipsis, true
}

// Description is a description plus its user-controlled collapsed state.
// The zero value is collapsed.
type Description struct {
	Text     string
	expanded bool
}

// ShouldTruncate reports whether the text exceeds the budget.
func (d Description) ShouldTruncate() bool {
	return utf8.RuneCountInString(d.Text) > TruncateCharacterCount
}

// Truncated reports whether Visible currently returns a shortened text.
func (d Description) Truncated() bool {
	return d.ShouldTruncate() && !d.expanded
}

// Visible is the text to draw for the current toggle state.
func (d Description) Visible() string {
	if !d.Truncated() {
		return d.Text
	}
	s, _ := TruncateDescription(d.Text)
	return s
}

// Toggle flips between the collapsed and expanded text.
func (d *Description) Toggle() {
	d.expanded = !d.expanded
}

// Expanded reports the toggle state.
func (d Description) Expanded() bool {
	return d.expanded
}

// ToggleLabel is the message key for the toggle control, empty when the
// description fits the budget.
func (d Description) ToggleLabel() string {
	if !d.ShouldTruncate() {
		return ""
	}
	if d.expanded {
		return MsgHide
	}
	return MsgReadMore
}
