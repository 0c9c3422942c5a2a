package tui

import (
	"strings"
	"unicode/utf8"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 200

// editRune processes a keystroke for inline text editing. Handles
// backspace (rune-aware) and single printable characters; anything else
// leaves the text unchanged. Input is clamped to maxInputLen runes.
func editRune(text, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	default:
		if utf8.RuneCountInString(key) == 1 {
			if utf8.RuneCountInString(text) >= maxInputLen {
				return text
			}
			return text + key
		}
		return text
	}
}

// renderField renders one labelled form field with a blinking cursor when
// focused. Masked fields show dots instead of their value.
func renderField(label, value string, focused, masked bool, frame int) string {
	shown := value
	if masked {
		shown = strings.Repeat("•", utf8.RuneCountInString(value))
	}
	prompt := "  "
	if focused {
		prompt = inputPromptStyle.Render("> ")
	}
	line := prompt + labelStyle.Render(label) + " "
	switch {
	case focused && (frame/4)%2 == 0:
		line += shown + accentStyle.Render("█")
	case focused:
		line += shown + " "
	case shown == "":
		line += inputPlaceholderStyle.Render("·")
	default:
		line += dimStyle.Render(shown)
	}
	return line
}
