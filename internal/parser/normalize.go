package parser

import (
	"strings"
	"unicode"
)

// Normalize joins item lines that OCR split across two or three physical
// lines. In priority order:
//
//	"2" / "Burger" / "£12.00"  ->  "2 Burger £12.00"
//	"2 Burger" / "£12.00"      ->  "2 Burger £12.00"
//	"Burger" / "£12.00"        ->  "Burger £12.00"
//
// Merged lines contain an amount and never take part in another merge, so
// normalizing normalized text returns it unchanged.
func (p *Parser) Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")

	for {
		merged, changed := p.mergePass(lines)
		lines = merged
		if !changed {
			break
		}
	}
	return strings.Join(lines, "\n")
}

// mergePass sweeps the lines once, trying each rule in priority order at
// every position.
func (p *Parser) mergePass(lines []string) ([]string, bool) {
	out := make([]string, 0, len(lines))
	changed := false

	for i := 0; i < len(lines); i++ {
		switch {
		case i+2 < len(lines) &&
			p.digitsOnly.MatchString(lines[i]) &&
			p.isBareText(lines[i+1]) &&
			p.amountOnly.MatchString(lines[i+2]):
			out = append(out, joinTrimmed(lines[i], lines[i+1], lines[i+2]))
			i += 2
			changed = true

		case i+1 < len(lines) &&
			p.qtyText.MatchString(lines[i]) &&
			!strings.Contains(lines[i], p.symbol) &&
			p.amountOnly.MatchString(lines[i+1]):
			out = append(out, joinTrimmed(lines[i], lines[i+1]))
			i++
			changed = true

		case i+1 < len(lines) &&
			p.isTextOnly(lines[i]) &&
			p.amountOnly.MatchString(lines[i+1]):
			out = append(out, joinTrimmed(lines[i], lines[i+1]))
			i++
			changed = true

		default:
			out = append(out, lines[i])
		}
	}
	return out, changed
}

// isBareText reports whether s is non-empty text with no digits and no
// currency symbol.
func (p *Parser) isBareText(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, p.symbol) {
		return false
	}
	return strings.IndexFunc(s, unicode.IsDigit) < 0
}

// isTextOnly reports whether s is non-empty, carries no currency symbol and
// does not start with a digit.
func (p *Parser) isTextOnly(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, p.symbol) {
		return false
	}
	return !unicode.IsDigit([]rune(s)[0])
}

func joinTrimmed(parts ...string) string {
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, " ")
}
