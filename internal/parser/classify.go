package parser

import (
	"regexp"
	"strconv"
	"strings"
)

type lineKind int

const (
	lineUnrecognized lineKind = iota
	lineQuantifiedItem
	lineUnitItem
	lineSubtotal
	lineService
	lineTotal
)

func (k lineKind) String() string {
	switch k {
	case lineQuantifiedItem:
		return "quantified-item"
	case lineUnitItem:
		return "unit-item"
	case lineSubtotal:
		return "subtotal"
	case lineService:
		return "service"
	case lineTotal:
		return "total"
	default:
		return "unrecognized"
	}
}

// line is one normalized line after classification. Summary amounts are
// recorded independently of kind so the first subtotal, service and total
// matches can be taken over the whole text.
type line struct {
	kind     lineKind
	quantity int
	name     string
	amount   float64

	subtotal *float64
	service  *float64
	total    *float64
}

// classify looks at a single normalized line once.
func (p *Parser) classify(raw string) line {
	text := strings.TrimSpace(raw)
	var l line
	if text == "" {
		return l
	}

	l.subtotal = findAmount(p.subtotal, text)
	l.service = findAmount(p.service, text)
	l.total = p.findTotal(text)

	if m := p.quantified.FindStringSubmatch(text); m != nil {
		qty, err := strconv.Atoi(m[1])
		price, ok := parseAmount(m[3])
		name := strings.TrimSpace(m[2])
		if err == nil && ok && name != "" {
			if qty <= 0 {
				qty = 1
			}
			l.kind = lineQuantifiedItem
			l.quantity = qty
			l.name = name
			l.amount = price
			return l
		}
	}

	switch {
	case l.subtotal != nil:
		l.kind = lineSubtotal
		return l
	case l.total != nil:
		l.kind = lineTotal
		return l
	case l.service != nil:
		l.kind = lineService
		return l
	}

	if p.leadingQty.MatchString(text) {
		return l
	}
	if m := p.unit.FindStringSubmatch(text); m != nil {
		price, ok := parseAmount(m[2])
		name := strings.TrimSpace(m[1])
		if ok && name != "" {
			l.kind = lineUnitItem
			l.quantity = 1
			l.name = name
			l.amount = price
		}
	}
	return l
}

func (p *Parser) findTotal(text string) *float64 {
	if strings.Contains(text, p.symbol) {
		return findAmount(p.totalSym, text)
	}
	return findAmount(p.totalBare, text)
}

func findAmount(re *regexp.Regexp, text string) *float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, ok := parseAmount(m[len(m)-1])
	if !ok {
		return nil
	}
	return &v
}

// AnnotatedLine is a normalized line together with how the parser read it.
type AnnotatedLine struct {
	Text string
	Kind string
}

// Annotate normalizes text and reports the classification of every line.
// It is meant for inspecting why a receipt parsed the way it did.
func (p *Parser) Annotate(text string) []AnnotatedLine {
	lines := strings.Split(p.Normalize(text), "\n")
	out := make([]AnnotatedLine, len(lines))
	for i, raw := range lines {
		out[i] = AnnotatedLine{Text: raw, Kind: p.classify(raw).kind.String()}
	}
	return out
}
