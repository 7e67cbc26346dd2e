// Package parser extracts line items and summary figures from OCR text of a
// restaurant receipt.
//
// Parsing never fails. Text that matches nothing yields an empty item list,
// a subtotal equal to the sum of item prices and no service charge or total.
// A Parser holds only compiled patterns and is safe for concurrent use.
package parser

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/tabsplit/internal/models"
	"github.com/mmynk/tabsplit/internal/money"
)

// DefaultSymbol is the currency symbol used by Parse and Normalize.
const DefaultSymbol = "£"

// amountPattern matches "12", "12.50", "12." or ".50".
const amountPattern = `(\d+(?:\.\d*)?|\.\d+)`

// Parser parses receipts priced in a single currency symbol.
type Parser struct {
	symbol string

	amountOnly *regexp.Regexp
	digitsOnly *regexp.Regexp
	qtyText    *regexp.Regexp
	leadingQty *regexp.Regexp

	quantified *regexp.Regexp
	unit       *regexp.Regexp

	subtotal *regexp.Regexp
	service  *regexp.Regexp

	// totalSym reads the first symbol-prefixed amount after "Total";
	// totalBare is used only on lines without the symbol.
	totalSym  *regexp.Regexp
	totalBare *regexp.Regexp
}

var defaultParser = New(DefaultSymbol)

// Parse parses text with the default currency symbol.
func Parse(text string) models.ParsedReceipt {
	return defaultParser.Parse(text)
}

// Normalize reconstructs split item lines using the default currency symbol.
func Normalize(text string) string {
	return defaultParser.Normalize(text)
}

// New returns a Parser for amounts prefixed by symbol. An empty symbol
// selects DefaultSymbol.
func New(symbol string) *Parser {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		symbol = DefaultSymbol
	}
	sym := regexp.QuoteMeta(symbol)

	return &Parser{
		symbol:     symbol,
		amountOnly: regexp.MustCompile(`^\s*` + sym + `(?:\d+(?:\.\d*)?|\.\d+)\s*$`),
		digitsOnly: regexp.MustCompile(`^\s*\d+\s*$`),
		qtyText:    regexp.MustCompile(`^\s*\d+\s+\S`),
		leadingQty: regexp.MustCompile(`^\d+\s`),
		quantified: regexp.MustCompile(`^(\d+)\s+(.+)\s+` + sym + amountPattern + `$`),
		unit:       regexp.MustCompile(`^(.+)\s+` + sym + amountPattern + `$`),
		subtotal:   regexp.MustCompile(`(?i)sub\s*total[:\s]*(?:` + sym + `)?` + amountPattern),
		service:    regexp.MustCompile(`(?i)(?:service|tip|gratuity).*?` + sym + amountPattern),
		totalSym:   regexp.MustCompile(`(?i)^total\b.*?` + sym + amountPattern),
		totalBare:  regexp.MustCompile(`(?i)^total\b[^\d]*?` + amountPattern),
	}
}

// Symbol returns the currency symbol the parser recognises.
func (p *Parser) Symbol() string {
	return p.symbol
}

// Parse extracts items, subtotal, service charge and total from OCR text.
func (p *Parser) Parse(text string) models.ParsedReceipt {
	var (
		quantified []models.LineItem
		unit       []models.LineItem
		subtotal   *float64
		service    *float64
		total      *float64
	)

	for _, raw := range strings.Split(p.Normalize(text), "\n") {
		l := p.classify(raw)

		switch l.kind {
		case lineQuantifiedItem:
			quantified = append(quantified, l.item())
		case lineUnitItem:
			unit = append(unit, l.item())
		}

		if subtotal == nil && l.subtotal != nil {
			subtotal = l.subtotal
		}
		if service == nil && l.service != nil {
			service = l.service
		}
		if total == nil && l.total != nil {
			total = l.total
		}
	}

	items := append(quantified, unit...)
	if items == nil {
		items = []models.LineItem{}
	}

	receipt := models.ParsedReceipt{
		Items:         items,
		ServiceCharge: service,
		Total:         total,
	}
	if subtotal != nil {
		receipt.Subtotal = *subtotal
	} else {
		prices := make([]float64, len(items))
		for i, item := range items {
			prices[i] = item.Price
		}
		receipt.Subtotal = money.Sum(prices...)
	}
	return receipt
}

func (l line) item() models.LineItem {
	return models.LineItem{
		ID:       uuid.NewString(),
		Quantity: float64(l.quantity),
		Name:     l.name,
		Price:    l.amount,
	}
}

func parseAmount(s string) (float64, bool) {
	return money.Parse(s)
}
