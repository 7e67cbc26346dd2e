// Package models defines the core domain models for tabsplit.
//
// # Models
//
//   - LineItem: one line on a receipt (quantity, name, line total)
//   - ParsedReceipt: what the parser could extract from OCR text
//   - Person: a diner taking part in the split
//   - Assignments: which people share which item
//   - AssignedItem, PersonBill: calculated split result for one person
//   - Session: the state of one splitting session
//
// # Design Principles
//
// 1. Prices are line totals, never unit prices. A "2 Burger £12.00" line is
// one item with Quantity 2 and Price 12.00.
// 2. Relationships use ID strings instead of pointers.
// 3. Derived values (PersonBill) are always rebuilt from their inputs and
// never edited in place.
package models
