package models

import "strings"

// Person represents one diner in a splitting session.
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string

	// Name is the display name. Names are unique within a session,
	// compared case-insensitively.
	Name string
}

// SameName reports whether name matches the person's name ignoring case and
// surrounding whitespace.
func (p Person) SameName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(p.Name), strings.TrimSpace(name))
}

// Assignments maps an item ID to the set of person IDs sharing that item.
// An item absent from the map (or mapped to an empty set) is unassigned.
type Assignments map[string]map[string]struct{}

// Set replaces the people sharing itemID. Passing no person IDs unassigns
// the item. Duplicate IDs collapse into one entry.
func (a Assignments) Set(itemID string, personIDs ...string) {
	if len(personIDs) == 0 {
		delete(a, itemID)
		return
	}
	set := make(map[string]struct{}, len(personIDs))
	for _, id := range personIDs {
		set[id] = struct{}{}
	}
	a[itemID] = set
}

// Has reports whether personID shares itemID.
func (a Assignments) Has(itemID, personID string) bool {
	_, ok := a[itemID][personID]
	return ok
}

// ShareCount returns how many people share itemID.
func (a Assignments) ShareCount(itemID string) int {
	return len(a[itemID])
}

// PersonIDs returns the people sharing itemID in no particular order.
func (a Assignments) PersonIDs(itemID string) []string {
	ids := make([]string, 0, len(a[itemID]))
	for id := range a[itemID] {
		ids = append(ids, id)
	}
	return ids
}

// RemovePerson drops personID from every item. Items left with nobody
// become unassigned.
func (a Assignments) RemovePerson(personID string) {
	for itemID, set := range a {
		delete(set, personID)
		if len(set) == 0 {
			delete(a, itemID)
		}
	}
}

// Clone returns a deep copy.
func (a Assignments) Clone() Assignments {
	out := make(Assignments, len(a))
	for itemID, set := range a {
		cp := make(map[string]struct{}, len(set))
		for id := range set {
			cp[id] = struct{}{}
		}
		out[itemID] = cp
	}
	return out
}
