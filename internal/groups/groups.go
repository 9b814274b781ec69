// Package groups models who a reservation covers: guest categories and the
// multisets of them that ticket types accept.
package groups

import (
	"errors"
	"fmt"
	"strings"
)

// Guest is one admitted person's category
type Guest string

const (
	GuestAdult   Guest = "adult"
	GuestChild   Guest = "child"
	GuestParent  Guest = "parent"
	GuestStudent Guest = "student"
	GuestStaff   Guest = "staff"
)

// ErrUnknownGuest is returned when a raw guest entry is not a known category
var ErrUnknownGuest = errors.New("unknown guest category")

// IsValid checks if the guest category is known
func (g Guest) IsValid() bool {
	switch g {
	case GuestAdult, GuestChild, GuestParent, GuestStudent, GuestStaff:
		return true
	}
	return false
}

// String returns the string representation of the guest
func (g Guest) String() string {
	return string(g)
}

// AllGuests returns every known guest category
func AllGuests() []Guest {
	return []Guest{GuestAdult, GuestChild, GuestParent, GuestStudent, GuestStaff}
}

// Group is a multiset of guests. Order carries no meaning.
type Group []Guest

// Headcount is the number of people in the group
func (g Group) Headcount() int {
	return len(g)
}

// Counts returns the number of guests per category
func (g Group) Counts() map[Guest]int {
	counts := make(map[Guest]int, len(g))
	for _, guest := range g {
		counts[guest]++
	}
	return counts
}

// String renders the group as a comma separated list
func (g Group) String() string {
	parts := make([]string, len(g))
	for i, guest := range g {
		parts[i] = string(guest)
	}
	return strings.Join(parts, ",")
}

// SameGroup reports whether a and b hold identical per-category counts
func SameGroup(a, b Group) bool {
	if len(a) != len(b) {
		return false
	}
	ca, cb := a.Counts(), b.Counts()
	if len(ca) != len(cb) {
		return false
	}
	for guest, n := range ca {
		if cb[guest] != n {
			return false
		}
	}
	return true
}

// ContainsGroup reports whether any candidate matches g by SameGroup
func ContainsGroup(candidates []Group, g Group) bool {
	for _, candidate := range candidates {
		if SameGroup(candidate, g) {
			return true
		}
	}
	return false
}

// ParseGroup decodes raw guest names. A single unknown entry fails the whole group.
func ParseGroup(raw []string) (Group, error) {
	group := make(Group, 0, len(raw))
	for i, entry := range raw {
		guest := Guest(strings.ToLower(strings.TrimSpace(entry)))
		if !guest.IsValid() {
			return nil, fmt.Errorf("guest %d %q: %w", i, entry, ErrUnknownGuest)
		}
		group = append(group, guest)
	}
	return group, nil
}
