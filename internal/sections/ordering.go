package sections

import (
	"sort"
	"strings"
)

// sortSections orders by slot, then position, then creation time. Sections
// without a slot come first.
func sortSections(list []*Section) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if slotA, slotB := a.SlotName(), b.SlotName(); slotA != slotB {
			return slotA < slotB
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return strings.Compare(a.ID.String(), b.ID.String()) < 0
	})
}
