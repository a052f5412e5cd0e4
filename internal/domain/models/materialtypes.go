// internal/domain/models/materialtypes.go
package models

// Canonical material type identifiers.
//
// These values are stored in the database and exchanged with clients as
// stable keys. A material's type is fixed at creation.
const (
	MaterialTypeNote = "note"
	MaterialTypePDF  = "pdf"
	MaterialTypeLink = "link"
)

// MaterialTypes is the full set of allowed material type identifiers.
var MaterialTypes = []string{
	MaterialTypeNote,
	MaterialTypePDF,
	MaterialTypeLink,
}

// IsValidMaterialType reports whether t is one of MaterialTypes.
func IsValidMaterialType(t string) bool {
	for _, v := range MaterialTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Priority identifiers shared by materials and events.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Priorities lists the priorities from most to least urgent.
var Priorities = []string{PriorityHigh, PriorityMedium, PriorityLow}

// PriorityRank maps a priority to a sortable rank (high=3, medium=2, low=1).
// Unknown values rank 0 so they sort after every valid priority.
func PriorityRank(p string) int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// IsValidPriority reports whether p is one of Priorities.
func IsValidPriority(p string) bool {
	return PriorityRank(p) > 0
}
