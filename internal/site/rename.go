package site

import "strings"

// RenameSectionPrefix rewrites an ID owned by section oldID so that it is owned
// by newID. Ownership is encoded as the "<sectionID>-" prefix; an ID equal to
// oldID maps to newID and IDs without the prefix are returned unchanged.
//
// This is the only place that knows about the prefix convention.
func RenameSectionPrefix(id, oldID, newID string) string {
	if id == oldID {
		return newID
	}
	prefix := oldID + "-"
	if strings.HasPrefix(id, prefix) {
		return newID + "-" + strings.TrimPrefix(id, prefix)
	}
	return id
}

// OwnedBy reports whether id carries sectionID's ownership prefix.
func OwnedBy(id, sectionID string) bool {
	return id == sectionID || strings.HasPrefix(id, sectionID+"-")
}
