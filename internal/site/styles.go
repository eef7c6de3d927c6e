package site

import "github.com/starford/sitewright/internal/models"

// MergeStyles shallow-merges src into dst and returns the result. Later keys
// win and a nil value removes the key. dst may be nil.
func MergeStyles(dst, src models.Styles) models.Styles {
	if dst == nil {
		dst = make(models.Styles, len(src))
	}
	for k, v := range src {
		if v == nil {
			delete(dst, k)
			continue
		}
		dst[k] = v
	}
	return dst
}
