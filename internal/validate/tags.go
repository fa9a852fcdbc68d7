// tags.go implements tag field validation and normalization.
//
// The space check is deliberately coarse: it rejects a literal space
// anywhere in the raw field, including after a separating comma, rather
// than tokenizing first. That is the documented contract of the form.
package validate

import (
	"fmt"
	"strings"
)

// TagString rejects a tag-list field containing a literal space anywhere.
func TagString(s string) error {
	if strings.Contains(s, " ") {
		return fmt.Errorf("%w: tags must not contain spaces", ErrInvalidTagFormat)
	}
	return nil
}

// NormalizeTags turns the raw comma-separated field into an ordered list
// of tag names: lowercased, surrounding whitespace trimmed, empty pieces
// dropped, order of first appearance preserved. Duplicates are kept; the
// repository's lookup-or-create makes repeated names converge on one
// record anyway.
func NormalizeTags(s string) []string {
	parts := strings.Split(strings.ToLower(s), ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
