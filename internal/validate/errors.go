// errors.go defines sentinel errors for validation failures.
//
// Sentinel errors (not error types) because these failures carry no
// context beyond their category; detailed messages are added by wrapping
// with fmt.Errorf in the validation functions. Check with errors.Is().
package validate

import "errors"

var (
	// ErrMalformedFence reports a structural fence mismatch: an opening
	// code fence with no matching closing fence.
	ErrMalformedFence = errors.New("malformed code fence")

	// ErrFenceSpacing reports whitespace adjacent to a fence marker, or a
	// missing blank line between the language tag and the code content.
	ErrFenceSpacing = errors.New("code fence spacing")

	// ErrMissingLanguageTag reports a code block whose opening fence is not
	// followed by a language identifier of at least two characters.
	ErrMissingLanguageTag = errors.New("missing language tag")

	// ErrInvalidTagFormat reports a space character in the tag list field.
	ErrInvalidTagFormat = errors.New("invalid tag format")
)
