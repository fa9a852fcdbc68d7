// Package validate provides pure input validators for card submissions.
//
// Each function takes raw user input and returns nil on success or an
// error wrapping one of the sentinels in errors.go. Nothing here touches
// the database or HTTP; the service layer maps these errors onto form
// fields.
package validate

import (
	"fmt"
	"strings"
)

// Fence is the three-character delimiter marking the start and end of an
// embedded code block.
const Fence = "```"

// CodeBlocks verifies that every fenced code block in text is well formed.
//
// Text without any fence marker passes trivially. Otherwise the text is
// scanned for non-overlapping blocks: each starts at a fence marker and
// ends at the next marker occurrence with at least one character in
// between (the fewest-character span). If the text contains a marker but
// no closed block at all, the result is ErrMalformedFence.
//
// Each block is then checked in a fixed order, failing fast, so the first
// violated rule determines the reported error:
//
//  1. opening and closing markers are distinct (ErrMalformedFence)
//  2. no space immediately before the opening marker (ErrFenceSpacing)
//  3. no space immediately after the opening marker (ErrFenceSpacing)
//  4. a language tag of at least two characters terminated by a line
//     break (ErrMissingLanguageTag)
//  5. a blank line between the language tag and the code content
//     (ErrFenceSpacing)
//  6. no space immediately before the closing marker (ErrFenceSpacing)
//
// A block whose opening marker is the first character of the text has no
// preceding character; that is treated as "not a space" rather than read
// out of bounds. Rule 2 is checked against the surrounding text, not the
// extracted block, so a space directly before an opening fence is caught.
func CodeBlocks(text string) error {
	if !strings.Contains(text, Fence) {
		return nil
	}

	found := false
	for i := 0; ; {
		rel := strings.Index(text[i:], Fence)
		if rel == -1 {
			break
		}
		open := i + rel

		// Closing marker must leave at least one character in between.
		rest := open + len(Fence) + 1
		if rest > len(text) {
			break
		}
		rel = strings.Index(text[rest:], Fence)
		if rel == -1 {
			break
		}
		closing := rest + rel

		found = true
		if err := codeBlock(text, open, closing); err != nil {
			return err
		}
		i = closing + len(Fence)
	}

	if !found {
		return fmt.Errorf("%w: no closing %s pair", ErrMalformedFence, Fence)
	}
	return nil
}

// codeBlock applies the per-block rules to text[open : closing+3], where
// open and close are the indexes of the opening and closing fence markers
// in the full input.
func codeBlock(text string, open, closing int) error {
	if open == closing {
		return fmt.Errorf("%w: no closing %s pair", ErrMalformedFence, Fence)
	}

	// open == 0 means no preceding character, which is fine.
	if open > 0 && text[open-1] == ' ' {
		return fmt.Errorf("%w: remove the space before the opening %s", ErrFenceSpacing, Fence)
	}

	contentStart := open + len(Fence)
	if text[contentStart] == ' ' {
		return fmt.Errorf("%w: remove the space after the opening %s", ErrFenceSpacing, Fence)
	}

	// The language tag runs from the opening marker to the first line break.
	langEnd := strings.IndexByte(text[contentStart:closing+len(Fence)], '\n')
	if langEnd == -1 || langEnd < 2 {
		return fmt.Errorf("%w: add a language name after the opening %s", ErrMissingLanguageTag, Fence)
	}
	langEnd += contentStart

	// The language tag must sit on its own line with a blank line before
	// the code content.
	if text[langEnd+1] != '\n' {
		return fmt.Errorf("%w: add a line break after the language name", ErrFenceSpacing)
	}

	if text[closing-1] == ' ' {
		return fmt.Errorf("%w: remove the space before the closing %s", ErrFenceSpacing, Fence)
	}

	return nil
}
