// Package model defines the data structures used throughout the application.
package model

import "time"

// Card is the primary content entity: a question/answer pair shown on the
// catalog and detail pages. The answer may contain fenced code blocks and
// is rendered as markdown.
//
// ID is generated by the repository on insert and never changes afterwards.
// Tag associations can only be attached once the card has an ID.
//
// Views and Adds are display counters. The increment is a plain
// read-increment-write in SQL with no locking; concurrent increments on
// the same card may lose updates, which is acceptable for counters that
// only drive catalog sorting and display.
type Card struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	CategoryID string    `json:"categoryId,omitempty"` // empty = no category
	Category   *Category `json:"category,omitempty"`   // loaded on detail/catalog reads
	Tags       []Tag     `json:"tags,omitempty"`
	Views      int64     `json:"views"`
	Adds       int64     `json:"adds"`
	UploadDate time.Time `json:"uploadDate"`
}
