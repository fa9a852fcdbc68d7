package model

// Tag is a free-text label attached to cards in a many-to-many
// relationship. Names are unique and stored lowercase; the repository
// enforces uniqueness with lookup-or-create semantics, so a tag with a
// given name is created at most once and repeated references reuse the
// existing record.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
