package model

// Category groups cards on the catalog page. Cards reference it as an
// optional foreign lookup.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
