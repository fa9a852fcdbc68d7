package model

import "time"

// User is an admin account. Card creation is admin-only; admins sign in
// either with the local admin password or via GitHub OAuth, in which case
// their GitHub identity is stored here.
//
// GitHubID is GitHub's numeric user ID (int64 to be safe for large account
// numbers); the UNIQUE constraint on github_id maps one GitHub account to
// exactly one row. The internal string ID (xid) keeps primary keys
// independent of GitHub's numbering. Email may be empty if the user hides
// it on GitHub — an empty string, not a nullable pointer.
type User struct {
	ID        string    `json:"id"`
	GitHubID  int64     `json:"githubId"`
	Login     string    `json:"login"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
