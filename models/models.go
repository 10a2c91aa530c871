package models

import "time"

const DefaultTag = "General"

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserSummary is the user shape returned by the auth endpoints.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

type Note struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tag         string    `json:"tag"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotePatch carries a partial update. Nil fields are left untouched.
type NotePatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Tag         *string `json:"tag"`
}

// Apply copies every non-empty field of p onto n and reports whether n changed.
func (p NotePatch) Apply(n *Note) bool {
	changed := false
	if p.Title != nil && *p.Title != "" && *p.Title != n.Title {
		n.Title = *p.Title
		changed = true
	}
	if p.Description != nil && *p.Description != "" && *p.Description != n.Description {
		n.Description = *p.Description
		changed = true
	}
	if p.Tag != nil && *p.Tag != "" && *p.Tag != n.Tag {
		n.Tag = *p.Tag
		changed = true
	}
	return changed
}
