package model

import "time"

type Review struct {
	ID         int64     `json:"id"`
	BookID     int64     `json:"book_id"`
	MemberID   int64     `json:"member_id"`
	MemberName string    `json:"member_name,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Bookmark struct {
	ID           int64     `json:"id"`
	MemberID     int64     `json:"member_id"`
	BookID       int64     `json:"book_id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	BookmarkedAt time.Time `json:"bookmarked_at"`
}

type Announcement struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type,omitempty"`
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether now falls inside the announcement window.
func (a Announcement) Active(now time.Time) bool {
	return !now.Before(a.StartAt) && !now.After(a.EndAt)
}
