package models

import "time"

type Category struct {
	ID        int64     `json:"id,string"`
	UserID    int64     `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

type Task struct {
	ID            int64      `json:"id,string"`
	UserID        int64      `json:"-"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Deadline      *time.Time `json:"deadline"`
	IsCompleted   bool       `json:"is_completed"`
	IsNotified    bool       `json:"-"`
	IsPreNotified bool       `json:"-"`
	CategoryID    *int64     `json:"category_id,string,omitempty"`
	CategoryName  string     `json:"category_name,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type NewTask struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Deadline     *time.Time `json:"deadline"`
	CategoryID   *int64     `json:"category_id,string"`
	CategoryName string     `json:"category_name"`
}

// TaskUpdate is a partial update; nil fields are left alone.
type TaskUpdate struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	IsCompleted *bool      `json:"is_completed"`
	CategoryID  *int64     `json:"category_id,string"`
}
