// Package models holds the client-side view of API payloads.
package models

import (
	"fmt"
	"time"
)

// User is the public profile returned by the API.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u User) String() string {
	return fmt.Sprintf("%s <%s> (%s)", u.Name, u.Email, u.Role)
}

// Document is an uploaded PDF as listed by the API.
type Document struct {
	ID        string    `json:"_id"`
	OwnerID   string    `json:"owner"`
	FileName  string    `json:"originalName"`
	SizeBytes int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

func (d Document) String() string {
	return fmt.Sprintf("%s  %-40s %8d B  %s", d.ID, d.FileName, d.SizeBytes, d.CreatedAt.Local().Format("2006-01-02 15:04"))
}
