package models

import "time"

// Document describes an uploaded PDF. The bytes live in object storage
// under StorageKey; only metadata is kept in the database. The JSON names
// are the ones the web dashboard reads.
type Document struct {
	ID         string    `json:"_id"`
	OwnerID    string    `json:"owner"`
	FileName   string    `json:"originalName"`
	SizeBytes  int64     `json:"size"`
	StorageKey string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}
