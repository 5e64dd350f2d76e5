package models

import "time"

type MediaFile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Folder      string    `json:"folder"`
	StoredPath  string    `json:"-"`
	URL         string    `json:"url"`
	ContentType string    `json:"type"`
	Size        int64     `json:"size"`
	UploadedBy  string    `json:"uploadedBy"`
	UploadedAt  time.Time `json:"uploadedAt"`
}
