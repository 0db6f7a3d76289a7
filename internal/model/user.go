package model

import "time"

// User is a local profile synced from the identity provider. The primary key
// is the provider-issued subject identifier, not a generated value.
type User struct {
	ID        string    `json:"id" gorm:"type:text;primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name      string    `json:"name" gorm:"size:255"`
	ImageURL  string    `json:"imageUrl" gorm:"column:image_url"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
