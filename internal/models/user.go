package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID              uint64         `gorm:"primarykey" json:"id"`
	Username        string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email           string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	DisplayName     string         `gorm:"type:varchar(100)" json:"display_name"`
	ProfileImageURL string         `gorm:"type:varchar(500)" json:"profile_image_url"`
	Bio             string         `gorm:"type:text" json:"bio"`
	PasswordHash    string         `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	CheckIns    []CheckIn       `gorm:"foreignKey:UserID" json:"-"`
	Memberships []ProjectMember `gorm:"foreignKey:UserID" json:"-"`
}
