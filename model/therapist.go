package model

import "gorm.io/gorm"

// Therapist represents a therapist entity
// @Description Therapist profile, linked 1:1 to a therapist user account
type Therapist struct {
	gorm.Model
	UserID   *uint  `json:"user_id" gorm:"column:user_id;uniqueIndex" example:"2"`
	Username string `json:"username" gorm:"column:username;size:191;uniqueIndex;not null" example:"t1"`
	FullName string `json:"full_name" gorm:"column:full_name" example:"Dr. Jane Smith"`
}
