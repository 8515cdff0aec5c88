package model

import "gorm.io/gorm"

// User is a credential record. Password holds an encoded argon2id hash and is
// never serialized.
type User struct {
	gorm.Model
	Username string `json:"username" gorm:"column:username;size:191;uniqueIndex;not null" example:"t1"`
	Password string `json:"-" gorm:"column:password;not null"`
	Role     string `json:"role" gorm:"column:role;type:varchar(16);index;not null" example:"therapist"`
}
