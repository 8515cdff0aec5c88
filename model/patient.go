package model

import "gorm.io/gorm"

// Patient represents a patient entity. Patients created by an admin have no
// login account; UserID is only set for self-registered patients.
type Patient struct {
	gorm.Model
	UserID      *uint  `json:"user_id,omitempty" gorm:"column:user_id;uniqueIndex"`
	Name        string `json:"name" gorm:"column:name;not null" example:"Alex"`
	DateOfBirth string `json:"dob" gorm:"column:dob;size:10" example:"2015-01-01"`
	Gender      string `json:"gender" gorm:"column:gender;size:32" example:"female"`
}
