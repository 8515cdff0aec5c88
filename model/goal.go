package model

import "time"

// Goal is a discrimination exercise owned by the therapist that created it.
type Goal struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	Name        string      `json:"name" gorm:"column:name;not null" example:"Colors"`
	Description string      `json:"description" gorm:"column:description"`
	CreatedBy   uint        `json:"created_by" gorm:"column:created_by;not null;index"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Images      []GoalImage `json:"images,omitempty" gorm:"foreignKey:GoalID"`
}

// GoalImage is one labelled choice of a goal. Exactly one image per goal has
// IsCorrect set.
type GoalImage struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	GoalID    uint   `json:"goal_id" gorm:"column:goal_id;not null;index"`
	ImageURL  string `json:"image_url" gorm:"column:image_url;not null" example:"/uploads/a.png"`
	Label     string `json:"label" gorm:"column:label" example:"red"`
	IsCorrect bool   `json:"is_correct" gorm:"column:is_correct;not null;default:false"`
}
