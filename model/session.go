package model

import (
	"time"

	"gorm.io/datatypes"
)

// Session is one therapy run for a patient. Sessions are append-only; only the
// note may change after creation.
type Session struct {
	ID          uint                      `json:"id" gorm:"primaryKey"`
	PatientID   uint                      `json:"patient_id" gorm:"column:patient_id;not null;index"`
	TherapistID uint                      `json:"therapist_id" gorm:"column:therapist_id;not null;index"`
	GoalIDs     datatypes.JSONSlice[uint] `json:"goal_ids" gorm:"column:goal_ids"`
	Note        string                    `json:"note" gorm:"column:note;type:text"`
	Completed   bool                      `json:"completed" gorm:"column:completed;not null;default:false"`
	CreatedAt   time.Time                 `json:"created_at"`
	Results     []SessionResult           `json:"results,omitempty" gorm:"foreignKey:SessionID"`
}

// SessionResult is the outcome of one goal attempted in a session. GoalName is
// a snapshot so history survives goal deletion.
type SessionResult struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SessionID uint      `json:"session_id" gorm:"column:session_id;not null;uniqueIndex:idx_session_goal"`
	GoalID    uint      `json:"goal_id" gorm:"column:goal_id;not null;uniqueIndex:idx_session_goal"`
	GoalName  string    `json:"goal_name" gorm:"column:goal_name"`
	Outcome   bool      `json:"outcome" gorm:"column:outcome;not null"`
	CreatedAt time.Time `json:"created_at"`
}
