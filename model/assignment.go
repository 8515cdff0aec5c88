package model

import "time"

// TherapistPatient grants a therapist the capability to act on a patient.
type TherapistPatient struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	TherapistID uint      `json:"therapist_id" gorm:"column:therapist_id;not null;uniqueIndex:idx_therapist_patient"`
	PatientID   uint      `json:"patient_id" gorm:"column:patient_id;not null;uniqueIndex:idx_therapist_patient;index"`
	CreatedAt   time.Time `json:"created_at"`
}

func (TherapistPatient) TableName() string { return "therapist_patient" }

// PatientGoal marks a goal as currently prescribed to a patient.
type PatientGoal struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	PatientID  uint      `json:"patient_id" gorm:"column:patient_id;not null;uniqueIndex:idx_patient_goal"`
	GoalID     uint      `json:"goal_id" gorm:"column:goal_id;not null;uniqueIndex:idx_patient_goal;index"`
	AssignedBy uint      `json:"assigned_by" gorm:"column:assigned_by;not null"`
	CreatedAt  time.Time `json:"created_at"`
}

func (PatientGoal) TableName() string { return "patient_goals" }
