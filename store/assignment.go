package store

import (
	"fmt"

	"github.com/ariebrainware/aba-tracker/model"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GoalSummary is a goal reference without its images.
type GoalSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// PatientProfile is a patient together with the goals currently assigned to it.
type PatientProfile struct {
	Patient model.Patient `json:"patient"`
	Goals   []GoalSummary `json:"goals"`
}

// EnsureAssigned fails with ErrForbidden unless therapistID may act on patientID.
func EnsureAssigned(db *gorm.DB, therapistID, patientID uint) error {
	var count int64
	err := db.Model(&model.TherapistPatient{}).
		Where("therapist_id = ? AND patient_id = ?", therapistID, patientID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: patient %d is not assigned to you", ErrForbidden, patientID)
	}
	return nil
}

// ListAssignedPatients returns the patients linked to therapistID.
func ListAssignedPatients(db *gorm.DB, therapistID uint) ([]model.Patient, error) {
	var patients []model.Patient
	err := db.Joins("JOIN therapist_patient tp ON tp.patient_id = patients.id").
		Where("tp.therapist_id = ?", therapistID).
		Order("patients.id").
		Find(&patients).Error
	return patients, err
}

// GetPatientProfile returns the patient and its assigned goal names.
func GetPatientProfile(db *gorm.DB, therapistID, patientID uint) (PatientProfile, error) {
	if err := EnsureAssigned(db, therapistID, patientID); err != nil {
		return PatientProfile{}, err
	}

	var profile PatientProfile
	if err := db.First(&profile.Patient, patientID).Error; err != nil {
		return PatientProfile{}, notFoundOr(err, "patient")
	}

	profile.Goals = []GoalSummary{}
	err := db.Model(&model.Goal{}).
		Select("goals.id, goals.name").
		Joins("JOIN patient_goals pg ON pg.goal_id = goals.id").
		Where("pg.patient_id = ?", patientID).
		Order("pg.id").
		Scan(&profile.Goals).Error
	if err != nil {
		return PatientProfile{}, err
	}
	return profile, nil
}

// AssignGoal prescribes goalID to patientID. Only the goal's owner may assign
// it. Assigning twice is a no-op. imageIDs, when given, must all belong to the goal.
func AssignGoal(db *gorm.DB, therapistID, patientID, goalID uint, imageIDs []uint) error {
	if err := EnsureAssigned(db, therapistID, patientID); err != nil {
		return err
	}

	if _, err := loadOwnedGoal(db, therapistID, goalID); err != nil {
		return err
	}

	if len(imageIDs) > 0 {
		var count int64
		if err := db.Model(&model.GoalImage{}).
			Where("goal_id = ? AND id IN ?", goalID, imageIDs).
			Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(lo.Uniq(imageIDs)) {
			return validationError("image_ids must belong to goal %d", goalID)
		}
	}

	edge := model.PatientGoal{PatientID: patientID, GoalID: goalID, AssignedBy: therapistID}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error
}

// UnassignGoal removes the goal from the patient if it was assigned.
func UnassignGoal(db *gorm.DB, therapistID, patientID, goalID uint) error {
	if err := EnsureAssigned(db, therapistID, patientID); err != nil {
		return err
	}
	return db.Where("patient_id = ? AND goal_id = ?", patientID, goalID).
		Delete(&model.PatientGoal{}).Error
}
