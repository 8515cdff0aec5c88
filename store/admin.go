package store

import (
	"fmt"

	"github.com/ariebrainware/aba-tracker/model"
	"github.com/ariebrainware/aba-tracker/util"
	"gorm.io/gorm"
)

// TherapistInput is the admin payload for a new therapist account.
type TherapistInput struct {
	Username string
	Password string
	FullName string
}

// PatientInput is the admin payload for a new patient profile.
type PatientInput struct {
	Name        string
	DateOfBirth string
	Gender      string
}

// CreateTherapist creates a therapist login and profile.
func CreateTherapist(db *gorm.DB, in TherapistInput) (Account, error) {
	return CreateAccount(db, AccountInput{
		Username: in.Username,
		Password: in.Password,
		Role:     model.RoleTherapist,
		Name:     in.FullName,
	})
}

// CreatePatient inserts a patient profile without a login account.
func CreatePatient(db *gorm.DB, in PatientInput) (model.Patient, error) {
	patient := model.Patient{Name: util.NormalizeName(in.Name), DateOfBirth: in.DateOfBirth, Gender: in.Gender}
	if patient.Name == "" {
		return model.Patient{}, validationError("name is required")
	}
	if err := db.Create(&patient).Error; err != nil {
		return model.Patient{}, err
	}
	return patient, nil
}

// AssignTherapist links a therapist to a patient. An existing link is a conflict.
func AssignTherapist(db *gorm.DB, therapistID, patientID uint) (model.TherapistPatient, error) {
	var edge model.TherapistPatient
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").Take(&model.Therapist{}, therapistID).Error; err != nil {
			return notFoundOr(err, "therapist")
		}
		if err := tx.Select("id").Take(&model.Patient{}, patientID).Error; err != nil {
			return notFoundOr(err, "patient")
		}

		var count int64
		if err := tx.Model(&model.TherapistPatient{}).
			Where("therapist_id = ? AND patient_id = ?", therapistID, patientID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: therapist %d is already assigned to patient %d", ErrConflict, therapistID, patientID)
		}

		edge = model.TherapistPatient{TherapistID: therapistID, PatientID: patientID}
		return conflictOr(tx.Create(&edge).Error, "assignment exists")
	})
	return edge, err
}

// UnassignTherapist removes the link if present.
func UnassignTherapist(db *gorm.DB, therapistID, patientID uint) error {
	return db.Where("therapist_id = ? AND patient_id = ?", therapistID, patientID).
		Delete(&model.TherapistPatient{}).Error
}

// ListTherapists returns every therapist profile.
func ListTherapists(db *gorm.DB) ([]model.Therapist, error) {
	var therapists []model.Therapist
	err := db.Order("id").Find(&therapists).Error
	return therapists, err
}

// ListPatients returns every patient.
func ListPatients(db *gorm.DB) ([]model.Patient, error) {
	var patients []model.Patient
	err := db.Order("id").Find(&patients).Error
	return patients, err
}
