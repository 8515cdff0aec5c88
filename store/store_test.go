package store

import (
	"testing"

	"github.com/ariebrainware/aba-tracker/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixture is a therapist assigned to one patient, plus an unassigned patient.
type fixture struct {
	db          *gorm.DB
	therapistID uint
	patientID   uint
	otherID     uint
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := model.OpenTestDB(t)

	acc, err := CreateTherapist(db, TherapistInput{Username: "t1", Password: "secret1", FullName: "Therapist One"})
	require.NoError(t, err)
	patient, err := CreatePatient(db, PatientInput{Name: "Alex", DateOfBirth: "2015-01-01"})
	require.NoError(t, err)
	other, err := CreatePatient(db, PatientInput{Name: "Sam", DateOfBirth: "2016-02-02"})
	require.NoError(t, err)
	_, err = AssignTherapist(db, acc.ProfileID, patient.ID)
	require.NoError(t, err)

	return fixture{db: db, therapistID: acc.ProfileID, patientID: patient.ID, otherID: other.ID}
}

func colorsInput() GoalInput {
	return GoalInput{
		Name: "Colors",
		Images: []ImageInput{
			{URL: "a.png", Label: "red", IsCorrect: true},
			{URL: "b.png", Label: "blue"},
		},
	}
}

func (f fixture) createGoal(t *testing.T, in GoalInput) model.Goal {
	t.Helper()
	out, err := CreateGoal(f.db, f.therapistID, in)
	require.NoError(t, err)
	return out.Goal
}

func (f fixture) secondTherapist(t *testing.T) uint {
	t.Helper()
	acc, err := CreateTherapist(f.db, TherapistInput{Username: "t2", Password: "secret2"})
	require.NoError(t, err)
	return acc.ProfileID
}
