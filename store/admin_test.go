package store

import (
	"testing"

	"github.com/ariebrainware/aba-tracker/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePatient_RequiresName(t *testing.T) {
	db := model.OpenTestDB(t)

	_, err := CreatePatient(db, PatientInput{Name: "   "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAssignTherapist(t *testing.T) {
	f := newFixture(t)

	_, err := AssignTherapist(f.db, f.therapistID, f.patientID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = AssignTherapist(f.db, f.therapistID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = AssignTherapist(f.db, 999, f.patientID)
	assert.ErrorIs(t, err, ErrNotFound)

	edge, err := AssignTherapist(f.db, f.therapistID, f.otherID)
	require.NoError(t, err)
	assert.Equal(t, f.otherID, edge.PatientID)

	patients, err := ListAssignedPatients(f.db, f.therapistID)
	require.NoError(t, err)
	assert.Len(t, patients, 2)
}

func TestUnassignTherapist(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, UnassignTherapist(f.db, f.therapistID, f.patientID))
	assert.ErrorIs(t, EnsureAssigned(f.db, f.therapistID, f.patientID), ErrForbidden)

	// Absent edge is a no-op.
	assert.NoError(t, UnassignTherapist(f.db, f.therapistID, f.patientID))
}

func TestListTherapistsAndPatients(t *testing.T) {
	f := newFixture(t)

	therapists, err := ListTherapists(f.db)
	require.NoError(t, err)
	require.Len(t, therapists, 1)
	assert.Equal(t, "t1", therapists[0].Username)

	patients, err := ListPatients(f.db)
	require.NoError(t, err)
	assert.Len(t, patients, 2)
}
