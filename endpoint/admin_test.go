package endpoint_test

import (
	"net/http"
	"testing"

	"github.com/ariebrainware/aba-tracker/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminCreateTherapist(t *testing.T) {
	s := SetupTestServer(t)

	resp := s.mustCall(t, http.StatusCreated, http.MethodPost, "/api/admin/create-therapist", s.adminToken, map[string]string{
		"username":  "t2",
		"password":  "pw2",
		"full_name": "Jane  Smith",
	})
	var data struct {
		User        model.User `json:"user"`
		TherapistID uint       `json:"therapist_id"`
	}
	decodeData(t, resp, &data)
	assert.Equal(t, model.RoleTherapist, data.User.Role)
	assert.NotZero(t, data.TherapistID)

	// the new therapist can log in
	s.login(t, "t2", "pw2")

	rr, _ := s.call(t, http.MethodPost, "/api/admin/create-therapist", s.adminToken, map[string]string{
		"username": "t2",
		"password": "other",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	listResp := s.mustCall(t, http.StatusOK, http.MethodGet, "/api/admin/therapists", s.adminToken, nil)
	var list struct {
		Therapists []model.Therapist `json:"therapists"`
	}
	decodeData(t, listResp, &list)
	require.Len(t, list.Therapists, 1)
	assert.Equal(t, "t2", list.Therapists[0].Username)
}

func TestAdminCreatePatient(t *testing.T) {
	s := SetupTestServer(t)

	id := s.createPatient(t, "Alex", "2015-01-01")
	assert.NotZero(t, id)

	rr, _ := s.call(t, http.MethodPost, "/api/admin/create-patient", s.adminToken, map[string]string{"name": "Sam", "dob": "01/02/2015"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = s.call(t, http.MethodPost, "/api/admin/create-patient", s.adminToken, map[string]string{"dob": "2015-01-01"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	resp := s.mustCall(t, http.StatusOK, http.MethodGet, "/api/admin/patients", s.adminToken, nil)
	var list struct {
		Patients []model.Patient `json:"patients"`
	}
	decodeData(t, resp, &list)
	require.Len(t, list.Patients, 1)
	assert.Equal(t, "Alex", list.Patients[0].Name)
	assert.Equal(t, "2015-01-01", list.Patients[0].DateOfBirth)
}

func TestAdminAssignTherapist(t *testing.T) {
	s := SetupTestServer(t)
	s.registerTherapist(t, "t1", "pw1")
	therapistID := s.therapistID(t, "t1")
	patientID := s.createPatient(t, "Alex", "2015-01-01")

	body := map[string]uint{"therapist_id": therapistID, "patient_id": patientID}
	s.mustCall(t, http.StatusCreated, http.MethodPost, "/api/admin/assign-therapist", s.adminToken, body)

	rr, _ := s.call(t, http.MethodPost, "/api/admin/assign-therapist", s.adminToken, body)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr, _ = s.call(t, http.MethodPost, "/api/admin/assign-therapist", s.adminToken, map[string]uint{"therapist_id": therapistID, "patient_id": 999})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, _ = s.call(t, http.MethodPost, "/api/admin/assign-therapist", s.adminToken, map[string]uint{"therapist_id": 999, "patient_id": patientID})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	s.mustCall(t, http.StatusOK, http.MethodDelete, "/api/admin/unassign-therapist", s.adminToken, body)
	// removing a missing link is a no-op
	s.mustCall(t, http.StatusOK, http.MethodDelete, "/api/admin/unassign-therapist", s.adminToken, body)

	var count int64
	require.NoError(t, s.db.Model(&model.TherapistPatient{}).Count(&count).Error)
	assert.Zero(t, count)
}
