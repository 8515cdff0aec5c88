package endpoint

import (
	"github.com/ariebrainware/aba-tracker/store"
	"github.com/ariebrainware/aba-tracker/util"
	"github.com/gin-gonic/gin"
)

type createPatientRequest struct {
	Name   string `json:"name" binding:"required" example:"Alex"`
	DOB    string `json:"dob" binding:"required,isodate" example:"2015-01-01"`
	Gender string `json:"gender" example:"female"`
}

// CreatePatient inserts a patient profile. Admin only.
func CreatePatient(c *gin.Context) {
	var req createPatientRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	patient, err := store.CreatePatient(db, store.PatientInput{Name: req.Name, DateOfBirth: req.DOB, Gender: req.Gender})
	if err != nil {
		respondStoreError(c, err, "Failed to create patient")
		return
	}
	util.CallCreated(c, util.APISuccessParams{
		Msg:  "Patient created",
		Data: map[string]interface{}{"patient": patient},
	})
}

// ListPatients returns every patient. Admin only.
func ListPatients(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	patients, err := store.ListPatients(db)
	if err != nil {
		respondStoreError(c, err, "Failed to list patients")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Patients retrieved",
		Data: map[string]interface{}{"patients": patients},
	})
}

// ListMyPatients returns the patients assigned to the calling therapist.
func ListMyPatients(c *gin.Context) {
	db, therapistID, ok := therapistOrRespond(c)
	if !ok {
		return
	}
	patients, err := store.ListAssignedPatients(db, therapistID)
	if err != nil {
		respondStoreError(c, err, "Failed to list patients")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Patients retrieved",
		Data: map[string]interface{}{"patients": patients},
	})
}

// GetPatient returns an assigned patient and the names of its goals.
func GetPatient(c *gin.Context) {
	db, therapistID, ok := therapistOrRespond(c)
	if !ok {
		return
	}
	patientID, ok := parseIDParamOrRespond(c, "id")
	if !ok {
		return
	}

	profile, err := store.GetPatientProfile(db, therapistID, patientID)
	if err != nil {
		respondStoreError(c, err, "Failed to load patient")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient retrieved", Data: profile})
}
