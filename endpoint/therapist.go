package endpoint

import (
	"github.com/ariebrainware/aba-tracker/store"
	"github.com/ariebrainware/aba-tracker/util"
	"github.com/gin-gonic/gin"
)

type createTherapistRequest struct {
	Username string `json:"username" binding:"required" example:"t1"`
	Password string `json:"password" binding:"required" example:"pw1"`
	FullName string `json:"full_name" example:"Therapist One"`
}

type therapistAssignmentRequest struct {
	TherapistID uint `json:"therapist_id" binding:"required" example:"1"`
	PatientID   uint `json:"patient_id" binding:"required" example:"1"`
}

// CreateTherapist creates a therapist login and profile. Admin only.
func CreateTherapist(c *gin.Context) {
	var req createTherapistRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	acc, err := store.CreateTherapist(db, store.TherapistInput{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		respondStoreError(c, err, "Failed to create therapist")
		return
	}

	util.CallCreated(c, util.APISuccessParams{
		Msg:  "Therapist created",
		Data: map[string]interface{}{"user": acc.User, "therapist_id": acc.ProfileID},
	})
}

// ListTherapists returns every therapist. Admin only.
func ListTherapists(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	therapists, err := store.ListTherapists(db)
	if err != nil {
		respondStoreError(c, err, "Failed to list therapists")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Therapists retrieved",
		Data: map[string]interface{}{"therapists": therapists},
	})
}

// AssignTherapist links a therapist to a patient. Duplicate links get 409.
func AssignTherapist(c *gin.Context) {
	var req therapistAssignmentRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	edge, err := store.AssignTherapist(db, req.TherapistID, req.PatientID)
	if err != nil {
		respondStoreError(c, err, "Failed to assign therapist")
		return
	}
	util.CallCreated(c, util.APISuccessParams{
		Msg:  "Therapist assigned",
		Data: map[string]interface{}{"assignment": edge},
	})
}

// UnassignTherapist removes a therapist-patient link if present.
func UnassignTherapist(c *gin.Context) {
	var req therapistAssignmentRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if err := store.UnassignTherapist(db, req.TherapistID, req.PatientID); err != nil {
		respondStoreError(c, err, "Failed to unassign therapist")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Therapist unassigned", Data: map[string]interface{}{}})
}
