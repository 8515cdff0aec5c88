package endpoint

import (
	"fmt"

	"github.com/ariebrainware/aba-tracker/middleware"
	"github.com/ariebrainware/aba-tracker/store"
	"github.com/ariebrainware/aba-tracker/util"
	"github.com/gin-gonic/gin"
)

type goalRequest struct {
	Name        string             `json:"name" binding:"required" example:"Colors"`
	Description string             `json:"description" example:"Pick the red card"`
	Images      []store.ImageInput `json:"images"`
}

func (r goalRequest) input() store.GoalInput {
	return store.GoalInput{Name: r.Name, Description: r.Description, Images: r.Images}
}

type patientGoalRequest struct {
	PatientID uint   `json:"patient_id" binding:"required" example:"1"`
	GoalID    uint   `json:"goal_id" binding:"required" example:"1"`
	ImageIDs  []uint `json:"image_ids"`
}

// CreateGoal creates a goal owned by the caller. The goal needs at least two
// images and exactly one correct image.
func CreateGoal(c *gin.Context) {
	var req goalRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, therapistID, ok := therapistOrRespond(c)
	if !ok {
		return
	}

	out, err := store.CreateGoal(db, therapistID, req.input())
	if err != nil {
		respondStoreError(c, err, "Failed to create goal")
		return
	}
	util.CallCreated(c, util.APISuccessParams{Msg: "Goal created", Data: out})
}

// UpdateGoal replaces the name, description and image set of an owned goal.
func UpdateGoal(c *gin.Context) {
	goalID, ok := parseIDParamOrRespond(c, "id")
	if !ok {
		return
	}
	var req goalRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, therapistID, ok := therapistOrRespond(c)
	if !ok {
		return
	}

	out, err := store.UpdateGoal(db, therapistID, goalID, req.input())
	if err != nil {
		respondStoreError(c, err, "Failed to update goal")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Goal updated", Data: out})
}

// DeleteGoal removes an owned goal with its images and patient assignments.
func DeleteGoal(c *gin.Context) {
	goalID, ok := parseIDParamOrRespond(c, "id")
	if !ok {
		return
	}
	db, therapistID, ok := therapistOrRespond(c)
	if !ok {
		return
	}

	if err := store.DeleteGoal(db, therapistID, goalID); err != nil {
		respondStoreError(c, err, "Failed to delete goal")
		return
	}

	userID, _ := middleware.GetUserID(c)
	username, _ := middleware.GetUsername(c)
	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventGoalDeleted,
		UserID:    fmt.Sprintf("%d", userID),
		Username:  username,
		IP:        c.ClientIP(),
		Message:   fmt.Sprintf("Goal %d deleted", goalID),
	})
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Goal deleted", Data: map[string]interface{}{}})
}

// ListMyGoals returns the caller's goals with images.
func ListMyGoals(c *gin.Context) {
	db, therapistID, ok := therapistOrRespond(c)
	if !ok {
		return
	}
	goals, err := store.ListGoalsByOwner(db, therapistID)
	if err != nil {
		respondStoreError(c, err, "Failed to list goals")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Goals retrieved",
		Data: map[string]interface{}{"goals": goals},
	})
}

// ListMyImages returns every image of the caller's goals.
func ListMyImages(c *gin.Context) {
	db, therapistID, ok := therapistOrRespond(c)
	if !ok {
		return
	}
	images, err := store.ListImagesByOwner(db, therapistID)
	if err != nil {
		respondStoreError(c, err, "Failed to list images")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Images retrieved",
		Data: map[string]interface{}{"images": images},
	})
}

// GetGoalImages returns the images of a goal for running a session.
func GetGoalImages(c *gin.Context) {
	goalID, ok := parseIDParamOrRespond(c, "id")
	if !ok {
		return
	}
	db, therapistID, ok := therapistOrRespond(c)
	if !ok {
		return
	}

	images, err := store.GetGoalImages(db, therapistID, goalID)
	if err != nil {
		respondStoreError(c, err, "Failed to load goal images")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Images retrieved",
		Data: map[string]interface{}{"images": images},
	})
}

// AssignGoal prescribes a goal to an assigned patient. Repeating it is a no-op.
func AssignGoal(c *gin.Context) {
	var req patientGoalRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, therapistID, ok := therapistOrRespond(c)
	if !ok {
		return
	}

	if err := store.AssignGoal(db, therapistID, req.PatientID, req.GoalID, req.ImageIDs); err != nil {
		respondStoreError(c, err, "Failed to assign goal")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Goal assigned", Data: map[string]interface{}{}})
}

// UnassignGoal removes a goal from an assigned patient.
func UnassignGoal(c *gin.Context) {
	var req patientGoalRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, therapistID, ok := therapistOrRespond(c)
	if !ok {
		return
	}

	if err := store.UnassignGoal(db, therapistID, req.PatientID, req.GoalID); err != nil {
		respondStoreError(c, err, "Failed to unassign goal")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Goal unassigned", Data: map[string]interface{}{}})
}
