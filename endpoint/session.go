package endpoint

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ariebrainware/aba-tracker/events"
	"github.com/ariebrainware/aba-tracker/middleware"
	"github.com/ariebrainware/aba-tracker/model"
	"github.com/ariebrainware/aba-tracker/observability"
	"github.com/ariebrainware/aba-tracker/store"
	"github.com/ariebrainware/aba-tracker/util"
	"github.com/ariebrainware/aba-tracker/workflow"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

const publishTimeout = 5 * time.Second

type recordSessionRequest struct {
	PatientID uint                `json:"patient_id" binding:"required" example:"1"`
	GoalIDs   []uint              `json:"goal_ids" binding:"required"`
	Results   []store.ResultInput `json:"results" binding:"required"`
	Note      string              `json:"note" example:"good session"`
}

type startSessionRequest struct {
	PatientID uint   `json:"patient_id" binding:"required" example:"1"`
	GoalIDs   []uint `json:"goal_ids" binding:"required"`
}

type sessionResultsRequest struct {
	Results []store.ResultInput `json:"results" binding:"required"`
}

type sessionNoteRequest struct {
	Note string `json:"note" example:"good session"`
}

// afterSessionRecorded publishes the session event and updates metrics.
// Failures here never affect the committed session.
func afterSessionRecorded(c *gin.Context, session model.Session, mode string) {
	observability.ObserveSession(mode, lo.Map(session.Results, func(r model.SessionResult, _ int) bool { return r.Outcome }))

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), publishTimeout)
	defer cancel()
	if err := middleware.GetPublisher(c).PublishSessionRecorded(ctx, events.NewSessionRecorded(session)); err != nil {
		observability.ObservePublishFailure()
		log.Printf("Failed to publish %s for session %d: %v", events.TypeSessionRecorded, session.ID, err)
	}

	userID, _ := middleware.GetUserID(c)
	username, _ := middleware.GetUsername(c)
	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventSessionRecorded,
		UserID:    fmt.Sprintf("%d", userID),
		Username:  username,
		IP:        c.ClientIP(),
		Message:   fmt.Sprintf("Session %d recorded for patient %d", session.ID, session.PatientID),
		Details:   map[string]interface{}{"session_id": session.ID, "results": len(session.Results), "mode": mode},
	})
}

// RecordSession stores a complete session (goals, results and note) in one
// transaction.
func RecordSession(c *gin.Context) {
	var req recordSessionRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, therapistID, ok := therapistOrRespond(c)
	if !ok {
		return
	}

	runner, err := workflow.Replay(store.SessionSubmission{
		PatientID: req.PatientID,
		GoalIDs:   req.GoalIDs,
		Results:   req.Results,
		Note:      req.Note,
	})
	if err != nil {
		respondStoreError(c, err, "Invalid session")
		return
	}
	sub, err := runner.Submission()
	if err != nil {
		respondStoreError(c, err, "Invalid session")
		return
	}

	session, err := store.RecordSession(db, therapistID, sub)
	if err != nil {
		respondStoreError(c, err, "Failed to record session")
		return
	}

	afterSessionRecorded(c, session, observability.ModeAtomic)
	util.CallCreated(c, util.APISuccessParams{
		Msg:  "Session recorded",
		Data: map[string]interface{}{"session": session},
	})
}

// StartSession creates an incomplete session header for the stepwise flow.
func StartSession(c *gin.Context) {
	var req startSessionRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, therapistID, ok := therapistOrRespond(c)
	if !ok {
		return
	}

	session, err := store.StartSession(db, therapistID, req.PatientID, req.GoalIDs)
	if err != nil {
		respondStoreError(c, err, "Failed to start session")
		return
	}
	util.CallCreated(c, util.APISuccessParams{
		Msg:  "Session started",
		Data: map[string]interface{}{"session_id": session.ID},
	})
}

// RecordSessionResults stores all results of a started session at once.
func RecordSessionResults(c *gin.Context) {
	sessionID, ok := parseIDParamOrRespond(c, "id")
	if !ok {
		return
	}
	var req sessionResultsRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, therapistID, ok := therapistOrRespond(c)
	if !ok {
		return
	}

	if err := store.RecordResults(db, therapistID, sessionID, req.Results); err != nil {
		respondStoreError(c, err, "Failed to record results")
		return
	}

	session, err := loadSessionWithResults(db, sessionID)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load session", Err: err})
		return
	}
	afterSessionRecorded(c, session, observability.ModeStepwise)
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Results recorded", Data: map[string]interface{}{}})
}

func loadSessionWithResults(db *gorm.DB, sessionID uint) (model.Session, error) {
	var session model.Session
	err := db.Preload("Results").First(&session, sessionID).Error
	return session, err
}

// SetSessionNote replaces the note of a session.
func SetSessionNote(c *gin.Context) {
	sessionID, ok := parseIDParamOrRespond(c, "id")
	if !ok {
		return
	}
	var req sessionNoteRequest
	if !bindJSONOrRespond(c, &req, "Invalid request body") {
		return
	}
	db, therapistID, ok := therapistOrRespond(c)
	if !ok {
		return
	}

	if err := store.SetSessionNote(db, therapistID, sessionID, req.Note); err != nil {
		respondStoreError(c, err, "Failed to save note")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Note saved", Data: map[string]interface{}{}})
}

// ListPatientSessions returns an assigned patient's session history.
func ListPatientSessions(c *gin.Context) {
	patientID, ok := parseIDParamOrRespond(c, "id")
	if !ok {
		return
	}
	db, therapistID, ok := therapistOrRespond(c)
	if !ok {
		return
	}

	sessions, err := store.ListSessions(db, therapistID, patientID)
	if err != nil {
		respondStoreError(c, err, "Failed to list sessions")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Sessions retrieved",
		Data: map[string]interface{}{"sessions": sessions},
	})
}
