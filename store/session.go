package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/ariebrainware/aba-tracker/model"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// ResultInput is the outcome of one goal in a session.
type ResultInput struct {
	GoalID  uint `json:"goal_id"`
	Outcome bool `json:"outcome"`
}

// SessionSubmission is a complete session: the selected goals, one result
// per goal and an optional note.
type SessionSubmission struct {
	PatientID uint
	GoalIDs   []uint
	Results   []ResultInput
	Note      string
}

// ResultView is a recorded result as shown in session history.
type ResultView struct {
	GoalID   uint   `json:"goal_id"`
	GoalName string `json:"goal_name"`
	Outcome  bool   `json:"outcome"`
}

// SessionSummary is one entry of a patient's session history.
type SessionSummary struct {
	ID        uint         `json:"id"`
	Name      string       `json:"name"`
	GoalIDs   []uint       `json:"goal_ids"`
	CreatedAt time.Time    `json:"created_at"`
	Results   []ResultView `json:"results"`
	Note      string       `json:"note"`
	Completed bool         `json:"completed"`
}

func normalizeGoalIDs(goalIDs []uint) ([]uint, error) {
	ids := lo.Uniq(goalIDs)
	if len(ids) == 0 {
		return nil, validationError("select at least one goal")
	}
	if lo.Contains(ids, 0) {
		return nil, validationError("goal id 0 is invalid")
	}
	return ids, nil
}

// matchResults checks that results hold exactly one outcome per goal id.
func matchResults(goalIDs []uint, results []ResultInput) error {
	seen := make(map[uint]bool, len(results))
	for _, r := range results {
		if !lo.Contains(goalIDs, r.GoalID) {
			return validationError("result for goal %d which is not part of the session", r.GoalID)
		}
		if seen[r.GoalID] {
			return validationError("duplicate result for goal %d", r.GoalID)
		}
		seen[r.GoalID] = true
	}
	if missing := lo.Filter(goalIDs, func(id uint, _ int) bool { return !seen[id] }); len(missing) > 0 {
		return validationError("missing results for goals %v", missing)
	}
	return nil
}

// assignedGoalNames returns id -> name for goals prescribed to the patient,
// failing when any id is not.
func assignedGoalNames(tx *gorm.DB, patientID uint, goalIDs []uint) (map[uint]string, error) {
	var goals []model.Goal
	err := tx.Select("goals.id, goals.name").
		Joins("JOIN patient_goals pg ON pg.goal_id = goals.id AND pg.assigned_by = goals.created_by").
		Where("pg.patient_id = ? AND goals.id IN ?", patientID, goalIDs).
		Find(&goals).Error
	if err != nil {
		return nil, err
	}
	names := lo.SliceToMap(goals, func(g model.Goal) (uint, string) { return g.ID, g.Name })
	if missing := lo.Filter(goalIDs, func(id uint, _ int) bool { _, ok := names[id]; return !ok }); len(missing) > 0 {
		return nil, validationError("goals %v are not assigned to patient %d", missing, patientID)
	}
	return names, nil
}

func buildResults(sessionID uint, results []ResultInput, names map[uint]string) []model.SessionResult {
	return lo.Map(results, func(r ResultInput, _ int) model.SessionResult {
		return model.SessionResult{SessionID: sessionID, GoalID: r.GoalID, GoalName: names[r.GoalID], Outcome: r.Outcome}
	})
}

// RecordSession persists the session header, every result and the note in
// one transaction. Either all of it is stored or none.
func RecordSession(db *gorm.DB, therapistID uint, sub SessionSubmission) (model.Session, error) {
	goalIDs, err := normalizeGoalIDs(sub.GoalIDs)
	if err != nil {
		return model.Session{}, err
	}
	if err := matchResults(goalIDs, sub.Results); err != nil {
		return model.Session{}, err
	}
	if err := EnsureAssigned(db, therapistID, sub.PatientID); err != nil {
		return model.Session{}, err
	}

	var session model.Session
	err = db.Transaction(func(tx *gorm.DB) error {
		names, err := assignedGoalNames(tx, sub.PatientID, goalIDs)
		if err != nil {
			return err
		}
		session = model.Session{
			PatientID:   sub.PatientID,
			TherapistID: therapistID,
			GoalIDs:     goalIDs,
			Note:        strings.TrimSpace(sub.Note),
			Completed:   true,
		}
		if err := tx.Omit("Results").Create(&session).Error; err != nil {
			return err
		}
		results := buildResults(session.ID, sub.Results, names)
		if err := tx.Create(&results).Error; err != nil {
			return err
		}
		session.Results = results
		return nil
	})
	if err != nil {
		return model.Session{}, err
	}
	return session, nil
}

// StartSession creates an incomplete session header. Results are added with
// RecordResults; until then the session is listed with completed=false.
func StartSession(db *gorm.DB, therapistID, patientID uint, goalIDs []uint) (model.Session, error) {
	ids, err := normalizeGoalIDs(goalIDs)
	if err != nil {
		return model.Session{}, err
	}
	if err := EnsureAssigned(db, therapistID, patientID); err != nil {
		return model.Session{}, err
	}

	session := model.Session{PatientID: patientID, TherapistID: therapistID, GoalIDs: ids}
	err = db.Transaction(func(tx *gorm.DB) error {
		if _, err := assignedGoalNames(tx, patientID, ids); err != nil {
			return err
		}
		return tx.Omit("Results").Create(&session).Error
	})
	if err != nil {
		return model.Session{}, err
	}
	return session, nil
}

// loadSessionForTherapist fetches a session whose patient the caller is assigned to.
func loadSessionForTherapist(tx *gorm.DB, therapistID, sessionID uint) (model.Session, error) {
	var session model.Session
	if err := tx.First(&session, sessionID).Error; err != nil {
		return model.Session{}, notFoundOr(err, "session")
	}
	if err := EnsureAssigned(tx, therapistID, session.PatientID); err != nil {
		return model.Session{}, err
	}
	return session, nil
}

// RecordResults stores the outcome of every goal of a started session and
// marks it completed. Results are written once.
func RecordResults(db *gorm.DB, therapistID, sessionID uint, results []ResultInput) error {
	return db.Transaction(func(tx *gorm.DB) error {
		session, err := loadSessionForTherapist(tx, therapistID, sessionID)
		if err != nil {
			return err
		}
		if session.Completed {
			return fmt.Errorf("%w: session %d already has results", ErrConflict, sessionID)
		}
		goalIDs := []uint(session.GoalIDs)
		if err := matchResults(goalIDs, results); err != nil {
			return err
		}

		var goals []model.Goal
		if err := tx.Select("id, name").Where("id IN ?", goalIDs).Find(&goals).Error; err != nil {
			return err
		}
		names := lo.SliceToMap(goals, func(g model.Goal) (uint, string) { return g.ID, g.Name })

		rows := buildResults(session.ID, results, names)
		if err := tx.Create(&rows).Error; err != nil {
			return conflictOr(err, "results already recorded")
		}
		return tx.Model(&model.Session{}).Where("id = ?", session.ID).Update("completed", true).Error
	})
}

// SetSessionNote replaces the free-text note of a session.
func SetSessionNote(db *gorm.DB, therapistID, sessionID uint, note string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		session, err := loadSessionForTherapist(tx, therapistID, sessionID)
		if err != nil {
			return err
		}
		return tx.Model(&model.Session{}).Where("id = ?", session.ID).Update("note", strings.TrimSpace(note)).Error
	})
}

// ListSessions returns the patient's session history, newest first.
func ListSessions(db *gorm.DB, therapistID, patientID uint) ([]SessionSummary, error) {
	if err := EnsureAssigned(db, therapistID, patientID); err != nil {
		return nil, err
	}

	var sessions []model.Session
	err := db.Preload("Results", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Where("patient_id = ?", patientID).
		Order("created_at DESC, id DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	// Sessions without results fall back to the current goal names.
	var pending []uint
	for _, s := range sessions {
		if len(s.Results) == 0 {
			pending = append(pending, s.GoalIDs...)
		}
	}
	current := map[uint]string{}
	if len(pending) > 0 {
		var goals []model.Goal
		if err := db.Select("id, name").Where("id IN ?", lo.Uniq(pending)).Find(&goals).Error; err != nil {
			return nil, err
		}
		current = lo.SliceToMap(goals, func(g model.Goal) (uint, string) { return g.ID, g.Name })
	}

	return lo.Map(sessions, func(s model.Session, _ int) SessionSummary {
		return summarize(s, current)
	}), nil
}

func summarize(s model.Session, current map[uint]string) SessionSummary {
	results := lo.Map(s.Results, func(r model.SessionResult, _ int) ResultView {
		return ResultView{GoalID: r.GoalID, GoalName: r.GoalName, Outcome: r.Outcome}
	})

	var names []string
	if len(results) > 0 {
		names = lo.Map(results, func(r ResultView, _ int) string { return r.GoalName })
	} else {
		names = lo.FilterMap([]uint(s.GoalIDs), func(id uint, _ int) (string, bool) {
			name, ok := current[id]
			return name, ok
		})
	}

	return SessionSummary{
		ID:        s.ID,
		Name:      strings.Join(names, ", "),
		GoalIDs:   lo.Ternary(s.GoalIDs == nil, []uint{}, []uint(s.GoalIDs)),
		CreatedAt: s.CreatedAt,
		Results:   results,
		Note:      s.Note,
		Completed: s.Completed,
	}
}
