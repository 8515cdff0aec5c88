// Package workflow drives one therapy session from goal selection to a
// submission that store.RecordSession persists in a single transaction.
//
// A Runner moves through Selecting, Running, Summarizing and Submitted. It is
// not safe for concurrent use.
//
// Clients that run a session interactively drive a Runner step by step:
// Select, then Choose (or Record) once per goal while Progress reports the
// position, then AttachNote and Submission. The server receives the finished
// submission and rebuilds the same Runner with Replay to validate it.
package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ariebrainware/aba-tracker/model"
	"github.com/ariebrainware/aba-tracker/store"
	"github.com/samber/lo"
)

// State is a step of the session workflow.
type State int

const (
	Selecting State = iota
	Running
	Summarizing
	Submitted
)

func (s State) String() string {
	switch s {
	case Selecting:
		return "selecting"
	case Running:
		return "running"
	case Summarizing:
		return "summarizing"
	case Submitted:
		return "submitted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrNoGoals is returned by Select with an empty selection. The runner stays in Selecting.
	ErrNoGoals = errors.New("select at least one goal")
	// ErrWrongState is returned when a step is called out of order.
	ErrWrongState = errors.New("operation not allowed in current state")
	// ErrUnknownImage is returned by Choose for an image outside the current goal.
	ErrUnknownImage = errors.New("image does not belong to the current goal")
	// ErrResultsMismatch is returned by Replay when results do not cover the goals exactly.
	ErrResultsMismatch = errors.New("results do not match selected goals")
)

// Runner holds the in-memory state of one session.
type Runner struct {
	patientID uint
	state     State
	goals     []uint
	outcomes  []bool
	note      string
}

// NewRunner starts a session for patientID in the Selecting state.
func NewRunner(patientID uint) *Runner {
	return &Runner{patientID: patientID, state: Selecting}
}

// State returns the current step.
func (r *Runner) State() State { return r.state }

// Goals returns the selected goal ids in run order.
func (r *Runner) Goals() []uint { return append([]uint(nil), r.goals...) }

func (r *Runner) expect(s State) error {
	if r.state != s {
		return fmt.Errorf("%w: %s, want %s", ErrWrongState, r.state, s)
	}
	return nil
}

// Select fixes the goals to run, in order, dropping duplicates and zero ids.
func (r *Runner) Select(goalIDs ...uint) error {
	if err := r.expect(Selecting); err != nil {
		return err
	}
	ids := lo.Uniq(lo.Without(goalIDs, 0))
	if len(ids) == 0 {
		return ErrNoGoals
	}
	r.goals = ids
	r.outcomes = make([]bool, 0, len(ids))
	r.state = Running
	return nil
}

// CurrentGoal returns the goal awaiting an outcome.
func (r *Runner) CurrentGoal() (uint, bool) {
	if r.state != Running {
		return 0, false
	}
	return r.goals[len(r.outcomes)], true
}

// Progress reports how many goals have an outcome out of the selection.
func (r *Runner) Progress() (done, total int) {
	return len(r.outcomes), len(r.goals)
}

// Record stores the outcome of the current goal and advances. After the last
// goal the runner moves to Summarizing.
func (r *Runner) Record(outcome bool) error {
	if err := r.expect(Running); err != nil {
		return err
	}
	r.outcomes = append(r.outcomes, outcome)
	if len(r.outcomes) == len(r.goals) {
		r.state = Summarizing
	}
	return nil
}

// Choose records the trial where imageID was picked from the current goal's
// images. The outcome is the image's correctness flag.
func (r *Runner) Choose(images []model.GoalImage, imageID uint) error {
	goalID, ok := r.CurrentGoal()
	if !ok {
		return fmt.Errorf("%w: %s, want %s", ErrWrongState, r.state, Running)
	}
	img, found := lo.Find(images, func(img model.GoalImage) bool {
		return img.ID == imageID && img.GoalID == goalID
	})
	if !found {
		return fmt.Errorf("%w: image %d, goal %d", ErrUnknownImage, imageID, goalID)
	}
	return r.Record(img.IsCorrect)
}

// AttachNote sets the optional session note.
func (r *Runner) AttachNote(note string) error {
	if err := r.expect(Summarizing); err != nil {
		return err
	}
	r.note = strings.TrimSpace(note)
	return nil
}

// Submission returns the complete session and moves the runner to Submitted.
func (r *Runner) Submission() (store.SessionSubmission, error) {
	if err := r.expect(Summarizing); err != nil {
		return store.SessionSubmission{}, err
	}
	results := lo.Map(r.goals, func(id uint, i int) store.ResultInput {
		return store.ResultInput{GoalID: id, Outcome: r.outcomes[i]}
	})
	r.state = Submitted
	return store.SessionSubmission{
		PatientID: r.patientID,
		GoalIDs:   r.Goals(),
		Results:   results,
		Note:      r.note,
	}, nil
}

// Replay drives a fresh runner through a client-built submission and returns
// it in the Summarizing state. Results may arrive in any order but must hold
// exactly one outcome per selected goal.
func Replay(sub store.SessionSubmission) (*Runner, error) {
	r := NewRunner(sub.PatientID)
	if err := r.Select(sub.GoalIDs...); err != nil {
		return nil, err
	}

	byGoal := make(map[uint]bool, len(sub.Results))
	for _, res := range sub.Results {
		if _, dup := byGoal[res.GoalID]; dup {
			return nil, fmt.Errorf("%w: duplicate result for goal %d", ErrResultsMismatch, res.GoalID)
		}
		byGoal[res.GoalID] = res.Outcome
	}
	if len(byGoal) != len(r.goals) {
		return nil, fmt.Errorf("%w: %d results for %d goals", ErrResultsMismatch, len(byGoal), len(r.goals))
	}

	for {
		goalID, ok := r.CurrentGoal()
		if !ok {
			break
		}
		outcome, ok := byGoal[goalID]
		if !ok {
			return nil, fmt.Errorf("%w: missing result for goal %d", ErrResultsMismatch, goalID)
		}
		if err := r.Record(outcome); err != nil {
			return nil, err
		}
	}
	if err := r.AttachNote(sub.Note); err != nil {
		return nil, err
	}
	return r, nil
}
