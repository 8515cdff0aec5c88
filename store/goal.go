package store

import (
	"fmt"
	"strings"

	"github.com/ariebrainware/aba-tracker/model"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

const minGoalImages = 2

// ImageInput is one image of a goal as submitted by a client.
type ImageInput struct {
	URL       string `json:"url"`
	Label     string `json:"label"`
	IsCorrect bool   `json:"isCorrect"`
}

// GoalInput is the payload for creating or editing a goal.
type GoalInput struct {
	Name        string
	Description string
	Images      []ImageInput
}

// GoalWithImages is a goal and its full image set.
type GoalWithImages struct {
	Goal   model.Goal        `json:"goal"`
	Images []model.GoalImage `json:"images"`
}

// ValidateGoalInput checks the goal invariant: a name, at least two images,
// each with a url, and exactly one marked correct. Create and edit share it.
func ValidateGoalInput(in GoalInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return validationError("goal name is required")
	}
	if len(in.Images) < minGoalImages {
		return validationError("a goal needs at least %d images, got %d", minGoalImages, len(in.Images))
	}
	for i, img := range in.Images {
		if strings.TrimSpace(img.URL) == "" {
			return validationError("image %d has no url", i)
		}
	}
	correct := lo.CountBy(in.Images, func(img ImageInput) bool { return img.IsCorrect })
	if correct != 1 {
		return validationError("exactly one image must be correct, got %d", correct)
	}
	return nil
}

func toGoalImages(goalID uint, images []ImageInput) []model.GoalImage {
	return lo.Map(images, func(img ImageInput, _ int) model.GoalImage {
		return model.GoalImage{
			GoalID:    goalID,
			ImageURL:  strings.TrimSpace(img.URL),
			Label:     strings.TrimSpace(img.Label),
			IsCorrect: img.IsCorrect,
		}
	})
}

// CreateGoal inserts a goal owned by therapistID and its images in one transaction.
func CreateGoal(db *gorm.DB, therapistID uint, in GoalInput) (GoalWithImages, error) {
	if err := ValidateGoalInput(in); err != nil {
		return GoalWithImages{}, err
	}

	var out GoalWithImages
	err := db.Transaction(func(tx *gorm.DB) error {
		goal := model.Goal{
			Name:        strings.TrimSpace(in.Name),
			Description: strings.TrimSpace(in.Description),
			CreatedBy:   therapistID,
		}
		if err := tx.Create(&goal).Error; err != nil {
			return err
		}
		images := toGoalImages(goal.ID, in.Images)
		if err := tx.Create(&images).Error; err != nil {
			return err
		}
		out = GoalWithImages{Goal: goal, Images: images}
		return nil
	})
	return out, err
}

// loadOwnedGoal fetches goalID and checks it belongs to therapistID.
func loadOwnedGoal(db *gorm.DB, therapistID, goalID uint) (model.Goal, error) {
	var goal model.Goal
	if err := db.First(&goal, goalID).Error; err != nil {
		return model.Goal{}, notFoundOr(err, "goal")
	}
	if goal.CreatedBy != therapistID {
		return model.Goal{}, fmt.Errorf("%w: goal %d belongs to another therapist", ErrForbidden, goalID)
	}
	return goal, nil
}

// UpdateGoal replaces the goal's fields and its entire image set. Image ids
// are not preserved across edits.
func UpdateGoal(db *gorm.DB, therapistID, goalID uint, in GoalInput) (GoalWithImages, error) {
	if err := ValidateGoalInput(in); err != nil {
		return GoalWithImages{}, err
	}

	var out GoalWithImages
	err := db.Transaction(func(tx *gorm.DB) error {
		goal, err := loadOwnedGoal(tx, therapistID, goalID)
		if err != nil {
			return err
		}

		goal.Name = strings.TrimSpace(in.Name)
		goal.Description = strings.TrimSpace(in.Description)
		if err := tx.Model(&goal).Select("name", "description", "updated_at").Updates(&goal).Error; err != nil {
			return err
		}
		if err := tx.Where("goal_id = ?", goal.ID).Delete(&model.GoalImage{}).Error; err != nil {
			return err
		}
		images := toGoalImages(goal.ID, in.Images)
		if err := tx.Create(&images).Error; err != nil {
			return err
		}
		out = GoalWithImages{Goal: goal, Images: images}
		return nil
	})
	return out, err
}

// DeleteGoal removes the goal, its images and its patient assignments.
// Session results keep their goal name snapshot.
func DeleteGoal(db *gorm.DB, therapistID, goalID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := loadOwnedGoal(tx, therapistID, goalID); err != nil {
			return err
		}
		if err := tx.Where("goal_id = ?", goalID).Delete(&model.PatientGoal{}).Error; err != nil {
			return err
		}
		if err := tx.Where("goal_id = ?", goalID).Delete(&model.GoalImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Goal{}, goalID).Error
	})
}

// ListGoalsByOwner returns the therapist's goals with their images, newest first.
func ListGoalsByOwner(db *gorm.DB, therapistID uint) ([]model.Goal, error) {
	goals := []model.Goal{}
	err := db.Preload("Images", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Where("created_by = ?", therapistID).
		Order("created_at DESC, id DESC").
		Find(&goals).Error
	return goals, err
}

// ListImagesByOwner returns every image of every goal the therapist owns.
func ListImagesByOwner(db *gorm.DB, therapistID uint) ([]model.GoalImage, error) {
	images := []model.GoalImage{}
	err := db.Joins("JOIN goals g ON g.id = goal_images.goal_id").
		Where("g.created_by = ?", therapistID).
		Order("goal_images.goal_id, goal_images.id").
		Find(&images).Error
	return images, err
}

// GetGoalImages returns a goal's images. The caller must own the goal or be
// assigned to a patient the owner prescribed it to.
func GetGoalImages(db *gorm.DB, therapistID, goalID uint) ([]model.GoalImage, error) {
	var goal model.Goal
	if err := db.First(&goal, goalID).Error; err != nil {
		return nil, notFoundOr(err, "goal")
	}
	if goal.CreatedBy != therapistID {
		var count int64
		err := db.Model(&model.PatientGoal{}).
			Joins("JOIN therapist_patient tp ON tp.patient_id = patient_goals.patient_id").
			Where("patient_goals.goal_id = ? AND patient_goals.assigned_by = ? AND tp.therapist_id = ?",
				goalID, goal.CreatedBy, therapistID).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, fmt.Errorf("%w: goal %d is not available to you", ErrForbidden, goalID)
		}
	}

	images := []model.GoalImage{}
	err := db.Where("goal_id = ?", goalID).Order("id").Find(&images).Error
	return images, err
}
