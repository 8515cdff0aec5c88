package model

import (
	"fmt"

	"gorm.io/gorm"
)

// Models lists every table owned by the service, parents before children.
var Models = []interface{}{
	&User{},
	&Therapist{},
	&Patient{},
	&TherapistPatient{},
	&Goal{},
	&GoalImage{},
	&PatientGoal{},
	&Session{},
	&SessionResult{},
	&SecurityLog{},
}

// oneCorrectImageIndex allows at most one correct image per goal.
const oneCorrectImageIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_goal_images_one_correct ON goal_images (goal_id) WHERE is_correct`

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// MySQL has no partial indexes; the service-level check still applies there.
	switch db.Dialector.Name() {
	case "postgres", "sqlite":
		if err := db.Exec(oneCorrectImageIndex).Error; err != nil {
			return fmt.Errorf("create %s: %w", "idx_goal_images_one_correct", err)
		}
	}
	return nil
}
