package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ariebrainware/aba-tracker/model"
	"github.com/ariebrainware/aba-tracker/util"
	"gorm.io/gorm"
)

// AccountInput describes a new login account and its profile.
type AccountInput struct {
	Username string
	Password string
	Role     string
	// Name is the therapist's full name or the patient's name.
	Name        string
	DateOfBirth string
	Gender      string
}

// Account is a created user together with the id of its profile row.
type Account struct {
	User      model.User
	ProfileID uint
}

func validateAccount(in *AccountInput) error {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = util.NormalizeName(in.Name)
	if in.Username == "" {
		return validationError("username is required")
	}
	if in.Password == "" {
		return validationError("password is required")
	}
	if !model.IsValidRole(in.Role) {
		return validationError("unknown role %q", in.Role)
	}
	if in.Role == model.RolePatient && in.Name == "" {
		return validationError("name is required for patients")
	}
	return nil
}

// CreateAccount registers a user and, for therapists and patients, the
// matching profile row in one transaction.
func CreateAccount(db *gorm.DB, in AccountInput) (Account, error) {
	if err := validateAccount(&in); err != nil {
		return Account{}, err
	}

	hashed, err := util.HashPassword(in.Password)
	if err != nil {
		return Account{}, fmt.Errorf("hash password: %w", err)
	}

	var acc Account
	err = db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.User{}).Where("username = ?", in.Username).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: username %q is taken", ErrConflict, in.Username)
		}

		user := model.User{Username: in.Username, Password: hashed, Role: in.Role}
		if err := tx.Create(&user).Error; err != nil {
			return conflictOr(err, "username is taken")
		}
		acc.User = user

		switch in.Role {
		case model.RoleTherapist:
			therapist := model.Therapist{UserID: &user.ID, Username: user.Username, FullName: in.Name}
			if err := tx.Create(&therapist).Error; err != nil {
				return conflictOr(err, "therapist profile exists")
			}
			acc.ProfileID = therapist.ID
		case model.RolePatient:
			patient := model.Patient{UserID: &user.ID, Name: in.Name, DateOfBirth: in.DateOfBirth, Gender: in.Gender}
			if err := tx.Create(&patient).Error; err != nil {
				return err
			}
			acc.ProfileID = patient.ID
		}
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	return acc, nil
}

// Authenticate returns the user whose username and password match. Unknown
// usernames and wrong passwords both yield ErrInvalidCredentials.
func Authenticate(db *gorm.DB, username, password string) (model.User, error) {
	var user model.User
	err := db.Where("username = ?", strings.TrimSpace(username)).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.BurnPasswordCheck(password)
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}

	ok, err := util.VerifyPassword(password, user.Password)
	if err != nil && !errors.Is(err, util.ErrMalformedHash) {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, ErrInvalidCredentials
	}
	return user, nil
}
