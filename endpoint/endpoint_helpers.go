package endpoint

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ariebrainware/aba-tracker/middleware"
	"github.com/ariebrainware/aba-tracker/store"
	"github.com/ariebrainware/aba-tracker/util"
	"github.com/ariebrainware/aba-tracker/workflow"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const defaultTokenTTL = 24 * time.Hour

type clientInfo struct {
	IP    string
	Agent string
}

func clientOf(c *gin.Context) clientInfo {
	return clientInfo{IP: c.ClientIP(), Agent: c.Request.UserAgent()}
}

func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
		return nil, false
	}
	return db, true
}

// therapistOrRespond returns the request DB and the caller's therapist id.
func therapistOrRespond(c *gin.Context) (*gorm.DB, uint, bool) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return nil, 0, false
	}
	therapistID, ok := middleware.GetTherapistID(c)
	if !ok {
		util.CallForbidden(c, util.APIErrorParams{Msg: "Therapist profile not found", Err: errors.New("no therapist profile")})
		return nil, 0, false
	}
	return db, therapistID, true
}

func parseIDParamOrRespond(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: fmt.Sprintf("Invalid %s", name),
			Err: fmt.Errorf("%s must be a positive integer", name),
		})
		return 0, false
	}
	return uint(id), true
}

// respondStoreError maps store and workflow errors to the HTTP status of the
// error taxonomy. msg is used for unexpected failures.
func respondStoreError(c *gin.Context, err error, msg string) {
	params := util.APIErrorParams{Msg: err.Error(), Err: err}
	switch {
	case errors.Is(err, store.ErrValidation),
		errors.Is(err, workflow.ErrNoGoals),
		errors.Is(err, workflow.ErrResultsMismatch),
		errors.Is(err, workflow.ErrUnknownImage),
		errors.Is(err, workflow.ErrWrongState):
		util.CallUserError(c, params)
	case errors.Is(err, store.ErrInvalidCredentials):
		util.CallUserNotAuthorized(c, params)
	case errors.Is(err, store.ErrForbidden):
		userID, _ := middleware.GetUserID(c)
		username, _ := middleware.GetUsername(c)
		util.LogForbiddenAccess(userID, username, c.ClientIP(), c.Request.URL.Path, err.Error())
		util.CallForbidden(c, params)
	case errors.Is(err, store.ErrNotFound):
		util.CallErrorNotFound(c, params)
	case errors.Is(err, store.ErrConflict):
		util.CallConflict(c, params)
	default:
		util.CallServerError(c, util.APIErrorParams{Msg: msg, Err: err})
	}
}

func tokenTTL(c *gin.Context) time.Duration {
	if cfg := middleware.GetConfig(c); cfg != nil && cfg.TokenTTL > 0 {
		return cfg.TokenTTL
	}
	return defaultTokenTTL
}

func adminSignupAllowed(c *gin.Context) bool {
	cfg := middleware.GetConfig(c)
	return cfg != nil && cfg.AllowAdminSignup
}

var registerValidatorsOnce sync.Once

// RegisterValidators adds the custom binding tags used by request structs:
// isodate accepts an empty string or a YYYY-MM-DD calendar date.
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if s == "" {
				return true
			}
			_, err := time.Parse("2006-01-02", s)
			return err == nil
		})
	})
}
