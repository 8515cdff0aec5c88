package endpoint

import (
	"errors"
	"fmt"
	"time"

	"github.com/ariebrainware/aba-tracker/middleware"
	"github.com/ariebrainware/aba-tracker/model"
	"github.com/ariebrainware/aba-tracker/store"
	"github.com/ariebrainware/aba-tracker/util"
	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"t1"`
	Password string `json:"password" binding:"required" example:"pw1"`
}

type LoginUser struct {
	ID       uint   `json:"id" example:"1"`
	Username string `json:"username" example:"t1"`
	Role     string `json:"role" example:"therapist"`
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required" example:"t1"`
	Password string `json:"password" binding:"required" example:"pw1"`
	Role     string `json:"role" binding:"required,oneof=admin therapist patient" example:"therapist"`
	Name     string `json:"name" example:"Therapist One"`
	DOB      string `json:"dob" binding:"isodate" example:"2015-01-01"`
	Gender   string `json:"gender" example:"female"`
}

type RegisterResponse struct {
	Token string `json:"token"`
	Role  string `json:"role" example:"therapist"`
	ID    uint   `json:"id" example:"1"`
}

// Login authenticates a username and password and returns a bearer token.
// Unknown usernames and wrong passwords get the same 401 response.
func Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	ci := clientOf(c)

	user, err := store.Authenticate(db, req.Username, req.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		util.LogLoginFailure(req.Username, ci.IP, ci.Agent, "invalid credentials")
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Invalid username or password", Err: err})
		return
	}
	if err != nil {
		util.LogLoginFailure(req.Username, ci.IP, ci.Agent, "database error")
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}

	token, _, err := util.IssueToken(user, tokenTTL(c))
	if err != nil {
		util.LogLoginFailure(req.Username, ci.IP, ci.Agent, "token generation failed")
		util.CallServerError(c, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return
	}

	util.LogLoginSuccess(user.ID, user.Username, ci.IP, ci.Agent)
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Login successful",
		Data: LoginResponse{
			Token: token,
			User:  LoginUser{ID: user.ID, Username: user.Username, Role: user.Role},
		},
	})
}

// Register creates an account with its profile and returns a bearer token.
// Admin accounts can only be registered when ALLOW_ADMIN_SIGNUP is set.
func Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	if req.Role == model.RoleAdmin && !adminSignupAllowed(c) {
		util.CallForbidden(c, util.APIErrorParams{
			Msg: "Admin accounts cannot be self-registered",
			Err: errors.New("admin signup disabled"),
		})
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	acc, err := store.CreateAccount(db, store.AccountInput{
		Username:    req.Username,
		Password:    req.Password,
		Role:        req.Role,
		Name:        req.Name,
		DateOfBirth: req.DOB,
		Gender:      req.Gender,
	})
	if err != nil {
		respondStoreError(c, err, "Failed to register")
		return
	}

	token, _, err := util.IssueToken(acc.User, tokenTTL(c))
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return
	}

	ci := clientOf(c)
	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventAccountCreated,
		UserID:    fmt.Sprintf("%d", acc.User.ID),
		Username:  acc.User.Username,
		IP:        ci.IP,
		UserAgent: ci.Agent,
		Message:   fmt.Sprintf("Registered %s account", acc.User.Role),
	})
	util.CallCreated(c, util.APISuccessParams{
		Msg:  "Registration successful",
		Data: RegisterResponse{Token: token, Role: acc.User.Role, ID: acc.User.ID},
	})
}

// Logout revokes the caller's token until it expires.
func Logout(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Unauthorized", Err: errors.New("no token claims")})
		return
	}
	expiresAt := time.Now().Add(tokenTTL(c))
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := util.RevokeToken(c.Request.Context(), claims.ID, expiresAt); err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to revoke token", Err: err})
		return
	}

	ci := clientOf(c)
	util.LogLogout(claims.UserID, claims.Username, ci.IP, ci.Agent)
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Logout successful", Data: map[string]interface{}{}})
}
