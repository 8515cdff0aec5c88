package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ariebrainware/aba-tracker/model"
	"github.com/ariebrainware/aba-tracker/util"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// Context keys set by ValidateLoginToken and LoadTherapistProfile.
const (
	UserIDKey      = "user_id"
	UsernameKey    = "username"
	RoleKey        = "role"
	ClaimsKey      = "claims"
	TherapistIDKey = "therapist_id"
)

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *gin.Context, reason string) {
	util.LogUnauthorizedAccess(c.ClientIP(), c.Request.URL.Path, reason)
	util.CallUserNotAuthorized(c, util.APIErrorParams{
		Msg: "Unauthorized",
		Err: errors.New(reason),
	})
	c.Abort()
}

// ValidateLoginToken authenticates the bearer token and stores its claims in
// the context. Missing, invalid, expired and revoked tokens get 401.
func ValidateLoginToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			unauthorized(c, "missing bearer token")
			return
		}

		claims, err := util.ParseToken(token)
		if err != nil {
			unauthorized(c, err.Error())
			return
		}

		revoked, err := util.IsTokenRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			// Redis trouble must not lock every user out.
			util.LogSecurityEvent(util.SecurityEvent{
				EventType: util.EventSuspiciousActivity,
				IP:        c.ClientIP(),
				Message:   fmt.Sprintf("Token revocation check failed: %v", err),
			})
		}
		if revoked {
			unauthorized(c, "token has been revoked")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)
		c.Set(RoleKey, claims.Role)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole lets the request through only when the authenticated role is
// one of roles. It must run after ValidateLoginToken.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := GetRole(c)
		if lo.Contains(roles, role) {
			c.Next()
			return
		}
		userID, _ := GetUserID(c)
		username, _ := GetUsername(c)
		util.LogForbiddenAccess(userID, username, c.ClientIP(), c.Request.URL.Path, fmt.Sprintf("role %q not in %v", role, roles))
		util.CallForbidden(c, util.APIErrorParams{
			Msg: "Forbidden",
			Err: fmt.Errorf("requires role %s", strings.Join(roles, " or ")),
		})
		c.Abort()
	}
}

// LoadTherapistProfile resolves the caller's therapist profile id. Accounts
// without a profile get 403.
func LoadTherapistProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		db := GetDB(c)
		if db == nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: errors.New("db is nil")})
			c.Abort()
			return
		}
		userID, _ := GetUserID(c)
		therapistID, err := util.ResolveTherapistID(db, userID)
		if errors.Is(err, util.ErrNoTherapistProfile) {
			util.CallForbidden(c, util.APIErrorParams{Msg: "Therapist profile not found", Err: err})
			c.Abort()
			return
		}
		if err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load therapist profile", Err: err})
			c.Abort()
			return
		}
		c.Set(TherapistIDKey, therapistID)
		c.Next()
	}
}

// GetUserID returns the authenticated user id.
func GetUserID(c *gin.Context) (uint, bool) {
	return getUint(c, UserIDKey)
}

// GetTherapistID returns the caller's therapist profile id.
func GetTherapistID(c *gin.Context) (uint, bool) {
	return getUint(c, TherapistIDKey)
}

// GetRole returns the authenticated role.
func GetRole(c *gin.Context) (string, bool) {
	return getString(c, RoleKey)
}

// GetUsername returns the authenticated username.
func GetUsername(c *gin.Context) (string, bool) {
	return getString(c, UsernameKey)
}

// GetClaims returns the parsed token claims.
func GetClaims(c *gin.Context) (*util.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*util.Claims)
	return claims, ok
}

func getUint(c *gin.Context, key string) (uint, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func getString(c *gin.Context, key string) (string, bool) {
	v, ok := c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// roleGuard is the middleware chain for a role-restricted route group.
func roleGuard(roles ...string) []gin.HandlerFunc {
	return []gin.HandlerFunc{ValidateLoginToken(), RequireRole(roles...)}
}

// AdminOnly guards admin routes.
func AdminOnly() []gin.HandlerFunc {
	return roleGuard(model.RoleAdmin)
}

// TherapistOnly guards therapist routes and loads the therapist profile.
func TherapistOnly() []gin.HandlerFunc {
	return append(roleGuard(model.RoleTherapist), LoadTherapistProfile())
}
