package util

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/ariebrainware/aba-tracker/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SecurityEventType represents different types of security events
type SecurityEventType string

const (
	EventLoginSuccess       SecurityEventType = "LOGIN_SUCCESS"
	EventLoginFailure       SecurityEventType = "LOGIN_FAILURE"
	EventAccountCreated     SecurityEventType = "ACCOUNT_CREATED"
	EventLogout             SecurityEventType = "LOGOUT"
	EventUnauthorizedAccess SecurityEventType = "UNAUTHORIZED_ACCESS"
	EventForbiddenAccess    SecurityEventType = "FORBIDDEN_ACCESS"
	EventRateLimitExceeded  SecurityEventType = "RATE_LIMIT_EXCEEDED"
	EventSuspiciousActivity SecurityEventType = "SUSPICIOUS_ACTIVITY"
	EventEndpointCall       SecurityEventType = "ENDPOINT_CALL"
	EventSessionRecorded    SecurityEventType = "SESSION_RECORDED"
	EventGoalDeleted        SecurityEventType = "GOAL_DELETED"
)

// SecurityEvent represents a security event to be logged
type SecurityEvent struct {
	EventType SecurityEventType
	UserID    string
	Username  string
	IP        string
	UserAgent string
	Message   string
	Details   map[string]interface{}
}

var (
	securityLogger = log.New(os.Stdout, "[SECURITY] ", log.LstdFlags|log.Lmsgprefix)
	securityDB     *gorm.DB
	securityMu     sync.RWMutex
)

// SetSecurityLoggerDB sets the gorm DB used to persist security events.
// Call this during startup after the database is migrated; nil disables persistence.
func SetSecurityLoggerDB(db *gorm.DB) {
	securityMu.Lock()
	defer securityMu.Unlock()
	securityDB = db
}

func getSecurityDB() *gorm.DB {
	securityMu.RLock()
	defer securityMu.RUnlock()
	return securityDB
}

// sanitizeLogValue removes newlines and other characters that could break log parsing
func sanitizeLogValue(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\t", " ")
	if len(value) > 200 {
		value = value[:200] + "..."
	}
	return value
}

// LogSecurityEvent writes the event to the security log and, when a database
// is configured, persists it. Persistence is best-effort.
func LogSecurityEvent(event SecurityEvent) {
	msg := fmt.Sprintf("Event=%s UserID=%s Username=%s IP=%s UserAgent=%s Message=%s",
		sanitizeLogValue(string(event.EventType)),
		sanitizeLogValue(event.UserID),
		sanitizeLogValue(event.Username),
		sanitizeLogValue(event.IP),
		sanitizeLogValue(event.UserAgent),
		sanitizeLogValue(event.Message),
	)
	// Details are persisted but never printed.
	if len(event.Details) > 0 {
		msg = fmt.Sprintf("%s DetailsCount=%d", msg, len(event.Details))
	}
	securityLogger.Println(msg)

	db := getSecurityDB()
	if db == nil {
		return
	}

	var details datatypes.JSON
	if event.Details != nil {
		if b, err := json.Marshal(event.Details); err == nil {
			details = datatypes.JSON(b)
		}
	}

	entry := model.SecurityLog{
		EventType: string(event.EventType),
		UserID:    sanitizeLogValue(event.UserID),
		Username:  sanitizeLogValue(event.Username),
		IP:        sanitizeLogValue(event.IP),
		Location:  sanitizeLogValue(FormatLocation(GetIPLocation(event.IP))),
		UserAgent: sanitizeLogValue(event.UserAgent),
		Message:   sanitizeLogValue(event.Message),
		Details:   details,
	}
	if err := db.Create(&entry).Error; err != nil {
		securityLogger.Printf("Failed to persist security event: %v", err)
	}
}

// LogLoginSuccess logs a successful login event
func LogLoginSuccess(userID uint, username, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginSuccess,
		UserID:    fmt.Sprintf("%d", userID),
		Username:  username,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "User logged in successfully",
	})
}

// LogLoginFailure logs a failed login attempt
func LogLoginFailure(username, ip, userAgent, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginFailure,
		Username:  username,
		IP:        ip,
		UserAgent: userAgent,
		Message:   fmt.Sprintf("Login failed: %s", reason),
	})
}

// LogLogout logs a logout event
func LogLogout(userID uint, username, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLogout,
		UserID:    fmt.Sprintf("%d", userID),
		Username:  username,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "User logged out",
	})
}

// LogUnauthorizedAccess logs requests rejected for missing or bad credentials.
func LogUnauthorizedAccess(ip, resource, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventUnauthorizedAccess,
		IP:        ip,
		Message:   fmt.Sprintf("Unauthorized access to %s: %s", resource, reason),
	})
}

// LogForbiddenAccess logs an authenticated request the caller may not perform.
func LogForbiddenAccess(userID uint, username, ip, resource, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventForbiddenAccess,
		UserID:    fmt.Sprintf("%d", userID),
		Username:  username,
		IP:        ip,
		Message:   fmt.Sprintf("Forbidden access to %s: %s", resource, reason),
	})
}

// LogRateLimitExceeded logs when rate limit is exceeded
func LogRateLimitExceeded(ip, endpoint string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventRateLimitExceeded,
		IP:        ip,
		Message:   fmt.Sprintf("Rate limit exceeded for endpoint: %s", endpoint),
	})
}

// SetSecurityLoggerForTest swaps the logger and returns the previous one.
func SetSecurityLoggerForTest(logger *log.Logger) *log.Logger {
	prev := securityLogger
	securityLogger = logger
	return prev
}
