package model

// Account roles. A user's role decides which route group it may call.
const (
	RoleAdmin     = "admin"
	RoleTherapist = "therapist"
	RolePatient   = "patient"
)

// IsValidRole reports whether role is one of the known account roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleTherapist, RolePatient:
		return true
	}
	return false
}
