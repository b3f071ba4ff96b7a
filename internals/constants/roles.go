package constants

import "fmt"

// Platform-level roles stored on users.role.
const (
	RoleUser    = "user"
	RoleOwner   = "owner"
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleParent  = "parent"
)

// Error message templates for role guards.
const (
	ErrOnlyTeachersCanAccess = "Only teachers, admins or owners can access %s."
	ErrOnlyAdminsCanAccess   = "Only school owners or admins can access %s."
	ErrOnlyPlatformAdmins    = "Only platform admins can access %s."
)

func RoleErrorTeacher(feature string) string {
	return fmt.Sprintf(ErrOnlyTeachersCanAccess, feature)
}

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorPlatform(feature string) string {
	return fmt.Sprintf(ErrOnlyPlatformAdmins, feature)
}

// ==========================
// Grouped role slices
// ==========================
var (
	AllRoles = []string{
		RoleUser,
		RoleOwner,
		RoleAdmin,
		RoleTeacher,
		RoleStudent,
		RoleParent,
	}

	TeacherAndAbove = []string{
		RoleTeacher,
		RoleAdmin,
		RoleOwner,
	}

	SchoolManagers = []string{
		RoleOwner,
		RoleAdmin,
	}

	PlatformAdmins = []string{
		RoleAdmin,
	}
)

// IsValidRole reports whether r is one of AllRoles.
func IsValidRole(r string) bool {
	for _, v := range AllRoles {
		if v == r {
			return true
		}
	}
	return false
}
