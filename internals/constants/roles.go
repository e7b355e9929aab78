package constants

import "fmt"

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

const (
	ErrOnlyAdminsCanAccess = "Only administrators may access %s."
	ErrOnlyStaffCanAccess  = "Only staff may access %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}

var (
	StaffRoles = []string{
		RoleAdmin,
		RoleStaff,
	}

	AdminOnly = []string{
		RoleAdmin,
	}
)
