package model

import "go-timeclock/internal/attendance"

// Role is the worker category of a user. Its code doubles as the
// attendance role used by hour computation.
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // owner, cast, driver
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleOwner  = "owner"
	RoleCast   = "cast"
	RoleDriver = "driver"
)

// AttendanceRole maps the role code to the computation role.
func (r *Role) AttendanceRole() attendance.Role {
	if r == nil {
		return attendance.RoleUnknown
	}
	return attendance.ParseRole(r.Code)
}

var DefaultRoles = []Role{
	{
		Code:        RoleOwner,
		Name:        "Owner",
		Description: "Store owner with full access",
	},
	{
		Code:        RoleCast,
		Name:        "Cast",
		Description: "Floor staff",
	},
	{
		Code:        RoleDriver,
		Name:        "Driver",
		Description: "Pick-up and drop-off driver",
	},
}

// StaffPrivileges are granted to the cast and driver roles.
var StaffPrivileges = []string{
	PrivAttendanceClock,
	PrivTransactionCreate,
	PrivRegisterOperate,
}
