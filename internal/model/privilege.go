package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "attendance:update"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivUserView            = "user:view"
	PrivUserCreate          = "user:create"
	PrivUserUpdate          = "user:update"
	PrivUserDelete          = "user:delete"
	PrivUserUpdatePrivilege = "user:update_privilege"

	PrivAttendanceClock   = "attendance:clock"
	PrivAttendanceViewAll = "attendance:view_all"
	PrivAttendanceUpdate  = "attendance:update"
	PrivAttendanceDelete  = "attendance:delete"

	PrivTransactionView   = "transaction:view"
	PrivTransactionCreate = "transaction:create"
	PrivTransactionDelete = "transaction:delete"

	PrivRegisterOperate = "register:operate"
	PrivPayrollView     = "payroll:view"
)

var DefaultPrivileges = []Privilege{
	{Code: PrivUserView, Name: "View User"},
	{Code: PrivUserCreate, Name: "Create User"},
	{Code: PrivUserUpdate, Name: "Update User"},
	{Code: PrivUserDelete, Name: "Delete User"},
	{Code: PrivUserUpdatePrivilege, Name: "Update User Privileges"},
	{Code: PrivAttendanceClock, Name: "Clock In/Out"},
	{Code: PrivAttendanceViewAll, Name: "View All Attendance"},
	{Code: PrivAttendanceUpdate, Name: "Edit Attendance"},
	{Code: PrivAttendanceDelete, Name: "Delete Attendance"},
	{Code: PrivTransactionView, Name: "View Sales"},
	{Code: PrivTransactionCreate, Name: "Record Sale"},
	{Code: PrivTransactionDelete, Name: "Delete Sale"},
	{Code: PrivRegisterOperate, Name: "Open/Close Register"},
	{Code: PrivPayrollView, Name: "View Payroll"},
}
