package database

import (
	"gorm.io/gorm"

	"go-timeclock/internal/model"
)

// openShiftIndex allows at most one live open shift per user.
const openShiftIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_attendances_one_open
	ON attendances (user_email) WHERE clock_out IS NULL AND deleted_at IS NULL`

// Migrate creates or updates every table the app owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Privilege{},
		&model.Role{},
		&model.User{},
		&model.Attendance{},
		&model.SalesTransaction{},
		&model.RegisterSession{},
	); err != nil {
		return err
	}
	return db.Exec(openShiftIndex).Error
}
