package seeds

import (
	"gorm.io/gorm"

	salarySettings "educenter_backend/internals/seeds/payroll/settings"
	admin "educenter_backend/internals/seeds/users/admin"
)

func RunAllSeeds(db *gorm.DB) {
	//* User
	admin.SeedAdmin(db)

	//* Payroll
	salarySettings.SeedSalarySettings(db)
}
