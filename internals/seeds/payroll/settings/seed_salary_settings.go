package settings

import (
	"context"
	"log"

	"gorm.io/gorm"

	payrollService "educenter_backend/internals/features/finance/payroll/service"
)

// SeedSalarySettings memastikan baris salary_settings default tersedia.
func SeedSalarySettings(db *gorm.DB) {
	s, err := payrollService.GetSettings(context.Background(), db)
	if err != nil {
		log.Printf("❌ Gagal seed salary settings: %v", err)
		return
	}
	log.Printf("✅ Salary settings: teacher=%.2f%% manager_active=%.2f%% manager_new=%.2f%%",
		s.SalarySettingTeacherPercent, s.SalarySettingManagerActivePercent, s.SalarySettingManagerNewPercent)
}
