package jobs

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"educenter_backend/internals/configs"
	"educenter_backend/internals/constants"
	paymentService "educenter_backend/internals/features/finance/payments/service"
	scheduler "educenter_backend/internals/features/users/auth/scheduler"
	helper "educenter_backend/internals/helpers"
)

// Start menjalankan cron: pembersihan blacklist token dan (opsional) billing bulanan.
// Caller wajib memanggil Stop() saat shutdown.
func Start(db *gorm.DB) *cron.Cron {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	if _, err := c.AddFunc(configs.CleanupCron, func() {
		scheduler.CleanupBlacklist(db)
	}); err != nil {
		log.Fatalf("[CRON] jadwal cleanup %q tidak valid: %v", configs.CleanupCron, err)
	}

	if configs.BillingCron != "" {
		if _, err := c.AddFunc(configs.BillingCron, func() {
			RunBilling(db, helper.CurrentMonth())
		}); err != nil {
			log.Fatalf("[CRON] jadwal billing %q tidak valid: %v", configs.BillingCron, err)
		}
	}

	log.Printf("[CRON] started cleanup=%q billing=%q", configs.CleanupCron, configs.BillingCron)
	c.Start()
	return c
}

// RunBilling: rekonsiliasi tagihan satu bulan dari cron.
func RunBilling(db *gorm.DB, month string) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.BatchTimeout)
	defer cancel()

	res, err := paymentService.CalculateMonthly(ctx, db, month)
	if err != nil {
		log.Printf("[CRON] ❌ billing %s gagal sebagian: %v", month, err)
	}
	if res != nil {
		log.Printf("[CRON] billing %s: processed=%d skipped=%d", month, res.Processed, res.Skipped)
	}
}
