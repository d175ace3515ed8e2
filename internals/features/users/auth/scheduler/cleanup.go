package scheduler

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"educenter_backend/internals/configs"
	authRepo "educenter_backend/internals/features/users/auth/repository"
)

const cleanupBatch = 100

// CleanupBlacklist menghapus token blacklist yang sudah lewat TTL.
// Dipanggil dari cron (lihat internals/jobs).
func CleanupBlacklist(db *gorm.DB) {
	ttlDays := configs.TokenBlacklistTTLDays
	if ttlDays <= 0 {
		ttlDays = 7
	}

	log.Println("[CLEANUP] Menjalankan pembersihan token_blacklist...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleteBefore := time.Now().UTC().Add(-time.Duration(ttlDays) * 24 * time.Hour)
	var total int64
	for {
		n, err := authRepo.PurgeExpiredBlacklist(ctx, db, deleteBefore, cleanupBatch)
		if err != nil {
			log.Printf("[CLEANUP ERROR] Gagal hapus token: %v", err)
			return
		}
		total += n
		if n < cleanupBatch {
			break
		}
	}

	if total > 0 {
		log.Printf("[CLEANUP] %d token kadaluarsa dihapus", total)
	} else {
		log.Println("[CLEANUP] Tidak ada token yang memenuhi syarat dihapus")
	}
}
