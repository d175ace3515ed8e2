package admin

import (
	"log"
	"strings"

	"gorm.io/gorm"

	"educenter_backend/internals/configs"
	"educenter_backend/internals/constants"
	authService "educenter_backend/internals/features/users/auth/service"
	"educenter_backend/internals/features/users/user/model"
)

const defaultAdminUserName = "admin"

// SeedAdmin membuat akun admin pertama kalau belum ada admin sama sekali.
// Tanpa ADMIN_PASSWORD seed dilewati.
func SeedAdmin(db *gorm.DB) {
	var count int64
	if err := db.Model(&model.UserModel{}).Where("role = ?", constants.RoleAdmin).Count(&count).Error; err != nil {
		log.Printf("❌ Gagal cek admin: %v", err)
		return
	}
	if count > 0 {
		log.Println("ℹ️ Admin sudah ada, seed dilewati.")
		return
	}

	userName := strings.TrimSpace(configs.GetEnv("ADMIN_USERNAME", defaultAdminUserName))
	password := configs.GetEnv("ADMIN_PASSWORD")
	if password == "" {
		log.Println("⚠️ ADMIN_PASSWORD belum diset, admin tidak dibuat")
		return
	}

	hashed, err := authService.HashPassword(password)
	if err != nil {
		log.Printf("❌ Gagal hash password admin: %v", err)
		return
	}

	admin := model.UserModel{
		UserName: userName,
		FullName: "Administrator",
		Password: hashed,
		Role:     constants.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("❌ Gagal insert admin '%s': %v", userName, err)
		return
	}
	log.Printf("✅ Admin '%s' berhasil dibuat", userName)
}
