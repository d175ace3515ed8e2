// Seeder mandiri: go run ./cmd/seed
package main

import (
	"log"

	"educenter_backend/internals/configs"
	database "educenter_backend/internals/databases"
	"educenter_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()

	db := configs.InitSeederDB()
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Gagal migrasi sebelum seeding: %v", err)
	}

	seeds.RunAllSeeds(db)
	log.Println("✅ Seeding selesai")

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
