package database

import (
	"log"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"educenter_backend/internals/configs"
)

var DB *gorm.DB

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:  configs.NewGormLogger(),
		NowFunc: func() time.Time { return time.Now().UTC() },
		// relasi hanya untuk Preload, constraint diurus manual
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

func ConnectDB() {
	driver := strings.ToLower(configs.GetEnv("DB_DRIVER", "postgres"))

	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case "sqlite":
		// mode lokal tanpa PostgreSQL
		path := configs.GetEnv("SQLITE_PATH", "educenter.db")
		log.Printf("🔌 Koneksi ke SQLite (%s)...", path)
		db, err = OpenSQLite(path)
	default:
		log.Println("🔌 Koneksi ke PostgreSQL...")
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  configs.PostgresDSN(),
			PreferSimpleProtocol: true,
		}), gormConfig())
	}
	if err != nil {
		log.Fatalf("❌ Gagal konek DB: %v", err)
	}
	DB = db
	log.Println("✅ DB connected.")

	if configs.GetEnvBool("DB_AUTO_MIGRATE", true) {
		if err := AutoMigrate(DB); err != nil {
			log.Fatalf("❌ Gagal migrasi: %v", err)
		}
		log.Println("✅ Migrasi selesai.")
	}
}

// OpenSQLite dipakai untuk mode lokal & test (":memory:" / file).
func OpenSQLite(path string) (*gorm.DB, error) {
	cfg := gormConfig()
	if path == ":memory:" || strings.HasPrefix(path, "file::memory:") {
		cfg.Logger = gormLogger.Default.LogMode(gormLogger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, err
	}
	// sqlite hanya aman dengan satu writer
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func TunePool() {
	if strings.EqualFold(configs.GetEnv("DB_DRIVER", "postgres"), "sqlite") {
		return
	}
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(configs.GetEnvInt("DB_MAX_OPEN_CONNS", 20))
	sqlDB.SetMaxIdleConns(configs.GetEnvInt("DB_MAX_IDLE_CONNS", 10))
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := Ping(DB); err != nil {
			log.Printf("warm-up ping err: %v", err)
		}
	}()
}

func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
