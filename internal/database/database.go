package database

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/xelth-com/eckscalego/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	embeddedDataPath = "./scale_db"
	embeddedPort     = 5434
)

// DB wraps gorm.DB and includes a reference to an embedded process if active
type DB struct {
	*gorm.DB
	embedded *embeddedpostgres.EmbeddedPostgres
}

// removeStalePidFile clears a postmaster.pid left by a crashed embedded
// instance, but only when the recorded PID is no longer running.
func removeStalePidFile() {
	pidFile := filepath.Join(embeddedDataPath, "postmaster.pid")
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return
	}
	line, _, _ := strings.Cut(string(data), "\n")
	pid, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return
	}
	if proc, err := os.FindProcess(pid); err == nil {
		if err := proc.Signal(syscall.Signal(0)); err == nil {
			// Still alive; leave it to the startup failure path
			return
		}
	}
	log.Printf("🧹 Removing stale postmaster.pid (PID %d not running)", pid)
	os.Remove(pidFile)
}

// portInUse checks whether something already listens on the embedded port
func portInUse(port int) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Connect establishes a connection to PostgreSQL. With localhost and an
// empty password it boots an embedded instance for zero-config operation.
func Connect(cfg config.DatabaseConfig) (*DB, error) {
	var embedded *embeddedpostgres.EmbeddedPostgres

	isEmbedded := cfg.Host == "localhost" && cfg.Password == ""
	password := cfg.Password

	if isEmbedded {
		log.Println("📦 Mode: [Embedded PostgreSQL]")

		removeStalePidFile()
		if portInUse(embeddedPort) {
			return nil, fmt.Errorf("port %d is already in use", embeddedPort)
		}

		embedded = embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
			DataPath(embeddedDataPath).
			Port(uint32(embeddedPort)).
			Database(cfg.Database).
			Username(cfg.Username).
			Password("postgres"))

		if err := embedded.Start(); err != nil {
			return nil, fmt.Errorf("failed to start embedded database: %w", err)
		}

		cfg.Port = strconv.Itoa(embeddedPort)
		password = "postgres"
		log.Printf("✅ Embedded PostgreSQL started on port %d", embeddedPort)
	} else {
		log.Printf("🌐 Mode: [External PostgreSQL] %s:%s", cfg.Host, cfg.Port)
	}

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, password, cfg.Database,
	)

	logLevel := logger.Info
	if cfg.Quiet {
		logLevel = logger.Silent
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		if embedded != nil {
			_ = embedded.Stop()
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Println("✅ Database connection established")

	return &DB{DB: db, embedded: embedded}, nil
}

// Close shuts down the connection and the embedded process, if any
func (db *DB) Close() error {
	if db.embedded != nil {
		log.Println("🛑 Stopping embedded PostgreSQL...")
		_ = db.embedded.Stop()
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate triggers GORM schema synchronization
func (db *DB) AutoMigrate(models ...interface{}) error {
	return db.DB.AutoMigrate(models...)
}
