package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"meridianwealth/internal/config"
	"meridianwealth/internal/domain"
)

var db *gorm.DB

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
	connMaxIdleTime = 10 * time.Minute
	pingTimeout     = 5 * time.Second
)

// models returns every gorm model the service persists
func models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.PasswordResetToken{},
		&domain.OnboardingApplication{},
		&domain.QuestionnaireResponse{},
		&domain.ContactInquiry{},
		&domain.ContactNote{},
		&domain.Article{},
		&domain.Report{},
	}
}

// Init initializes the global database connection with connection pooling
func Init() error {
	cfg := config.Get()

	log.SetPrefix("[DB] ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	conn, err := Open(&cfg.Database)
	if err != nil {
		return err
	}
	db = conn

	if cfg.Database.IsPostgres() {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}

		sqlDB.SetMaxOpenConns(maxOpenConns)
		sqlDB.SetMaxIdleConns(maxIdleConns)
		sqlDB.SetConnMaxLifetime(connMaxLifetime)
		sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

		log.Printf("Connection pool configured: maxOpen=%d, maxIdle=%d", maxOpenConns, maxIdleConns)
	}

	if err := testConnection(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

// Open connects to the database described by cfg and migrates the schema.
// Used by Init for the global connection and by tests for throwaway ones.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	if cfg.IsPostgres() {
		log.Println("Connecting to PostgreSQL database...")
		dialector = postgres.Open(cfg.GetPostgresDSN())
	} else {
		log.Println("Connecting to SQLite database...")
		dbPath := cfg.GetSQLitePath()
		sqlDB, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		dialector = sqlite.Dialector{
			DriverName: "sqlite",
			DSN:        dbPath,
			Conn:       sqlDB,
		}
	}

	// Silent gorm logger: queries and their parameters never reach the logs.
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	conn, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}

// OpenTest opens a throwaway SQLite database at path and migrates the schema
func OpenTest(path string) (*gorm.DB, error) {
	conn, err := Open(&config.DatabaseConfig{URL: "sqlite:///" + path})
	if err != nil {
		return nil, err
	}
	if err := conn.AutoMigrate(models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}
	return conn, nil
}

// testConnection tests the database connection
func testConnection() error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	if db == nil {
		log.Fatal("Database not initialized. Call database.Init() first.")
	}
	return db
}

// HealthCheck performs a database health check
func HealthCheck() error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return testConnection()
}

// GetStats returns database connection statistics
func GetStats() (*sql.DBStats, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	stats := sqlDB.Stats()
	return &stats, nil
}
