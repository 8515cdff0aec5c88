package config

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	switch c.DBDriver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", c.DBUSER, c.DBPass, c.DBHost, c.DBPort, c.DBName)
	case "sqlite":
		return c.DBName
	default:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.DBHost, c.DBPort, c.DBUSER, c.DBPass, c.DBName, c.DBSSLMode)
	}
}

func (c *Config) dialector() gorm.Dialector {
	if c.IsTest() {
		return sqlite.Open(fmt.Sprintf("file:aba_test_%d?mode=memory&cache=shared", time.Now().UnixNano()))
	}
	switch c.DBDriver {
	case "mysql":
		return mysql.Open(c.DSN())
	case "sqlite":
		return sqlite.Open(c.DSN())
	default:
		return postgres.Open(c.DSN())
	}
}

// ConnectDatabase opens the relational store described by cfg. With APPENV=test
// it returns a fresh in-memory sqlite database.
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.IsTest() {
		logLevel = logger.Silent
	}

	db, err := gorm.Open(cfg.dialector(), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
