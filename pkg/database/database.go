// Package database handles the gorm connection.
package database

import (
	"database/sql"

	"makao/pkg/logger"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB gorm instance
var DB *gorm.DB

// SQLDB underlying sql.DB, used for pool configuration
var SQLDB *sql.DB

// Connect opens the database connection.
func Connect(dbConfig gorm.Dialector, _logger gormlogger.Interface) {
	var err error
	DB, err = gorm.Open(dbConfig, &gorm.Config{
		Logger: _logger,
	})
	if err != nil {
		logger.ErrorString("Database", "Connect", err.Error())
		panic(err)
	}

	SQLDB, err = DB.DB()
	if err != nil {
		logger.ErrorString("Database", "SQLDB", err.Error())
		panic(err)
	}
}

// AutoMigrate migrates all registered tables.
func AutoMigrate(tables []interface{}) error {
	return DB.AutoMigrate(tables...)
}
