package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var Instance *gorm.DB

// Open connects to MySQL when a DSN is given and to a SQLite file otherwise
func Open(mysqlDSN, sqliteFile string) (*gorm.DB, error) {
	dialector := sqlite.Open(sqliteFile)
	if mysqlDSN != "" {
		dialector = mysql.Open(mysqlDSN)
	}
	return gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		Logger:                 logger.Default.LogMode(logger.Warn),
	})
}

func Init(mysqlDSN, sqliteFile string) {
	db, err := Open(mysqlDSN, sqliteFile)
	if err != nil || db == nil {
		panic(err)
	}
	Instance = db
}
