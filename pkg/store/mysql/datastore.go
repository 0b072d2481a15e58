package mysql

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Datastore wraps GORM DB
type Datastore struct {
	db *gorm.DB
}

// NewDatastore creates a new MySQL datastore
func NewDatastore(dsn string) (*Datastore, error) {
	ds, err := NewDatastoreWithDialector(mysql.Open(dsn))
	if err != nil {
		return nil, err
	}

	sqlDB, err := ds.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get generic database object: %w", err)
	}

	// Connection pool settings
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	return ds, nil
}

// NewDatastoreWithDialector opens a datastore on any GORM dialector (tests use sqlite)
func NewDatastoreWithDialector(dialector gorm.Dialector) (*Datastore, error) {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newLogger,
		SkipDefaultTransaction: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Datastore{db: db}, nil
}

// Close closes the database connection
func (ds *Datastore) Close() error {
	sqlDB, err := ds.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB returns the GORM DB instance bound to ctx
func (ds *Datastore) DB(ctx context.Context) *gorm.DB {
	return ds.db.WithContext(ctx)
}
