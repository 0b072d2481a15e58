package mysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Repository aggregates all MySQL repositories
type Repository struct {
	ds *Datastore

	Schedule *ScheduleRepository
}

// NewRepository creates a new MySQL repository with all sub-repositories
func NewRepository(dsn string) (*Repository, error) {
	ds, err := NewDatastore(dsn)
	if err != nil {
		return nil, err
	}
	return newRepository(ds), nil
}

// NewRepositoryWithDialector creates a repository on an arbitrary GORM dialector
func NewRepositoryWithDialector(dialector gorm.Dialector) (*Repository, error) {
	ds, err := NewDatastoreWithDialector(dialector)
	if err != nil {
		return nil, err
	}
	return newRepository(ds), nil
}

func newRepository(ds *Datastore) *Repository {
	return &Repository{
		ds:       ds,
		Schedule: NewScheduleRepository(ds),
	}
}

// Migrate creates or updates all tables
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.ds.DB(ctx).AutoMigrate(&Schedule{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.ds.Close()
}
