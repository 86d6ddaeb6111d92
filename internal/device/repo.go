package device

import (
	"errors"

	"github.com/minicast/minicast/internal/exception"
	"gorm.io/gorm"
)

// SqliteRepo is our renderer cache implementation for sqlite
type SqliteRepo struct {
	db *gorm.DB
}

// NewSqliteRepo returns a new renderer cache repo backed by sqlite
func NewSqliteRepo(db *gorm.DB) *SqliteRepo {
	return &SqliteRepo{db: db}
}

// GetAll returns all cached renderers
func (r *SqliteRepo) GetAll() ([]*Device, error) {
	devices := []*Device{}

	if result := r.db.Find(&devices); result.Error != nil {
		return nil, result.Error
	}

	return devices, nil
}

// Get returns a cached renderer by USN
func (r *SqliteRepo) Get(usn string) (*Device, error) {
	dev := Device{USN: usn}

	if result := r.db.First(&dev); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, exception.ErrRecordNotFound
		}

		return nil, result.Error
	}

	return &dev, nil
}

// Upsert creates or replaces a cached renderer
func (r *SqliteRepo) Upsert(dev *Device) (*Device, error) {
	if dev.USN == "" {
		return nil, errors.New("device usn cannot be empty")
	}

	if result := r.db.Save(dev); result.Error != nil {
		return nil, result.Error
	}

	return dev, nil
}

// Remove deletes a cached renderer
func (r *SqliteRepo) Remove(usn string) error {
	if usn == "" {
		return errors.New("device usn cannot be empty")
	}

	return r.db.Delete(&Device{USN: usn}).Error
}
