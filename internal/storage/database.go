package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrPreferenceNotFound is returned when a client has no stored preference.
var ErrPreferenceNotFound = errors.New("preference not found")

type Database struct {
	db *gorm.DB
}

func NewDatabase(path string) (*Database, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&Preference{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) GetPreference(clientID string) (*Preference, error) {
	var pref Preference
	result := d.db.Where("client_id = ?", clientID).First(&pref)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPreferenceNotFound, clientID)
		}
		return nil, result.Error
	}
	return &pref, nil
}

// SavePreference creates or updates the preference of clientID.
func (d *Database) SavePreference(clientID string, useCelsius bool) (*Preference, error) {
	if clientID == "" {
		return nil, fmt.Errorf("client id is empty")
	}

	pref := &Preference{ClientID: clientID, UseCelsius: useCelsius}
	result := d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"use_celsius", "updated_at"}),
	}).Create(pref)
	if result.Error != nil {
		return nil, result.Error
	}

	return d.GetPreference(clientID)
}

func (d *Database) ListPreferences() ([]Preference, error) {
	var prefs []Preference
	result := d.db.Order("client_id asc").Find(&prefs)
	if result.Error != nil {
		return nil, result.Error
	}
	return prefs, nil
}

func (d *Database) DeletePreference(clientID string) error {
	result := d.db.Unscoped().Where("client_id = ?", clientID).Delete(&Preference{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrPreferenceNotFound, clientID)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
