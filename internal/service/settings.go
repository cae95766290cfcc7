package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"potracker/internal/model"
)

const minSyncIntervalMinutes = 1

type SettingsService struct {
	db *sqlx.DB
}

func NewSettingsService(db *sqlx.DB) *SettingsService {
	return &SettingsService{db: db}
}

func (s *SettingsService) GetSyncSettings(ctx context.Context) (model.SyncSettings, error) {
	var settings model.SyncSettings
	err := s.db.GetContext(ctx, &settings,
		`SELECT auto_sync, interval_minutes FROM sync_settings WHERE id = 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.SyncSettings{AutoSync: false, IntervalMinutes: 5}, nil
		}
		return settings, fmt.Errorf("get sync settings: %w", err)
	}
	return settings, nil
}

func (s *SettingsService) UpdateSyncSettings(ctx context.Context, settings model.SyncSettings) (model.SyncSettings, error) {
	if settings.IntervalMinutes < minSyncIntervalMinutes {
		settings.IntervalMinutes = minSyncIntervalMinutes
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_settings (id, auto_sync, interval_minutes) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET auto_sync = excluded.auto_sync, interval_minutes = excluded.interval_minutes
	`, settings.AutoSync, settings.IntervalMinutes)
	if err != nil {
		return settings, fmt.Errorf("update sync settings: %w", err)
	}
	return settings, nil
}
