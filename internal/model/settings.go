package model

type SyncSettings struct {
	AutoSync        bool `json:"auto_sync" db:"auto_sync"`
	IntervalMinutes int  `json:"interval_minutes" db:"interval_minutes"`
}
