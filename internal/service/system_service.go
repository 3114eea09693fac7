package service

import (
	"context"
	"database/sql"
	"fmt"
	"maps"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/database"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/model"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db       *sql.DB
	features map[string]bool
}

// NewSystemService creates a new SystemService. features is reported as-is by CheckVersion.
func NewSystemService(db *sql.DB, features map[string]bool) *SystemService {
	return &SystemService{
		db:       db,
		features: maps.Clone(features),
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion reports the application version, the applied schema version and whether
// embedded migrations are still pending.
func (s *SystemService) CheckVersion(ctx context.Context) (model.VersionInfo, error) {
	current, pending, err := database.SchemaVersion(ctx, s.db)
	if err != nil {
		return model.VersionInfo{}, err
	}

	features := maps.Clone(s.features)
	if features == nil {
		features = map[string]bool{}
	}

	info := model.VersionInfo{
		AppVersion:      version.Version,
		DbVersion:       fmt.Sprintf("%d", current),
		Features:        features,
		MigrationNeeded: pending,
	}
	if pending {
		msg := "database schema is behind the application; restart the server to apply migrations"
		info.MigrationMessage = &msg
	}
	return info, nil
}
