package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stwalsh4118/city-lottery/internal/database"
	"github.com/stwalsh4118/city-lottery/internal/models"
)

// sqliteSaveRepository is the embedded SQLite implementation of
// SaveRepository.
type sqliteSaveRepository struct {
	db *database.SQLite
}

// NewSQLiteSaveRepository creates a SaveRepository backed by SQLite.
func NewSQLiteSaveRepository(db *database.SQLite) SaveRepository {
	return &sqliteSaveRepository{
		db: db,
	}
}

func (r *sqliteSaveRepository) Create(ctx context.Context, save *models.CitySave) error {
	prepareSave(save)

	query := `INSERT INTO city_saves (` + saveColumns + `)
		VALUES (:id, :city_name, :year, :month, :low_wealth_population,
			:med_wealth_population, :high_wealth_population, :residential_population,
			:funds, :ordinance_id, :ordinance_data, :created_at)`

	if _, err := r.db.DB.NamedExecContext(ctx, query, save); err != nil {
		return fmt.Errorf("failed to insert save %s: %w", save.ID, err)
	}
	return nil
}

func (r *sqliteSaveRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.CitySave, error) {
	query := `SELECT ` + saveColumns + ` FROM city_saves WHERE id = ?`

	var save models.CitySave
	if err := r.db.DB.GetContext(ctx, &save, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query save %s: %w", id, err)
	}
	return &save, nil
}

func (r *sqliteSaveRepository) List(ctx context.Context, limit int) ([]models.CitySave, error) {
	query := `SELECT ` + saveColumns + ` FROM city_saves ORDER BY created_at DESC, rowid DESC LIMIT ?`

	saves := []models.CitySave{}
	if err := r.db.DB.SelectContext(ctx, &saves, query, clampLimit(limit)); err != nil {
		return nil, fmt.Errorf("failed to query saves: %w", err)
	}
	return saves, nil
}
