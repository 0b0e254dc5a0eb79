package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/city-lottery/internal/database"
	"github.com/stwalsh4118/city-lottery/internal/models"
)

// Limits applied to List.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// SaveRepository defines the interface for save slot data access operations.
type SaveRepository interface {
	// Create stores a new save. A nil ID is replaced with a generated one and
	// CreatedAt is set to the current time.
	Create(ctx context.Context, save *models.CitySave) error

	// FindByID returns the save with the given id.
	// Returns nil, nil if no save is found (not an error).
	FindByID(ctx context.Context, id uuid.UUID) (*models.CitySave, error)

	// List returns the most recent saves, newest first.
	// Returns an empty slice if there are no saves.
	List(ctx context.Context, limit int) ([]models.CitySave, error)
}

// prepareSave fills in the generated fields of a new save.
func prepareSave(save *models.CitySave) {
	if save.ID == uuid.Nil {
		save.ID = uuid.New()
	}
	// Postgres keeps microseconds
	save.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// saveRepository is the Postgres implementation of SaveRepository.
type saveRepository struct {
	db *database.Database
}

// NewSaveRepository creates a SaveRepository backed by Postgres.
func NewSaveRepository(db *database.Database) SaveRepository {
	return &saveRepository{
		db: db,
	}
}

const saveColumns = `
	id,
	city_name,
	year,
	month,
	low_wealth_population,
	med_wealth_population,
	high_wealth_population,
	residential_population,
	funds,
	ordinance_id,
	ordinance_data,
	created_at`

func (r *saveRepository) Create(ctx context.Context, save *models.CitySave) error {
	prepareSave(save)

	query := `INSERT INTO city_saves (` + saveColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Pool.Exec(ctx, query,
		save.ID,
		save.CityName,
		int64(save.Year),
		int64(save.Month),
		save.LowWealthPopulation,
		save.MedWealthPopulation,
		save.HighWealthPopulation,
		save.ResidentialPopulation,
		save.Funds,
		int64(save.OrdinanceID),
		save.OrdinanceData,
		save.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert save %s: %w", save.ID, err)
	}
	return nil
}

func (r *saveRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.CitySave, error) {
	query := `SELECT ` + saveColumns + ` FROM city_saves WHERE id = $1`

	save, err := scanSave(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		// Handle no rows found - this is not an error at the repository level
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query save %s: %w", id, err)
	}
	return save, nil
}

func (r *saveRepository) List(ctx context.Context, limit int) ([]models.CitySave, error) {
	query := `SELECT ` + saveColumns + ` FROM city_saves ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.Pool.Query(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query saves: %w", err)
	}
	defer rows.Close()

	saves := []models.CitySave{}
	for rows.Next() {
		save, err := scanSave(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan save row: %w", err)
		}
		saves = append(saves, *save)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating save rows: %w", err)
	}

	return saves, nil
}

func scanSave(row pgx.Row) (*models.CitySave, error) {
	var save models.CitySave
	var year, month, ordinanceID int64

	err := row.Scan(
		&save.ID,
		&save.CityName,
		&year,
		&month,
		&save.LowWealthPopulation,
		&save.MedWealthPopulation,
		&save.HighWealthPopulation,
		&save.ResidentialPopulation,
		&save.Funds,
		&ordinanceID,
		&save.OrdinanceData,
		&save.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	save.Year = uint32(year)
	save.Month = uint32(month)
	save.OrdinanceID = uint32(ordinanceID)
	return &save, nil
}
