package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"gymdesk/internal/models"
)

// SetTrainers replaces the in-memory trainer cache. Called at startup with
// config-provided trainers and after any trainer mutation.
func (db *DB) SetTrainers(trainers []models.Trainer) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.trainersCache = make(map[string]models.Trainer, len(trainers))
	for _, trainer := range trainers {
		db.trainersCache[trainer.ID] = trainer
	}

	sorted := append([]models.Trainer(nil), trainers...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].SortOrder == sorted[j].SortOrder {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].SortOrder < sorted[j].SortOrder
	})
	db.sortedTrainers = sorted
}

// UpsertTrainers writes config trainers into the table and refreshes the cache.
func (db *DB) UpsertTrainers(ctx context.Context, trainers []models.Trainer) error {
	query := `INSERT INTO trainers (id, name, specialty, sort_order, is_active, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(id) DO UPDATE SET
                  name = excluded.name,
                  specialty = excluded.specialty,
                  sort_order = excluded.sort_order,
                  is_active = excluded.is_active,
                  updated_at = excluded.updated_at`
	now := time.Now()
	for i := range trainers {
		if _, err := db.ExecContext(ctx, query,
			trainers[i].ID, trainers[i].Name, trainers[i].Specialty,
			trainers[i].SortOrder, trainers[i].IsActive, now, now,
		); err != nil {
			return fmt.Errorf("failed to upsert trainer %s: %w", trainers[i].ID, err)
		}
	}

	db.SetTrainers(trainers)
	return nil
}

func (db *DB) GetTrainerByID(ctx context.Context, id string) (*models.Trainer, error) {
	db.mu.RLock()
	trainer, ok := db.trainersCache[id]
	db.mu.RUnlock()
	if ok {
		return &trainer, nil
	}

	var t models.Trainer
	query := `SELECT id, name, specialty, sort_order, is_active, created_at, updated_at FROM trainers WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Specialty, &t.SortOrder, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTrainerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trainer by id: %w", err)
	}
	return &t, nil
}

func (db *DB) GetActiveTrainers(ctx context.Context) ([]models.Trainer, error) {
	db.mu.RLock()
	cached := db.sortedTrainers
	db.mu.RUnlock()
	if len(cached) > 0 {
		active := make([]models.Trainer, 0, len(cached))
		for _, t := range cached {
			if t.IsActive {
				active = append(active, t)
			}
		}
		return active, nil
	}

	query := `SELECT id, name, specialty, sort_order, is_active, created_at, updated_at
              FROM trainers WHERE is_active = 1 ORDER BY sort_order, id`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active trainers: %w", err)
	}
	defer rows.Close()

	var trainers []models.Trainer
	for rows.Next() {
		var t models.Trainer
		if err := rows.Scan(&t.ID, &t.Name, &t.Specialty, &t.SortOrder, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trainer: %w", err)
		}
		trainers = append(trainers, t)
	}
	return trainers, rows.Err()
}

func (db *DB) DeactivateTrainer(ctx context.Context, id string) error {
	query := `UPDATE trainers SET is_active = 0, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate trainer: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrTrainerNotFound
	}

	db.mu.Lock()
	if t, ok := db.trainersCache[id]; ok {
		t.IsActive = false
		db.trainersCache[id] = t
		for i := range db.sortedTrainers {
			if db.sortedTrainers[i].ID == id {
				db.sortedTrainers[i].IsActive = false
			}
		}
	}
	db.mu.Unlock()

	return nil
}
