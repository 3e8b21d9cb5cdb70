package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/insertapp/insert/pkg/models"
)

// ErrScheduleNotFound means the entry does not exist or is owned by
// another user.
var ErrScheduleNotFound = errors.New("schedule entry not found")

// ScheduleService stores a user's planned place visits.
type ScheduleService struct {
	db     DatabaseQuerier
	graph  *PlaceGraphService
	logger *logrus.Logger
}

func NewScheduleService(db DatabaseQuerier, graph *PlaceGraphService, logger *logrus.Logger) *ScheduleService {
	return &ScheduleService{db: db, graph: graph, logger: logger}
}

func (s *ScheduleService) Create(ctx context.Context, userID uuid.UUID, req *models.ScheduleCreateRequest) (*models.ScheduleEntry, error) {
	query := `
		INSERT INTO schedule_entries (id, user_id, place_name, address, category, visit_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, user_id, place_name, address, category, visit_date, created_at`

	var entry models.ScheduleEntry
	err := s.db.QueryRow(ctx, query,
		uuid.New(), userID, req.PlaceName, req.Address, req.Category, req.VisitDate,
	).Scan(
		&entry.ID, &entry.UserID, &entry.PlaceName, &entry.Address,
		&entry.Category, &entry.VisitDate, &entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule entry: %w", err)
	}

	// The save graph is enrichment only; a graph outage never fails the write.
	if s.graph != nil {
		_ = s.graph.RecordSave(ctx, userID, entry.PlaceName, string(entry.Category))
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"place":   entry.PlaceName,
	}).Info("Schedule entry created")

	return &entry, nil
}

func (s *ScheduleService) List(ctx context.Context, userID uuid.UUID) ([]models.ScheduleEntry, error) {
	query := `
		SELECT id, user_id, place_name, address, category, visit_date, created_at
		FROM schedule_entries
		WHERE user_id = $1
		ORDER BY visit_date ASC, created_at ASC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule entries: %w", err)
	}
	defer rows.Close()

	var entries []models.ScheduleEntry
	for rows.Next() {
		var entry models.ScheduleEntry
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.PlaceName, &entry.Address,
			&entry.Category, &entry.VisitDate, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (s *ScheduleService) Delete(ctx context.Context, userID, entryID uuid.UUID) error {
	query := `DELETE FROM schedule_entries WHERE id = $1 AND user_id = $2`

	tag, err := s.db.Exec(ctx, query, entryID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete schedule entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrScheduleNotFound
	}
	return nil
}
