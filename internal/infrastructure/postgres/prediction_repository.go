package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vi31/anxiety-predictor/internal/domain/model"
	"github.com/vi31/anxiety-predictor/internal/domain/port"
)

// Querier abstracts pgxpool.Pool and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PredictionRepository implements port.PredictionRepository using PostgreSQL.
type PredictionRepository struct {
	db Querier
}

var _ port.PredictionRepository = (*PredictionRepository)(nil)

// NewPredictionRepository creates a new PostgreSQL-backed prediction repository.
func NewPredictionRepository(db Querier) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// contributionRow keeps contributions as an array; JSONB objects do not
// preserve key order.
type contributionRow struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

const selectColumns = `id, kind, input, score, contributions, baseline, model_version, created_at`

// Save persists a prediction record. Saving the same id twice is a no-op.
func (r *PredictionRepository) Save(ctx context.Context, record *model.PredictionRecord) error {
	input, err := json.Marshal(record.Input())
	if err != nil {
		return fmt.Errorf("failed to encode input: %w", err)
	}
	contributions, err := encodeContributions(record.Contributions())
	if err != nil {
		return err
	}

	query := `
		INSERT INTO predictions (
			id, kind, input, score, contributions,
			baseline, model_version, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`

	_, err = r.db.Exec(ctx, query,
		record.ID(),
		string(record.Kind()),
		input,
		record.Score(),
		contributions,
		record.Baseline(),
		record.ModelVersion(),
		record.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}
	return nil
}

// FindByID retrieves a record by its identifier.
func (r *PredictionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PredictionRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM predictions WHERE id = $1`

	record, err := scanRecord(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrPredictionNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListRecent returns up to limit records, newest first.
func (r *PredictionRepository) ListRecent(ctx context.Context, limit int) ([]*model.PredictionRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM predictions ORDER BY created_at DESC, id LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var records []*model.PredictionRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate predictions: %w", err)
	}
	return records, nil
}

func scanRecord(row pgx.Row) (*model.PredictionRecord, error) {
	var (
		id           uuid.UUID
		kindStr      string
		inputJSON    []byte
		score        float64
		contribJSON  []byte
		baseline     string
		modelVersion string
		createdAt    time.Time
	)

	err := row.Scan(&id, &kindStr, &inputJSON, &score, &contribJSON, &baseline, &modelVersion, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan prediction: %w", err)
	}

	kind, err := model.ParseRequestKind(kindStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse kind: %w", err)
	}

	var input model.InputRecord
	if err := json.Unmarshal(inputJSON, &input); err != nil {
		return nil, fmt.Errorf("failed to decode input: %w", err)
	}

	contributions, err := decodeContributions(contribJSON)
	if err != nil {
		return nil, err
	}

	return model.ReconstructPredictionRecord(
		id, kind, input, score, contributions,
		baseline, modelVersion, createdAt,
	), nil
}

func encodeContributions(cs model.Contributions) ([]byte, error) {
	if len(cs) == 0 {
		return nil, nil
	}
	rows := make([]contributionRow, len(cs))
	for i, c := range cs {
		rows[i] = contributionRow{Feature: c.Feature, Value: c.Value}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to encode contributions: %w", err)
	}
	return data, nil
}

func decodeContributions(data []byte) (model.Contributions, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var rows []contributionRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode contributions: %w", err)
	}
	cs := make(model.Contributions, len(rows))
	for i, row := range rows {
		cs[i] = model.Contribution{Feature: row.Feature, Value: row.Value}
	}
	return cs, nil
}
