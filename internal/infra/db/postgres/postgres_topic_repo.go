package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"research-paper-ai/internal/domain"
	"research-paper-ai/internal/domain/model"
	"research-paper-ai/internal/domain/ports/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var _ repository.TopicRepository = (*topicRepo)(nil)

type topicRepo struct {
	pool *pgxpool.Pool
}

func NewTopicRepo(pool *pgxpool.Pool) *topicRepo {
	return &topicRepo{pool: pool}
}

func (r *topicRepo) Save(ctx context.Context, t *model.Topic) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	keywords, err := json.Marshal(t.Keywords)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO topics (id, title, description, field, keywords, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
  title = EXCLUDED.title,
  description = EXCLUDED.description,
  field = EXCLUDED.field,
  keywords = EXCLUDED.keywords;`

	_, err = r.pool.Exec(ctx, q, t.ID, t.Title, t.Description, t.Field, keywords, t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *topicRepo) FindByID(ctx context.Context, id string) (*model.Topic, error) {
	const q = `SELECT id, title, description, field, keywords, created_at FROM topics WHERE id = $1;`
	row := r.pool.QueryRow(ctx, q, id)
	t, err := scanTopic(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return t, nil
}

func (r *topicRepo) ListAll(ctx context.Context) ([]*model.Topic, error) {
	const q = `SELECT id, title, description, field, keywords, created_at FROM topics ORDER BY created_at DESC;`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Topic
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *topicRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM topics WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanTopic(row pgx.Row) (*model.Topic, error) {
	var (
		t        model.Topic
		keywords []byte
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Field, &keywords, &t.CreatedAt); err != nil {
		return nil, err
	}
	if len(keywords) > 0 {
		if err := json.Unmarshal(keywords, &t.Keywords); err != nil {
			return nil, err
		}
	}
	return &t, nil
}
