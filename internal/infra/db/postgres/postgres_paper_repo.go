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
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var _ repository.PaperRepository = (*paperRepo)(nil)

type paperRepo struct {
	pool *pgxpool.Pool
}

func NewPaperRepo(pool *pgxpool.Pool) *paperRepo {
	return &paperRepo{pool: pool}
}

func (r *paperRepo) Save(ctx context.Context, p *model.Paper) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()

	topicIDs, err := json.Marshal(p.TopicIDs)
	if err != nil {
		return err
	}
	var scores []byte
	var total *float64
	if p.Score != nil {
		if scores, err = json.Marshal(p.Score.Dimensions); err != nil {
			return err
		}
		total = &p.Score.Total
	}

	const q = `
INSERT INTO papers (id, topic_ids, title, status, abstract, content, version, score_total, score_dimensions, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE SET
  topic_ids = EXCLUDED.topic_ids,
  title = EXCLUDED.title,
  status = EXCLUDED.status,
  abstract = EXCLUDED.abstract,
  content = EXCLUDED.content,
  version = EXCLUDED.version,
  score_total = EXCLUDED.score_total,
  score_dimensions = EXCLUDED.score_dimensions,
  updated_at = EXCLUDED.updated_at;`

	_, err = r.pool.Exec(ctx, q,
		p.ID, topicIDs, p.Title, string(p.Status), p.Abstract, p.Content, p.Version, total, scores, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *paperRepo) FindByID(ctx context.Context, id string) (*model.Paper, error) {
	const q = `
SELECT id, topic_ids, title, status, abstract, content, version, score_total, score_dimensions, created_at, updated_at
FROM papers WHERE id = $1;`
	row := r.pool.QueryRow(ctx, q, id)
	p, err := scanPaper(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *paperRepo) ListAll(ctx context.Context) ([]*model.Paper, error) {
	const q = `
SELECT id, topic_ids, title, status, abstract, content, version, score_total, score_dimensions, created_at, updated_at
FROM papers ORDER BY created_at DESC;`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *paperRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM papers WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPaper(row pgx.Row) (*model.Paper, error) {
	var (
		p        model.Paper
		status   string
		topicIDs []byte
		total    *float64
		scores   []byte
	)
	err := row.Scan(&p.ID, &topicIDs, &p.Title, &status, &p.Abstract, &p.Content, &p.Version, &total, &scores, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = model.PaperStatus(status)
	if len(topicIDs) > 0 {
		if err := json.Unmarshal(topicIDs, &p.TopicIDs); err != nil {
			return nil, err
		}
	}
	if total != nil {
		p.Score = &model.DimensionScores{Total: *total, Dimensions: map[string]float64{}}
		if len(scores) > 0 {
			if err := json.Unmarshal(scores, &p.Score.Dimensions); err != nil {
				return nil, err
			}
		}
	}
	return &p, nil
}
