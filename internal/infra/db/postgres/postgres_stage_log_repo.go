package postgres

import (
	"context"
	"time"

	"research-paper-ai/internal/domain"
	"research-paper-ai/internal/domain/model"
	"research-paper-ai/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"
)

var _ repository.StageLogRepository = (*stageLogRepo)(nil)

// stageLogRepo persists the append-only audit history of stage invocations.
// Record IDs are ULIDs so lexicographic order matches creation order.
type stageLogRepo struct {
	pool *pgxpool.Pool
}

func NewStageLogRepo(pool *pgxpool.Pool) *stageLogRepo {
	return &stageLogRepo{pool: pool}
}

func (r *stageLogRepo) Append(ctx context.Context, rec *model.StageRecord) error {
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	const q = `
INSERT INTO stage_records (id, paper_id, agent_role, step_name, iteration, input_context, output, model_signature, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`

	_, err := r.pool.Exec(ctx, q,
		rec.ID, rec.PaperID, rec.AgentRole, rec.StepName, rec.Iteration,
		rec.InputContext, rec.Output, rec.ModelSignature, rec.CreatedAt)
	return err
}

func (r *stageLogRepo) ListByPaper(ctx context.Context, paperID string) ([]*model.StageRecord, error) {
	const q = `
SELECT id, paper_id, agent_role, step_name, iteration, input_context, output, model_signature, created_at
FROM stage_records WHERE paper_id = $1 ORDER BY id;`

	rows, err := r.pool.Query(ctx, q, paperID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.StageRecord
	for rows.Next() {
		var rec model.StageRecord
		if err := rows.Scan(
			&rec.ID, &rec.PaperID, &rec.AgentRole, &rec.StepName, &rec.Iteration,
			&rec.InputContext, &rec.Output, &rec.ModelSignature, &rec.CreatedAt,
		); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
