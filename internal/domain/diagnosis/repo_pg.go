package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"

	"github.com/ehr/diagnosis/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type diagnosisRepoPG struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewDiagnosisRepoPG stores records in the diagnoses table. Every statement
// runs under timeout, derived from the caller's context.
func NewDiagnosisRepoPG(pool *pgxpool.Pool, timeout time.Duration) DiagnosisRepository {
	return &diagnosisRepoPG{pool: pool, timeout: timeout}
}

func (r *diagnosisRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *diagnosisRepoPG) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func storeErr(err error, msg string, opts ...goerr.Option) error {
	return goerr.Wrap(fmt.Errorf("%w: %w", ErrStore, err), msg, opts...)
}

const dxCols = `id, client_id, diagnosis_name, justification,
	challenged_diagnosis, challenged_justification, predicted_date, updated_at`

func (r *diagnosisRepoPG) scanRow(row pgx.Row) (*Diagnosis, error) {
	var d Diagnosis
	err := row.Scan(&d.ID, &d.ClientID, &d.DiagnosisName, &d.Justification,
		&d.ChallengedDiagnosis, &d.ChallengedJustification, &d.PredictedDate, &d.UpdatedAt)
	return &d, err
}

func (r *diagnosisRepoPG) scanRows(rows pgx.Rows) ([]*Diagnosis, error) {
	defer rows.Close()
	items := []*Diagnosis{}
	for rows.Next() {
		d, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *diagnosisRepoPG) Create(ctx context.Context, d *Diagnosis) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	d.ID = uuid.New()
	stored, err := r.scanRow(r.conn(ctx).QueryRow(ctx, `
		INSERT INTO diagnoses (id, client_id, diagnosis_name, justification,
			challenged_diagnosis, challenged_justification, predicted_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+dxCols,
		d.ID, d.ClientID, d.DiagnosisName, d.Justification,
		d.ChallengedDiagnosis, d.ChallengedJustification, d.PredictedDate))
	if err != nil {
		return storeErr(err, "failed to insert diagnosis", goerr.V("client_id", d.ClientID))
	}
	*d = *stored
	return nil
}

func (r *diagnosisRepoPG) List(ctx context.Context) ([]*Diagnosis, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	rows, err := r.conn(ctx).Query(ctx, `SELECT `+dxCols+` FROM diagnoses ORDER BY predicted_date DESC`)
	if err != nil {
		return nil, storeErr(err, "failed to list diagnoses")
	}
	items, err := r.scanRows(rows)
	if err != nil {
		return nil, storeErr(err, "failed to scan diagnoses")
	}
	return items, nil
}

func (r *diagnosisRepoPG) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*Diagnosis, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+dxCols+` FROM diagnoses WHERE client_id = $1 ORDER BY predicted_date DESC`, clientID)
	if err != nil {
		return nil, storeErr(err, "failed to list client diagnoses", goerr.V("client_id", clientID))
	}
	items, err := r.scanRows(rows)
	if err != nil {
		return nil, storeErr(err, "failed to scan client diagnoses", goerr.V("client_id", clientID))
	}
	return items, nil
}

// updateSQL is fixed: each column takes its new value only when the paired
// flag is true, so absent fields keep their stored value.
const updateSQL = `
	UPDATE diagnoses SET
		diagnosis_name           = CASE WHEN $2::boolean THEN $3::text ELSE diagnosis_name END,
		justification            = CASE WHEN $4::boolean THEN $5::text ELSE justification END,
		challenged_diagnosis     = CASE WHEN $6::boolean THEN $7::text ELSE challenged_diagnosis END,
		challenged_justification = CASE WHEN $8::boolean THEN $9::text ELSE challenged_justification END,
		updated_at               = $10
	WHERE id = $1
	RETURNING ` + dxCols

func updateArgs(id uuid.UUID, f Fields, updatedAt time.Time) []interface{} {
	return []interface{}{
		id,
		f.DiagnosisName.Present(), f.DiagnosisName.Value(),
		f.Justification.Present(), f.Justification.Value(),
		f.ChallengedDiagnosis.Present(), f.ChallengedDiagnosis.Value(),
		f.ChallengedJustification.Present(), f.ChallengedJustification.Value(),
		updatedAt,
	}
}

func (r *diagnosisRepoPG) Update(ctx context.Context, id uuid.UUID, f Fields, updatedAt time.Time) (*Diagnosis, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	d, err := r.scanRow(r.conn(ctx).QueryRow(ctx, updateSQL, updateArgs(id, f, updatedAt)...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "no diagnosis to update", goerr.V("id", id))
	}
	if err != nil {
		return nil, storeErr(err, "failed to update diagnosis", goerr.V("id", id))
	}
	return d, nil
}

func (r *diagnosisRepoPG) DeleteAll(ctx context.Context) (int64, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM diagnoses`)
	if err != nil {
		return 0, storeErr(err, "failed to delete diagnoses")
	}
	return tag.RowsAffected(), nil
}

func (r *diagnosisRepoPG) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var n int64
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM diagnoses`).Scan(&n); err != nil {
		return 0, storeErr(err, "failed to count diagnoses")
	}
	return n, nil
}
