package diagnosis

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DiagnosisRepository persists diagnosis records. Lists are ordered by
// predicted_date, newest first; the order of equal dates is unspecified.
type DiagnosisRepository interface {
	// Create assigns d.ID and stores d, including the caller's PredictedDate.
	Create(ctx context.Context, d *Diagnosis) error
	List(ctx context.Context) ([]*Diagnosis, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*Diagnosis, error)
	// Update writes the present fields plus updated_at and returns the
	// resulting record, or ErrNotFound.
	Update(ctx context.Context, id uuid.UUID, f Fields, updatedAt time.Time) (*Diagnosis, error)
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
}
