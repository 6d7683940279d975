package diagnosis

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type diagnosisRepoMemory struct {
	mu    sync.RWMutex
	items []*Diagnosis // insertion order
	byID  map[uuid.UUID]*Diagnosis
}

// NewDiagnosisRepoMemory keeps records in process memory. It backs
// STORE_DRIVER=memory and the tests.
func NewDiagnosisRepoMemory() DiagnosisRepository {
	return &diagnosisRepoMemory{byID: make(map[uuid.UUID]*Diagnosis)}
}

func (r *diagnosisRepoMemory) Create(ctx context.Context, d *Diagnosis) error {
	if err := ctx.Err(); err != nil {
		return storeErr(err, "failed to insert diagnosis")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	d.ID = uuid.New()
	stored := d.clone()
	r.items = append(r.items, stored)
	r.byID[stored.ID] = stored
	return nil
}

// newestFirst copies the matching records sorted by predicted_date desc.
// Ties keep insertion order.
func (r *diagnosisRepoMemory) newestFirst(match func(*Diagnosis) bool) []*Diagnosis {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Diagnosis{}
	for _, d := range r.items {
		if match(d) {
			out = append(out, d.clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PredictedDate.After(out[j].PredictedDate)
	})
	return out
}

func (r *diagnosisRepoMemory) List(ctx context.Context) ([]*Diagnosis, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr(err, "failed to list diagnoses")
	}
	return r.newestFirst(func(*Diagnosis) bool { return true }), nil
}

func (r *diagnosisRepoMemory) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*Diagnosis, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr(err, "failed to list client diagnoses", goerr.V("client_id", clientID))
	}
	return r.newestFirst(func(d *Diagnosis) bool { return d.ClientID == clientID }), nil
}

func (r *diagnosisRepoMemory) Update(ctx context.Context, id uuid.UUID, f Fields, updatedAt time.Time) (*Diagnosis, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr(err, "failed to update diagnosis", goerr.V("id", id))
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.byID[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "no diagnosis to update", goerr.V("id", id))
	}
	f.apply(d)
	at := updatedAt
	d.UpdatedAt = &at
	return d.clone(), nil
}

func (r *diagnosisRepoMemory) DeleteAll(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, storeErr(err, "failed to delete diagnoses")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.items))
	r.items = nil
	r.byID = make(map[uuid.UUID]*Diagnosis)
	return n, nil
}

func (r *diagnosisRepoMemory) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, storeErr(err, "failed to count diagnoses")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}
