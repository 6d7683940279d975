package diagnosis

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
)

func TestSeed(t *testing.T) {
	repo := NewDiagnosisRepoMemory()
	ctx := context.Background()
	now := time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC)

	// Existing rows are replaced.
	gt.NoError(t, repo.Create(ctx, newRecord(uuid.MustParse(testClientID), "stale", now))).Required()

	n, err := Seed(ctx, repo, now, rand.New(rand.NewSource(1)))
	gt.NoError(t, err).Required()
	gt.Value(t, n).Equal(len(seedRecords))

	count, err := repo.Count(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, count).Equal(int64(len(seedRecords)))

	items, err := repo.List(ctx)
	gt.NoError(t, err).Required()
	challenged := 0
	for _, d := range items {
		gt.Value(t, d.DiagnosisName).NotEqual("stale")
		gt.Value(t, d.UpdatedAt).Nil()
		age := now.Sub(d.PredictedDate)
		gt.Bool(t, age >= 0 && age < seedWindowDays*24*time.Hour).True()
		if d.Challenged() {
			challenged++
		}
	}
	gt.Value(t, challenged).Equal(2)
}

func TestSeed_Idempotent(t *testing.T) {
	repo := NewDiagnosisRepoMemory()
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 3; i++ {
		_, err := Seed(ctx, repo, time.Now(), rng)
		gt.NoError(t, err).Required()
	}
	count, err := repo.Count(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, count).Equal(int64(len(seedRecords)))
}

func TestSeed_StoreFailure(t *testing.T) {
	cause := storeErr(errors.New("db down"), "failed to delete diagnoses")
	_, err := Seed(context.Background(), failingRepo{err: cause}, time.Now(), rand.New(rand.NewSource(1)))
	gt.Error(t, err).Is(ErrStore)
}
