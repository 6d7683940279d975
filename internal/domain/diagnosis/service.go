package diagnosis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// OperationRecorder receives one observation per service call.
type OperationRecorder interface {
	ObserveOperation(operation, outcome string)
}

type Service struct {
	repo     DiagnosisRepository
	recorder OperationRecorder
	now      func() time.Time
}

func NewService(repo DiagnosisRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) SetRecorder(r OperationRecorder) { s.recorder = r }

// Timestamps are kept at microsecond precision, which is what Postgres
// stores, so records read back compare equal to the ones returned.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Service) observe(op string, err error) {
	if s.recorder != nil {
		s.recorder.ObserveOperation(op, Outcome(err))
	}
}

// ListAll returns every record, newest prediction first. It never returns a
// nil slice.
func (s *Service) ListAll(ctx context.Context) (items []*Diagnosis, err error) {
	defer func() { s.observe("list_all", err) }()

	items, err = s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Diagnosis{}
	}
	return items, nil
}

// GetLatestByClient returns the client's record with the greatest
// predicted_date.
func (s *Service) GetLatestByClient(ctx context.Context, rawClientID string) (d *Diagnosis, err error) {
	defer func() { s.observe("get_latest", err) }()

	clientID, err := ParseClientID(rawClientID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	latest := newest(items)
	if latest == nil {
		return nil, goerr.Wrap(ErrNotFound, "client has no diagnosis", goerr.V("client_id", clientID))
	}
	return latest, nil
}

func newest(items []*Diagnosis) *Diagnosis {
	var latest *Diagnosis
	for _, d := range items {
		if latest == nil || d.PredictedDate.After(latest.PredictedDate) {
			latest = d
		}
	}
	return latest
}

// Create validates and sanitizes the fields and stores a new record dated now.
func (s *Service) Create(ctx context.Context, rawClientID string, f Fields) (d *Diagnosis, err error) {
	defer func() { s.observe("create", err) }()

	clientID, err := ParseClientID(rawClientID)
	if err != nil {
		return nil, err
	}

	clean := f.sanitized()
	if clean.DiagnosisName.String() == "" || clean.Justification.String() == "" {
		return nil, goerr.Wrap(ErrMissingRequired, "required field empty after sanitizing", goerr.V("client_id", clientID))
	}

	d = &Diagnosis{
		ClientID:                clientID,
		DiagnosisName:           clean.DiagnosisName.String(),
		Justification:           clean.Justification.String(),
		ChallengedDiagnosis:     clean.ChallengedDiagnosis.Value(),
		ChallengedJustification: clean.ChallengedJustification.Value(),
		PredictedDate:           s.timestamp(),
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Update overwrites the fields present in f and stamps updated_at. Required
// fields are not re-checked for emptiness here; an explicit null on one of
// them stores an empty string since those columns cannot be null.
func (s *Service) Update(ctx context.Context, rawID string, f Fields) (d *Diagnosis, err error) {
	defer func() { s.observe("update", err) }()

	if f.Empty() {
		return nil, goerr.Wrap(ErrNothingToUpdate, "update without fields", goerr.V("id", rawID))
	}

	id, perr := uuid.Parse(rawID)
	if perr != nil {
		return nil, goerr.Wrap(ErrNotFound, "id is not a uuid", goerr.V("id", rawID))
	}

	clean := f.sanitized()
	if clean.DiagnosisName.Present() && clean.DiagnosisName.Value() == nil {
		clean.DiagnosisName = Set("")
	}
	if clean.Justification.Present() && clean.Justification.Value() == nil {
		clean.Justification = Set("")
	}

	return s.repo.Update(ctx, id, clean, s.timestamp())
}
