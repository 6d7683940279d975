package diagnosis

import (
	"time"

	"github.com/google/uuid"
)

// Diagnosis is one predicted diagnosis for a client, optionally challenged by
// a therapist.
type Diagnosis struct {
	ID                      uuid.UUID  `db:"id" json:"id"`
	ClientID                uuid.UUID  `db:"client_id" json:"client_id"`
	DiagnosisName           string     `db:"diagnosis_name" json:"diagnosis_name"`
	Justification           string     `db:"justification" json:"justification"`
	ChallengedDiagnosis     *string    `db:"challenged_diagnosis" json:"challenged_diagnosis"`
	ChallengedJustification *string    `db:"challenged_justification" json:"challenged_justification"`
	PredictedDate           time.Time  `db:"predicted_date" json:"predicted_date"`
	UpdatedAt               *time.Time `db:"updated_at" json:"updated_at"`
}

// Challenged reports whether a therapist has recorded a competing diagnosis.
func (d *Diagnosis) Challenged() bool {
	return d.ChallengedDiagnosis != nil
}

func (d *Diagnosis) clone() *Diagnosis {
	cp := *d
	cp.ChallengedDiagnosis = copyString(d.ChallengedDiagnosis)
	cp.ChallengedJustification = copyString(d.ChallengedJustification)
	if d.UpdatedAt != nil {
		t := *d.UpdatedAt
		cp.UpdatedAt = &t
	}
	return &cp
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Fields carries the client-editable text fields of a request. Each one is
// either absent or set, and a set value may be null.
type Fields struct {
	DiagnosisName           Field `json:"diagnosis_name"`
	Justification           Field `json:"justification"`
	ChallengedDiagnosis     Field `json:"challenged_diagnosis"`
	ChallengedJustification Field `json:"challenged_justification"`
}

// Empty reports whether no field was supplied at all.
func (f Fields) Empty() bool {
	return !f.DiagnosisName.Present() &&
		!f.Justification.Present() &&
		!f.ChallengedDiagnosis.Present() &&
		!f.ChallengedJustification.Present()
}

func (f Fields) sanitized() Fields {
	return Fields{
		DiagnosisName:           f.DiagnosisName.sanitized(),
		Justification:           f.Justification.sanitized(),
		ChallengedDiagnosis:     f.ChallengedDiagnosis.sanitized(),
		ChallengedJustification: f.ChallengedJustification.sanitized(),
	}
}

// apply copies the present fields onto d.
func (f Fields) apply(d *Diagnosis) {
	if f.DiagnosisName.Present() {
		d.DiagnosisName = f.DiagnosisName.String()
	}
	if f.Justification.Present() {
		d.Justification = f.Justification.String()
	}
	if f.ChallengedDiagnosis.Present() {
		d.ChallengedDiagnosis = copyString(f.ChallengedDiagnosis.Value())
	}
	if f.ChallengedJustification.Present() {
		d.ChallengedJustification = copyString(f.ChallengedJustification.Value())
	}
}
