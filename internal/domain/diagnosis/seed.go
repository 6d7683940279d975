package diagnosis

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// seedWindowDays bounds how far back seeded predictions are dated.
const seedWindowDays = 30

type seedRecord struct {
	clientID                string
	diagnosisName           string
	justification           string
	challengedDiagnosis     string
	challengedJustification string
}

var seedRecords = []seedRecord{
	{
		clientID:      "550e8400-e29b-41d4-a716-446655440001",
		diagnosisName: "Generalized Anxiety Disorder",
		justification: "Patient exhibits persistent excessive worry about multiple life events, difficulty controlling worry, restlessness, fatigue, difficulty concentrating, irritability, muscle tension, and sleep disturbance for more than 6 months. Symptoms cause significant distress and impairment in social and occupational functioning.",
	},
	{
		clientID:                "550e8400-e29b-41d4-a716-446655440002",
		diagnosisName:           "Major Depressive Disorder",
		justification:           "Patient reports depressed mood most of the day, markedly diminished interest in activities, significant weight loss, insomnia, psychomotor agitation, fatigue, feelings of worthlessness, diminished concentration, and recurrent thoughts of death for over 2 weeks. Symptoms represent a change from previous functioning.",
		challengedDiagnosis:     "Adjustment Disorder with Depressed Mood",
		challengedJustification: "Symptoms appeared following recent job loss and divorce. Duration and severity may be better explained by adjustment disorder rather than major depression. Consider psychosocial stressors and timeline of symptom onset.",
	},
	{
		clientID:      "550e8400-e29b-41d4-a716-446655440003",
		diagnosisName: "Social Anxiety Disorder",
		justification: "Patient experiences marked fear and anxiety in social situations where they may be scrutinized by others, including fear of negative evaluation, embarrassment, and humiliation. Avoids social interactions and public speaking. Symptoms persist for over 6 months and cause significant impairment.",
	},
	{
		clientID:                "550e8400-e29b-41d4-a716-446655440004",
		diagnosisName:           "Attention-Deficit/Hyperactivity Disorder",
		justification:           "Patient demonstrates persistent inattention including difficulty sustaining attention, careless mistakes, difficulty organizing tasks, avoids tasks requiring sustained mental effort, loses things, easily distracted, and forgetful. Symptoms present since childhood and cause impairment in multiple settings.",
		challengedDiagnosis:     "Adult ADHD vs Anxiety-Related Concentration Issues",
		challengedJustification: "While ADHD symptoms are present, patient also reports high anxiety levels. Concentration difficulties may be secondary to anxiety rather than primary ADHD. Recommend anxiety treatment trial before confirming ADHD diagnosis.",
	},
	{
		clientID:      "550e8400-e29b-41d4-a716-446655440005",
		diagnosisName: "Post-Traumatic Stress Disorder",
		justification: "Patient experienced traumatic event involving actual threat to life. Exhibits intrusive memories, nightmares, flashbacks, avoidance of trauma-related stimuli, negative alterations in mood and cognition, hypervigilance, exaggerated startle response, and sleep disturbances for over 1 month.",
	},
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Seed replaces every stored record with the example set, each predicted a
// random 0-29 days before now. It returns the number of records inserted.
func Seed(ctx context.Context, repo DiagnosisRepository, now time.Time, rng *rand.Rand) (int, error) {
	if _, err := repo.DeleteAll(ctx); err != nil {
		return 0, goerr.Wrap(err, "failed to clear diagnoses before seeding")
	}

	for _, rec := range seedRecords {
		d := &Diagnosis{
			ClientID:                uuid.MustParse(rec.clientID),
			DiagnosisName:           rec.diagnosisName,
			Justification:           rec.justification,
			ChallengedDiagnosis:     optional(rec.challengedDiagnosis),
			ChallengedJustification: optional(rec.challengedJustification),
			PredictedDate:           now.AddDate(0, 0, -rng.Intn(seedWindowDays)).UTC().Truncate(time.Microsecond),
		}
		if err := repo.Create(ctx, d); err != nil {
			return 0, goerr.Wrap(err, "failed to insert seed diagnosis", goerr.V("client_id", rec.clientID))
		}
	}
	return len(seedRecords), nil
}
