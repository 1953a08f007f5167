package results

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/inspector/internal/checks"
	"github.com/JaimeStill/inspector/pkg/query"
	"github.com/JaimeStill/inspector/pkg/repository"
)

var projections = map[checks.Type]*query.ProjectionMap{
	checks.Document:   newProjection(checks.Document),
	checks.Visual:     newProjection(checks.Visual),
	checks.Dimension:  newProjection(checks.Dimension),
	checks.Functional: newProjection(checks.Functional),
}

func newProjection(check checks.Type) *query.ProjectionMap {
	p := query.
		NewProjectionMap("public", table(check), "r").
		Project("id", "ID").
		Project("inspection_id", "InspectionID")

	if check.Sampled() {
		p.Project("sample_no", "SampleNo")
	}

	return p.
		Project("question_id", "QuestionID").
		Project("answer", "Answer").
		Project("notes", "Notes").
		Project("photo_key", "PhotoKey").
		Project("inspector", "Inspector").
		Project("complete", "Complete").
		Project("updated_at", "UpdatedAt")
}

func table(check checks.Type) string {
	return string(check) + "_results"
}

func defaultSort(check checks.Type) []query.SortField {
	if check.Sampled() {
		return []query.SortField{{Field: "SampleNo"}, {Field: "QuestionID"}}
	}
	return []query.SortField{{Field: "QuestionID"}}
}

// upsertSQL writes one leaf record keyed by its identity columns and reports
// whether the row was inserted (xmax = 0) or updated.
func upsertSQL(check checks.Type) string {
	cols := []string{"inspection_id", "question_id", "answer", "notes", "photo_key", "inspector"}
	key := "inspection_id, question_id"
	if check.Sampled() {
		cols = append(cols, "sample_no")
		key = "inspection_id, sample_no, question_id"
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	return fmt.Sprintf(`
		INSERT INTO %s(%s)
		VALUES (%s)
		ON CONFLICT (%s) DO UPDATE
		SET answer = EXCLUDED.answer,
			notes = EXCLUDED.notes,
			photo_key = EXCLUDED.photo_key,
			inspector = EXCLUDED.inspector,
			updated_at = NOW()
		RETURNING (xmax = 0) AS inserted`,
		table(check),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		key,
	)
}

func scanner(check checks.Type) repository.ScanFunc[Record] {
	return func(s repository.Scanner) (Record, error) {
		r := Record{Check: check}
		dest := []any{&r.ID, &r.InspectionID}
		if check.Sampled() {
			dest = append(dest, &r.SampleNo)
		}
		dest = append(dest,
			&r.QuestionID,
			&r.Answer,
			&r.Notes,
			&r.PhotoKey,
			&r.Inspector,
			&r.Complete,
			&r.UpdatedAt,
		)
		err := s.Scan(dest...)
		return r, err
	}
}

func scanInserted(s repository.Scanner) (bool, error) {
	var inserted bool
	err := s.Scan(&inserted)
	return inserted, err
}
