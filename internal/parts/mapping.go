package parts

import (
	"github.com/JaimeStill/inspector/pkg/query"
	"github.com/JaimeStill/inspector/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "part_master", "p").
	Project("id", "ID").
	Project("line", "Line").
	Project("series", "Series").
	Project("model", "Model").
	Project("part_code", "PartCode").
	Project("body_mat", "BodyMat").
	Project("asme_class", "ASMEClass").
	Project("end_connect", "EndConnect").
	Project("size", "Size").
	Project("updated_at", "UpdatedAt")

const upsertSQL = `
	INSERT INTO part_master(line, series, model, part_code, body_mat, asme_class, end_connect, size)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (line, series, part_code) DO UPDATE
	SET model = EXCLUDED.model, body_mat = EXCLUDED.body_mat, asme_class = EXCLUDED.asme_class,
		end_connect = EXCLUDED.end_connect, size = EXCLUDED.size, updated_at = NOW()`

const tiersSQL = `SELECT tier, description, sampling FROM vendor_tiers ORDER BY position, tier`

func scanTier(s repository.Scanner) (Tier, error) {
	var t Tier
	err := s.Scan(&t.Tier, &t.Description, &t.Sampling)
	return t, err
}

func scanPart(s repository.Scanner) (Part, error) {
	var p Part
	err := s.Scan(
		&p.ID,
		&p.Line,
		&p.Series,
		&p.Model,
		&p.PartCode,
		&p.BodyMat,
		&p.ASMEClass,
		&p.EndConnect,
		&p.Size,
		&p.UpdatedAt,
	)
	return p, err
}

func scanString(s repository.Scanner) (string, error) {
	var v string
	err := s.Scan(&v)
	return v, err
}
