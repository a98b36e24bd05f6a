package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"graphics_feed/internal/domain"
)

// CreditStore keeps one row per author slug and the ordered link between
// graphics and their authors.
type CreditStore struct {
	db *sqlx.DB
}

func NewCreditStore(db *sqlx.DB) *CreditStore {
	return &CreditStore{db: db}
}

// UpsertBatch stores credits by slug and returns their ids in the order of
// credits. Repeated slugs map to the same id.
func (s *CreditStore) UpsertBatch(ctx context.Context, credits []domain.Credit) ([]int64, error) {
	if len(credits) == 0 {
		return nil, nil
	}

	unique := make([]domain.Credit, 0, len(credits))
	seen := make(map[string]struct{}, len(credits))
	for _, c := range credits {
		if _, ok := seen[c.Slug]; ok {
			continue
		}
		seen[c.Slug] = struct{}{}
		unique = append(unique, c)
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO credits (slug, name) VALUES ")
	valueArgs := make([]interface{}, 0, len(unique)*2)

	for i, c := range unique {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("($")
		sb.WriteString(strconv.Itoa(i*2 + 1))
		sb.WriteString(", $")
		sb.WriteString(strconv.Itoa(i*2 + 2))
		sb.WriteString(")")
		valueArgs = append(valueArgs, c.Slug, c.Name)
	}
	sb.WriteString(" ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name RETURNING id, slug")

	rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx, sb.String(), valueArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bySlug := make(map[string]int64, len(unique))
	for rows.Next() {
		var (
			id   int64
			slug string
		)
		if err := rows.Scan(&id, &slug); err != nil {
			return nil, err
		}
		bySlug[slug] = id
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(credits))
	for _, c := range credits {
		id, ok := bySlug[c.Slug]
		if !ok {
			return nil, fmt.Errorf("credit %q not returned by upsert", c.Slug)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// LinkToGraphic replaces the credits of a graphic, keeping their order.
func (s *CreditStore) LinkToGraphic(ctx context.Context, graphicID int64, creditIDs []int64) error {
	exec := GetExecutor(ctx, s.db)

	_, err := exec.ExecContext(ctx,
		"DELETE FROM graphic_credits WHERE graphic_id = $1",
		graphicID,
	)
	if err != nil {
		return err
	}

	if len(creditIDs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO graphic_credits (graphic_id, credit_id, position) VALUES ")
	valueArgs := make([]interface{}, 0, len(creditIDs)*2+1)
	valueArgs = append(valueArgs, graphicID)

	for i, creditID := range creditIDs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("($1, $")
		sb.WriteString(strconv.Itoa(i*2 + 2))
		sb.WriteString(", $")
		sb.WriteString(strconv.Itoa(i*2 + 3))
		sb.WriteString(")")
		valueArgs = append(valueArgs, creditID, i)
	}
	sb.WriteString(" ON CONFLICT DO NOTHING")

	_, err = exec.ExecContext(ctx, sb.String(), valueArgs...)
	return err
}

// GetByGraphicID returns the credits of a graphic in byline order.
func (s *CreditStore) GetByGraphicID(ctx context.Context, graphicID int64) ([]domain.Credit, error) {
	query := `
		SELECT c.name, c.slug
		FROM credits c
		INNER JOIN graphic_credits gc ON gc.credit_id = c.id
		WHERE gc.graphic_id = $1
		ORDER BY gc.position`

	var credits []domain.Credit
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &credits, query, graphicID)
	return credits, err
}
