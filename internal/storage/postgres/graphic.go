package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"graphics_feed/internal/domain"
	"graphics_feed/internal/feed"
)

// GraphicStore archives every fetched article, keyed by outlet and the
// outlet's own id.
type GraphicStore struct {
	db *sqlx.DB
}

func NewGraphicStore(db *sqlx.DB) *GraphicStore {
	return &GraphicStore{db: db}
}

type graphicRow struct {
	ID          int64          `db:"id"`
	Outlet      string         `db:"outlet"`
	ExternalID  string         `db:"external_id"`
	Headline    string         `db:"headline"`
	URL         string         `db:"url"`
	LabelText   sql.NullString `db:"label_text"`
	LabelURL    sql.NullString `db:"label_url"`
	Published   string         `db:"published"`
	PublishedAt sql.NullTime   `db:"published_at"`
	Description string         `db:"description"`
	Img         string         `db:"img"`
	SquareImg   sql.NullString `db:"square_img"`
	Keywords    pq.StringArray `db:"keywords"`
}

func (s *GraphicStore) Upsert(ctx context.Context, outlet string, article *domain.Article) (int64, error) {
	query := `
		INSERT INTO graphics (
			outlet, external_id, headline, url, label_text, label_url,
			published, published_at, description, img, square_img, keywords
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		ON CONFLICT (outlet, external_id) DO UPDATE SET
			headline = EXCLUDED.headline,
			url = EXCLUDED.url,
			label_text = EXCLUDED.label_text,
			label_url = EXCLUDED.label_url,
			published = EXCLUDED.published,
			published_at = EXCLUDED.published_at,
			description = EXCLUDED.description,
			img = EXCLUDED.img,
			square_img = EXCLUDED.square_img,
			keywords = EXCLUDED.keywords,
			updated_at = now()
		RETURNING id`

	var labelText, labelURL sql.NullString
	if article.Label != nil {
		labelText = sql.NullString{String: article.Label.Text, Valid: article.Label.Text != "" || article.Label.Structured}
		labelURL = sql.NullString{String: article.Label.URL, Valid: true}
	}

	var publishedAt sql.NullTime
	if t, ok := feed.ParseDate(article.Date); ok {
		publishedAt = sql.NullTime{Time: t, Valid: true}
	}

	keywords := article.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	var id int64
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		outlet,
		article.ID,
		article.Headline,
		article.URL,
		labelText,
		labelURL,
		article.Date,
		publishedAt,
		article.Description,
		article.Img,
		sql.NullString{String: article.Thumbnail, Valid: article.Thumbnail != ""},
		pq.Array(keywords),
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

// Get returns the archived copy of an article, or nil when it was never
// stored. Credits are not loaded.
func (s *GraphicStore) Get(ctx context.Context, outlet, externalID string) (*domain.Article, error) {
	query := `
		SELECT id, outlet, external_id, headline, url, label_text, label_url,
			published, published_at, description, img, square_img, keywords
		FROM graphics
		WHERE outlet = $1 AND external_id = $2`

	var row graphicRow
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, query, outlet, externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	a := &domain.Article{
		ID:          row.ExternalID,
		Headline:    row.Headline,
		URL:         row.URL,
		Date:        row.Published,
		Description: row.Description,
		Img:         row.Img,
		Thumbnail:   row.SquareImg.String,
		Keywords:    []string(row.Keywords),
	}
	if row.LabelURL.Valid {
		a.Label = &domain.Label{Text: row.LabelText.String, URL: row.LabelURL.String, Structured: row.LabelText.Valid}
	}
	return a, nil
}
