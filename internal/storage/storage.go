package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"sentiment-trader/internal/types"
)

// DateLayout is how day-granularity dates are stored in sqlite.
const DateLayout = "2006-01-02"

type Store struct {
	db *sql.DB
}

// NewStore opens the database at dbPath and initializes the schema.
// Use ":memory:" for tests.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Raw news

// InsertRawArticle stores a raw article and returns its id.
func (s *Store) InsertRawArticle(a *types.RawArticle) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO raw_news (url, title, body, published_at, source) VALUES (?, ?, ?, ?, ?)",
		nullString(a.URL), a.Title, a.Body, nullTime(a.PublishedAt), nullString(a.Source),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert raw article: %w", err)
	}
	return res.LastInsertId()
}

// FindRawByURL returns the stored raw article with the given URL, or nil.
func (s *Store) FindRawByURL(url string) (*types.RawArticle, error) {
	if url == "" {
		return nil, nil
	}
	row := s.db.QueryRow(
		"SELECT id, url, title, body, published_at, source FROM raw_news WHERE url = ? LIMIT 1", url,
	)
	a, err := scanRawArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query raw article by url: %w", err)
	}
	return a, nil
}

// ListRawArticles returns all raw articles ordered by id.
func (s *Store) ListRawArticles() ([]types.RawArticle, error) {
	rows, err := s.db.Query("SELECT id, url, title, body, published_at, source FROM raw_news ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list raw articles: %w", err)
	}
	defer rows.Close()

	var out []types.RawArticle
	for rows.Next() {
		a, err := scanRawArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// ListUncleanedRaw returns raw articles with no clean_news row yet.
func (s *Store) ListUncleanedRaw() ([]types.RawArticle, error) {
	rows, err := s.db.Query(`
		SELECT r.id, r.url, r.title, r.body, r.published_at, r.source
		FROM raw_news r
		LEFT JOIN clean_news c ON c.raw_id = r.id
		WHERE c.id IS NULL
		ORDER BY r.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list uncleaned articles: %w", err)
	}
	defer rows.Close()

	var out []types.RawArticle
	for rows.Next() {
		a, err := scanRawArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRawArticle(r rowScanner) (*types.RawArticle, error) {
	var a types.RawArticle
	var url, body, source sql.NullString
	var pub sql.NullTime
	if err := r.Scan(&a.ID, &url, &a.Title, &body, &pub, &source); err != nil {
		return nil, err
	}
	a.URL = url.String
	a.Body = body.String
	a.Source = source.String
	if pub.Valid {
		t := pub.Time
		a.PublishedAt = &t
	}
	return &a, nil
}

// Clean news

// InsertCleanArticle stores a clean article and returns its id.
// Ticker=="" is stored as NULL (article matched no ticker).
func (s *Store) InsertCleanArticle(a *types.CleanArticle) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO clean_news (raw_id, ticker, title, body, published_at) VALUES (?, ?, ?, ?, ?)",
		a.RawID, nullString(a.Ticker), a.Title, a.Body, nullTime(a.PublishedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert clean article: %w", err)
	}
	return res.LastInsertId()
}

// ListCleanArticles returns all clean articles ordered by id.
func (s *Store) ListCleanArticles() ([]types.CleanArticle, error) {
	rows, err := s.db.Query("SELECT id, raw_id, ticker, title, body, published_at FROM clean_news ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list clean articles: %w", err)
	}
	defer rows.Close()
	return collectCleanArticles(rows)
}

// ListUnembeddedClean returns clean articles that have no embedding for model.
func (s *Store) ListUnembeddedClean(model string) ([]types.CleanArticle, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.raw_id, c.ticker, c.title, c.body, c.published_at
		FROM clean_news c
		LEFT JOIN article_embeddings e ON e.clean_id = c.id AND e.model = ?
		WHERE e.clean_id IS NULL
		ORDER BY c.id ASC`, model)
	if err != nil {
		return nil, fmt.Errorf("failed to list unembedded articles: %w", err)
	}
	defer rows.Close()
	return collectCleanArticles(rows)
}

func collectCleanArticles(rows *sql.Rows) ([]types.CleanArticle, error) {
	var out []types.CleanArticle
	for rows.Next() {
		var a types.CleanArticle
		var ticker, body sql.NullString
		var pub sql.NullTime
		if err := rows.Scan(&a.ID, &a.RawID, &ticker, &a.Title, &body, &pub); err != nil {
			return nil, err
		}
		a.Ticker = ticker.String
		a.Body = body.String
		if pub.Valid {
			t := pub.Time
			a.PublishedAt = &t
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Sentiment scores

// InsertSentimentScore stores one scorer verdict. Re-scoring the same
// (clean article, model version) pair replaces the prior row.
func (s *Store) InsertSentimentScore(sc *types.SentimentScore) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO sentiment_scores (clean_id, ticker, published_at, neg, neu, pos, compound, label, model_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(clean_id, model_version) DO UPDATE SET
			neg = excluded.neg, neu = excluded.neu, pos = excluded.pos,
			compound = excluded.compound, label = excluded.label`,
		sc.CleanID, nullString(sc.Ticker), nullTime(sc.PublishedAt),
		sc.Neg, sc.Neu, sc.Pos, sc.Compound, sc.Label, sc.ModelVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sentiment score: %w", err)
	}
	return res.LastInsertId()
}

// ListSentimentScores returns scores for a ticker and model version within
// [from, to). Rows with a NULL ticker or NULL published_at never aggregate
// and are excluded. Zero from/to mean unbounded.
func (s *Store) ListSentimentScores(ticker string, from, to time.Time, modelVersion string) ([]types.SentimentScore, error) {
	q := `SELECT id, clean_id, ticker, published_at, neg, neu, pos, compound, label, model_version
		FROM sentiment_scores
		WHERE ticker = ? AND model_version = ? AND published_at IS NOT NULL`
	args := []any{ticker, modelVersion}
	if !from.IsZero() {
		q += " AND published_at >= ?"
		args = append(args, from)
	}
	if !to.IsZero() {
		q += " AND published_at < ?"
		args = append(args, to)
	}
	q += " ORDER BY published_at ASC"

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sentiment scores: %w", err)
	}
	defer rows.Close()

	var out []types.SentimentScore
	for rows.Next() {
		var sc types.SentimentScore
		var tk, label, mv sql.NullString
		var pub sql.NullTime
		if err := rows.Scan(&sc.ID, &sc.CleanID, &tk, &pub, &sc.Neg, &sc.Neu, &sc.Pos, &sc.Compound, &label, &mv); err != nil {
			return nil, err
		}
		sc.Ticker = tk.String
		sc.Label = label.String
		sc.ModelVersion = mv.String
		if pub.Valid {
			t := pub.Time
			sc.PublishedAt = &t
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// HasSentimentScore reports whether a score exists for (cleanID, modelVersion).
func (s *Store) HasSentimentScore(cleanID int64, modelVersion string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(1) FROM sentiment_scores WHERE clean_id = ? AND model_version = ?",
		cleanID, modelVersion,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check sentiment score: %w", err)
	}
	return n > 0, nil
}

// Daily sentiment

// UpsertDailySentiment writes one aggregate row, replacing any existing row
// with the same (ticker, date, model_version) in a single statement.
func (s *Store) UpsertDailySentiment(d *types.DailySentiment) error {
	_, err := s.db.Exec(`
		INSERT INTO daily_sentiment (ticker, date, avg_compound, article_count, pct_positive, pct_negative, model_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker, date, model_version) DO UPDATE SET
			avg_compound = excluded.avg_compound,
			article_count = excluded.article_count,
			pct_positive = excluded.pct_positive,
			pct_negative = excluded.pct_negative,
			computed_at = CURRENT_TIMESTAMP`,
		d.Ticker, d.Date.Format(DateLayout), d.AvgCompound, d.ArticleCount,
		d.PctPositive, d.PctNegative, d.ModelVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert daily sentiment: %w", err)
	}
	return nil
}

// ListDailySentiment returns aggregates for a ticker and model version,
// oldest first.
func (s *Store) ListDailySentiment(ticker, modelVersion string) ([]types.DailySentiment, error) {
	rows, err := s.db.Query(`
		SELECT ticker, date, avg_compound, article_count, pct_positive, pct_negative, model_version
		FROM daily_sentiment
		WHERE ticker = ? AND model_version = ?
		ORDER BY date ASC`, ticker, modelVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily sentiment: %w", err)
	}
	defer rows.Close()

	var out []types.DailySentiment
	for rows.Next() {
		var d types.DailySentiment
		var date string
		if err := rows.Scan(&d.Ticker, &date, &d.AvgCompound, &d.ArticleCount, &d.PctPositive, &d.PctNegative, &d.ModelVersion); err != nil {
			return nil, err
		}
		d.Date, err = time.Parse(DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("bad daily_sentiment date %q: %w", date, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Price history

// UpsertPriceBar writes one daily bar, replacing any existing bar for the
// same (ticker, date).
func (s *Store) UpsertPriceBar(b *types.PriceBar) error {
	_, err := s.db.Exec(`
		INSERT INTO price_history (ticker, date, open, high, low, close, adj_close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker, date) DO UPDATE SET
			open = excluded.open, high = excluded.high, low = excluded.low,
			close = excluded.close, adj_close = excluded.adj_close, volume = excluded.volume`,
		b.Ticker, b.Date.Format(DateLayout), b.Open, b.High, b.Low, b.Close, b.AdjClose, b.Volume,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert price bar: %w", err)
	}
	return nil
}

// ListPriceBars returns all bars for a ticker, oldest first.
func (s *Store) ListPriceBars(ticker string) ([]types.PriceBar, error) {
	rows, err := s.db.Query(`
		SELECT ticker, date, open, high, low, close, adj_close, volume
		FROM price_history WHERE ticker = ? ORDER BY date ASC`, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to list price bars: %w", err)
	}
	defer rows.Close()

	var out []types.PriceBar
	for rows.Next() {
		var b types.PriceBar
		var date string
		if err := rows.Scan(&b.Ticker, &date, &b.Open, &b.High, &b.Low, &b.Close, &b.AdjClose, &b.Volume); err != nil {
			return nil, err
		}
		b.Date, err = time.Parse(DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("bad price_history date %q: %w", date, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Article embeddings

// ArticleEmbedding joins a stored vector with its article metadata.
type ArticleEmbedding struct {
	CleanID     int64
	Ticker      string
	Title       string
	PublishedAt *time.Time
	Vector      []byte
}

// UpsertArticleEmbedding stores the encoded vector for (cleanID, model).
func (s *Store) UpsertArticleEmbedding(cleanID int64, model string, vector []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO article_embeddings (clean_id, model, embedding) VALUES (?, ?, ?)
		ON CONFLICT(clean_id, model) DO UPDATE SET embedding = excluded.embedding`,
		cleanID, model, vector,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert embedding: %w", err)
	}
	return nil
}

// ListArticleEmbeddings returns all vectors for model with article metadata.
func (s *Store) ListArticleEmbeddings(model string) ([]ArticleEmbedding, error) {
	rows, err := s.db.Query(`
		SELECT e.clean_id, c.ticker, c.title, c.published_at, e.embedding
		FROM article_embeddings e
		JOIN clean_news c ON c.id = e.clean_id
		WHERE e.model = ?
		ORDER BY e.clean_id ASC`, model)
	if err != nil {
		return nil, fmt.Errorf("failed to list embeddings: %w", err)
	}
	defer rows.Close()

	var out []ArticleEmbedding
	for rows.Next() {
		var e ArticleEmbedding
		var ticker sql.NullString
		var pub sql.NullTime
		if err := rows.Scan(&e.CleanID, &ticker, &e.Title, &pub, &e.Vector); err != nil {
			return nil, err
		}
		e.Ticker = ticker.String
		if pub.Valid {
			t := pub.Time
			e.PublishedAt = &t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
