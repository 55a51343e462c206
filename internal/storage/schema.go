package storage

const Schema = `
CREATE TABLE IF NOT EXISTS raw_news (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT,
    title TEXT NOT NULL,
    body TEXT,
    published_at DATETIME,
    source TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_raw_news_published ON raw_news(published_at);
CREATE INDEX IF NOT EXISTS idx_raw_news_url ON raw_news(url);

CREATE TABLE IF NOT EXISTS clean_news (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    raw_id INTEGER,
    ticker TEXT,
    title TEXT NOT NULL,
    body TEXT,
    published_at DATETIME,
    normalized_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (raw_id) REFERENCES raw_news(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_clean_news_ticker_pub ON clean_news(ticker, published_at);

CREATE TABLE IF NOT EXISTS sentiment_scores (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    clean_id INTEGER,
    ticker TEXT,
    published_at DATETIME,
    neg REAL,
    neu REAL,
    pos REAL,
    compound REAL,
    label TEXT,
    model_version TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (clean_id) REFERENCES clean_news(id) ON DELETE CASCADE,
    UNIQUE(clean_id, model_version)
);

CREATE INDEX IF NOT EXISTS idx_sentiment_ticker_pub ON sentiment_scores(ticker, published_at);

CREATE TABLE IF NOT EXISTS daily_sentiment (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    ticker TEXT NOT NULL,
    date TEXT NOT NULL,
    avg_compound REAL,
    article_count INTEGER,
    pct_positive REAL,
    pct_negative REAL,
    model_version TEXT NOT NULL,
    computed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(ticker, date, model_version)
);

CREATE TABLE IF NOT EXISTS price_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    ticker TEXT NOT NULL,
    date TEXT NOT NULL,
    open REAL,
    high REAL,
    low REAL,
    close REAL,
    adj_close REAL,
    volume REAL,
    UNIQUE(ticker, date)
);

CREATE TABLE IF NOT EXISTS article_embeddings (
    clean_id INTEGER NOT NULL,
    model TEXT NOT NULL,
    embedding BLOB NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (clean_id, model),
    FOREIGN KEY (clean_id) REFERENCES clean_news(id) ON DELETE CASCADE
);
`
