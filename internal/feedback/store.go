package feedback

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"go-solar-inspector/pkg/models"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- Supervisor verdicts on stage predictions, one row per reviewed image.
CREATE TABLE IF NOT EXISTS feedback (
    feedback_id INTEGER PRIMARY KEY AUTOINCREMENT,
    image_ref TEXT NOT NULL,
    predicted_stage TEXT NOT NULL,
    correct BOOLEAN NOT NULL,
    corrected_stage TEXT,
    comments TEXT,
    edge_density REAL NOT NULL,
    blue_ratio REAL NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_feedback_predicted ON feedback(predicted_stage);
CREATE INDEX IF NOT EXISTS idx_feedback_created ON feedback(created_at);
`

// Entry is a persisted supervisor verdict.
type Entry struct {
	ID             int64
	ImageRef       string
	PredictedStage models.Stage
	Correct        bool
	CorrectedStage *models.Stage
	Comments       string
	EdgeDensity    float64
	BlueRatio      float64
	CreatedAt      time.Time
}

// TrueStage returns the stage the supervisor settled on.
func (e Entry) TrueStage() models.Stage {
	if !e.Correct && e.CorrectedStage != nil {
		return *e.CorrectedStage
	}
	return e.PredictedStage
}

// Store persists feedback entries in SQLite. Writes go through a single
// mutex: the adaptive-threshold state is the only cross-request mutable
// state in the system and must stay single-writer.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates the feedback database at the given path and
// ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open feedback database")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "initialize feedback schema")
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add persists a feedback entry.
func (s *Store) Add(ctx context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var corrected interface{}
	if entry.CorrectedStage != nil {
		corrected = entry.CorrectedStage.String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (image_ref, predicted_stage, correct, corrected_stage, comments, edge_density, blue_ratio)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ImageRef, entry.PredictedStage.String(), entry.Correct,
		corrected, entry.Comments, entry.EdgeDensity, entry.BlueRatio,
	)
	return errors.Wrap(err, "insert feedback entry")
}

// List returns all feedback entries, oldest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT feedback_id, image_ref, predicted_stage, correct, corrected_stage, comments, edge_density, blue_ratio, created_at
		 FROM feedback ORDER BY feedback_id`)
	if err != nil {
		return nil, errors.Wrap(err, "query feedback entries")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			predicted string
			corrected sql.NullString
			comments  sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.ImageRef, &predicted, &e.Correct,
			&corrected, &comments, &e.EdgeDensity, &e.BlueRatio, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan feedback entry")
		}
		stage, err := models.ParseStage(predicted)
		if err != nil {
			return nil, errors.Wrapf(err, "feedback entry %d", e.ID)
		}
		e.PredictedStage = stage
		if corrected.Valid && corrected.String != "" {
			c, err := models.ParseStage(corrected.String)
			if err != nil {
				return nil, errors.Wrapf(err, "feedback entry %d", e.ID)
			}
			e.CorrectedStage = &c
		}
		e.Comments = comments.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
