// internal/search/postgres.go
package search

import (
	"context"
	"database/sql"
	"fmt"

	"airquality-agent/internal/models"
)

// Prefix/exact pass first; the trigram pass only runs when it came up
// empty. That precedence is a hard rule of the resolver contract, so it is
// enforced here at the source instead of by re-sorting downstream.
const prefixSearchSQL = `
SELECT level, name, code, COALESCE(parent_code, ''),
       CASE WHEN lower(name) = lower($1) THEN 1.0 ELSE 0.9 END AS similarity,
       COALESCE(state_name, ''), COALESCE(district_name, ''), COALESCE(sub_district_name, '')
FROM gis.locations
WHERE lower(name) LIKE lower($1) || '%'
ORDER BY code
LIMIT $2`

const trigramSearchSQL = `
SELECT level, name, code, COALESCE(parent_code, ''),
       similarity(lower(name), lower($1)) AS similarity,
       COALESCE(state_name, ''), COALESCE(district_name, ''), COALESCE(sub_district_name, '')
FROM gis.locations
WHERE similarity(lower(name), lower($1)) > $3
ORDER BY similarity DESC, code
LIMIT $2`

// PostgresSearcher implements the resolver's Searcher against the gis
// location registry using a prefix pass with a pg_trgm fallback.
type PostgresSearcher struct {
	db                  *sql.DB
	limit               int
	similarityThreshold float64
}

func NewPostgresSearcher(db *sql.DB, limit int) *PostgresSearcher {
	if limit <= 0 {
		limit = 20
	}
	return &PostgresSearcher{
		db:                  db,
		limit:               limit,
		similarityThreshold: 0.3,
	}
}

func (s *PostgresSearcher) Search(ctx context.Context, text string) ([]models.LocationCandidate, error) {
	candidates, err := s.query(ctx, prefixSearchSQL, text, false)
	if err != nil {
		return nil, err
	}
	if len(candidates) > 0 {
		return candidates, nil
	}

	return s.query(ctx, trigramSearchSQL, text, true)
}

func (s *PostgresSearcher) query(ctx context.Context, query, text string, fuzzy bool) ([]models.LocationCandidate, error) {
	var rows *sql.Rows
	var err error
	if fuzzy {
		rows, err = s.db.QueryContext(ctx, query, text, s.limit, s.similarityThreshold)
	} else {
		rows, err = s.db.QueryContext(ctx, query, text, s.limit)
	}
	if err != nil {
		return nil, fmt.Errorf("location search query failed: %w", err)
	}
	defer rows.Close()

	var candidates []models.LocationCandidate
	for rows.Next() {
		var c models.LocationCandidate
		var level string
		if err := rows.Scan(&level, &c.Name, &c.Code, &c.ParentCode,
			&c.Similarity, &c.StateName, &c.DistrictName, &c.SubDistrict); err != nil {
			return nil, fmt.Errorf("location search scan failed: %w", err)
		}
		c.Level = models.LocationLevel(level)
		if fuzzy {
			c.MatchType = models.MatchFuzzy
		} else if c.Similarity >= 1.0 {
			c.MatchType = models.MatchExact
		} else {
			c.MatchType = models.MatchPrefix
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("location search rows failed: %w", err)
	}

	return candidates, nil
}
