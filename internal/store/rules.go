package store

import (
	"context"
	"fmt"
)

// GetBlocklistTerms returns the deployment-specific blocklist terms, ordered
// by creation time. These are merged into the rule matcher's built-in
// blocklist at startup; an empty table means the built-ins only.
func (s *Store) GetBlocklistTerms(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT term FROM blocklist_terms ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("GetBlocklistTerms: %w", err)
	}
	defer rows.Close()

	var terms []string
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			return nil, fmt.Errorf("GetBlocklistTerms: %w", err)
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}

// AddBlocklistTerm inserts a term into the deployment blocklist. Duplicate
// terms are ignored.
func (s *Store) AddBlocklistTerm(ctx context.Context, term string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blocklist_terms (term) VALUES ($1)
		ON CONFLICT (term) DO NOTHING`, term)
	if err != nil {
		return fmt.Errorf("AddBlocklistTerm: %w", err)
	}
	return nil
}
