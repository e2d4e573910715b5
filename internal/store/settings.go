package store

import "context"

// GetSettings returns the stored content document for industry, or
// ErrNotFound if it was never saved.
func (s *Store) GetSettings(ctx context.Context, industry string) ([]byte, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document::text FROM industry_cms_settings WHERE industry = $1`, industry,
	).Scan(&doc)
	if err != nil {
		return nil, notFound(err)
	}
	return doc, nil
}

// PutSettings stores doc as the whole document for industry. Concurrent
// writers are not ordered; the last write wins.
func (s *Store) PutSettings(ctx context.Context, industry string, doc []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO industry_cms_settings (industry, document) VALUES ($1, $2::jsonb)
		 ON CONFLICT (industry) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()`,
		industry, string(doc),
	)
	return err
}
