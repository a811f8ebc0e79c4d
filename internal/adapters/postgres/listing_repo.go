package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/imoveis/internal/core/domain"
)

// ListingRepo implements ports.ListingRepository with pgx.
type ListingRepo struct {
	db *DB
}

// NewListingRepo creates a new ListingRepo.
func NewListingRepo(db *DB) *ListingRepo {
	return &ListingRepo{db: db}
}

// Create inserts a listing and fills in the generated id and created_at.
func (r *ListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	return r.db.WithConn(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, `
			INSERT INTO imoveis (titulo, latitude, longitude, azimute, caminho_foto)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`, l.Title, l.Latitude, l.Longitude, l.Azimuth, l.PhotoURL).Scan(&l.ID, &l.CreatedAt)
	})
}

// List returns the whole table ordered by id. Rows from earlier deployments
// may hold NULLs: missing text reads as "" and missing azimuth as 0, while
// rows without coordinates cannot be placed and are skipped.
func (r *ListingRepo) List(ctx context.Context) ([]domain.Listing, error) {
	var listings []domain.Listing
	err := r.db.WithConn(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, COALESCE(titulo, ''), latitude, longitude,
			       COALESCE(azimute, 0), COALESCE(caminho_foto, ''), created_at
			FROM imoveis
			WHERE latitude IS NOT NULL AND longitude IS NOT NULL
			ORDER BY id
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var l domain.Listing
			if err := rows.Scan(
				&l.ID, &l.Title, &l.Latitude, &l.Longitude,
				&l.Azimuth, &l.PhotoURL, &l.CreatedAt,
			); err != nil {
				return err
			}
			listings = append(listings, l)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return listings, nil
}
