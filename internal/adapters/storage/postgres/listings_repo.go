package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"petora-connect/internal/domain/listings"
)

type ListingsRepo struct {
	db *sql.DB
}

func NewListingsRepo(db *sql.DB) *ListingsRepo {
	return &ListingsRepo{db: db}
}

const listingColumns = `
	id, owner_id,
	name, species, breed, age, gender, location,
	listing_type, price, description, image_url,
	reporter_contact, created_at, updated_at`

func (r *ListingsRepo) Create(ctx context.Context, l listings.Listing) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO listings (`+listingColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		l.ID,
		toNullString(l.OwnerID),
		l.Name,
		string(l.Species),
		l.Breed,
		l.Age,
		string(l.Gender),
		l.Location,
		string(l.ListingType),
		toNullFloat(l.Price),
		l.Description,
		l.ImageURL,
		l.ReporterContact,
		l.CreatedAt,
		l.UpdatedAt,
	)
	return err
}

func (r *ListingsRepo) Update(ctx context.Context, l listings.Listing) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE listings
		SET
			name = $2,
			species = $3,
			breed = $4,
			age = $5,
			gender = $6,
			location = $7,
			listing_type = $8,
			price = $9,
			description = $10,
			image_url = $11,
			updated_at = $12
		WHERE id = $1
	`,
		l.ID,
		l.Name,
		string(l.Species),
		l.Breed,
		l.Age,
		string(l.Gender),
		l.Location,
		string(l.ListingType),
		toNullFloat(l.Price),
		l.Description,
		l.ImageURL,
		l.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notFound("listing", l.ID)
	}
	return nil
}

func (r *ListingsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notFound("listing", id)
	}
	return nil
}

func (r *ListingsRepo) GetByID(ctx context.Context, id string) (listings.Listing, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return listings.Listing{}, notFound("listing", id)
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	l, err := scanListing(row)
	if err != nil {
		if isNoRows(err) {
			return listings.Listing{}, notFound("listing", id)
		}
		return listings.Listing{}, err
	}
	return l, nil
}

func (r *ListingsRepo) List(ctx context.Context, q listings.Query) ([]listings.Listing, error) {
	var (
		where []string
		args  []any
	)
	if q.ListingType != "" {
		args = append(args, string(q.ListingType))
		where = append(where, "listing_type = $1")
	}
	if q.OwnerID != "" {
		args = append(args, q.OwnerID)
		where = append(where, "owner_id = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + listingColumns + ` FROM listings`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]listings.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanListing(s scanner) (listings.Listing, error) {
	var (
		l                            listings.Listing
		owner                        sql.NullString
		species, gender, listingType string
		price                        sql.NullFloat64
	)
	if err := s.Scan(
		&l.ID,
		&owner,
		&l.Name,
		&species,
		&l.Breed,
		&l.Age,
		&gender,
		&l.Location,
		&listingType,
		&price,
		&l.Description,
		&l.ImageURL,
		&l.ReporterContact,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		return listings.Listing{}, err
	}

	l.OwnerID = owner.String
	l.Species = listings.Species(species)
	l.Gender = listings.Gender(gender)
	l.ListingType = listings.ListingType(listingType)
	if price.Valid {
		p := price.Float64
		l.Price = &p
	}
	return l, nil
}

// owner_id es NULL para callejeros
func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toNullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
