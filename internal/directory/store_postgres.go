package directory

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"herald/pkg/platform/sentinel"
)

// Postgres reads office reference data from PostgreSQL.
//
// Schema:
//
//	CREATE TABLE offices (
//	    code             TEXT PRIMARY KEY,
//	    chamber          TEXT NOT NULL,
//	    holder_name      TEXT NOT NULL,
//	    region_code      TEXT NOT NULL,
//	    district_code    TEXT NOT NULL DEFAULT '',
//	    is_voting_member BOOLEAN NOT NULL,
//	    delegate_kind    TEXT NOT NULL DEFAULT ''
//	);
//	CREATE INDEX offices_region_idx ON offices (region_code);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) ListByRegion(ctx context.Context, regionCode string) ([]Office, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, chamber, holder_name, region_code, district_code, is_voting_member, delegate_kind
		FROM offices
		WHERE region_code = $1
	`, regionCode)
	if err != nil {
		return nil, fmt.Errorf("list offices by region: %w", err)
	}
	defer rows.Close()

	var offices []Office
	for rows.Next() {
		o, err := scanOffice(rows)
		if err != nil {
			return nil, err
		}
		offices = append(offices, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offices: %w", err)
	}
	if len(offices) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return offices, nil
}

func (s *Postgres) FindByCode(ctx context.Context, code string) (*Office, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT code, chamber, holder_name, region_code, district_code, is_voting_member, delegate_kind
		FROM offices
		WHERE code = $1
	`, code)

	o, err := scanOffice(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOffice(row rowScanner) (Office, error) {
	var o Office
	var chamber, kind string
	if err := row.Scan(&o.Code, &chamber, &o.HolderName, &o.RegionCode, &o.DistrictCode, &o.IsVotingMember, &kind); err != nil {
		if err == sql.ErrNoRows {
			return Office{}, err
		}
		return Office{}, fmt.Errorf("scan office: %w", err)
	}
	o.Chamber = Chamber(chamber)
	o.DelegateKind = DelegateKind(kind)
	return o, nil
}
