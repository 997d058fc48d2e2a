package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dessertshop/storefront-api/internal/model"
)

type UnitRepository interface {
	Create(ctx context.Context, unit *model.Unit) error
	GetByID(ctx context.Context, id int64) (*model.Unit, error)
	GetByCode(ctx context.Context, code string) (*model.Unit, error)
	List(ctx context.Context) ([]model.Unit, error)
	Update(ctx context.Context, unit *model.Unit) error
	Delete(ctx context.Context, id int64) error
}

type pgUnitRepo struct{ pool *pgxpool.Pool }

func NewUnitRepository(pool *pgxpool.Pool) UnitRepository {
	return &pgUnitRepo{pool: pool}
}

func (r *pgUnitRepo) Create(ctx context.Context, unit *model.Unit) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO units_of_measure (code, description) VALUES ($1, $2) RETURNING id`,
		unit.Code, unit.Description,
	).Scan(&unit.ID)
	if err != nil {
		return fmt.Errorf("create unit: %w", err)
	}
	return nil
}

func (r *pgUnitRepo) GetByID(ctx context.Context, id int64) (*model.Unit, error) {
	unit := &model.Unit{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, description FROM units_of_measure WHERE id = $1`, id,
	).Scan(&unit.ID, &unit.Code, &unit.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unit: %w", err)
	}
	return unit, nil
}

func (r *pgUnitRepo) GetByCode(ctx context.Context, code string) (*model.Unit, error) {
	unit := &model.Unit{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, description FROM units_of_measure WHERE LOWER(code) = LOWER($1)`, code,
	).Scan(&unit.ID, &unit.Code, &unit.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unit by code: %w", err)
	}
	return unit, nil
}

func (r *pgUnitRepo) List(ctx context.Context) ([]model.Unit, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, code, description FROM units_of_measure ORDER BY code`,
	)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	var units []model.Unit
	for rows.Next() {
		var u model.Unit
		if err := rows.Scan(&u.ID, &u.Code, &u.Description); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, u)
	}
	return units, nil
}

func (r *pgUnitRepo) Update(ctx context.Context, unit *model.Unit) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE units_of_measure SET code=$2, description=$3 WHERE id=$1`,
		unit.ID, unit.Code, unit.Description,
	)
	if err != nil {
		return fmt.Errorf("update unit: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgUnitRepo) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM units_of_measure WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete unit: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
