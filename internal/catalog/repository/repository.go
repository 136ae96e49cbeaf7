package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/vyaparlabs/gstbill/internal/catalog/domain"
	"github.com/vyaparlabs/gstbill/pkg/db/option"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) catalogdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, svc *catalogdomain.Service) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO services (
			id, name, description, hsn_code, unit_price, gst_rate, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		svc.ID,
		svc.Name,
		svc.Description,
		svc.HSNCode,
		svc.UnitPrice,
		svc.GSTRate,
		svc.Active,
		svc.CreatedAt,
		svc.UpdatedAt,
	).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*catalogdomain.Service, error) {
	var svc catalogdomain.Service
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, name, description, hsn_code, unit_price, gst_rate, active, created_at, updated_at
		 FROM services
		 WHERE id = ?`,
		id,
	).Scan(&svc).Error
	if err != nil {
		return nil, err
	}
	if svc.ID == 0 {
		return nil, nil
	}
	return &svc, nil
}

func (r *repository) List(ctx context.Context, filter catalogdomain.ListRequest) ([]catalogdomain.Service, error) {
	var items []catalogdomain.Service
	stmt := r.db.WithContext(ctx).Model(&catalogdomain.Service{})

	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	if filter.HSNCode != "" {
		stmt = stmt.Where("hsn_code = ?", filter.HSNCode)
	}
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}

	stmt = option.WithSortBy(option.QuerySortBy{
		Field: filter.SortBy,
		Desc:  filter.OrderBy == "desc",
		Allow: map[string]bool{
			"created_at": true,
			"updated_at": true,
			"name":       true,
			"unit_price": true,
		},
	}).Apply(stmt)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, svc *catalogdomain.Service) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE services
		 SET name = ?, description = ?, hsn_code = ?, unit_price = ?, gst_rate = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		svc.Name,
		svc.Description,
		svc.HSNCode,
		svc.UnitPrice,
		svc.GSTRate,
		svc.Active,
		svc.UpdatedAt,
		svc.ID,
	).Error
}

func (r *repository) Delete(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Exec(`DELETE FROM services WHERE id = ?`, id).Error
}

func (r *repository) CountReferences(ctx context.Context, id snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM transaction_items WHERE service_id = ?`,
		id,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
