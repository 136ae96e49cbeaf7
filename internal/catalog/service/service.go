package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/vyaparlabs/gstbill/internal/catalog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type serviceParams struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  catalogdomain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  catalogdomain.Repository
}

func NewService(p serviceParams) catalogdomain.CatalogService {
	return &Service{
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req catalogdomain.CreateRequest) (*catalogdomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, catalogdomain.ErrInvalidName
	}
	hsn := strings.TrimSpace(req.HSNCode)
	if hsn == "" {
		return nil, catalogdomain.ErrInvalidHSNCode
	}

	existing, err := s.repo.List(ctx, catalogdomain.ListRequest{Name: name})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, catalogdomain.ErrDuplicateName
	}

	description := strings.TrimSpace(ptrToString(req.Description))
	var descriptionPtr *string
	if description != "" {
		descriptionPtr = &description
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	record := &catalogdomain.Service{
		ID:          s.genID.Generate(),
		Name:        name,
		Description: descriptionPtr,
		HSNCode:     hsn,
		UnitPrice:   req.UnitPrice,
		GSTRate:     req.GSTRate,
		Active:      active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.log.Info("service created",
		zap.String("service_id", record.ID.String()),
		zap.String("name", record.Name),
	)

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req catalogdomain.ListRequest) ([]catalogdomain.Response, error) {
	filter := catalogdomain.ListRequest{
		Name:    strings.TrimSpace(req.Name),
		HSNCode: strings.TrimSpace(req.HSNCode),
		Active:  req.Active,
		SortBy:  strings.TrimSpace(req.SortBy),
		OrderBy: strings.TrimSpace(req.OrderBy),
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]catalogdomain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(&item))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*catalogdomain.Response, error) {
	svcID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, catalogdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, svcID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, catalogdomain.ErrNotFound
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req catalogdomain.UpdateRequest) (*catalogdomain.Response, error) {
	svcID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, catalogdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, svcID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, catalogdomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, catalogdomain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			item.Description = nil
		} else {
			item.Description = &description
		}
	}
	if req.HSNCode != nil {
		hsn := strings.TrimSpace(*req.HSNCode)
		if hsn == "" {
			return nil, catalogdomain.ErrInvalidHSNCode
		}
		item.HSNCode = hsn
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	if req.GSTRate != nil {
		item.GSTRate = *req.GSTRate
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	item.UpdatedAt = time.Now().UTC()
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	svcID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return catalogdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, svcID)
	if err != nil {
		return err
	}
	if item == nil {
		return catalogdomain.ErrNotFound
	}

	refs, err := s.repo.CountReferences(ctx, svcID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return catalogdomain.ErrServiceInUse
	}

	if err := s.repo.Delete(ctx, svcID); err != nil {
		return err
	}

	s.log.Info("service deleted", zap.String("service_id", svcID.String()))
	return nil
}

func toResponse(svc *catalogdomain.Service) catalogdomain.Response {
	return catalogdomain.Response{
		ID:          svc.ID.String(),
		Name:        svc.Name,
		Description: svc.Description,
		HSNCode:     svc.HSNCode,
		UnitPrice:   svc.UnitPrice,
		GSTRate:     svc.GSTRate,
		Active:      svc.Active,
		CreatedAt:   svc.CreatedAt,
		UpdatedAt:   svc.UpdatedAt,
	}
}

func ptrToString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
