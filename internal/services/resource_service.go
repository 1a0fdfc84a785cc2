package services

import (
	"context"
	"fmt"

	"backoffice/internal/apiclient"
	"backoffice/internal/domain"
	"backoffice/internal/resources"
	"backoffice/internal/utils"
	"backoffice/internal/validation"
)

// ResourceService runs list and CRUD operations of one screen on behalf of a session.
type ResourceService struct {
	Registry  *resources.Registry
	Client    *apiclient.Client
	Audit     AuditService
	RequestID string
}

func (s ResourceService) resource(name string) (resources.Resource, error) {
	if s.Registry == nil {
		return nil, domain.InternalError{Msg: "resource registry not configured"}
	}
	return s.Registry.Get(name)
}

// List fetches one page. Unknown filters and sort fields have already been
// dropped by the caller's QuerySpec.
func (s ResourceService) List(ctx context.Context, name string, q domain.ListQuery) (resources.Page, error) {
	res, err := s.resource(name)
	if err != nil {
		return resources.Page{}, err
	}
	page, err := res.List(ctx, s.Client, q)
	if err != nil {
		utils.LogFailure(s.RequestID, name, "list", err)
		return resources.Page{}, err
	}
	return page, nil
}

// Create validates payload and submits it. Invalid payloads never reach the API.
func (s ResourceService) Create(ctx context.Context, name string, payload any) (any, error) {
	res, err := s.resource(name)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(payload); err != nil {
		return nil, err
	}
	out, err := res.Create(ctx, s.Client, payload)
	s.Audit.Record(ctx, name, "create", 0, err)
	return out, err
}

// Update validates payload and submits it for row id.
func (s ResourceService) Update(ctx context.Context, name string, id int64, payload any) (any, error) {
	res, err := s.resource(name)
	if err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, domain.ValidationError{Field: "id", Msg: "must be a positive id"}
	}
	if err := validation.Struct(payload); err != nil {
		return nil, err
	}
	out, err := res.Update(ctx, s.Client, id, payload)
	s.Audit.Record(ctx, name, "update", id, err)
	return out, err
}

func (s ResourceService) Delete(ctx context.Context, name string, id int64) error {
	res, err := s.resource(name)
	if err != nil {
		return err
	}
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "must be a positive id"}
	}
	err = res.Delete(ctx, s.Client, id)
	s.Audit.Record(ctx, name, "delete", id, err)
	return err
}

// Reorder assigns rank to one row of a reorderable screen.
func (s ResourceService) Reorder(ctx context.Context, name string, id, rank int64) error {
	res, err := s.resource(name)
	if err != nil {
		return err
	}
	if !res.Spec().Reorderable {
		return domain.ValidationError{Msg: fmt.Sprintf("%s cannot be reordered", name), Err: resources.ErrNotReorderable}
	}
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "must be a positive id"}
	}
	err = s.Client.Reorder(ctx, res.Spec().Endpoint, id, rank)
	s.Audit.Record(ctx, name, "reorder", id, err)
	return err
}
