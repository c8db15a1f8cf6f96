package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/internal/validators"
	"github.com/MKhiriev/go-farrier-sync/models"
)

type MutationValidationService struct {
	inner     MutationQueue
	validator validators.Validator
}

func NewMutationValidationService() MutationQueueWrapper {
	return &MutationValidationService{
		validator: validators.NewMutationValidator(),
	}
}

func (v *MutationValidationService) Create(ctx context.Context, entity schema.EntityName, rec models.Record) (models.Record, error) {
	m := models.Mutation{Entity: entity, Op: schema.OpAdd, Record: rec}
	if err := v.validator.Validate(ctx, m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return v.inner.Create(ctx, entity, rec)
}

func (v *MutationValidationService) Edit(ctx context.Context, entity schema.EntityName, rec models.Record) error {
	m := models.Mutation{Entity: entity, Op: schema.OpEdit, Record: rec}
	if err := v.validator.Validate(ctx, m); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return v.inner.Edit(ctx, entity, rec)
}

func (v *MutationValidationService) Delete(ctx context.Context, entity schema.EntityName, rec models.Record) error {
	m := models.Mutation{Entity: entity, Op: schema.OpDelete, Record: rec}
	if err := v.validator.Validate(ctx, m); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return v.inner.Delete(ctx, entity, rec)
}

func (v *MutationValidationService) SaveSettings(ctx context.Context, section schema.SettingsSection, rec models.Record) error {
	c := models.SettingsChange{Section: section, Record: rec}
	if err := v.validator.Validate(ctx, c); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return v.inner.SaveSettings(ctx, section, rec)
}

func (v *MutationValidationService) Pending(ctx context.Context) ([]schema.StoreName, error) {
	return v.inner.Pending(ctx)
}

func (v *MutationValidationService) Wrap(wrapper MutationQueue) MutationQueue {
	v.inner = wrapper
	return v
}
