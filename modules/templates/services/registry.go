package services

import (
	"context"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/templates/domain/aggregates/template"
)

// Materializer projects an instantiated template into a typed catalog row.
// Implementations must be idempotent per instance.
type Materializer interface {
	Materialize(ctx context.Context, instance *template.Instance) error
}

// RegisterMaterializer binds a materializer to a template type. Registering
// the same type twice replaces the previous binding.
func (s *TemplateService) RegisterMaterializer(typ template.Type, m Materializer) {
	if s.materializers == nil {
		s.materializers = make(map[template.Type]Materializer)
	}
	s.materializers[typ] = m
}

func (s *TemplateService) materialize(ctx context.Context, typ template.Type, instance *template.Instance) error {
	m, ok := s.materializers[typ]
	if !ok {
		return nil
	}
	return m.Materialize(ctx, instance)
}
