package fulfillment

import (
	"context"
	"fmt"

	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/apperror"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/items"
)

// Service builds fulfillment reports for dashboard consumers.
type Service struct {
	items items.Repository
}

// NewService creates a new fulfillment service.
func NewService(itemsRepo items.Repository) *Service {
	return &Service{items: itemsRepo}
}

// MaterialListStatus loads one material list and rolls up its six-stage
// completion state.
func (s *Service) MaterialListStatus(ctx context.Context, lista string) (Report, error) {
	if lista == "" {
		return nil, apperror.NewValidation("material list is required").
			WithDetail("field", "listaMaterial")
	}

	group, err := s.items.ListByListaMaterial(ctx, lista)
	if err != nil {
		return nil, fmt.Errorf("list material items: %w", err)
	}
	if len(group) == 0 {
		return nil, apperror.NewNotFound("material list", lista)
	}

	return BuildReport(group), nil
}
