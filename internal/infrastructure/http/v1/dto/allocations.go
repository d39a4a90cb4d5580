package dto

import (
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/apperror"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/id"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/core/types"
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/allocation"
)

// CommitLineRequest is one requested allocation line.
type CommitLineRequest struct {
	ItemID                  string         `json:"itemId" binding:"required"`
	QtdeEmpenhadaDoEstoque  types.Quantity `json:"qtdeEmpenhadaDoEstoque"`
	QtdeEmpenhadaDoRecebido types.Quantity `json:"qtdeEmpenhadaDoRecebido"`
}

// CommitRequest is the batch allocation commit payload.
type CommitRequest struct {
	Lines       []CommitLineRequest `json:"lines" binding:"required"`
	Responsavel string              `json:"responsavel"`
}

// ToLines parses the request into domain commit lines.
func (r CommitRequest) ToLines() ([]allocation.Line, error) {
	lines := make([]allocation.Line, 0, len(r.Lines))
	for i, l := range r.Lines {
		itemID, err := id.Parse(l.ItemID)
		if err != nil {
			return nil, apperror.NewValidation("invalid item id").
				WithDetail("line", i).
				WithDetail("itemId", l.ItemID)
		}
		lines = append(lines, allocation.Line{
			ItemID:          itemID,
			QtyFromStock:    l.QtdeEmpenhadaDoEstoque,
			QtyFromReceived: l.QtdeEmpenhadaDoRecebido,
		})
	}
	return lines, nil
}
