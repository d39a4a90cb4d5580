package dto

import (
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/fulfillment"
)

// StageStatusResponse is one stage of the material-list rollup. Items are
// referenced by id; detail lookups go through the items API.
type StageStatusResponse struct {
	Badge     string   `json:"badge"`
	Total     int      `json:"total"`
	Completed []string `json:"completed"`
	Pending   []string `json:"pending"`
}

// MaterialListStatusResponse is the six-stage rollup of one material list.
// Inapplicable stages are absent.
type MaterialListStatusResponse struct {
	ListaMaterial string                         `json:"listaMaterial"`
	Stages        map[string]StageStatusResponse `json:"stages"`
}

// FromReport converts a rollup report into the API shape.
func FromReport(lista string, report fulfillment.Report) MaterialListStatusResponse {
	stages := make(map[string]StageStatusResponse, len(report))
	for stage, status := range report {
		view := StageStatusResponse{
			Badge:     string(status.Badge()),
			Total:     status.Total,
			Completed: make([]string, 0, len(status.Completed)),
			Pending:   make([]string, 0, len(status.Pending)),
		}
		for _, it := range status.Completed {
			view.Completed = append(view.Completed, it.ID.String())
		}
		for _, it := range status.Pending {
			view.Pending = append(view.Pending, it.ID.String())
		}
		stages[string(stage)] = view
	}

	return MaterialListStatusResponse{
		ListaMaterial: lista,
		Stages:        stages,
	}
}
