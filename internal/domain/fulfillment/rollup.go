package fulfillment

import (
	"github.com/oliverlleo/SistemaCompras-sub001/internal/domain/items"
)

// StageStatus is the per-stage completion breakdown for a group of items.
type StageStatus struct {
	Total     int           `json:"total"`
	Completed []*items.Item `json:"completed"`
	Pending   []*items.Item `json:"pending"`
}

// Badge classifies the stage from its completion counts.
func (s StageStatus) Badge() Badge {
	switch {
	case len(s.Completed) >= s.Total:
		return BadgeConcluded
	case len(s.Completed) > 0:
		return BadgePartial
	default:
		return BadgePending
	}
}

// Report maps each applicable stage to its status. A stage whose inclusion
// subset is empty is absent from the report (not applicable, no badge).
type Report map[Stage]StageStatus

// BuildReport evaluates every stage independently over the group.
func BuildReport(group []*items.Item) Report {
	report := make(Report, len(AllStages))

	for _, stage := range AllStages {
		status := evaluateStage(stage, group)
		if status.Total == 0 {
			continue
		}
		report[stage] = status
	}

	return report
}

// evaluateStage applies the stage's inclusion and completion predicates.
func evaluateStage(stage Stage, group []*items.Item) StageStatus {
	var status StageStatus
	for _, it := range group {
		if !includedIn(stage, it) {
			continue
		}
		status.Total++
		if completedIn(stage, it) {
			status.Completed = append(status.Completed, it)
		} else {
			status.Pending = append(status.Pending, it)
		}
	}
	return status
}

func includedIn(stage Stage, it *items.Item) bool {
	switch stage {
	case StageInitialPurchase, StageAllocation:
		return true
	case StageInitialReceipt:
		return it.QtdeComprada.IsPositive()
	case StageFinalPurchase:
		return it.PrecisaCompraFinal
	case StageFinalReceipt:
		return len(it.HistoricoCompraFinal) > 0
	case StageFinalSeparation:
		return it.QtdItemNecFinal.IsPositive()
	}
	return false
}

func completedIn(stage Stage, it *items.Item) bool {
	switch stage {
	case StageInitialPurchase:
		return it.QtdeComprada.IsPositive()
	case StageInitialReceipt:
		tipo := items.ReceiptInicial
		return items.SumReceipts(it.HistoricoRecebimentos, &tipo).
			GreaterThanOrEqual(it.QtdeComprada)
	case StageAllocation:
		return it.StatusItem == items.StatusEmpenhado
	case StageFinalPurchase:
		return it.CompraFinalConcluida
	case StageFinalReceipt:
		tipo := items.ReceiptFinal
		return items.SumReceipts(it.HistoricoRecebimentos, &tipo).
			GreaterThanOrEqual(items.SumFinalPurchases(it.HistoricoCompraFinal))
	case StageFinalSeparation:
		return it.StatusItem == items.StatusSeparadoParaProducao ||
			it.QtdProducao.IsPositive()
	}
	return false
}
