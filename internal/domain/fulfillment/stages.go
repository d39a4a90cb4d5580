// Package fulfillment computes per-stage completion across the six
// procurement pipeline stages for a group of items (one material list).
package fulfillment

// Stage identifies one pipeline stage. The set is closed and ordered.
type Stage string

const (
	StageInitialPurchase Stage = "initialPurchase"
	StageInitialReceipt  Stage = "initialReceipt"
	StageAllocation      Stage = "allocation"
	StageFinalPurchase   Stage = "finalPurchase"
	StageFinalReceipt    Stage = "finalReceipt"
	StageFinalSeparation Stage = "finalSeparation"
)

// AllStages lists the stages in pipeline order.
var AllStages = []Stage{
	StageInitialPurchase,
	StageInitialReceipt,
	StageAllocation,
	StageFinalPurchase,
	StageFinalReceipt,
	StageFinalSeparation,
}

// Valid reports whether s is a member of the closed stage set.
func (s Stage) Valid() bool {
	switch s {
	case StageInitialPurchase, StageInitialReceipt, StageAllocation,
		StageFinalPurchase, StageFinalReceipt, StageFinalSeparation:
		return true
	}
	return false
}

// Badge classifies a stage status for dashboard rendering.
type Badge string

const (
	BadgeConcluded Badge = "concluded"
	BadgePartial   Badge = "partial"
	BadgePending   Badge = "pending"
)
