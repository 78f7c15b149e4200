package pipeline

// Stage is a step of the per-image state machine. Stages are only ever
// entered in the order listed; skipped stages are not recorded.
type Stage string

const (
	StageLoaded        Stage = "LOADED"
	StageStyled        Stage = "STYLED"
	StageDetected      Stage = "DETECTED"
	StageDescribed     Stage = "DESCRIBED"
	StageBodyAnnotated Stage = "BODY_ANNOTATED"
	StageFaceAnnotated Stage = "FACE_ANNOTATED"
	StageCardPlaced    Stage = "CARD_PLACED"
	StageBordered      Stage = "BORDERED"
	StageSaved         Stage = "SAVED"
)

var stageOrder = map[Stage]int{
	StageLoaded:        0,
	StageStyled:        1,
	StageDetected:      2,
	StageDescribed:     3,
	StageBodyAnnotated: 4,
	StageFaceAnnotated: 5,
	StageCardPlaced:    6,
	StageBordered:      7,
	StageSaved:         8,
}

// Before reports whether s comes before o in the state machine.
func (s Stage) Before(o Stage) bool {
	return stageOrder[s] < stageOrder[o]
}

// CardSource says where the identity card face came from.
type CardSource string

const (
	CardNone     CardSource = ""
	CardDetected CardSource = "detected"
	CardUser     CardSource = "user"
)
