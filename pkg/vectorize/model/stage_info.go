package model

type StageType string

const (
	DecodeStageType   StageType = "decode"
	ClassifyStageType StageType = "classify"
	AttemptStageType  StageType = "attempt"
	RemoteStageType   StageType = "remote"
)

// StageInfo identifies one stage of a run. Attempt stages are named after their profile.
type StageInfo struct {
	Type  StageType
	Name  string
	Index int
}

var (
	StartStage = &StageInfo{Name: "start"}
	EndStage   = &StageInfo{Name: "end"}
)
