package model

// Stage tells which half of the pipeline produced an event.
type Stage string

const (
	StageLocal  Stage = "local"
	StageRemote Stage = "remote"
)

// EventType is the kind of a run event.
type EventType int

const (
	// EventProgress carries a percentage in [0, 99].
	EventProgress EventType = iota
	// EventProcessing is emitted once the remote service has the whole upload.
	EventProcessing
	// EventSuccess is terminal and carries the normalized SVG.
	EventSuccess
	// EventError is terminal and carries the failure.
	EventError
	// EventCancelled is terminal and carries no result.
	EventCancelled
)

func (t EventType) String() string {
	switch t {
	case EventProgress:
		return "progress"
	case EventProcessing:
		return "processing"
	case EventSuccess:
		return "success"
	case EventError:
		return "error"
	case EventCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no event can follow this one.
func (t EventType) Terminal() bool {
	return t == EventSuccess || t == EventError || t == EventCancelled
}

// Event is one element of a run's event stream.
type Event struct {
	Type    EventType
	Stage   Stage
	Profile string
	Percent float64
	SVG     string
	Err     error
}

// ResultKind is the terminal outcome of a run.
type ResultKind int

const (
	ResultPending ResultKind = iota
	ResultSuccess
	ResultFailure
	ResultCancelled
)

func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultFailure:
		return "failure"
	case ResultCancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

// Result is the terminal outcome of a run.
type Result struct {
	Kind ResultKind
	SVG  string
	Err  error
}
