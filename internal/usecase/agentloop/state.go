package agentloop

type State string

const (
	StateIdle       State = "idle"
	StateCapturing  State = "capturing"
	StatePredicting State = "predicting"
	StateParsing    State = "parsing"
	StateMapping    State = "mapping"
	StateExecuting  State = "executing"
	StateFinished   State = "finished"
	StateFailed     State = "failed"
)

func (s State) Terminal() bool {
	return s == StateFinished || s == StateFailed
}
