package entity

type RunStatus string

const (
	RunFinished RunStatus = "finished"
	RunFailed   RunStatus = "failed"
)

// RoundReport summarizes one capture-predict-parse-map-execute cycle.
type RoundReport struct {
	Round      int
	Prediction string
	Executed   []Action
	Dropped    int
	Failures   int
	NoOp       bool
}

type RunResult struct {
	RunID       string
	Target      string
	Status      RunStatus
	Rounds      int
	FinalAction *Action
	History     []RoundReport
	Err         error
}
