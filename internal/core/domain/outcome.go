package domain

// Stage names the pipeline step an outcome ended at.
type Stage string

const (
	StageIdentify Stage = "identify"
	StageFetch    Stage = "fetch"
	StageGenerate Stage = "generate"
	StageSave     Stage = "save"
)

type OutcomeStatus string

const (
	OutcomeSaved      OutcomeStatus = "saved"
	OutcomeEmpty      OutcomeStatus = "empty"
	OutcomeDegraded   OutcomeStatus = "degraded"
	OutcomeSkipped    OutcomeStatus = "skipped"
	OutcomeSinkFailed OutcomeStatus = "sink_failed"
)

// Outcome is the per-username result of one pipeline pass.
type Outcome struct {
	Input     string
	Username  string
	Status    OutcomeStatus
	Stage     Stage
	Anomalies int
	Err       error
}

// OK reports whether a persona document reached the sink.
func (o Outcome) OK() bool {
	switch o.Status {
	case OutcomeSaved, OutcomeEmpty, OutcomeDegraded:
		return true
	}
	return false
}
