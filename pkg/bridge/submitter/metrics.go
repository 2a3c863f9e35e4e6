package submitter

// Metrics is the narrow Prometheus surface the submitter reports to.
type Metrics interface {
	ObserveSubmit(method string, err error)
	ObserveRetry(method string, action string)
}
