package api

// Worker is a background job tracked by the job endpoints.
type Worker interface {
	StartWork()
	Result() interface{}
	Progress() float64
	Done() bool
	Error() error
}
