package channel

// Status tags the outcome of one invocation.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusNotImplemented Status = "not_implemented"
	StatusError          Status = "error"
)

// ErrorKind names the failure carried by an error result.
type ErrorKind string

const (
	ErrorEmpty            ErrorKind = "empty"
	ErrorMalformed        ErrorKind = "malformed"
	ErrorSubmissionFailed ErrorKind = "submission_failed"
)

// Result is what a caller gets back from Handle. Success carries no payload.
type Result struct {
	Status  Status    `json:"status"`
	Kind    ErrorKind `json:"kind,omitempty"`
	Message string    `json:"message,omitempty"`
}

func Success() Result { return Result{Status: StatusSuccess} }

func NotImplemented() Result { return Result{Status: StatusNotImplemented} }

func Failure(kind ErrorKind, msg string) Result {
	return Result{Status: StatusError, Kind: kind, Message: msg}
}

func (r Result) OK() bool { return r.Status == StatusSuccess }
