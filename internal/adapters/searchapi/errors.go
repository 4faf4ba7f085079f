package searchapi

import "fmt"

// SubmissionError reports a non-2xx response to a job submission. Body is
// the raw response, possibly truncated, and is not assumed to be JSON.
type SubmissionError struct {
	StatusCode int
	Body       string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit rejected: status %d, body: %s", e.StatusCode, e.Body)
}

// MalformedResponseError reports a 2xx response whose body failed to parse
// as JSON. The raw bytes and their length are preserved for diagnosis.
type MalformedResponseError struct {
	Raw []byte
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response (%d bytes): %v, raw: %s", len(e.Raw), e.Err, e.Raw)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// MissingHandleError reports a successful submission response that carried
// no usable job handle.
type MissingHandleError struct {
	Raw []byte
}

func (e *MissingHandleError) Error() string {
	return fmt.Sprintf("submission response has no job handle: %s", e.Raw)
}

// PollTimeoutError reports an exhausted attempt budget with no terminal
// status observed.
type PollTimeoutError struct {
	Handle   string
	Attempts int
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("job %s not terminal after %d poll attempts", e.Handle, e.Attempts)
}

// ServiceUnavailableError reports a failed liveness precheck.
type ServiceUnavailableError struct {
	StatusCode int // 0 when the connection itself failed
	Err        error
}

func (e *ServiceUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service unavailable: %v", e.Err)
	}
	return fmt.Sprintf("service unavailable: health returned status %d", e.StatusCode)
}

func (e *ServiceUnavailableError) Unwrap() error { return e.Err }
