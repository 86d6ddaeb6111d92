package avtransport

import (
	"fmt"
	"strings"
)

// TransportFailure is the HTTP status recorded when a control request never
// reached the renderer (connection refused, timeout). It keeps transport
// errors inside the report instead of letting them escape as errors.
const TransportFailure = -1

// StepResult is the outcome of one control action
type StepResult struct {
	// Action is the AVTransport action name
	Action string
	// HTTPStatus is the response status, or TransportFailure
	HTTPStatus int
	// Fault is the SOAP fault code or message; empty means no fault
	Fault string
}

// OK reports whether the step succeeded
func (r StepResult) OK() bool {
	return r.HTTPStatus >= 200 && r.HTTPStatus < 300 && r.Fault == ""
}

// PushReport is the ordered trail of every control action attempted while
// driving a renderer to playing state. It is the sole channel by which
// failure diagnostics reach the caller.
type PushReport struct {
	Success bool
	Steps   []StepResult
}

func (r *PushReport) append(step StepResult) {
	r.Steps = append(r.Steps, step)
}

// String renders the report for humans: overall outcome plus one line per
// attempted step
func (r *PushReport) String() string {
	var sb strings.Builder

	if r.Success {
		sb.WriteString("SUCCESS")
	} else {
		sb.WriteString("FAIL")
	}

	for _, step := range r.Steps {
		sb.WriteString(fmt.Sprintf("\n* %s -> HTTP=%d", step.Action, step.HTTPStatus))

		if step.Fault != "" {
			sb.WriteString(" SOAP=" + step.Fault)
		}
	}

	return sb.String()
}
