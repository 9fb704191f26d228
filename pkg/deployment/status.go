package deployment

import "fmt"

// StatusKind tags an item or deployment status.
type StatusKind string

const (
	KindSuccess StatusKind = "success"
	KindFailed  StatusKind = "failed"
	KindSkipped StatusKind = "skipped"
)

// ItemStatus is the outcome recorded for one target path.
type ItemStatus struct {
	Kind   StatusKind `json:"kind" yaml:"kind"`
	Reason string     `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Success is the status of a dotfile that was written (or would have been,
// in a dry run).
func Success() ItemStatus {
	return ItemStatus{Kind: KindSuccess}
}

// Failed is the status of a dotfile that could not be deployed.
func Failed(reason string) ItemStatus {
	return ItemStatus{Kind: KindFailed, Reason: reason}
}

// Failedf formats the failure reason.
func Failedf(format string, args ...interface{}) ItemStatus {
	return Failed(fmt.Sprintf(format, args...))
}

// Skipped is the status of a dotfile deliberately left alone.
func Skipped(reason string) ItemStatus {
	return ItemStatus{Kind: KindSkipped, Reason: reason}
}

func (s ItemStatus) IsSuccess() bool { return s.Kind == KindSuccess }
func (s ItemStatus) IsFailed() bool  { return s.Kind == KindFailed }
func (s ItemStatus) IsSkipped() bool { return s.Kind == KindSkipped }

func (s ItemStatus) String() string {
	switch s.Kind {
	case KindSuccess:
		return "Success"
	case KindFailed:
		return "Failed: " + s.Reason
	case KindSkipped:
		return "Skipped: " + s.Reason
	default:
		return string(s.Kind)
	}
}

// DeploymentStatus is the overall outcome of a run.
type DeploymentStatus struct {
	Kind   StatusKind `json:"kind" yaml:"kind"`
	Reason string     `json:"reason,omitempty" yaml:"reason,omitempty"`
}

func (s DeploymentStatus) IsSuccess() bool { return s.Kind == KindSuccess }
func (s DeploymentStatus) IsFailed() bool  { return s.Kind == KindFailed }

func (s DeploymentStatus) String() string {
	if s.IsFailed() {
		return "Failed: " + s.Reason
	}
	return "Success"
}
