package services

import "fmt"

// StepStatus outcome of one step in a cascading operation.
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepAbsent  StepStatus = "absent"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// StepResult is one entry of an OperationReport.
type StepResult struct {
	Step   string     `json:"step"`
	Target string     `json:"target"`
	Status StepStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// OperationReport collects the primary mutation and its best-effort follow-ups.
// A failed follow-up never undoes the primary step; it turns into a warning.
type OperationReport struct {
	Steps    []StepResult `json:"steps"`
	Warnings []string     `json:"warnings,omitempty"`
}

func (r *OperationReport) Add(step StepResult) {
	r.Steps = append(r.Steps, step)
	if step.Status == StepFailed {
		msg := fmt.Sprintf("%s %s failed", step.Step, step.Target)
		if step.Error != "" {
			msg += ": " + step.Error
		}
		r.Warnings = append(r.Warnings, msg)
	}
}

func (r *OperationReport) AddAll(steps []StepResult) {
	for _, s := range steps {
		r.Add(s)
	}
}

// OK is true when no step failed.
func (r *OperationReport) OK() bool {
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			return false
		}
	}
	return true
}
