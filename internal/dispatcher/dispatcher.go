// Package dispatcher runs the evaluators that apply to an event.
package dispatcher

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/enforcer/internal/decision"
	"github.com/smykla-skalski/enforcer/internal/evaluator"
	"github.com/smykla-skalski/enforcer/pkg/hook"
	"github.com/smykla-skalski/enforcer/pkg/logger"
)

// ErrEvaluatorFault is returned when an evaluator fails or panics.
var ErrEvaluatorFault = errors.New("evaluator fault")

// Fault records a failed evaluator.
type Fault struct {
	// Evaluator is the name of the failed evaluator.
	Evaluator string

	// Err is the failure, wrapping ErrEvaluatorFault.
	Err error
}

// Error implements the error interface.
func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %v", f.Evaluator, f.Err)
}

// Unwrap returns the underlying error.
func (f *Fault) Unwrap() error {
	return f.Err
}

// Report is the collected output of one dispatch.
type Report struct {
	// Outcomes are the results of evaluators that completed, in registration order.
	Outcomes []decision.Outcome

	// Faults are the evaluators that failed.
	Faults []*Fault
}

// Err combines all faults into one error, or returns nil.
func (r *Report) Err() error {
	var err error

	for _, f := range r.Faults {
		err = errors.CombineErrors(err, f)
	}

	return err
}

// HasFaults returns true if any evaluator failed.
func (r *Report) HasFaults() bool {
	return len(r.Faults) > 0
}

// Dispatcher runs matching evaluators sequentially in registration order.
type Dispatcher struct {
	registry *evaluator.Registry
	logger   logger.Logger
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(registry *evaluator.Registry, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Dispatcher{
		registry: registry,
		logger:   log,
	}
}

// Dispatch evaluates the event with every matching evaluator. A failing
// evaluator is recorded as a fault and does not stop the remaining ones.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *hook.Event) *Report {
	regs := d.registry.Find(ev)

	d.logger.Info("dispatching",
		"kind", ev.Kind,
		"tool", ev.ToolName(),
		"evaluators", len(regs),
	)

	report := &Report{Outcomes: make([]decision.Outcome, 0, len(regs))}

	for _, reg := range regs {
		if err := ctx.Err(); err != nil {
			report.Faults = append(report.Faults, &Fault{
				Evaluator: reg.Evaluator.Name(),
				Err:       errors.Mark(errors.Wrap(err, "dispatch cancelled"), ErrEvaluatorFault),
			})

			break
		}

		result, err := d.run(ctx, reg.Evaluator, ev)
		if err != nil {
			d.logger.Error("evaluator failed",
				"evaluator", reg.Evaluator.Name(),
				"error", err,
			)

			report.Faults = append(report.Faults, &Fault{Evaluator: reg.Evaluator.Name(), Err: err})

			continue
		}

		report.Outcomes = append(report.Outcomes, decision.Outcome{
			Evaluator: reg.Evaluator.Name(),
			Hard:      reg.IsHard(),
			Result:    result,
		})
	}

	return report
}

// run invokes one evaluator, converting errors and panics into faults.
func (*Dispatcher) run(
	ctx context.Context,
	e evaluator.Evaluator,
	ev *hook.Event,
) (result *evaluator.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = errors.Wrapf(ErrEvaluatorFault, "panic: %v", r)
		}
	}()

	result, err = e.Evaluate(ctx, ev)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "evaluate"), ErrEvaluatorFault)
	}

	if result == nil {
		return evaluator.Pass(), nil
	}

	return result, nil
}
