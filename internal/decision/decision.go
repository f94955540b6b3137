// Package decision composes evaluator results into a single verdict.
package decision

import (
	"github.com/smykla-skalski/enforcer/internal/evaluator"
	"github.com/smykla-skalski/enforcer/pkg/hook"
)

//go:generate enumer -type=Action -trimprefix=Action -json -text -yaml -transform=lower
//go:generate go run github.com/smykla-skalski/enforcer/tools/enumerfix action_enumer.go

// Action is the outcome applied to an event.
type Action int

const (
	// ActionAllow passes the event through unchanged.
	ActionAllow Action = iota

	// ActionAllowAnnotated passes the event through with annotations.
	ActionAllowAnnotated

	// ActionBlock rejects the event.
	ActionBlock
)

// ExitCode maps the action to the hook exit status.
func (a Action) ExitCode() int {
	if a == ActionBlock {
		return 2
	}

	return 0
}

// Outcome is the result of one evaluator together with its severity class.
type Outcome struct {
	// Evaluator is the name of the evaluator that produced the result.
	Evaluator string

	// Hard marks violations that block the event.
	Hard bool

	// Result is the evaluator result. Nil results count as passed.
	Result *evaluator.Result
}

// Triggered returns true if the outcome carries a triggered result.
func (o Outcome) Triggered() bool {
	return o.Result != nil && o.Result.Triggered
}

// Verdict is the decision for one event.
type Verdict struct {
	Action Action

	// Annotations are appended to the payload. Only set for ActionAllowAnnotated.
	Annotations []string

	// BlockReasons explain the block. Only set for ActionBlock.
	BlockReasons []string

	// BlockedBy names the evaluators whose hard violations caused the block.
	BlockedBy []string

	// Flags are metadata flags raised by triggered soft policies.
	Flags []string

	// ReasonCodes lists the reason codes of every triggered result, in order.
	ReasonCodes []string
}

// IsBlocked returns true for ActionBlock.
func (v *Verdict) IsBlocked() bool {
	return v.Action == ActionBlock
}

// HasFlag reports whether the verdict raised the given flag.
func (v *Verdict) HasFlag(flag string) bool {
	for _, f := range v.Flags {
		if f == flag {
			return true
		}
	}

	return false
}

// Decide composes outcomes into a verdict. Any triggered hard outcome blocks
// and suppresses annotations. Otherwise triggered soft outcomes annotate.
// Order follows the order of outcomes.
func Decide(_ *hook.Event, outcomes []Outcome) *Verdict {
	var (
		hard, soft []Outcome
		codes      []string
	)

	for _, o := range outcomes {
		if !o.Triggered() {
			continue
		}

		codes = append(codes, o.Result.ReasonCode)

		if o.Hard {
			hard = append(hard, o)
		} else {
			soft = append(soft, o)
		}
	}

	if len(hard) > 0 {
		v := &Verdict{Action: ActionBlock, ReasonCodes: codes}

		for _, o := range hard {
			v.BlockReasons = append(v.BlockReasons, blockReason(o.Result))
			v.BlockedBy = append(v.BlockedBy, o.Evaluator)
		}

		return v
	}

	if len(soft) > 0 {
		v := &Verdict{Action: ActionAllowAnnotated, ReasonCodes: codes}

		for _, o := range soft {
			if annotation := o.Result.GetAnnotation(); annotation != "" {
				v.Annotations = append(v.Annotations, annotation)
			}

			if o.Result.Flag != "" && !v.HasFlag(o.Result.Flag) {
				v.Flags = append(v.Flags, o.Result.Flag)
			}
		}

		return v
	}

	return &Verdict{Action: ActionAllow}
}

func blockReason(r *evaluator.Result) string {
	if r.Message != "" {
		return r.Message
	}

	return r.ReasonCode
}
