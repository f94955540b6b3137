package dispatcher_test

import (
	"context"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/smykla-skalski/enforcer/internal/decision"
	"github.com/smykla-skalski/enforcer/internal/dispatcher"
	"github.com/smykla-skalski/enforcer/internal/evaluator"
	"github.com/smykla-skalski/enforcer/pkg/config"
	"github.com/smykla-skalski/enforcer/pkg/hook"
	"github.com/smykla-skalski/enforcer/pkg/logger"
)

var _ = Describe("Dispatcher", func() {
	var (
		ctrl     *gomock.Controller
		registry *evaluator.Registry
		d        *dispatcher.Dispatcher
		ev       *hook.Event
		ctx      context.Context
	)

	mockNamed := func(name string) *evaluator.MockEvaluator {
		m := evaluator.NewMockEvaluator(ctrl)
		m.EXPECT().Name().Return(name).AnyTimes()

		return m
	}

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		registry = evaluator.NewRegistry()
		d = dispatcher.NewDispatcher(registry, logger.NewNoOpLogger())
		ev = &hook.Event{Kind: hook.EventKindPreToolUse, Tool: hook.NewToolCall("Write", nil)}
		ctx = context.Background()
	})

	It("runs matching evaluators in registration order", func() {
		first := mockNamed("first")
		second := mockNamed("second")
		skipped := mockNamed("skipped")

		gomock.InOrder(
			first.EXPECT().Evaluate(gomock.Any(), ev).Return(evaluator.Pass(), nil),
			second.EXPECT().Evaluate(gomock.Any(), ev).Return(evaluator.Trigger("code", "msg"), nil),
		)

		registry.Register(evaluator.Registration{Evaluator: first, Severity: config.SeverityWarning})
		registry.Register(evaluator.Registration{Evaluator: skipped, Predicate: evaluator.Never()})
		registry.Register(evaluator.Registration{Evaluator: second, Severity: config.SeverityError})

		report := d.Dispatch(ctx, ev)

		Expect(report.HasFaults()).To(BeFalse())
		Expect(report.Err()).NotTo(HaveOccurred())
		Expect(report.Outcomes).To(HaveLen(2))
		Expect(report.Outcomes[0].Evaluator).To(Equal("first"))
		Expect(report.Outcomes[0].Hard).To(BeFalse())
		Expect(report.Outcomes[1].Evaluator).To(Equal("second"))
		Expect(report.Outcomes[1].Hard).To(BeTrue())
		Expect(report.Outcomes[1].Triggered()).To(BeTrue())
	})

	It("records an evaluator error and keeps going", func() {
		failing := mockNamed("failing")
		after := mockNamed("after")

		failing.EXPECT().Evaluate(gomock.Any(), ev).Return(nil, errors.New("boom"))
		after.EXPECT().Evaluate(gomock.Any(), ev).Return(evaluator.Trigger("research-bypass", "research first"), nil)

		registry.Register(evaluator.Registration{Evaluator: failing, Severity: config.SeverityError})
		registry.Register(evaluator.Registration{Evaluator: after, Severity: config.SeverityError})

		report := d.Dispatch(ctx, ev)

		Expect(report.Faults).To(HaveLen(1))
		Expect(report.Faults[0].Evaluator).To(Equal("failing"))
		Expect(errors.Is(report.Err(), dispatcher.ErrEvaluatorFault)).To(BeTrue())
		Expect(report.Err().Error()).To(ContainSubstring("boom"))
		Expect(report.Outcomes).To(HaveLen(1))

		Expect(decision.Decide(ev, report.Outcomes).IsBlocked()).To(BeTrue())
	})

	It("recovers from a panicking evaluator", func() {
		panicking := mockNamed("panicking")
		after := mockNamed("after")

		panicking.EXPECT().Evaluate(gomock.Any(), ev).DoAndReturn(
			func(context.Context, *hook.Event) (*evaluator.Result, error) {
				panic("unexpected state")
			},
		)
		after.EXPECT().Evaluate(gomock.Any(), ev).Return(evaluator.Pass(), nil)

		registry.Register(evaluator.Registration{Evaluator: panicking})
		registry.Register(evaluator.Registration{Evaluator: after})

		var report *dispatcher.Report

		Expect(func() { report = d.Dispatch(ctx, ev) }).NotTo(Panic())
		Expect(report.Faults).To(HaveLen(1))
		Expect(errors.Is(report.Faults[0], dispatcher.ErrEvaluatorFault)).To(BeTrue())
		Expect(report.Faults[0].Error()).To(ContainSubstring("unexpected state"))
		Expect(report.Outcomes).To(HaveLen(1))
	})

	It("treats a nil result as passed", func() {
		m := mockNamed("nil")
		m.EXPECT().Evaluate(gomock.Any(), ev).Return(nil, nil)

		registry.Register(evaluator.Registration{Evaluator: m})

		report := d.Dispatch(ctx, ev)
		Expect(report.Outcomes).To(HaveLen(1))
		Expect(report.Outcomes[0].Triggered()).To(BeFalse())
	})

	It("stops on a cancelled context", func() {
		m := mockNamed("never")

		registry.Register(evaluator.Registration{Evaluator: m})

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		report := d.Dispatch(cancelled, ev)
		Expect(report.HasFaults()).To(BeTrue())
		Expect(errors.Is(report.Err(), context.Canceled)).To(BeTrue())
		Expect(errors.Is(report.Err(), dispatcher.ErrEvaluatorFault)).To(BeTrue())
	})

	It("returns an empty report without matching evaluators", func() {
		report := d.Dispatch(ctx, &hook.Event{Kind: hook.EventKindSessionStart})

		Expect(report.Outcomes).To(BeEmpty())
		Expect(report.HasFaults()).To(BeFalse())
	})
})
