package audit_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/enforcer/internal/audit"
	"github.com/smykla-skalski/enforcer/internal/decision"
	"github.com/smykla-skalski/enforcer/pkg/hook"
)

var _ = Describe("Logger", func() {
	var (
		logFile string
		now     time.Time
		log     *audit.Logger
	)

	BeforeEach(func() {
		logFile = filepath.Join(GinkgoT().TempDir(), "state", "decisions.jsonl")
		now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		log = audit.NewLogger(logFile, audit.WithTimeFunc(func() time.Time { return now }))
	})

	It("returns no entries when the file does not exist", func() {
		entries, err := log.Read()
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})

	It("records a decision", func() {
		ev := &hook.Event{
			Kind:      hook.EventKindPreToolUse,
			Tool:      hook.NewToolCall("Write", nil),
			SessionID: "s-1",
		}
		v := &decision.Verdict{
			Action:      decision.ActionBlock,
			ReasonCodes: []string{"research-bypass"},
			BlockedBy:   []string{"bypass"},
		}

		Expect(log.Record(ev, v, 0)).To(Succeed())

		entries, err := log.Read()
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Timestamp).To(BeTemporally("==", now))
		Expect(entries[0].Kind).To(Equal("PreToolUse"))
		Expect(entries[0].Tool).To(Equal("Write"))
		Expect(entries[0].SessionID).To(Equal("s-1"))
		Expect(entries[0].Action).To(Equal("block"))
		Expect(entries[0].BlockedBy).To(Equal([]string{"bypass"}))
	})

	It("creates the file with private permissions", func() {
		Expect(log.Log(&audit.Entry{Action: "allow"})).To(Succeed())

		info, err := os.Stat(logFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
	})

	It("skips malformed lines", func() {
		Expect(log.Log(&audit.Entry{Action: "allow"})).To(Succeed())

		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_WRONLY, 0o600)
		Expect(err).NotTo(HaveOccurred())
		_, err = f.WriteString("not json\n\n")
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Close()).To(Succeed())

		Expect(log.Log(&audit.Entry{Action: "block"})).To(Succeed())

		entries, err := log.Read()
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(2))
	})

	It("returns recent entries newest first", func() {
		for _, action := range []string{"allow", "allowannotated", "block"} {
			Expect(log.Log(&audit.Entry{Action: action})).To(Succeed())
		}

		recent, err := log.Recent(2)
		Expect(err).NotTo(HaveOccurred())
		Expect(recent).To(HaveLen(2))
		Expect(recent[0].Action).To(Equal("block"))
		Expect(recent[1].Action).To(Equal("allowannotated"))

		all, err := log.Recent(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(3))
	})

	It("ignores a nil entry", func() {
		Expect(log.Log(nil)).To(Succeed())
		_, err := os.Stat(logFile)
		Expect(os.IsNotExist(err)).To(BeTrue())
	})

	It("falls back to the default path", func() {
		Expect(audit.NewLogger("").Path()).To(HaveSuffix("decisions.jsonl"))
	})
})
