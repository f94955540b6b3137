package report_test

import (
	"os"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/enforcer/internal/color"
	"github.com/smykla-skalski/enforcer/internal/report"
)

var _ = Describe("RenderTableWidth", func() {
	theme := color.NewTheme(false)
	headers := []string{"File", "Action", "Reasons"}
	rows := [][]string{
		{"write.json", "block", "research-bypass"},
		{"prompt.json", "allowannotated", "agent-enforcement"},
	}

	It("returns empty output for no rows", func() {
		Expect(report.RenderTableWidth(0, headers, nil, theme)).To(BeEmpty())
	})

	It("renders every cell", func() {
		out := report.RenderTableWidth(0, headers, rows, theme)
		Expect(out).To(ContainSubstring("write.json"))
		Expect(out).To(ContainSubstring("allowannotated"))
		Expect(out).To(ContainSubstring("research-bypass"))
		Expect(out).To(ContainSubstring("╭"))
	})

	It("renders wrapped output when fitted", func() {
		long := [][]string{{"a.json", "block", strings.Repeat("reason ", 30)}}
		out := report.RenderTableWidth(60, headers, long, theme)
		Expect(strings.Count(out, "\n")).To(BeNumerically(">", 4))
	})
})

var _ = Describe("CalcColumnWidths", func() {
	headers := []string{"File", "Action", "Reasons"}
	rows := [][]string{{"prompt.json", "block", "x"}}

	It("returns nil for unknown or narrow terminals", func() {
		Expect(report.CalcColumnWidths(0, headers, rows)).To(BeNil())
		Expect(report.CalcColumnWidths(30, headers, rows)).To(BeNil())
	})

	It("gives the remaining width to the last column", func() {
		widths := report.CalcColumnWidths(80, headers, rows)
		Expect(widths[0]).To(Equal(len("prompt.json")))
		Expect(widths[1]).To(Equal(len("Action")))
		Expect(widths[2]).To(Equal(80 - 10 - 11 - 6))
	})
})

var _ = Describe("PadToWidth", func() {
	It("pads short strings", func() {
		Expect(report.PadToWidth("hi", 5)).To(Equal("hi   "))
	})

	It("leaves long strings alone", func() {
		Expect(report.PadToWidth("hello world", 5)).To(Equal("hello world"))
	})
})

var _ = Describe("ShortenPath", func() {
	It("replaces the home directory", func() {
		home, err := os.UserHomeDir()
		Expect(err).NotTo(HaveOccurred())
		Expect(report.ShortenPath(home + "/x.json")).To(Equal("~/x.json"))
	})
})

var _ = Describe("JSONDiff", func() {
	It("is empty for identical payloads", func() {
		out, err := report.JSONDiff([]byte(`{"a":1}`), []byte(`{"a": 1}`), "in", "out")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(BeEmpty())
	})

	It("shows added fields", func() {
		out, err := report.JSONDiff(
			[]byte(`{"prompt":"x"}`),
			[]byte(`{"metadata":{"hook_version":"dev"},"prompt":"x"}`),
			"input", "output",
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("--- input"))
		Expect(out).To(ContainSubstring("+++ output"))
		Expect(out).To(ContainSubstring(`+  "metadata": {`))
	})
})
