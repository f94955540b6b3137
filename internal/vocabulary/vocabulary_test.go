package vocabulary_test

import (
	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/enforcer/internal/vocabulary"
)

var _ = Describe("Table", func() {
	var table *vocabulary.Table

	BeforeEach(func() {
		var err error

		table, err = vocabulary.Default()
		Expect(err).NotTo(HaveOccurred())
	})

	It("loads the built-in reason codes", func() {
		Expect(table.Implementation.Reason).To(Equal(vocabulary.ReasonAgentEnforcement))
		Expect(table.TodoTracking.Reason).To(Equal(vocabulary.ReasonMissingTodoTracking))
		Expect(table.Bypass.Reason).To(Equal(vocabulary.ReasonResearchBypass))
	})

	It("contains verbs in both languages", func() {
		verbs := table.Implementation.AllVerbs()
		Expect(verbs).To(ContainElements("create", "crear", "implement", "implementar", "build", "construir"))
	})

	It("contains the override phrases and evidence defaults", func() {
		Expect(table.Implementation.OverridePhrases).To(ConsistOf("task tool", "agent"))
		Expect(table.Bypass.EvidenceMarkers).To(ContainElement("Context7"))
		Expect(table.Bypass.EvidenceFields).To(ConsistOf("research_evidence"))
		Expect(table.TodoTracking.TrackingMarkers).To(ContainElement("TodoWrite"))
	})

	It("returns the same table on every call", func() {
		again, err := vocabulary.Default()
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(BeIdenticalTo(table))
	})

	Describe("Extend", func() {
		It("adds entries without mutating the original", func() {
			before := len(table.Bypass.EvidenceMarkers)

			extended := table.Extend(vocabulary.Extension{
				ImplementationVerbs: []string{"andamiar"},
				EvidenceMarkers:     []string{"read the RFC", "context7"},
				EvidenceFields:      []string{"docs_link"},
			})

			Expect(extended.Implementation.AllVerbs()).To(ContainElement("andamiar"))
			Expect(extended.Bypass.EvidenceMarkers).To(ContainElement("read the RFC"))
			Expect(extended.Bypass.EvidenceMarkers).To(HaveLen(before + 1))
			Expect(extended.Bypass.EvidenceFields).To(ConsistOf("docs_link", "research_evidence"))

			Expect(table.Implementation.AllVerbs()).NotTo(ContainElement("andamiar"))
			Expect(table.Bypass.EvidenceMarkers).To(HaveLen(before))
		})
	})

	Describe("Parse", func() {
		It("rejects malformed YAML", func() {
			_, err := vocabulary.Parse([]byte("implementation: [unclosed"))
			Expect(errors.Is(err, vocabulary.ErrInvalidVocabulary)).To(BeTrue())
		})

		It("rejects a table without verbs", func() {
			_, err := vocabulary.Parse([]byte(`
implementation: {reason: a}
todo_tracking: {reason: b}
bypass: {reason: c}
`))
			Expect(errors.Is(err, vocabulary.ErrInvalidVocabulary)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("verbs"))
		})
	})
})
