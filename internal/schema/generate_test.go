package schema_test

import (
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/enforcer/internal/schema"
)

var _ = Describe("Generate", func() {
	var s map[string]any

	BeforeEach(func() {
		data, err := schema.GenerateJSON(true)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(data, &s)).To(Succeed())
	})

	It("sets the $schema URI and title", func() {
		Expect(s["$schema"]).To(Equal("https://json-schema.org/draft/2020-12/schema"))
		Expect(s["title"]).To(Equal("enforcer configuration"))
	})

	It("identifies itself by its published URL", func() {
		Expect(s["$id"]).To(Equal(schema.URL()))
		Expect(s["description"]).NotTo(BeEmpty())
	})

	It("does not require any property", func() {
		Expect(s).NotTo(HaveKey("required"))
	})

	It("includes top-level properties", func() {
		props, ok := s["properties"].(map[string]any)
		Expect(ok).To(BeTrue())

		for _, key := range []string{"version", "global", "policies", "audit", "crash_dump"} {
			Expect(props).To(HaveKey(key), "missing top-level property: %s", key)
		}
	})

	Describe("custom type schemas", func() {
		var defs map[string]any

		BeforeEach(func() {
			var ok bool

			defs, ok = s["$defs"].(map[string]any)
			Expect(ok).To(BeTrue(), "$defs should exist")
		})

		It("defines Duration as string with pattern", func() {
			dur, ok := defs["Duration"].(map[string]any)
			Expect(ok).To(BeTrue(), "Duration def should exist")
			Expect(dur["type"]).To(Equal("string"))
			Expect(dur["pattern"]).NotTo(BeEmpty())
		})

		It("defines Severity as string with enum", func() {
			sev, ok := defs["Severity"].(map[string]any)
			Expect(ok).To(BeTrue(), "Severity def should exist")
			Expect(sev["type"]).To(Equal("string"))
			Expect(sev["enum"]).To(ConsistOf("error", "warning"))
		})

		It("flattens embedded policy settings", func() {
			bypass, ok := defs["BypassPolicyConfig"].(map[string]any)
			Expect(ok).To(BeTrue())

			props := bypass["properties"].(map[string]any)
			Expect(props).To(HaveKey("severity"))
			Expect(props).To(HaveKey("exempt_paths"))
			Expect(props).To(HaveKey("check_bash_writes"))
			Expect(bypass["description"]).To(ContainSubstring("research evidence"))
		})
	})
})

var _ = Describe("SchemaDirective", func() {
	It("points at the versioned schema file", func() {
		Expect(schema.Filename()).To(Equal("config.v1.schema.json"))
		Expect(schema.SchemaDirective()).To(HavePrefix("#:schema "))
		Expect(schema.SchemaDirective()).To(HaveSuffix("config.v1.schema.json"))
	})
})

var _ = Describe("WriteFile", func() {
	It("writes the versioned schema into the directory", func() {
		dir := filepath.Join(GinkgoT().TempDir(), "schema")

		path, err := schema.WriteFile(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(dir, schema.Filename())))

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Valid(data)).To(BeTrue())
	})
})
