package config_test

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/enforcer/internal/config"
	pkgConfig "github.com/smykla-skalski/enforcer/pkg/config"
)

var _ = Describe("Writer", func() {
	var (
		homeDir string
		workDir string
		writer  *config.Writer
	)

	BeforeEach(func() {
		tmp := GinkgoT().TempDir()
		homeDir = filepath.Join(tmp, "home")
		workDir = filepath.Join(tmp, "work")

		writer = config.NewWriterWithDirs(homeDir, workDir)
	})

	It("writes a project config that loads back", func() {
		path, err := writer.WriteProject(config.DefaultConfig(), false)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(workDir, ".enforcer", "config.toml")))

		info, err := os.Stat(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Mode().Perm()).To(Equal(os.FileMode(config.ConfigFileMode)))

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(HavePrefix("#:schema "))
		Expect(string(data)).To(ContainSubstring("[policies.bypass]"))

		cfg, err := config.NewKoanfLoaderWithDirs(homeDir, workDir).Load(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.GetPolicies().GetBypass().GetSeverity(pkgConfig.SeverityUnknown)).To(Equal(pkgConfig.SeverityError))
	})

	It("refuses to overwrite without force", func() {
		_, err := writer.WriteGlobal(config.DefaultConfig(), false)
		Expect(err).NotTo(HaveOccurred())

		_, err = writer.WriteGlobal(config.DefaultConfig(), false)
		Expect(errors.Is(err, config.ErrConfigExists)).To(BeTrue())

		_, err = writer.WriteGlobal(config.DefaultConfig(), true)
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects a nil config", func() {
		Expect(writer.WriteFile(filepath.Join(workDir, "x.toml"), nil)).NotTo(Succeed())
	})
})
