package parser_test

import (
	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/enforcer/pkg/parser"
)

var _ = Describe("BashParser", func() {
	var p *parser.BashParser

	BeforeEach(func() {
		p = parser.NewBashParser()
	})

	Describe("Parse", func() {
		It("rejects empty commands", func() {
			_, err := p.Parse("   \t")
			Expect(errors.Is(err, parser.ErrEmptyCommand)).To(BeTrue())
		})

		It("rejects invalid syntax", func() {
			_, err := p.Parse("echo 'unterminated")
			Expect(errors.Is(err, parser.ErrParseFailed)).To(BeTrue())
		})

		It("collects chained and piped commands", func() {
			result, err := p.Parse("cd src && ls | grep foo; (echo $(pwd))")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.HasCommand("cd")).To(BeTrue())
			Expect(result.HasCommand("grep")).To(BeTrue())
			Expect(result.HasCommand("pwd")).To(BeTrue())
			Expect(result.FileWrites).To(BeEmpty())
		})
	})

	DescribeTable("file write detection",
		func(command string, op parser.WriteOp, paths ...string) {
			result, err := p.Parse(command)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.WrittenPaths()).To(Equal(paths))

			for _, fw := range result.FileWrites {
				Expect(fw.Operation).To(Equal(op))
			}
		},
		Entry("redirect", "echo hi > out.py", parser.WriteOpRedirect, "out.py"),
		Entry("redirect all", "make &> build.log", parser.WriteOpRedirect, "build.log"),
		Entry("append", `echo "x" >> app.go`, parser.WriteOpAppend, "app.go"),
		Entry("tee with flags", "echo hi | tee -a a.txt b.txt", parser.WriteOpTee, "a.txt", "b.txt"),
		Entry("cp", "cp src/a.go dst/a.go", parser.WriteOpCopy, "dst/a.go"),
		Entry("install", "install -m 755 bin/tool /usr/local/bin/tool", parser.WriteOpCopy, "/usr/local/bin/tool"),
		Entry("mv", "mv old.py new.py", parser.WriteOpMove, "new.py"),
		Entry("sed in place", "sed -i 's/a/b/' main.go util.go", parser.WriteOpInPlace, "main.go", "util.go"),
		Entry("perl in place", "perl -pi -e 's/a/b/' main.rb", parser.WriteOpInPlace, "main.rb"),
		Entry("dd", "dd if=/dev/zero of=disk.img bs=1M count=1", parser.WriteOpDD, "disk.img"),
		Entry("quoted path", `echo hi > "my file.txt"`, parser.WriteOpRedirect, "my file.txt"),
		Entry("parameter expansion", `echo hi > "$HOME/notes.md"`, parser.WriteOpRedirect, "$HOME/notes.md"),
	)

	It("does not treat sed without -i as a write", func() {
		result, err := p.Parse("sed -n 's/a/b/p' main.go")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.FileWrites).To(BeEmpty())
	})

	It("ignores device paths", func() {
		result, err := p.Parse("go build ./... 2>/dev/null > /dev/null")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.FileWrites).To(BeEmpty())
	})

	It("captures heredoc content written to a file", func() {
		result, err := p.Parse("cat > script.py << 'EOF'\nprint('hi')\nEOF")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.FileWrites).To(HaveLen(1))
		Expect(result.FileWrites[0].Operation).To(Equal(parser.WriteOpHeredoc))
		Expect(result.FileWrites[0].Path).To(Equal("script.py"))
		Expect(result.FileWrites[0].Content).To(ContainSubstring("print('hi')"))
	})

	It("deduplicates written paths", func() {
		result, err := p.Parse("echo a > f.txt && echo b >> f.txt")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.FileWrites).To(HaveLen(2))
		Expect(result.WrittenPaths()).To(Equal([]string{"f.txt"}))
	})

	Describe("FileWrites", func() {
		It("returns nothing for unparsable commands", func() {
			Expect(parser.FileWrites("echo 'oops")).To(BeEmpty())
		})

		It("returns writes for valid commands", func() {
			Expect(parser.FileWrites("echo hi > a.txt")).To(HaveLen(1))
		})
	})

	It("records positions of writes", func() {
		result, err := p.Parse("ls\necho hi > a.txt")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.FileWrites).To(HaveLen(1))
		Expect(result.FileWrites[0].Pos.Line).To(Equal(uint(2)))
		Expect(result.FileWrites[0].Describe()).To(HavePrefix("2:"))
	})

	It("quotes arguments containing spaces", func() {
		cmd := parser.Command{Name: "git", Args: []string{"commit", "-m", "fix it"}}
		Expect(cmd.String()).To(Equal(`git commit -m "fix it"`))
	})

	It("is safe to share between goroutines", func() {
		done := make(chan []string, 8)

		for range 8 {
			go func() {
				defer GinkgoRecover()

				result, err := p.Parse("echo hi | tee out.txt")
				Expect(err).NotTo(HaveOccurred())
				done <- result.WrittenPaths()
			}()
		}

		for range 8 {
			Eventually(done).Should(Receive(Equal([]string{"out.txt"})))
		}
	})

	Describe("FileWrite String", func() {
		It("includes the source command when known", func() {
			fw := parser.FileWrite{Path: "a.txt", Operation: parser.WriteOpTee, Source: "tee"}
			Expect(fw.String()).To(Equal("Tee tee -> a.txt"))
		})

		It("omits a missing source", func() {
			fw := parser.FileWrite{Path: "a.txt", Operation: parser.WriteOpRedirect}
			Expect(fw.String()).To(Equal("Redirect -> a.txt"))
		})
	})
})
