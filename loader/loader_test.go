package loader_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memsim/loader"
	"github.com/sarchlab/memsim/mem"
)

func writeFile(name, content string) string {
	path := filepath.Join(GinkgoT().TempDir(), name)
	Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
	return path
}

var _ = Describe("Loader", func() {
	Describe("Load", func() {
		It("should load and parse a program file", func() {
			path := writeFile("program.asm", `
mov eax #1
loop:
sub eax #1
cmp eax #0
jge loop
halt
`)
			prog, err := loader.Load(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(prog.Instructions).To(HaveLen(5))
			Expect(prog.Labels).To(HaveKey("loop"))
		})

		It("should fail for a missing file", func() {
			_, err := loader.Load("no-such-program.asm")
			Expect(err).To(HaveOccurred())
		})

		It("should name the file in parse errors", func() {
			path := writeFile("bad.asm", "bogus eax #1")

			_, err := loader.Load(path)
			Expect(err).To(MatchError(ContainSubstring("bad.asm")))
		})
	})

	Describe("LoadData", func() {
		var memory *mem.MainMemory

		BeforeEach(func() {
			var err error
			memory, err = mem.NewMainMemory(mem.MainMemoryConfig{
				Name:       "MainMemory",
				Size:       256,
				AccessTime: 100,
			})
			Expect(err).ToNot(HaveOccurred())
		})

		It("should seed memory from address/value pairs", func() {
			path := writeFile("data.txt", `
; initial array
100 5
0x65 -2
102 8
`)
			Expect(loader.LoadData(path, memory)).To(Succeed())

			value, err := memory.Read(100)
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal(mem.Word(5)))

			value, err = memory.Read(101)
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal(mem.Word(-2)))

			value, err = memory.Read(102)
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal(mem.Word(8)))
		})

		It("should reject malformed lines", func() {
			path := writeFile("data.txt", "100 5 extra")

			err := loader.LoadData(path, memory)
			Expect(err).To(MatchError(ContainSubstring("line 1")))
		})

		It("should reject out-of-range addresses", func() {
			path := writeFile("data.txt", "5000 1")

			err := loader.LoadData(path, memory)
			Expect(err).To(HaveOccurred())
		})
	})
})
