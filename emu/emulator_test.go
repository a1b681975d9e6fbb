package emu_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memsim/emu"
	"github.com/sarchlab/memsim/insts"
	"github.com/sarchlab/memsim/mem"
	"github.com/sarchlab/memsim/mem/hierarchy"
)

// run parses src and executes it against a fresh 1024-word main memory,
// returning the emulator and the memory.
func run(src string) (*emu.Emulator, *mem.MainMemory) {
	memory, err := mem.NewMainMemory(mem.MainMemoryConfig{
		Name:       "MainMemory",
		Size:       1024,
		AccessTime: 100,
	})
	Expect(err).ToNot(HaveOccurred())

	prog, err := insts.Parse(src)
	Expect(err).ToNot(HaveOccurred())

	emulator := emu.NewEmulator(memory)
	emulator.LoadProgram(prog)
	Expect(emulator.Run()).To(Succeed())

	return emulator, memory
}

var _ = Describe("Emulator", func() {
	It("should execute register arithmetic", func() {
		emulator, _ := run(`
mov eax #5
add eax #3
sub eax #2
halt
`)
		Expect(emulator.RegFile().Read(insts.RegEAX)).To(Equal(mem.Word(6)))
	})

	It("should execute logic operations", func() {
		emulator, _ := run(`
mov eax #12
and eax #10
mov ebx #12
or ebx #3
mov ecx #12
xor ecx #10
mov edx #0
not edx
halt
`)
		Expect(emulator.RegFile().Read(insts.RegEAX)).To(Equal(mem.Word(8)))
		Expect(emulator.RegFile().Read(insts.RegEBX)).To(Equal(mem.Word(15)))
		Expect(emulator.RegFile().Read(insts.RegECX)).To(Equal(mem.Word(6)))
		Expect(emulator.RegFile().Read(insts.RegEDX)).To(Equal(mem.Word(-1)))
	})

	It("should loop with cmp and jge", func() {
		emulator, _ := run(`
mov eax #0
mov ebx #5
loop:
add eax ebx
sub ebx #1
cmp ebx #1
jge loop
halt
`)
		Expect(emulator.RegFile().Read(insts.RegEAX)).To(Equal(mem.Word(15)))
	})

	It("should take jz only when the comparison was equal", func() {
		emulator, _ := run(`
mov eax #0
cmp eax #0
jz skip
mov ebx #1
skip:
cmp eax #7
jz never
mov ecx #2
never:
halt
`)
		Expect(emulator.RegFile().Read(insts.RegEBX)).To(Equal(mem.Word(0)))
		Expect(emulator.RegFile().Read(insts.RegECX)).To(Equal(mem.Word(2)))
	})

	It("should access memory through direct and indirect operands", func() {
		emulator, memory := run(`
mov eax #42
store [100] eax
mov esi #100
load edi [esi]
mov [104] #7
halt
`)
		Expect(emulator.RegFile().Read(insts.RegEDI)).To(Equal(mem.Word(42)))

		value, err := memory.Read(104)
		Expect(err).ToNot(HaveOccurred())
		Expect(value).To(Equal(mem.Word(7)))
	})

	It("should halt when running off the end of the program", func() {
		emulator, _ := run("mov eax #1")
		Expect(emulator.InstructionCount()).To(Equal(uint64(1)))
	})

	It("should drive a full hierarchy", func() {
		h, err := hierarchy.New(hierarchy.DefaultConfig())
		Expect(err).ToNot(HaveOccurred())

		prog, err := insts.Parse(`
mov esi #100
mov [esi] #10
load eax [esi]
load ebx [esi]
halt
`)
		Expect(err).ToNot(HaveOccurred())

		emulator := emu.NewEmulator(h.Top())
		emulator.LoadProgram(prog)
		Expect(emulator.Run()).To(Succeed())
		Expect(h.Flush()).To(Succeed())

		Expect(emulator.RegFile().Read(insts.RegEAX)).To(Equal(mem.Word(10)))
		Expect(emulator.RegFile().Read(insts.RegEBX)).To(Equal(mem.Word(10)))
		Expect(h.Caches()[0].Stats().Hits).To(BeNumerically(">", uint64(0)))

		value, err := h.Memory().Read(100)
		Expect(err).ToNot(HaveOccurred())
		Expect(value).To(Equal(mem.Word(10)))
	})

	Describe("errors", func() {
		It("should abort on out-of-bounds addresses", func() {
			memory, err := mem.NewMainMemory(mem.MainMemoryConfig{
				Name: "MainMemory", Size: 16, AccessTime: 1,
			})
			Expect(err).ToNot(HaveOccurred())

			prog, err := insts.Parse("store [100] #1\nhalt")
			Expect(err).ToNot(HaveOccurred())

			emulator := emu.NewEmulator(memory)
			emulator.LoadProgram(prog)

			err = emulator.Run()
			Expect(errors.Is(err, mem.ErrOutOfBounds)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("line 1"))
		})

		It("should reject negative indirect addresses", func() {
			memory, err := mem.NewMainMemory(mem.MainMemoryConfig{
				Name: "MainMemory", Size: 16, AccessTime: 1,
			})
			Expect(err).ToNot(HaveOccurred())

			prog, err := insts.Parse("mov esi #-5\nmov [esi] #1\nhalt")
			Expect(err).ToNot(HaveOccurred())

			emulator := emu.NewEmulator(memory)
			emulator.LoadProgram(prog)

			err = emulator.Run()
			Expect(errors.Is(err, mem.ErrOutOfBounds)).To(BeTrue())
		})

		It("should stop runaway programs at the instruction limit", func() {
			memory, err := mem.NewMainMemory(mem.MainMemoryConfig{
				Name: "MainMemory", Size: 16, AccessTime: 1,
			})
			Expect(err).ToNot(HaveOccurred())

			prog, err := insts.Parse("loop:\njmp loop")
			Expect(err).ToNot(HaveOccurred())

			emulator := emu.NewEmulator(memory, emu.WithMaxInstructions(10))
			emulator.LoadProgram(prog)

			err = emulator.Run()
			Expect(err).To(MatchError(ContainSubstring("max instructions")))
			Expect(emulator.InstructionCount()).To(Equal(uint64(10)))
		})

		It("should fail to step without a program", func() {
			memory, err := mem.NewMainMemory(mem.MainMemoryConfig{
				Name: "MainMemory", Size: 16, AccessTime: 1,
			})
			Expect(err).ToNot(HaveOccurred())

			result := emu.NewEmulator(memory).Step()
			Expect(result.Err).To(HaveOccurred())
		})
	})
})
