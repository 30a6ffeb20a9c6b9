package dual_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/microblossom/dual"
)

var _ = Describe("Codec", func() {
	var codec dual.Codec

	BeforeEach(func() {
		var err error
		codec, err = dual.NewCodec(8, 6)
		Expect(err).NotTo(HaveOccurred())
	})

	DescribeTable("round trips every opcode",
		func(inst dual.Instruction) {
			word, err := codec.Encode(inst)
			Expect(err).NotTo(HaveOccurred())

			decoded, err := codec.Decode(word)
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded).To(Equal(inst))
		},
		Entry("SetSpeed Grow", dual.SetSpeed(13, dual.Grow)),
		Entry("SetSpeed Shrink", dual.SetSpeed(0, dual.Shrink)),
		Entry("SetSpeed Stay", dual.SetSpeed(255, dual.Stay)),
		Entry("SetBlossom", dual.SetBlossom(13, 200)),
		Entry("Grow", dual.GrowBy(63)),
		Entry("FindObstacle", dual.FindObstacle()),
		Entry("AddDefect", dual.AddDefect(42, 7)),
		Entry("Reset", dual.Reset()),
	)

	It("should round trip at the narrowest widths", func() {
		narrow, err := dual.NewCodec(2, 1)
		Expect(err).NotTo(HaveOccurred())

		inst := dual.AddDefect(3, 2)
		word, err := narrow.Encode(inst)
		Expect(err).NotTo(HaveOccurred())

		decoded, err := narrow.Decode(word)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(inst))
	})

	It("should reject ids exceeding the field width", func() {
		_, err := codec.Encode(dual.SetSpeed(256, dual.Grow))
		Expect(err).To(HaveOccurred())
	})

	It("should reject lengths exceeding the weight width", func() {
		_, err := codec.Encode(dual.GrowBy(64))
		Expect(err).To(HaveOccurred())
	})

	It("should reject the none sentinel as a target", func() {
		_, err := codec.Encode(dual.SetSpeed(dual.NoNode, dual.Grow))
		Expect(err).To(HaveOccurred())
	})

	It("should reject widths that do not fit 32 bits", func() {
		_, err := dual.NewCodec(15, 8)
		Expect(err).To(HaveOccurred())
	})

	It("should reject unrecognized extended opcodes", func() {
		_, err := codec.Decode(0b1111)
		Expect(err).To(HaveOccurred())
	})
})
