package debate_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/arena/internal/debate"
)

var _ = Describe("ResolvePersona", func() {
	table := presetTable{"Y": "preset Y prompt"}

	DescribeTable("applies override, preset, default in that order",
		func(override, presetID, def, expected string) {
			Expect(debate.ResolvePersona(override, presetID, table, def)).To(Equal(expected))
		},
		Entry("override wins over everything", "X", "Y", "Z", "X"),
		Entry("known preset when no override", "", "Y", "Z", "preset Y prompt"),
		Entry("default when nothing else", "", "", "Z", "Z"),
		Entry("unknown preset falls back to default", "", "unknown", "Z", "Z"),
		Entry("absent default stays absent", "", "unknown", "", ""),
	)

	It("tolerates a nil table", func() {
		Expect(debate.ResolvePersona("", "Y", nil, "Z")).To(Equal("Z"))
	})
})
