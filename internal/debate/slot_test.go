package debate_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/arena/internal/debate"
)

var _ = Describe("PickRefuter", func() {
	team := func(n int) debate.Team {
		t := make(debate.Team, n)
		for i := range t {
			t[i] = debate.Role{Name: debate.DebaterName(debate.SidePro, i)}
		}
		return t
	}

	DescribeTable("selects the rebutting slot for a round",
		func(size, round int, expectedSlot int) {
			Expect(debate.PickRefuter(team(size), round).Name).
				To(Equal(debate.DebaterName(debate.SidePro, expectedSlot)))
		},
		Entry("full team, round 0", 4, 0, 1),
		Entry("full team, round 1", 4, 1, 1),
		Entry("full team, round 2", 4, 2, 2),
		Entry("full team, round 3", 4, 3, 3),
		Entry("full team, round 10", 4, 10, 3),
		Entry("three members, round 1", 3, 1, 1),
		Entry("three members, round 2", 3, 2, 2),
		Entry("three members, round 3 falls back to last", 3, 3, 2),
		Entry("two members, round 1", 2, 1, 1),
		Entry("two members, round 2 falls back to last", 2, 2, 1),
		Entry("single member, round 1 falls back to last", 1, 1, 0),
		Entry("single member, round 5 falls back to last", 1, 5, 0),
	)

	It("is deterministic", func() {
		t := team(4)
		for round := 1; round <= 10; round++ {
			Expect(debate.PickRefuter(t, round)).To(Equal(debate.PickRefuter(t, round)))
		}
	})
})
