package llm

import (
	"github.com/anthropics/anthropic-sdk-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("convertAnthropicMessages", func() {
	It("lifts system prompts out of the message list", func() {
		system, msgs := convertAnthropicMessages([]Message{
			{Role: RoleSystem, Content: "be brief"},
			{Role: RoleUser, Content: "go"},
		})
		Expect(system).To(HaveLen(1))
		Expect(system[0].Text).To(Equal("be brief"))
		Expect(msgs).To(HaveLen(1))
		Expect(msgs[0].Role).To(Equal(anthropic.MessageParamRoleUser))
	})

	It("opens with a user turn and coalesces consecutive roles", func() {
		_, msgs := convertAnthropicMessages([]Message{
			{Role: RoleAssistant, Name: "Moderator", Content: "welcome"},
			{Role: RoleAssistant, Name: "Pro First Debater", Content: "opening"},
			{Role: RoleUser, Content: "continue"},
		})
		Expect(msgs).To(HaveLen(3))
		Expect(msgs[0].Role).To(Equal(anthropic.MessageParamRoleUser))
		Expect(msgs[1].Role).To(Equal(anthropic.MessageParamRoleAssistant))
		Expect(msgs[1].Content).To(HaveLen(2))
		Expect(msgs[1].Content[0].OfText.Text).To(Equal("Moderator: welcome"))
		Expect(msgs[2].Role).To(Equal(anthropic.MessageParamRoleUser))
	})
})

var _ = Describe("mapStopReason", func() {
	It("normalises provider stop reasons", func() {
		Expect(mapStopReason(anthropic.StopReasonEndTurn)).To(Equal("stop"))
		Expect(mapStopReason(anthropic.StopReasonMaxTokens)).To(Equal("length"))
	})
})
