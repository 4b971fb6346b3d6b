package handler

import (
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/arena/internal/debate"
	"basegraph.app/arena/internal/queue"
)

var _ = Describe("sseWrite", func() {
	It("frames an event with id and multi-line data", func() {
		w := httptest.NewRecorder()
		sseWrite(w, "1700000000000-0", "message", "line one\nline two")
		Expect(w.Body.String()).To(Equal("id: 1700000000000-0\nevent: message\ndata: line one\ndata: line two\n\n"))
	})

	It("marshals structured payloads", func() {
		w := httptest.NewRecorder()
		sseWrite(w, "", "error", map[string]string{"error": "boom"})
		Expect(w.Body.String()).To(Equal("event: error\ndata: {\"error\":\"boom\"}\n\n"))
	})
})

var _ = Describe("forwards", func() {
	It("drops a reset that heads the stream", func() {
		Expect(forwards(queue.EventReset, 0)).To(BeFalse())
	})

	It("passes a reset to a client that saw the earlier attempt", func() {
		Expect(forwards(queue.EventReset, 4)).To(BeTrue())
	})

	It("passes debate events through", func() {
		Expect(forwards(string(debate.EventMessage), 0)).To(BeTrue())
		Expect(forwards(string(debate.EventEnd), 7)).To(BeTrue())
	})
})
