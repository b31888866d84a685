package sse

import (
	"bufio"
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Writer", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
	})

	It("frames a data-only event", func() {
		Expect(NewWriter(buf).WriteData("Thinking...")).To(Succeed())
		Expect(buf.String()).To(Equal("data: Thinking...\n\n"))
	})

	It("writes type and id fields before data", func() {
		w := NewWriter(buf)
		Expect(w.WriteEvent(Event{Type: "error", ID: "7", Data: "boom"})).To(Succeed())
		Expect(buf.String()).To(Equal("event: error\nid: 7\ndata: boom\n\n"))
	})

	It("splits multi-line data into separate fields", func() {
		Expect(NewWriter(buf).WriteData("one\ntwo")).To(Succeed())
		Expect(buf.String()).To(Equal("data: one\ndata: two\n\n"))
	})

	It("flushes buffered writers after each event", func() {
		bw := bufio.NewWriter(buf)
		Expect(NewWriter(bw).WriteData("chunk")).To(Succeed())
		Expect(buf.String()).To(Equal("data: chunk\n\n"))
	})

	It("produces output the Reader parses back", func() {
		w := NewWriter(buf)
		Expect(w.WriteEvent(Event{Type: "delta", Data: "a\nb"})).To(Succeed())
		Expect(w.WriteData(Done)).To(Succeed())

		var events []Event
		for ev, err := range Events(strings.NewReader(buf.String())) {
			Expect(err).NotTo(HaveOccurred())
			events = append(events, ev)
		}
		Expect(events).To(Equal([]Event{
			{Type: "delta", Data: "a\nb"},
			{Data: Done},
		}))
	})
})
