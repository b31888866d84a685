package ollama_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jasonzFong/aura-editor/pkg/llm"
	"github.com/jasonzFong/aura-editor/pkg/llm/provider/ollama"
)

var _ = Describe("Client", func() {
	It("streams newline delimited chunks until done", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/api/chat"))
			_, _ = io.WriteString(w, `{"message":{"content":"Good "},"done":false}`+"\n"+
				`{"message":{"content":"morning"},"done":false}`+"\n"+
				`{"message":{"content":""},"done":true}`+"\n")
		}))
		DeferCleanup(server.Close)

		out, err := llm.Collect(context.Background(), ollama.New("llama3.2", server.URL, nil), []llm.Message{llm.User("hi")})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("Good morning"))
	})

	It("surfaces in-stream errors", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"error":"model not found"}`+"\n")
		}))
		DeferCleanup(server.Close)

		_, err := llm.Collect(context.Background(), ollama.New("missing", server.URL, nil), nil)
		Expect(err).To(MatchError(ContainSubstring("model not found")))
	})
})
