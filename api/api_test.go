package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jasonzFong/aura-editor/api"
	"github.com/jasonzFong/aura-editor/pkg/almanac"
	"github.com/jasonzFong/aura-editor/pkg/analysis"
	"github.com/jasonzFong/aura-editor/pkg/comments"
	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/memory"
	"github.com/jasonzFong/aura-editor/pkg/storage/inmemory"
	testutils "github.com/jasonzFong/aura-editor/pkg/utils/test"
	"github.com/jasonzFong/aura-editor/pkg/worker"
)

type recordingQueue struct {
	mu     sync.Mutex
	jobs   []worker.Job
	reject bool
}

func (q *recordingQueue) Enqueue(job worker.Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.reject {
		return false
	}
	q.jobs = append(q.jobs, job)
	return true
}

var _ = Describe("Server", func() {
	var (
		store  *inmemory.Driver
		oracle *testutils.MockLLM
		queue  *recordingQueue
		memSvc *memory.Service
		server *api.Server
	)

	// do sends a request as user "u1" unless the user header is overridden
	// with an empty string.
	do := func(method, path string, body any, user ...string) (*http.Response, []byte) {
		var reader io.Reader
		if body != nil {
			b, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(b)
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("Content-Type", "application/json")
		uid := "u1"
		if len(user) > 0 {
			uid = user[0]
		}
		if uid != "" {
			req.Header.Set("X-User-ID", uid)
		}

		resp, err := server.App().Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		data, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp, data
	}

	BeforeEach(func() {
		store = inmemory.NewDriver()
		oracle = testutils.NewMockLLM(`{"yi": ["Travel"], "ji": ["Moving"], "icon": "🏮"}`)
		queue = &recordingQueue{}
		memSvc = memory.NewService(memory.Config{Store: store})

		analysisSvc := analysis.NewService(analysis.Config{Client: oracle, Facts: memSvc})
		almanacSvc, err := almanac.NewService(almanac.Config{Store: store, Client: oracle})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(almanacSvc.Close)

		server, err = api.NewServer(api.Config{ListenAddr: ":0"}, api.Services{
			Users:    store,
			Memory:   memSvc,
			Comments: comments.NewService(comments.Config{Store: store, Replier: analysisSvc}),
			Analysis: analysisSvc,
			Almanac:  almanacSvc,
			Scans:    queue,
		}, nil)
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects a server without required services", func() {
		_, err := api.NewServer(api.Config{}, api.Services{}, nil)
		Expect(err).To(MatchError(ContainSubstring("user store is required")))
	})

	It("answers ping without a user", func() {
		resp, body := do(http.MethodGet, "/ping", nil, "")
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(string(body)).To(Equal(`"pong"`))
	})

	It("requires the user header on api routes", func() {
		resp, _ := do(http.MethodGet, "/api/v1/memories", nil, "")
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
	})

	Describe("memories", func() {
		It("creates, lists, updates and deletes", func() {
			resp, body := do(http.MethodPost, "/api/v1/memories", map[string]any{"content": "Loves jazz"})
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			var created journal.Fact
			Expect(json.Unmarshal(body, &created)).To(Succeed())
			Expect(created.Key).To(Equal("loves_jazz"))

			resp, body = do(http.MethodGet, "/api/v1/memories", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var list []journal.Fact
			Expect(json.Unmarshal(body, &list)).To(Succeed())
			Expect(list).To(HaveLen(1))

			resp, body = do(http.MethodPut, "/api/v1/memories/"+created.ID, map[string]any{"is_locked": true})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var updated journal.Fact
			Expect(json.Unmarshal(body, &updated)).To(Succeed())
			Expect(updated.Locked).To(BeTrue())

			resp, _ = do(http.MethodDelete, "/api/v1/memories/"+created.ID, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			resp, _ = do(http.MethodDelete, "/api/v1/memories/"+created.ID, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("rejects empty content", func() {
			resp, _ := do(http.MethodPost, "/api/v1/memories", map[string]any{"content": "  "})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("hides other users' memories", func() {
			f, err := memSvc.Create(context.Background(), "u2", memory.CreateInput{Content: "Secret"})
			Expect(err).NotTo(HaveOccurred())

			resp, _ := do(http.MethodPut, "/api/v1/memories/"+f.ID, map[string]any{"is_locked": true})
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("comments", func() {
		It("skips the no comment answer", func() {
			resp, body := do(http.MethodPost, "/api/v1/comments", map[string]any{
				"article_id": "doc-1",
				"content":    ">> NO_COMMENT",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body).To(MatchJSON(`{"status":"skipped","reason":"no_comment"}`))
		})

		It("creates, lists, replies and resolves", func() {
			resp, body := do(http.MethodPost, "/api/v1/comments", map[string]any{
				"article_id": "doc-1",
				"content":    "Nice opening line.",
				"quote":      "It was a dark night",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			var created journal.Comment
			Expect(json.Unmarshal(body, &created)).To(Succeed())
			Expect(created.Type).To(Equal(comments.DefaultType))

			resp, body = do(http.MethodGet, "/api/v1/comments/article/doc-1", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var list []journal.Comment
			Expect(json.Unmarshal(body, &list)).To(Succeed())
			Expect(list).To(HaveLen(1))

			oracle.Replies = []string{"Thanks for sharing!"}
			resp, body = do(http.MethodPost, "/api/v1/comments/"+created.ID+"/reply", api.ReplyRequest{Content: "Why?"})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var result comments.ReplyResult
			Expect(json.Unmarshal(body, &result)).To(Succeed())
			Expect(result.Status).To(Equal(comments.StatusReplied))
			Expect(result.AIResponse).To(Equal("Thanks for sharing!"))
			Expect(result.Replies).To(HaveLen(2))

			resp, body = do(http.MethodPut, "/api/v1/comments/"+created.ID+"/resolve", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body).To(MatchJSON(`{"status":"resolved"}`))
		})

		It("keeps the user reply when the oracle fails", func() {
			_, body := do(http.MethodPost, "/api/v1/comments", map[string]any{
				"article_id": "doc-1",
				"content":    "Consider a shorter sentence.",
			})
			var created journal.Comment
			Expect(json.Unmarshal(body, &created)).To(Succeed())

			oracle.Replies = nil
			oracle.Err = errors.New("upstream down")
			resp, body := do(http.MethodPost, "/api/v1/comments/"+created.ID+"/reply", api.ReplyRequest{Content: "Why?"})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var result comments.ReplyResult
			Expect(json.Unmarshal(body, &result)).To(Succeed())
			Expect(result.Status).To(Equal(comments.StatusSavedUserReplyOnly))
			Expect(result.Error).To(ContainSubstring("upstream down"))
			Expect(result.Replies).To(HaveLen(1))
		})

		It("returns 404 resolving a missing comment", func() {
			resp, _ := do(http.MethodPut, "/api/v1/comments/missing/resolve", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("settings", func() {
		It("returns defaults for an unknown user", func() {
			resp, body := do(http.MethodGet, "/api/v1/user/settings", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var out api.SettingsResponse
			Expect(json.Unmarshal(body, &out)).To(Succeed())
			Expect(out.Settings).To(Equal(journal.DefaultSettings()))
			Expect(out.IsScanning).To(BeFalse())
		})

		It("merges a partial update and registers the user", func() {
			resp, body := do(http.MethodPut, "/api/v1/user/settings", map[string]any{
				"settings": map[string]any{"background_scan": map[string]any{"enabled": true}},
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var out api.SettingsResponse
			Expect(json.Unmarshal(body, &out)).To(Succeed())
			Expect(out.Settings.AIEnabled).To(BeTrue())
			Expect(out.Settings.BackgroundScan.Enabled).To(BeTrue())
			Expect(out.Settings.BackgroundScan.IntervalValue).To(Equal(24))

			user, err := store.GetUser(context.Background(), "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Active).To(BeTrue())
			Expect(user.Settings.BackgroundScan.Enabled).To(BeTrue())
		})
	})

	Describe("scan", func() {
		It("queues a manual scan", func() {
			resp, _ := do(http.MethodPost, "/api/v1/scan", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusAccepted))
			Expect(queue.jobs).To(ConsistOf(worker.Job{UserID: "u1", Trigger: worker.TriggerManual}))
		})

		It("reports a rejected job", func() {
			queue.reject = true
			resp, _ := do(http.MethodPost, "/api/v1/scan", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusConflict))
		})
	})

	Describe("almanac", func() {
		It("returns a generated day", func() {
			resp, body := do(http.MethodGet, "/api/v1/almanac/2025-03-01", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var day journal.Almanac
			Expect(json.Unmarshal(body, &day)).To(Succeed())
			Expect(day.Date).To(Equal("2025-03-01"))
			Expect(day.Icon).To(Equal("🏮"))
		})

		It("answers 404 when generation fails", func() {
			oracle.Replies = []string{"not json"}
			resp, body := do(http.MethodGet, "/api/v1/almanac/2025-03-02", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			Expect(body).To(MatchJSON(`{"error":"Almanac not available"}`))
		})

		It("rejects malformed dates", func() {
			resp, _ := do(http.MethodGet, "/api/v1/almanac/yesterday", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("analyze stream", func() {
		It("streams the comment as server-sent events", func() {
			oracle.Replies = []string{">> QUOTE: dark night\n>> COMMENT: Vivid."}
			resp, body := do(http.MethodPost, "/api/v1/ai/analyze/stream", analysis.Request{Text: "It was a dark night."})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(HavePrefix("text/event-stream"))
			Expect(string(body)).To(ContainSubstring("data: >> QUOTE: dark"))
			Expect(string(body)).To(HaveSuffix("event: done\ndata: \n\n"))
		})

		It("rejects empty text", func() {
			resp, _ := do(http.MethodPost, "/api/v1/ai/analyze/stream", analysis.Request{Text: "   "})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})
})
