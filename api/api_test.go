package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/bridge"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/logger"
	testutils "github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/utils/test"
)

func decodeBody(resp *http.Response, out any) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	Expect(json.Unmarshal(body, out)).To(Succeed(), string(body))
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

var _ = Describe("Server", func() {
	var (
		store     *testutils.MockRecordStore
		generator *testutils.MockGenerator
		server    *Server
	)

	BeforeEach(func() {
		store = testutils.NewMockRecordStore(
			testutils.NewRecord("rec1", "# One\n[[Shared]]"),
			testutils.NewRecord("rec2", "[[Shared]] again"),
			testutils.NewRecord("rec3", "plain"),
		)
		generator = testutils.NewMockGenerator("# Harmonized")

		b, err := bridge.New(bridge.Config{Store: store, Generate: generator.Func()})
		Expect(err).NotTo(HaveOccurred())

		server, err = NewServer(Config{ListenAddr: ":0"}, b, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = server.Shutdown()
	})

	Describe("NewServer", func() {
		It("requires a bridge", func() {
			_, err := NewServer(Config{}, nil, logger.Nop())
			Expect(err).To(MatchError(ContainSubstring("bridge is required")))
		})
	})

	Describe("GET /ping", func() {
		It("returns pong", func() {
			resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body string
			decodeBody(resp, &body)
			Expect(body).To(Equal("pong"))
		})
	})

	Describe("POST /api/memory/sync", func() {
		It("returns the sync summary", func() {
			resp, err := server.app.Test(httptest.NewRequest(http.MethodPost, "/api/memory/sync", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body struct {
				Status string             `json:"status"`
				Data   bridge.SyncSummary `json:"data"`
			}
			decodeBody(resp, &body)
			Expect(body.Status).To(Equal("success"))
			Expect(body.Data.SynchronizedNodes).To(Equal(3))
			Expect(body.Data.UniqueResonanceThreads).To(Equal(1))
			Expect(store.Updates).To(HaveLen(3))
		})

		It("returns 502 when the store fails", func() {
			store.FailList = true
			resp, err := server.app.Test(httptest.NewRequest(http.MethodPost, "/api/memory/sync", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))

			var body ErrorResponse
			decodeBody(resp, &body)
			Expect(body.Error).To(ContainSubstring("fetching records"))
		})

		It("returns 503 without a record store", func() {
			b, err := bridge.New(bridge.Config{})
			Expect(err).NotTo(HaveOccurred())
			s, err := NewServer(Config{DisableMCP: true}, b, logger.Nop())
			Expect(err).NotTo(HaveOccurred())

			resp, err := s.app.Test(httptest.NewRequest(http.MethodPost, "/api/memory/sync", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusServiceUnavailable))
		})
	})

	Describe("POST /api/spectral/analyze", func() {
		It("returns the analysis", func() {
			req := jsonRequest(http.MethodPost, "/api/spectral/analyze",
				`{"text":"# Title\nSee [[Concept]] and [label](url)\n#tag here"}`)
			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body AnalyzeResponse
			decodeBody(resp, &body)
			Expect(body.SpectralAnalysis.LineCount).To(Equal(3))
			Expect(body.SpectralAnalysis.HeadingCount).To(Equal(1))
			Expect(body.SpectralAnalysis.LinkCount).To(Equal(1))
			Expect(body.SpectralAnalysis.TagCount).To(Equal(1))
			Expect(body.SpectralAnalysis.SpectralFrequency).To(BeNumerically("~", 3.5/3, 1e-9))
			Expect(body.SpectralAnalysis.ResonanceThreads).To(Equal([]string{"Concept", "label"}))
		})

		It("returns a zero analysis for empty text", func() {
			resp, err := server.app.Test(jsonRequest(http.MethodPost, "/api/spectral/analyze", `{"text":""}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body map[string]map[string]any
			decodeBody(resp, &body)
			Expect(body["spectral_analysis"]).To(HaveKeyWithValue("spectral_frequency", BeNumerically("==", 0)))
			Expect(body["spectral_analysis"]).To(HaveKeyWithValue("resonance_threads", BeEmpty()))
		})

		It("rejects malformed bodies", func() {
			resp, err := server.app.Test(jsonRequest(http.MethodPost, "/api/spectral/analyze", `{"text":`))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /api/memory/nodes", func() {
		It("is empty before a sync", func() {
			resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/api/memory/nodes", nil))
			Expect(err).NotTo(HaveOccurred())

			var body NodesResponse
			decodeBody(resp, &body)
			Expect(body.Count).To(BeZero())
			Expect(body.Nodes).To(BeEmpty())
		})

		It("lists synced nodes by frequency", func() {
			_, err := server.app.Test(httptest.NewRequest(http.MethodPost, "/api/memory/sync", nil))
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/api/memory/nodes", nil))
			Expect(err).NotTo(HaveOccurred())

			var body NodesResponse
			decodeBody(resp, &body)
			Expect(body.Count).To(Equal(3))
			Expect(body.Nodes[0].ID).To(Equal("rec1"))
			Expect(body.Nodes[2].ID).To(Equal("rec3"))
		})
	})

	Describe("GET /api/memory/resonance", func() {
		It("returns the resonance map", func() {
			_, err := server.app.Test(httptest.NewRequest(http.MethodPost, "/api/memory/sync", nil))
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/api/memory/resonance", nil))
			Expect(err).NotTo(HaveOccurred())

			var body ResonanceResponse
			decodeBody(resp, &body)
			Expect(body.ResonanceMap).To(HaveLen(3))
			Expect(body.ResonanceMap["rec1"].ConnectedNodes).To(Equal([]string{"rec2"}))
			Expect(body.ResonanceMap["rec3"].ConnectedNodes).To(BeEmpty())
		})
	})

	Describe("POST /api/memory/harmonize", func() {
		It("returns the harmonization result", func() {
			req := jsonRequest(http.MethodPost, "/api/memory/harmonize", `{"content":"notes","target_format":"logseq"}`)
			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body map[string]any
			decodeBody(resp, &body)
			Expect(body).To(HaveKeyWithValue("harmonized_content", "# Harmonized"))
			Expect(body).To(HaveKeyWithValue("target_format", "logseq"))
		})

		It("returns the fallback when generation fails", func() {
			generator.Fail = true
			resp, err := server.app.Test(jsonRequest(http.MethodPost, "/api/memory/harmonize", `{"content":"notes"}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body map[string]any
			decodeBody(resp, &body)
			Expect(body).To(HaveKeyWithValue("fallback_content", "notes"))
			Expect(body).To(HaveKey("error"))
		})

		It("requires content", func() {
			resp, err := server.app.Test(jsonRequest(http.MethodPost, "/api/memory/harmonize", `{}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /ws/memory-sync", func() {
		It("rejects plain HTTP requests", func() {
			resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/ws/memory-sync", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUpgradeRequired))
		})
	})
})
