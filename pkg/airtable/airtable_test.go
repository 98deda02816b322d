package airtable_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/airtable"
)

func newTestClient(serverURL string) *airtable.Client {
	c, err := airtable.NewClient(airtable.Config{
		BaseID:    "appBASE",
		TableName: "Memory Table",
		APIKey:    "key-123",
		BaseURL:   serverURL,
	})
	Expect(err).NotTo(HaveOccurred())
	return c
}

var _ = Describe("NewClient", func() {
	It("requires a base id", func() {
		_, err := airtable.NewClient(airtable.Config{APIKey: "k"})
		Expect(err).To(MatchError(ContainSubstring("base id")))
	})

	It("requires an api key", func() {
		_, err := airtable.NewClient(airtable.Config{BaseID: "app"})
		Expect(err).To(MatchError(ContainSubstring("api key")))
	})

	It("defaults the table name", func() {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write([]byte(`{"records":[]}`))
		}))
		defer server.Close()

		c, err := airtable.NewClient(airtable.Config{BaseID: "app", APIKey: "k", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = c.ListRecords(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(gotPath).To(Equal("/v0/app/" + airtable.DefaultTableName))
	})
})

var _ = Describe("ListRecords", func() {
	It("follows offsets across pages", func() {
		var (
			mu      sync.Mutex
			offsets []string
		)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Method).To(Equal(http.MethodGet))
			Expect(r.URL.Path).To(Equal("/v0/appBASE/Memory Table"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer key-123"))

			offset := r.URL.Query().Get("offset")
			mu.Lock()
			offsets = append(offsets, offset)
			mu.Unlock()

			w.Header().Set("Content-Type", "application/json")
			switch offset {
			case "":
				w.Write([]byte(`{"records":[{"id":"rec1","fields":{"Content":"# one"}}],"offset":"page2"}`))
			case "page2":
				w.Write([]byte(`{"records":[{"id":"rec2","fields":{"Content":"two","Format":"md"}}]}`))
			}
		}))
		defer server.Close()

		records, err := newTestClient(server.URL).ListRecords(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(offsets).To(Equal([]string{"", "page2"}))
		Expect(records).To(HaveLen(2))
		Expect(records[0].ID).To(Equal("rec1"))

		format, ok := records[1].StringField("Format")
		Expect(ok).To(BeTrue())
		Expect(format).To(Equal("md"))
	})

	It("returns an APIError on non-2xx responses", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"type":"AUTHENTICATION_REQUIRED","message":"bad key"}}`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).ListRecords(context.Background())
		Expect(err).To(HaveOccurred())

		var apiErr *airtable.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(apiErr.Type).To(Equal("AUTHENTICATION_REQUIRED"))
		Expect(err.Error()).To(ContainSubstring("status 401"))
	})

	It("decodes flat error bodies", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"NOT_FOUND"}`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).ListRecords(context.Background())
		var apiErr *airtable.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.Type).To(Equal("NOT_FOUND"))
	})

	It("honours context cancellation", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"records":[]}`))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestClient(server.URL).ListRecords(ctx)
		Expect(err).To(MatchError(context.Canceled))
	})
})

var _ = Describe("UpdateRecord", func() {
	It("patches the record fields", func() {
		var body map[string]map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Method).To(Equal(http.MethodPatch))
			Expect(r.URL.Path).To(Equal("/v0/appBASE/Memory Table/rec1"))
			Expect(r.Header.Get("Content-Type")).To(Equal("application/json"))
			Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
			w.Write([]byte(`{"id":"rec1","fields":{}}`))
		}))
		defer server.Close()

		err := newTestClient(server.URL).UpdateRecord(context.Background(), "rec1", map[string]any{
			"SpectralFrequency": 1.5,
			"ResonanceThreads":  "a, b",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(body["fields"]).To(HaveKeyWithValue("SpectralFrequency", 1.5))
		Expect(body["fields"]).To(HaveKeyWithValue("ResonanceThreads", "a, b"))
	})

	It("requires a record id", func() {
		err := newTestClient("http://127.0.0.1:0").UpdateRecord(context.Background(), "", nil)
		Expect(err).To(MatchError(ContainSubstring("record id")))
	})

	It("wraps API errors with the record id", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"error":{"type":"INVALID_VALUE_FOR_COLUMN","message":"bad"}}`))
		}))
		defer server.Close()

		err := newTestClient(server.URL).UpdateRecord(context.Background(), "rec9", map[string]any{})
		Expect(err).To(MatchError(ContainSubstring("rec9")))
		Expect(err).To(MatchError(ContainSubstring("INVALID_VALUE_FOR_COLUMN")))
	})
})
