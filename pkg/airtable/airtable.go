// Package airtable is a minimal client for the Airtable REST API covering
// the two operations the bridge needs: listing every record of a table and
// patching the fields of a single record.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultBaseURL is the public Airtable API endpoint.
	DefaultBaseURL = "https://api.airtable.com"

	// DefaultTableName is the table holding memory records.
	DefaultTableName = "MarleyMemory"

	defaultTimeout = 30 * time.Second
)

// Config holds the connection settings for a single table.
type Config struct {
	BaseID    string
	TableName string
	APIKey    string

	// BaseURL overrides DefaultBaseURL (used by tests).
	BaseURL string

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client

	// Timeout bounds every request when HTTPClient is nil. Defaults to 30s.
	Timeout time.Duration
}

// Record is a single table row.
type Record struct {
	ID          string         `json:"id"`
	Fields      map[string]any `json:"fields"`
	CreatedTime string         `json:"createdTime,omitempty"`
}

// StringField returns the named field when it is present and a string.
func (r Record) StringField(name string) (string, bool) {
	v, ok := r.Fields[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Client talks to one Airtable table.
type Client struct {
	baseURL    string
	baseID     string
	tableName  string
	apiKey     string
	httpClient *http.Client
}

// NewClient validates c and returns a Client.
func NewClient(c Config) (*Client, error) {
	if c.BaseID == "" {
		return nil, errors.New("airtable base id is required")
	}
	if c.APIKey == "" {
		return nil, errors.New("airtable api key is required")
	}

	if c.TableName == "" {
		c.TableName = DefaultTableName
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		timeout := c.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    c.BaseURL,
		baseID:     c.BaseID,
		tableName:  c.TableName,
		apiKey:     c.APIKey,
		httpClient: httpClient,
	}, nil
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

type updateRequest struct {
	Fields map[string]any `json:"fields"`
}

// ListRecords fetches every record of the table, following pagination
// offsets until the last page.
func (c *Client) ListRecords(ctx context.Context) ([]Record, error) {
	var records []Record
	offset := ""

	for {
		query := url.Values{}
		if offset != "" {
			query.Set("offset", offset)
		}

		var page listResponse
		if err := c.do(ctx, http.MethodGet, c.tableURL("", query), nil, &page); err != nil {
			return nil, fmt.Errorf("listing records: %w", err)
		}

		records = append(records, page.Records...)

		if page.Offset == "" {
			break
		}
		offset = page.Offset
	}

	return records, nil
}

// UpdateRecord patches the given fields of record id. Fields not named are
// left untouched by Airtable.
func (c *Client) UpdateRecord(ctx context.Context, id string, fields map[string]any) error {
	if id == "" {
		return errors.New("record id is required")
	}

	body, err := json.Marshal(updateRequest{Fields: fields})
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}

	if err := c.do(ctx, http.MethodPatch, c.tableURL(id, nil), body, nil); err != nil {
		return fmt.Errorf("updating record %s: %w", id, err)
	}

	return nil
}

func (c *Client) tableURL(recordID string, query url.Values) string {
	u := c.baseURL + "/v0/" + url.PathEscape(c.baseID) + "/" + url.PathEscape(c.tableName)
	if recordID != "" {
		u += "/" + url.PathEscape(recordID)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, target string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("airtable request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}
