// Package records is a thin client for the external tabular record service.
// The service is treated as an opaque REST collaborator: filtered/sorted
// listing, insertion, and single-record update. All structured data in the
// system lives behind this client.
package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// createChunkSize is the service's per-request insert limit.
	createChunkSize = 10
	defaultPageSize = 100
)

// Client issues requests against one base of the record service.
type Client struct {
	apiKey     string
	baseID     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a record store client for the given base.
func NewClient(apiKey, baseID, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.airtable.com/v0"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		baseID:     baseID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Record is one row of a table.
type Record struct {
	ID          string         `json:"id"`
	CreatedTime time.Time      `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}

// String returns the string value of a field, or "" if absent or non-string.
func (r Record) String(field string) string {
	if v, ok := r.Fields[field].(string); ok {
		return v
	}
	return ""
}

// Int returns the numeric value of a field as an int, or 0 if absent.
func (r Record) Int(field string) int {
	switch v := r.Fields[field].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// ListOptions narrows a listing request.
type ListOptions struct {
	FilterByFormula string   // Record service formula expression
	SortField       string   // Field to sort by
	SortDesc        bool     // Sort direction
	Fields          []string // Restrict returned fields
	MaxRecords      int      // 0 = no cap
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

// List returns all records of a table matching opts, following pagination.
func (c *Client) List(ctx context.Context, table string, opts ListOptions) ([]Record, error) {
	var all []Record
	offset := ""

	for {
		q := url.Values{}
		q.Set("pageSize", strconv.Itoa(defaultPageSize))
		if opts.FilterByFormula != "" {
			q.Set("filterByFormula", opts.FilterByFormula)
		}
		if opts.SortField != "" {
			q.Set("sort[0][field]", opts.SortField)
			if opts.SortDesc {
				q.Set("sort[0][direction]", "desc")
			}
		}
		if opts.MaxRecords > 0 {
			q.Set("maxRecords", strconv.Itoa(opts.MaxRecords))
		}
		for i, f := range opts.Fields {
			q.Set(fmt.Sprintf("fields[%d]", i), f)
		}
		if offset != "" {
			q.Set("offset", offset)
		}

		var page listResponse
		if err := c.do(ctx, http.MethodGet, c.tableURL(table)+"?"+q.Encode(), nil, &page); err != nil {
			return nil, err
		}

		all = append(all, page.Records...)
		if page.Offset == "" || (opts.MaxRecords > 0 && len(all) >= opts.MaxRecords) {
			break
		}
		offset = page.Offset
	}

	if opts.MaxRecords > 0 && len(all) > opts.MaxRecords {
		all = all[:opts.MaxRecords]
	}
	return all, nil
}

type createRequest struct {
	Records []createRecord `json:"records"`
}

type createRecord struct {
	Fields map[string]any `json:"fields"`
}

// Create inserts records into a table, chunking to the service's per-request
// limit. Each chunk is an independent request: a failure leaves earlier
// chunks persisted (append-only, at-least-once).
func (c *Client) Create(ctx context.Context, table string, fields []map[string]any) ([]Record, error) {
	var created []Record

	for start := 0; start < len(fields); start += createChunkSize {
		end := start + createChunkSize
		if end > len(fields) {
			end = len(fields)
		}

		req := createRequest{}
		for _, f := range fields[start:end] {
			req.Records = append(req.Records, createRecord{Fields: f})
		}

		var resp listResponse
		if err := c.do(ctx, http.MethodPost, c.tableURL(table), req, &resp); err != nil {
			return created, fmt.Errorf("create records in %s: %w", table, err)
		}
		created = append(created, resp.Records...)
	}

	return created, nil
}

// Update patches the fields of a single record.
func (c *Client) Update(ctx context.Context, table, recordID string, fields map[string]any) (Record, error) {
	body := map[string]any{"fields": fields}

	var updated Record
	if err := c.do(ctx, http.MethodPatch, c.tableURL(table)+"/"+url.PathEscape(recordID), body, &updated); err != nil {
		return Record{}, fmt.Errorf("update record %s in %s: %w", recordID, table, err)
	}
	return updated, nil
}

// Get fetches a single record by ID.
func (c *Client) Get(ctx context.Context, table, recordID string) (Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodGet, c.tableURL(table)+"/"+url.PathEscape(recordID), nil, &rec); err != nil {
		return Record{}, fmt.Errorf("get record %s from %s: %w", recordID, table, err)
	}
	return rec, nil
}

func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(c.baseID), url.PathEscape(table))
}

func (c *Client) do(ctx context.Context, method, rawURL string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("record store error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

// EscapeFormulaString escapes a value for embedding in a formula expression.
func EscapeFormulaString(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
