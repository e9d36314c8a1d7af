// Package airtable is a thin client for the Airtable REST API, covering
// only what the repositories need: list with formula filters, point reads,
// record creation and batched deletes.
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
	"strconv"
	"time"
)

const baseURL = "https://api.airtable.com/v0"

// DemoSentinel marks credentials that force demo mode.
const DemoSentinel = "DEMO_MODE"

// deleteBatchSize is the maximum record ids Airtable accepts per DELETE.
const deleteBatchSize = 10

// Record is one Airtable row.
type Record struct {
	ID          string         `json:"id"`
	Fields      map[string]any `json:"fields"`
	CreatedTime string         `json:"createdTime,omitempty"`
}

// ListOptions narrows a table listing.
type ListOptions struct {
	FilterByFormula string
	MaxRecords      int
	SortField       string
	SortDesc        bool
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

// APIError is a non-2xx reply from Airtable, carrying the status and body.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("airtable: %d - %s", e.StatusCode, e.Body)
}

// Client talks to one Airtable base.
type Client struct {
	apiKey string
	baseID string
	http   *http.Client
}

// NewClient builds a client. Credentials are not verified until the first
// call; Configured reports whether they are usable at all.
func NewClient(apiKey, baseID string) *Client {
	return &Client{
		apiKey: apiKey,
		baseID: baseID,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether real credentials are present (non-empty and
// not the demo sentinel).
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.baseID != "" &&
		c.apiKey != DemoSentinel && c.baseID != DemoSentinel
}

// ListRecords fetches rows from a table, following pagination offsets
// until MaxRecords (or the table) is exhausted.
func (c *Client) ListRecords(ctx context.Context, table string, opts ListOptions) ([]Record, error) {
	var records []Record
	offset := ""

	for {
		params := url.Values{}
		if opts.FilterByFormula != "" {
			params.Set("filterByFormula", opts.FilterByFormula)
		}
		if opts.MaxRecords > 0 {
			params.Set("maxRecords", strconv.Itoa(opts.MaxRecords))
		}
		if opts.SortField != "" {
			params.Set("sort[0][field]", opts.SortField)
			direction := "asc"
			if opts.SortDesc {
				direction = "desc"
			}
			params.Set("sort[0][direction]", direction)
		}
		if offset != "" {
			params.Set("offset", offset)
		}

		endpoint := fmt.Sprintf("%s/%s/%s", baseURL, c.baseID, table)
		if q := params.Encode(); q != "" {
			endpoint += "?" + q
		}

		var page listResponse
		if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}
		records = append(records, page.Records...)

		if page.Offset == "" || (opts.MaxRecords > 0 && len(records) >= opts.MaxRecords) {
			return records, nil
		}
		offset = page.Offset
	}
}

// GetRecord fetches one row by id. A 404 is reported as (nil, nil).
func (c *Client) GetRecord(ctx context.Context, table, recordID string) (*Record, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/%s", baseURL, c.baseID, table, recordID)

	var rec Record
	err := c.do(ctx, http.MethodGet, endpoint, nil, &rec)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// CreateRecord inserts one row and returns it with its assigned id.
func (c *Client) CreateRecord(ctx context.Context, table string, fields map[string]any) (*Record, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", baseURL, c.baseID, table)
	body := map[string]any{"fields": fields}

	var rec Record
	if err := c.do(ctx, http.MethodPost, endpoint, body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteRecords removes rows by id, in batches of ten as the API requires.
func (c *Client) DeleteRecords(ctx context.Context, table string, recordIDs []string) error {
	for start := 0; start < len(recordIDs); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(recordIDs))

		params := url.Values{}
		for _, id := range recordIDs[start:end] {
			params.Add("records[]", id)
		}
		endpoint := fmt.Sprintf("%s/%s/%s?%s", baseURL, c.baseID, table, params.Encode())

		if err := c.do(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(text)}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
