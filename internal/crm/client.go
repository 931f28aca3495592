// Package crm pushes finished portfolios into Attio: a company record, a
// parent search record with structured fields, and a markdown note on both.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the production Attio API endpoint.
const DefaultBaseURL = "https://api.attio.com"

// Client communicates with the Attio HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Record is one Attio object record. Values stay raw; callers decode the
// attributes they care about.
type Record struct {
	ID struct {
		RecordID string `json:"record_id"`
	} `json:"id"`
	Values map[string]json.RawMessage `json:"values"`
}

// LinkedRecordID decodes a record-reference attribute and returns the first
// target record id.
func (r Record) LinkedRecordID(attribute string) string {
	raw, ok := r.Values[attribute]
	if !ok {
		return ""
	}
	var refs []struct {
		TargetRecordID string `json:"target_record_id"`
	}
	if err := json.Unmarshal(raw, &refs); err != nil || len(refs) == 0 {
		return ""
	}
	return refs[0].TargetRecordID
}

// Note is one Attio note header.
type Note struct {
	ID struct {
		NoteID string `json:"note_id"`
	} `json:"id"`
	Title string `json:"title"`
}

// List is one Attio list (a collection in the UI).
type List struct {
	ID struct {
		ListID string `json:"list_id"`
	} `json:"id"`
	Name string `json:"name"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(respBody))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// QueryRecordsByName finds records whose name contains the given fragment.
func (c *Client) QueryRecordsByName(ctx context.Context, object, nameContains string, limit int) ([]Record, error) {
	body := map[string]any{
		"filter": map[string]any{
			"name": map[string]any{"$contains": nameContains},
		},
		"limit": limit,
	}
	var result struct {
		Data []Record `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/objects/"+object+"/records/query", body, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// CreateRecord creates an object record and returns its id.
func (c *Client) CreateRecord(ctx context.Context, object string, values map[string]any) (string, error) {
	body := map[string]any{"data": map[string]any{"values": values}}
	var result struct {
		Data Record `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/objects/"+object+"/records", body, &result); err != nil {
		return "", err
	}
	if result.Data.ID.RecordID == "" {
		return "", fmt.Errorf("create %s record: no record id in response", object)
	}
	return result.Data.ID.RecordID, nil
}

// UpdateRecord patches attribute values on an existing record.
func (c *Client) UpdateRecord(ctx context.Context, object, recordID string, values map[string]any) error {
	body := map[string]any{"data": map[string]any{"values": values}}
	return c.do(ctx, http.MethodPatch, "/v2/objects/"+object+"/records/"+recordID, body, nil)
}

// ListNotes returns the notes attached to a record.
func (c *Client) ListNotes(ctx context.Context, parentObject, parentRecordID string) ([]Note, error) {
	path := "/v2/notes?parent_object=" + url.QueryEscape(parentObject) +
		"&parent_record_id=" + url.QueryEscape(parentRecordID)
	var result struct {
		Data []Note `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// CreateNote attaches a markdown note to a record.
func (c *Client) CreateNote(ctx context.Context, parentObject, parentRecordID, title, content string) error {
	body := map[string]any{
		"data": map[string]any{
			"parent_object":    parentObject,
			"parent_record_id": parentRecordID,
			"title":            title,
			"format":           "markdown",
			"content":          content,
		},
	}
	return c.do(ctx, http.MethodPost, "/v2/notes", body, nil)
}

// DeleteNote removes a note.
func (c *Client) DeleteNote(ctx context.Context, noteID string) error {
	return c.do(ctx, http.MethodDelete, "/v2/notes/"+noteID, nil, nil)
}

// ListLists returns all lists in the workspace.
func (c *Client) ListLists(ctx context.Context) ([]List, error) {
	var result struct {
		Data []List `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v2/lists", nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// Close releases any resources (currently a no-op).
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
