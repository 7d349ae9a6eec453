package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/akhil-is-watching/securechain/internal/documents"
	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
)

// Client talks to a remote catalog over its REST API:
//
//	POST /document              create an upload record
//	POST /share                 create a share record
//	GET  /document/details/:id  fetch one record
//	GET  /document/:address     {documentsOwned, documentsShared}
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) CreateDocument(ctx context.Context, doc *documents.Document) error {
	if err := checkCreate(doc); err != nil {
		return err
	}
	path := "/document"
	if doc.Type == documents.KindShare {
		path = "/share"
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(body), nil)
}

func (c *Client) GetDocument(ctx context.Context, id string) (*documents.Document, error) {
	var doc documents.Document
	if err := c.do(ctx, http.MethodGet, "/document/details/"+url.PathEscape(id), nil, &doc); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if doc.ID == "" {
		doc.ID = id
	}
	return &doc, nil
}

func (c *Client) ListDocuments(ctx context.Context, address string) (*documents.Listing, error) {
	if _, err := documents.NormalizeAddress(address); err != nil {
		return nil, err
	}
	var listing documents.Listing
	if err := c.do(ctx, http.MethodGet, "/document/"+url.PathEscape(address), nil, &listing); err != nil {
		return nil, err
	}
	if listing.Owned == nil {
		listing.Owned = []*documents.Document{}
	}
	if listing.Shared == nil {
		listing.Shared = []*documents.Document{}
	}
	return &listing, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", kerrors.ErrNotFound, path)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", kerrors.ErrInvalidRecord, readMessage(resp.Body))
	case resp.StatusCode >= 300:
		return fmt.Errorf("%s %s: unexpected status %s: %s", method, path, resp.Status, readMessage(resp.Body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func readMessage(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 4096))
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &e) == nil && e.Message != "" {
		return e.Message
	}
	return strings.TrimSpace(string(data))
}
