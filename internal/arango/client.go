// Package arango pushes analyzed sections into an ArangoDB collection
// over its plain HTTP document API. The section content hash becomes
// the document _key, so re-ingesting unchanged content overwrites the
// same ArangoDB documents instead of accumulating copies.
package arango

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/docstruct/docstruct/internal/document"
)

// Client communicates with one database and collection.
type Client struct {
	endpoint   string
	database   string
	collection string
	token      string
	httpClient *http.Client
}

func NewClient(endpoint, database, collection, token string) *Client {
	return &Client{
		endpoint:   endpoint,
		database:   database,
		collection: collection,
		token:      token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SectionDoc is one section as stored in ArangoDB.
type SectionDoc struct {
	Key        string           `json:"_key"`
	DocumentID string           `json:"document_id"`
	Name       string           `json:"document_name,omitempty"`
	Title      string           `json:"title"`
	Level      int              `json:"level"`
	Breadcrumb []document.Crumb `json:"breadcrumb,omitempty"`
	Content    string           `json:"content"`
	Blocks     int              `json:"blocks,omitempty"`
}

func (c *Client) docURL() string {
	return c.endpoint + "/_db/" + url.PathEscape(c.database) + "/_api/document/" + url.PathEscape(c.collection)
}

func (c *Client) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// Ping verifies the endpoint and database are reachable.
func (c *Client) Ping(ctx context.Context) error {
	u := c.endpoint + "/_db/" + url.PathEscape(c.database) + "/_api/version"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ping arango: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("ping arango: status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// UpsertSections writes sections in one batch. Existing documents with
// the same _key are replaced.
func (c *Client) UpsertSections(ctx context.Context, docs []SectionDoc) error {
	if len(docs) == 0 {
		return nil
	}
	body, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.docURL()+"?overwriteMode=replace", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upsert sections: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("upsert sections: status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// DeleteSection removes one section by key. A missing key is not an
// error.
func (c *Client) DeleteSection(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.docURL()+"/"+url.PathEscape(key), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("delete section %s: status %d: %s", key, resp.StatusCode, string(respBody))
	}
	return nil
}

// Collection returns the configured collection name.
func (c *Client) Collection() string {
	return c.collection
}
