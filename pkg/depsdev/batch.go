package depsdev

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// VersionKey identifies one package version in batch requests.
type VersionKey struct {
	System  string `json:"system"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// batchPage is the envelope shape shared by all batch responses.
type batchPage struct {
	Responses     []json.RawMessage `json:"responses"`
	NextPageToken string            `json:"nextPageToken"`
}

// emptyBatch is returned for empty inputs without a network round trip.
var emptyBatch = json.RawMessage(`{"responses": []}`)

// GetVersionBatch fetches version records for up to [MaxBatchRequests]
// version keys in one call. pageToken continues a previous page; pass ""
// for the first page. The response carries a nextPageToken field while
// more pages remain — [Client.GetAllVersionsBatch] follows them for you.
//
// An empty keys slice returns {"responses": []} without contacting the API.
func (c *Client) GetVersionBatch(ctx context.Context, keys []VersionKey, pageToken string) (json.RawMessage, error) {
	if len(keys) == 0 {
		return emptyBatch, nil
	}
	if len(keys) > MaxBatchRequests {
		return nil, fmt.Errorf("%w: %d version keys (max %d)", ErrBatchTooLarge, len(keys), MaxBatchRequests)
	}
	for _, k := range keys {
		if err := ValidateSystem(k.System); err != nil {
			return nil, err
		}
	}

	requests := make([]map[string]VersionKey, len(keys))
	for i, k := range keys {
		requests[i] = map[string]VersionKey{"versionKey": k}
	}
	return c.postBatch(ctx, c.baseURL+"/versionbatch", requests, pageToken)
}

// GetAllVersionsBatch fetches version records for any number of version
// keys, following pagination until all responses are collected.
func (c *Client) GetAllVersionsBatch(ctx context.Context, keys []VersionKey) ([]json.RawMessage, error) {
	return c.drainPages(ctx, func(token string) (json.RawMessage, error) {
		return c.GetVersionBatch(ctx, keys, token)
	})
}

// GetProjectBatch fetches project records for up to [MaxBatchRequests]
// project IDs in one call. See [Client.GetVersionBatch] for pagination
// semantics.
func (c *Client) GetProjectBatch(ctx context.Context, projectIDs []string, pageToken string) (json.RawMessage, error) {
	if len(projectIDs) == 0 {
		return emptyBatch, nil
	}
	if len(projectIDs) > MaxBatchRequests {
		return nil, fmt.Errorf("%w: %d project ids (max %d)", ErrBatchTooLarge, len(projectIDs), MaxBatchRequests)
	}

	type projectKey struct {
		ID string `json:"id"`
	}
	requests := make([]map[string]projectKey, len(projectIDs))
	for i, id := range projectIDs {
		requests[i] = map[string]projectKey{"projectKey": {ID: id}}
	}
	return c.postBatch(ctx, c.baseURL+"/projectbatch", requests, pageToken)
}

// GetAllProjectsBatch fetches project records for any number of project
// IDs, following pagination until all responses are collected.
func (c *Client) GetAllProjectsBatch(ctx context.Context, projectIDs []string) ([]json.RawMessage, error) {
	return c.drainPages(ctx, func(token string) (json.RawMessage, error) {
		return c.GetProjectBatch(ctx, projectIDs, token)
	})
}

// GetPurlLookupBatch resolves up to [MaxBatchRequests] package URLs in one
// call. See [Client.GetVersionBatch] for pagination semantics.
func (c *Client) GetPurlLookupBatch(ctx context.Context, purls []string, pageToken string) (json.RawMessage, error) {
	if len(purls) == 0 {
		return emptyBatch, nil
	}
	if len(purls) > MaxBatchRequests {
		return nil, fmt.Errorf("%w: %d purls (max %d)", ErrBatchTooLarge, len(purls), MaxBatchRequests)
	}

	requests := make([]map[string]string, len(purls))
	for i, p := range purls {
		requests[i] = map[string]string{"purl": p}
	}
	return c.postBatch(ctx, c.baseURL+"/purlbatch", requests, pageToken)
}

// GetAllPurlLookupBatch resolves any number of package URLs, following
// pagination until all responses are collected.
func (c *Client) GetAllPurlLookupBatch(ctx context.Context, purls []string) ([]json.RawMessage, error) {
	return c.drainPages(ctx, func(token string) (json.RawMessage, error) {
		return c.GetPurlLookupBatch(ctx, purls, token)
	})
}

// postBatch marshals a batch envelope and sends it through the fetch
// engine. Batch endpoints are reads despite using POST, so they share the
// GET retry semantics.
func (c *Client) postBatch(ctx context.Context, u string, requests any, pageToken string) (json.RawMessage, error) {
	envelope := map[string]any{"requests": requests}
	if pageToken != "" {
		envelope["pageToken"] = pageToken
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("encode batch request: %w", err)
	}
	return c.fetch(ctx, http.MethodPost, u, nil, body)
}

// drainPages repeatedly invokes page with the previous page's
// nextPageToken until no token remains, accumulating all responses.
func (c *Client) drainPages(ctx context.Context, page func(token string) (json.RawMessage, error)) ([]json.RawMessage, error) {
	var all []json.RawMessage
	token := ""
	for {
		raw, err := page(token)
		if err != nil {
			return nil, err
		}
		var p batchPage
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode batch page: %w", err)
		}
		all = append(all, p.Responses...)
		if p.NextPageToken == "" {
			return all, nil
		}
		token = p.NextPageToken
	}
}
