package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"p9e.in/claims/models"
	"p9e.in/claims/pkg/wizard"
)

// ClaimFilter mirrors the grid's filter bar. Zero values are omitted.
type ClaimFilter struct {
	Status    string
	Search    string
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	Page      int
	Limit     int
}

func (f ClaimFilter) query() string {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.StartDate != "" {
		q.Set("startDate", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("endDate", f.EndDate)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ClaimRow is one grid row with its rendering color token.
type ClaimRow struct {
	models.Claim
	StatusColor string `json:"status_color"`
}

// ClaimsPage is one page of the claims grid.
type ClaimsPage struct {
	Data       []ClaimRow `json:"data"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int64      `json:"totalPages"`
}

// Claims fetches one page of the claims grid. Filters apply server-side
// across the whole result set.
func (c *Client) Claims(ctx context.Context, filter ClaimFilter) (*ClaimsPage, error) {
	var page ClaimsPage
	if err := c.call(ctx, http.MethodGet, "/api/v1/intimation/claims"+filter.query(), nil, &page, true); err != nil {
		return nil, err
	}
	return &page, nil
}

// StatusCount is one slice of the claims summary.
type StatusCount struct {
	Status models.ClaimStatus `json:"status"`
	Count  int64              `json:"count"`
	Color  string             `json:"color"`
}

// ClaimsSummary backs the analytics tab: per-status counts plus, for
// admins, the number of users awaiting approval.
type ClaimsSummaryResult struct {
	Total        int64         `json:"total"`
	ByStatus     []StatusCount `json:"by_status"`
	PendingUsers int64         `json:"pending_users"`
}

// Summary fetches the dashboard claim counts.
func (c *Client) Summary(ctx context.Context) (*ClaimsSummaryResult, error) {
	var out ClaimsSummaryResult
	if err := c.call(ctx, http.MethodGet, "/api/v1/intimation/claims/summary", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportClaims downloads the filtered grid as an xlsx workbook.
func (c *Client) ExportClaims(ctx context.Context, filter ClaimFilter) ([]byte, error) {
	token := c.Token()
	if token == "" {
		return nil, ErrNoToken
	}
	endpoint := c.baseURL + "/api/v1/intimation/claims/export" + filter.query()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			c.handleUnauthorized()
		}
		return nil, readAPIError(resp)
	}
	return io.ReadAll(resp.Body)
}

// Claim fetches one claim by id or reference id.
func (c *Client) Claim(ctx context.Context, id string) (*models.Claim, error) {
	var claim models.Claim
	if err := c.call(ctx, http.MethodGet, "/api/v1/intimation/claim/"+url.PathEscape(id), nil, &claim, true); err != nil {
		return nil, err
	}
	return &claim, nil
}

// SaveDraft persists a partial claim and returns the reference id. This
// makes the client a wizard.DraftSaver.
func (c *Client) SaveDraft(ctx context.Context, p wizard.DraftPayload) (string, error) {
	var resp struct {
		ReferenceID string `json:"reference_id"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/v1/intimation/draft", p, &resp, true); err != nil {
		return "", err
	}
	return resp.ReferenceID, nil
}

// SubmitClaim finalises a claim. This makes the client a
// wizard.Submitter; failures come back as errors so the caller can show
// a retry affordance.
func (c *Client) SubmitClaim(ctx context.Context, p wizard.SubmitPayload) error {
	return c.call(ctx, http.MethodPost, "/api/v1/intimation/submit", p, nil, true)
}

// DeleteClaim soft deletes a claim.
func (c *Client) DeleteClaim(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/api/v1/intimation/"+url.PathEscape(id), nil, nil, true)
}

// NewIntimation starts a wizard run backed by this client.
func (c *Client) NewIntimation() *wizard.Form {
	return wizard.NewForm(c, c)
}

// UploadedDocument is the response for one uploaded file.
type UploadedDocument struct {
	DocumentID string `json:"documentId"`
	URL        string `json:"url"`
	FileName   string `json:"file_name"`
	Slot       string `json:"slot"`
}

// UploadDocument sends one file for a wizard slot. On success the caller
// applies the returned URL and id to the slot; on failure the slot is
// left untouched.
func (c *Client) UploadDocument(ctx context.Context, userID, slot, filename string, content io.Reader) (*UploadedDocument, error) {
	token := c.Token()
	if token == "" {
		return nil, ErrNoToken
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("files", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, content); err != nil {
		return nil, err
	}
	meta, _ := json.Marshal([]map[string]string{{"slot": slot}})
	if err := mw.WriteField("meta", string(meta)); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/api/v1/uploads/users/%s/documents", c.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			c.handleUnauthorized()
		}
		return nil, readAPIError(resp)
	}

	var out struct {
		Documents []UploadedDocument `json:"documents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("apiclient: decode upload response: %w", err)
	}
	if len(out.Documents) == 0 || out.Documents[0].URL == "" {
		return nil, &APIError{Status: resp.StatusCode, Message: "upload returned no document"}
	}
	return &out.Documents[0], nil
}

// DeleteDocument removes an uploaded document after its slot is cleared.
func (c *Client) DeleteDocument(ctx context.Context, documentID string) error {
	return c.call(ctx, http.MethodDelete, "/api/v1/uploads/documents/"+url.PathEscape(documentID), nil, nil, true)
}

// DocumentTypes fetches the slot catalog.
func (c *Client) DocumentTypes(ctx context.Context) ([]models.DocumentType, error) {
	var types []models.DocumentType
	if err := c.call(ctx, http.MethodGet, "/api/v1/uploads/document-types", nil, &types, true); err != nil {
		return nil, err
	}
	return types, nil
}
