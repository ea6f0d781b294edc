package gateway

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

	"github.com/google/uuid"
)

// PostgRESTConfig points at a Supabase project (or any PostgREST server).
type PostgRESTConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// PostgREST is the hosted backend. Joined columns are requested as spread
// embeds so rows come back flat.
type PostgREST struct {
	restURL string
	apiKey  string
	client  *http.Client
}

// APIError is a non-2xx PostgREST response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("postgrest %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("postgrest %d: %s", e.Status, e.Message)
}

func NewPostgREST(cfg PostgRESTConfig) (*PostgREST, error) {
	if cfg.URL == "" || cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	base := strings.TrimRight(cfg.URL, "/")
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid supabase url: %w", err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &PostgREST{
		restURL: base + "/rest/v1",
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (p *PostgREST) Select(ctx context.Context, q Query, dest interface{}) error {
	body, err := p.do(ctx, http.MethodGet, p.queryURL(q), nil, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s rows: %w", q.Table, err)
	}
	return nil
}

func (p *PostgREST) Get(ctx context.Context, q Query, dest interface{}) error {
	var rows []json.RawMessage
	if err := p.Select(ctx, q, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	if err := json.Unmarshal(rows[0], dest); err != nil {
		return fmt.Errorf("decode %s row: %w", q.Table, err)
	}
	return nil
}

func (p *PostgREST) Insert(ctx context.Context, table string, values map[string]interface{}) (uuid.UUID, error) {
	id, row := assignID(values)
	payload, err := json.Marshal(row)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal %s row: %w", table, err)
	}
	headers := map[string]string{"Prefer": "return=minimal"}
	if _, err := p.do(ctx, http.MethodPost, p.tableURL(table), payload, headers); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (p *PostgREST) Update(ctx context.Context, table string, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal %s fields: %w", table, err)
	}
	headers := map[string]string{"Prefer": "return=representation"}
	body, err := p.do(ctx, http.MethodPatch, p.tableURL(table)+"?id=eq."+id.String(), payload, headers)
	if err != nil {
		return err
	}
	var updated []json.RawMessage
	if err := json.Unmarshal(body, &updated); err != nil {
		return fmt.Errorf("decode %s update: %w", table, err)
	}
	if len(updated) == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgREST) Delete(ctx context.Context, table string, id uuid.UUID) error {
	_, err := p.do(ctx, http.MethodDelete, p.tableURL(table)+"?id=eq."+id.String(), nil, nil)
	return err
}

func (p *PostgREST) tableURL(table string) string {
	return p.restURL + "/" + url.PathEscape(table)
}

func (p *PostgREST) queryURL(q Query) string {
	columns := []string{"*"}
	for _, g := range q.groupedJoins() {
		// ...clients!appointments_client_id_fkey(client_name:name,client_phone:phone)
		fields := make([]string, len(g.Columns))
		for i, j := range g.Columns {
			fields[i] = j.As + ":" + j.Column
		}
		columns = append(columns, fmt.Sprintf("...%s!%s_%s_fkey(%s)", g.Table, q.Table, g.LocalKey, strings.Join(fields, ",")))
	}
	params := []string{"select=" + url.QueryEscape(strings.Join(columns, ","))}
	for _, f := range q.Filters {
		params = append(params, fmt.Sprintf("%s=eq.%s", f.Column, url.QueryEscape(fmt.Sprint(f.Value))))
	}
	if len(q.Order) > 0 {
		order := make([]string, len(q.Order))
		for i, c := range q.Order {
			order[i] = c + ".asc"
		}
		params = append(params, "order="+strings.Join(order, ","))
	}
	return p.tableURL(q.Table) + "?" + strings.Join(params, "&")
}

func (p *PostgREST) do(ctx context.Context, method, rawURL string, payload []byte, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", p.apiKey)
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, parseError(resp.StatusCode, body)
	}
	return body, nil
}

func parseError(status int, body []byte) error {
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if status == http.StatusConflict || apiErr.Code == "23505" {
		return fmt.Errorf("%w: %v", ErrConflict, apiErr)
	}
	return apiErr
}
