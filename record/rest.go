package record

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

	"github.com/nementium/agentcore/fault"
	"github.com/nementium/agentcore/logging"
)

// RESTStore talks to a PostgREST compatible endpoint using a service key.
type RESTStore struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     logging.Logger
}

// RESTOptions configures a RESTStore.
type RESTOptions struct {
	HTTPClient *http.Client
	Logger     logging.Logger
}

// NewRESTStore creates a store client for the given endpoint. baseURL is the
// project root; the /rest/v1 prefix is appended here.
func NewRESTStore(baseURL, serviceKey string, optFns ...func(o *RESTOptions)) *RESTStore {
	opts := RESTOptions{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &RESTStore{
		baseURL:    strings.TrimRight(baseURL, "/") + "/rest/v1",
		serviceKey: serviceKey,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
}

func (s *RESTStore) newRequest(ctx context.Context, method, table string, query url.Values, body io.Reader) (*http.Request, error) {
	u := s.baseURL + "/" + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (s *RESTStore) do(req *http.Request) ([]byte, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fault.FromContext(err, "record store request")
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Error("record store request failed",
			"method", req.Method, "url", req.URL.Path, "status", resp.StatusCode)
		return nil, fmt.Errorf("record store %s %s: status %d: %s",
			req.Method, req.URL.Path, resp.StatusCode, truncate(string(data), 200))
	}
	return data, nil
}

func filterQuery(columns string, filters map[string]string) url.Values {
	query := url.Values{}
	if columns != "" {
		query.Set("select", columns)
	}
	for column, value := range filters {
		query.Set(column, "eq."+value)
	}
	return query
}

// Select returns all rows matching the equality filters.
func (s *RESTStore) Select(ctx context.Context, table, columns string, filters map[string]string) ([]Record, error) {
	req, err := s.newRequest(ctx, http.MethodGet, table, filterQuery(columns, filters), nil)
	if err != nil {
		return nil, err
	}
	data, err := s.do(req)
	if err != nil {
		return nil, err
	}
	var rows []Record
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decoding %s rows: %w", table, err)
	}
	return rows, nil
}

// SelectOne returns the first matching row or fault.NotFound.
func (s *RESTStore) SelectOne(ctx context.Context, table, columns string, filters map[string]string) (Record, error) {
	rows, err := s.Select(ctx, table, columns, filters)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fault.New(fault.NotFound, "no %s row matches the filter", table)
	}
	return rows[0], nil
}

// Insert writes a new row, asking the server to return the stored
// representation so callers can read generated columns.
func (s *RESTStore) Insert(ctx context.Context, table string, row Record) ([]Record, error) {
	body, err := json.Marshal(row)
	if err != nil {
		return nil, err
	}
	req, err := s.newRequest(ctx, http.MethodPost, table, nil, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", "return=representation")

	data, err := s.do(req)
	if err != nil {
		return nil, err
	}
	var rows []Record
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decoding %s insert result: %w", table, err)
	}
	return rows, nil
}

// Update patches all rows matching the equality filters.
func (s *RESTStore) Update(ctx context.Context, table string, patch Record, filters map[string]string) error {
	body, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	req, err := s.newRequest(ctx, http.MethodPatch, table, filterQuery("", filters), bytes.NewReader(body))
	if err != nil {
		return err
	}
	_, err = s.do(req)
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
