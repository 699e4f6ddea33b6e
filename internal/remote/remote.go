// Package remote talks to the spreadsheet script that persists reports, PTPs,
// foremen and audit logs.
//
// The script answers GET ?action=<fetch> with an array of rows keyed by sheet
// headers and POST {"action","data"} with {"success":true} or {"error":"..."}.
// Rows come back with inconsistent casing, JSON-encoded cells and numeric ids;
// everything is normalized here so callers only see canonical model types.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flooring-cli/internal/metrics"
	"flooring-cli/internal/model"
)

// GET actions.
const (
	ActionPing             = "ping"
	ActionFetchReports     = "fetchReports"
	ActionFetchDeleted     = "fetchDeleted"
	ActionFetchForemen     = "fetchForemen"
	ActionFetchPTPs        = "fetchPTPs"
	ActionFetchDeletedPTPs = "fetchDeletedPTPs"
	ActionFetchAuditLogs   = "fetchAuditLogs"
)

// POST actions.
const (
	ActionInsert         = "insert"
	ActionUpdate         = "update"
	ActionDelete         = "delete"
	ActionRestore        = "restore"
	ActionUpsertForeman  = "upsertForeman"
	ActionDeleteForeman  = "deleteForeman"
	ActionInsertPTP      = "insertPTP"
	ActionUpdatePTP      = "updatePTP"
	ActionDeletePTP      = "deletePTP"
	ActionRestorePTP     = "restorePTP"
	ActionInsertAuditLog = "insertAuditLog"
)

const DefaultTimeout = 30 * time.Second

// Request is the POST envelope.
type Request struct {
	Action string `json:"action"`
	Data   any    `json:"data"`
}

// Response is the POST reply (and the GET reply on failure).
type Response struct {
	Success bool   `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

type idPayload struct {
	ID string `json:"id"`
}

type namePayload struct {
	Name string `json:"name"`
}

// Client is an HTTP client for the sheet script.
type Client struct {
	Endpoint string
	HTTP     *http.Client
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

func NewClient(endpoint string, logger *slog.Logger, m *metrics.Metrics) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		Endpoint: strings.TrimSpace(endpoint),
		HTTP:     &http.Client{Timeout: DefaultTimeout},
		Logger:   logger,
		Metrics:  m,
	}
}

func (c *Client) Ping(ctx context.Context) error {
	var resp Response
	if err := c.getJSON(ctx, ActionPing, &resp); err != nil {
		return err
	}
	if resp.Error != "" {
		return &Error{Action: ActionPing, Message: resp.Error}
	}
	return nil
}

func (c *Client) FetchReports(ctx context.Context) ([]model.Report, error) {
	rows, err := c.fetchRows(ctx, ActionFetchReports)
	if err != nil {
		return nil, err
	}
	return ReportsFromRows(rows), nil
}

func (c *Client) FetchDeletedReports(ctx context.Context) ([]model.Report, error) {
	rows, err := c.fetchRows(ctx, ActionFetchDeleted)
	if err != nil {
		return nil, err
	}
	return ReportsFromRows(rows), nil
}

func (c *Client) FetchForemen(ctx context.Context) ([]model.Foreman, error) {
	rows, err := c.fetchRows(ctx, ActionFetchForemen)
	if err != nil {
		return nil, err
	}
	return ForemenFromRows(rows), nil
}

func (c *Client) FetchPTPs(ctx context.Context) ([]model.PreTaskPlan, error) {
	rows, err := c.fetchRows(ctx, ActionFetchPTPs)
	if err != nil {
		return nil, err
	}
	return PTPsFromRows(rows), nil
}

func (c *Client) FetchDeletedPTPs(ctx context.Context) ([]model.PreTaskPlan, error) {
	rows, err := c.fetchRows(ctx, ActionFetchDeletedPTPs)
	if err != nil {
		return nil, err
	}
	return PTPsFromRows(rows), nil
}

func (c *Client) FetchAuditLogs(ctx context.Context) ([]model.AuditLogEntry, error) {
	rows, err := c.fetchRows(ctx, ActionFetchAuditLogs)
	if err != nil {
		return nil, err
	}
	return AuditLogsFromRows(rows), nil
}

func (c *Client) InsertReport(ctx context.Context, r model.Report) error {
	_, err := c.post(ctx, ActionInsert, r)
	return err
}

func (c *Client) UpdateReport(ctx context.Context, r model.Report) error {
	_, err := c.post(ctx, ActionUpdate, r)
	return err
}

func (c *Client) DeleteReport(ctx context.Context, id string) (bool, error) {
	return c.post(ctx, ActionDelete, idPayload{ID: id})
}

func (c *Client) RestoreReport(ctx context.Context, id string) (bool, error) {
	return c.post(ctx, ActionRestore, idPayload{ID: id})
}

func (c *Client) InsertPTP(ctx context.Context, p model.PreTaskPlan) error {
	_, err := c.post(ctx, ActionInsertPTP, p)
	return err
}

func (c *Client) UpdatePTP(ctx context.Context, p model.PreTaskPlan) error {
	_, err := c.post(ctx, ActionUpdatePTP, p)
	return err
}

func (c *Client) DeletePTP(ctx context.Context, id string) (bool, error) {
	return c.post(ctx, ActionDeletePTP, idPayload{ID: id})
}

func (c *Client) RestorePTP(ctx context.Context, id string) (bool, error) {
	return c.post(ctx, ActionRestorePTP, idPayload{ID: id})
}

func (c *Client) UpsertForeman(ctx context.Context, f model.Foreman) (bool, error) {
	return c.post(ctx, ActionUpsertForeman, f)
}

func (c *Client) DeleteForeman(ctx context.Context, name string) (bool, error) {
	return c.post(ctx, ActionDeleteForeman, namePayload{Name: name})
}

func (c *Client) InsertAuditLog(ctx context.Context, e model.AuditLogEntry) error {
	_, err := c.post(ctx, ActionInsertAuditLog, e)
	return err
}

func (c *Client) fetchRows(ctx context.Context, action string) ([]Row, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, action, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var resp Response
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, &Error{Action: action, Err: err}
		}
		if resp.Error != "" {
			return nil, &Error{Action: action, Message: resp.Error}
		}
		return nil, &Error{Action: action, Message: "unexpected object response"}
	}
	var rows []Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, &Error{Action: action, Err: err}
	}
	return rows, nil
}

func (c *Client) getJSON(ctx context.Context, action string, out any) (err error) {
	start := time.Now()
	defer func() { c.Metrics.ObserveRemote(action, start, err) }()

	u, err := c.actionURL(action)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &Error{Action: action, Err: err}
	}
	body, err := c.do(action, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Action: action, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) post(ctx context.Context, action string, data any) (ok bool, err error) {
	start := time.Now()
	defer func() { c.Metrics.ObserveRemote(action, start, err) }()

	if c.Endpoint == "" {
		return false, &Error{Action: action, Message: "no endpoint configured"}
	}
	b, err := json.Marshal(Request{Action: action, Data: data})
	if err != nil {
		return false, &Error{Action: action, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(b))
	if err != nil {
		return false, &Error{Action: action, Err: err}
	}
	// The script parses the raw body; the content type is ignored.
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	body, err := c.do(action, req)
	if err != nil {
		return false, err
	}
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, &Error{Action: action, Err: fmt.Errorf("decode response: %w", err)}
	}
	if resp.Error != "" {
		return false, &Error{Action: action, Message: resp.Error}
	}
	c.Logger.Debug("remote call", "action", action, "success", resp.Success, "duration_ms", time.Since(start).Milliseconds())
	return resp.Success, nil
}

func (c *Client) do(action string, req *http.Request) ([]byte, error) {
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	res, err := hc.Do(req)
	if err != nil {
		return nil, &Error{Action: action, Err: err}
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &Error{Action: action, Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &Error{Action: action, Status: res.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return body, nil
}

func (c *Client) actionURL(action string) (string, error) {
	if c.Endpoint == "" {
		return "", &Error{Action: action, Message: "no endpoint configured"}
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return "", &Error{Action: action, Err: err}
	}
	q := u.Query()
	q.Set("action", action)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
