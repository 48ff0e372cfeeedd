// Package save commits form instances to a REST endpoint. It is the save
// collaborator of a form: it refuses to send while error notifications are
// outstanding, and turns REST error responses into server-origin
// notifications on the form.
package save

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-widgetform/pkg/form"
	"github.com/goliatone/go-widgetform/pkg/instance"
	"github.com/goliatone/go-widgetform/pkg/notifications"
	"github.com/goliatone/go-widgetform/pkg/observable"
	"github.com/goliatone/go-widgetform/pkg/render"
)

// Notification codes injected from server responses.
const (
	CodeServerError        = "serverError"
	CodeServerInvalidField = "serverInvalid:"
)

// DataRejected is the notification data key holding the instance the server
// rejected.
const DataRejected = "rejected"

var (
	// ErrBlocked is returned when error notifications prevent a save.
	ErrBlocked = errors.New("save: blocked by error notifications")
	// ErrRejected is returned when the server refused the instance.
	ErrRejected = errors.New("save: rejected by server")
)

// Option configures a Committer.
type Option func(*Committer)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Committer) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Committer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHeader adds a request header, e.g. a nonce or an authorization token.
func WithHeader(key, value string) Option {
	return func(c *Committer) {
		c.headers.Add(key, value)
	}
}

// WithMethod overrides the HTTP method, PUT by default.
func WithMethod(method string) Option {
	return func(c *Committer) {
		if method = strings.TrimSpace(method); method != "" {
			c.method = strings.ToUpper(method)
		}
	}
}

// Committer sends instances to one endpoint.
type Committer struct {
	endpoint string
	method   string
	client   *http.Client
	headers  http.Header
	logger   *slog.Logger

	mu       sync.Mutex
	watching map[*form.Form]*observable.Subscription
}

// New returns a committer for endpoint.
func New(endpoint string, options ...Option) *Committer {
	c := &Committer{
		endpoint: endpoint,
		method:   http.MethodPut,
		client:   &http.Client{Timeout: 30 * time.Second},
		headers:  make(http.Header),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		watching: make(map[*form.Form]*observable.Subscription),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Result describes a successful save.
type Result struct {
	Status   int
	Instance instance.Instance
}

// RejectedError carries the server's error response.
type RejectedError struct {
	Status  int
	Code    string
	Message string
}

func (e *RejectedError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("save: server rejected instance (%d %s): %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("save: server rejected instance (%d): %s", e.Status, msg)
}

func (e *RejectedError) Unwrap() error {
	return ErrRejected
}

// Blocking returns the live error notifications. Save refuses to send while
// any exist, whatever their origin.
func Blocking(f *form.Form) []*notifications.Notification {
	return f.BlockingNotifications()
}

// ReleaseStale removes the server notifications an edit has answered: a
// serverInvalid:<field> entry once that field differs from the rejected
// instance, and a form-level entry once any field differs. It returns the
// number removed.
func ReleaseStale(f *form.Form) int {
	current := f.GetValue()
	return f.Notifications().RemoveWhere(func(n *notifications.Notification) bool {
		if n.Origin != notifications.OriginServer {
			return false
		}
		rejected, ok := n.Data[DataRejected].(instance.Instance)
		if !ok {
			return false
		}
		if field, isField := strings.CutPrefix(n.Code, CodeServerInvalidField); isField {
			was, _ := rejected.Lookup(field)
			now, _ := current.Lookup(field)
			return !instance.ValueEqual(was, now)
		}
		return !instance.Equal(rejected, current)
	})
}

// Save sends the form's current value. On success server notifications are
// cleared and the returned instance is applied through SetState. A REST
// error response is mapped to server notifications and returned as a
// *RejectedError.
func (c *Committer) Save(ctx context.Context, f *form.Form) (Result, error) {
	payload := f.GetValue()
	if blocking := Blocking(f); len(blocking) > 0 {
		codes := make([]string, 0, len(blocking))
		for _, n := range blocking {
			codes = append(codes, n.Code)
		}
		return Result{}, fmt.Errorf("%w: %s", ErrBlocked, strings.Join(codes, ", "))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("save: encode instance: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, c.method, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("save: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, values := range c.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("save: send: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Result{}, fmt.Errorf("save: read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return c.accept(f, resp.StatusCode, raw, payload)
	}
	return Result{Status: resp.StatusCode}, c.reject(f, resp.StatusCode, raw, payload)
}

func (c *Committer) accept(f *form.Form, status int, raw []byte, payload instance.Instance) (Result, error) {
	committed := payload
	if len(bytes.TrimSpace(raw)) > 0 {
		var decoded instance.Instance
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return Result{Status: status}, fmt.Errorf("save: decode response: %w", err)
		}
		if decoded != nil {
			committed = decoded
		}
	}
	c.unwatch(f)
	f.ClearServerNotifications()
	if !f.SetState(committed) {
		c.logger.Warn("server instance rejected by local sanitize", "endpoint", c.endpoint)
	}
	c.logger.Debug("instance saved", "endpoint", c.endpoint, "status", status)
	return Result{Status: status, Instance: f.GetValue()}, nil
}

type restError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status  int               `json:"status"`
		Params  map[string]string `json:"params"`
		Details map[string]any    `json:"details"`
	} `json:"data"`
}

func (c *Committer) reject(f *form.Form, status int, raw []byte, payload instance.Instance) error {
	var body restError
	if err := json.Unmarshal(raw, &body); err != nil {
		body.Message = strings.TrimSpace(string(raw))
	}

	params := make(map[string][]string, len(body.Data.Params))
	for key, message := range body.Data.Params {
		params[key] = append(params[key], message)
	}
	mapping := render.MapErrorPayload(payload, params)

	fields := make([]string, 0, len(mapping.Fields))
	for field := range mapping.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var list []*notifications.Notification
	for _, field := range fields {
		n := notifications.NewServer(CodeServerInvalidField+field, strings.Join(mapping.Fields[field], " "), notifications.SeverityError)
		n.Field = field
		n.Data = map[string]any{DataRejected: payload.Clone()}
		list = append(list, n)
	}

	formMessages := mapping.Form
	if len(list) == 0 || len(formMessages) > 0 {
		message := strings.Join(formMessages, " ")
		if message == "" {
			message = body.Message
		}
		if message == "" {
			message = http.StatusText(status)
		}
		n := notifications.NewServer(CodeServerError, message, notifications.SeverityError)
		n.Data = map[string]any{DataRejected: payload.Clone()}
		if body.Code != "" {
			n.Data["code"] = body.Code
		}
		list = append(list, n)
	}

	f.InjectServerNotifications(list...)
	c.watch(f)
	c.logger.Debug("instance rejected", "endpoint", c.endpoint, "status", status, "code", body.Code)
	return &RejectedError{Status: status, Code: body.Code, Message: body.Message}
}

// watch releases stale server notifications on every model change until none
// are left or the form is destructed.
func (c *Committer) watch(f *form.Form) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.watching[f]; ok {
		return
	}
	c.watching[f] = f.Model().Bind(func(_, _ instance.Instance) {
		if f.State() == form.StateDestructed {
			c.unwatch(f)
			return
		}
		if removed := ReleaseStale(f); removed > 0 {
			c.logger.Debug("server notifications released", "endpoint", c.endpoint, "removed", removed)
		}
		if !hasServerNotifications(f) {
			c.unwatch(f)
		}
	})
}

func (c *Committer) unwatch(f *form.Form) {
	c.mu.Lock()
	sub, ok := c.watching[f]
	delete(c.watching, f)
	c.mu.Unlock()
	if ok {
		f.Model().Unbind(sub)
	}
}

func hasServerNotifications(f *form.Form) bool {
	return len(f.Notifications().Filter(func(n *notifications.Notification) bool {
		return n.Origin == notifications.OriginServer
	})) > 0
}
