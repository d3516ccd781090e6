// Package capability calls the remote natural-request services on behalf of
// the project. Every call is gated by the budget, carries a fresh
// authorization payload and is normalized into a model.Result.
package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/shamank/skynet-gateway/pkg/config"
	"github.com/shamank/skynet-gateway/pkg/metrics"
	"github.com/shamank/skynet-gateway/pkg/model"
	"github.com/shamank/skynet-gateway/pkg/storage"
	"go.uber.org/zap"
)

// Authorizer produces the signed payload attached to every request.
type Authorizer interface {
	Authorize(ctx context.Context) (model.AuthorizationPayload, error)
}

// BudgetGate decides whether a pool may be spent against.
type BudgetGate interface {
	EnsureBudget(ctx context.Context, pool, subnet string) bool
}

// Client is the remote call adapter.
type Client struct {
	http      *http.Client
	auth      Authorizer
	gate      BudgetGate
	projectID string
	catalog   Catalog
	timeout   time.Duration
	direct    storage.Uploader
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for capability calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithDirectStorage sends uploads to u instead of the upload capability.
// The ipfs budget gate still applies.
func WithDirectStorage(u storage.Uploader) Option {
	return func(c *Client) { c.direct = u }
}

// New returns a Client for the project and endpoints in cfg.
func New(cfg *config.Config, auth Authorizer, gate BudgetGate, opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{},
		auth:      auth,
		gate:      gate,
		projectID: cfg.ProjectID,
		catalog:   NewCatalog(cfg.Endpoints),
		timeout:   cfg.Timeouts.WithDefaults().Call,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Catalog returns the capabilities the client calls.
func (c *Client) Catalog() Catalog { return c.catalog }

// envelope gates the call and builds the common request fields. A denied
// budget yields ok=false; an authorization failure is returned as an error.
func (c *Client) envelope(ctx context.Context, capb Capability) (env model.Envelope, ok bool, err error) {
	if !c.gate.EnsureBudget(ctx, capb.Pool, capb.Subnet) {
		return env, false, nil
	}
	payload, err := c.auth.Authorize(ctx)
	if err != nil {
		zap.L().Error("authorization payload unavailable", zap.String("capability", capb.Name), zap.Error(err))
		return env, false, err
	}
	return model.Envelope{UserAuthPayload: payload, NftID: c.projectID}, true, nil
}

// call runs the gated JSON POST to capb. body builds the request from the
// envelope.
func call[T any](ctx context.Context, c *Client, capb Capability, body func(model.Envelope) any) (model.Result[T], error) {
	env, ok, err := c.envelope(ctx, capb)
	if err != nil {
		return model.Result[T]{}, err
	}
	if !ok {
		return model.Fail[T](ErrBudgetUnverified), nil
	}

	raw, err := json.Marshal(body(env))
	if err != nil {
		return model.Fail[T](err), nil
	}
	return send[T](ctx, c, capb, "application/json", raw), nil
}

// upload runs the gated multipart POST to capb.
func upload[T any](ctx context.Context, c *Client, capb Capability, name string, data []byte) (model.Result[T], error) {
	env, ok, err := c.envelope(ctx, capb)
	if err != nil {
		return model.Result[T]{}, err
	}
	if !ok {
		return model.Fail[T](ErrBudgetUnverified), nil
	}

	auth, err := json.Marshal(env.UserAuthPayload)
	if err != nil {
		return model.Fail[T](err), nil
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := writeForm(mw, string(auth), env.NftID, name, data); err != nil {
		return model.Fail[T](err), nil
	}
	return send[T](ctx, c, capb, mw.FormDataContentType(), buf.Bytes()), nil
}

func writeForm(mw *multipart.Writer, auth, nftID, name string, data []byte) error {
	if err := mw.WriteField("userAuthPayload", auth); err != nil {
		return err
	}
	if err := mw.WriteField("nftId", nftID); err != nil {
		return err
	}
	part, err := mw.CreateFormFile(UploadField, name)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := mw.WriteField("prompt", UploadPrompt); err != nil {
		return err
	}
	return mw.Close()
}

// send POSTs body and decodes a 2xx response into T. Every failure is
// returned as a failed Result.
func send[T any](ctx context.Context, c *Client, capb Capability, contentType string, body []byte) model.Result[T] {
	start := time.Now()
	res := doSend[T](ctx, c, capb, contentType, body)
	metrics.RecordCapabilityCall(capb.Name, res.Success(), time.Since(start))

	if !res.Success() {
		zap.L().Error("capability call failed",
			zap.String("capability", capb.Name),
			zap.String("url", capb.URL),
			zap.String("error", res.Error()))
	} else {
		zap.L().Debug("capability call succeeded",
			zap.String("capability", capb.Name),
			zap.Duration("elapsed", time.Since(start)))
	}
	return res
}

func doSend[T any](ctx context.Context, c *Client, capb Capability, contentType string, body []byte) model.Result[T] {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, capb.URL, bytes.NewReader(body))
	if err != nil {
		return model.Fail[T](err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.Fail[T](err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Fail[T](err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.Fail[T](&StatusError{StatusCode: resp.StatusCode, Body: string(raw)})
	}

	var out T
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return model.Fail[T](fmt.Errorf("decode %s response: %w", capb.Name, err))
		}
	}
	return model.Ok(out)
}
