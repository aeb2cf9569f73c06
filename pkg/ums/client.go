// Package ums is a client for the user-management (identity) service.
package ums

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/go-resty/resty/v2"

	"github.com/Alijeyrad/caseservice/pkg/httpclient"
)

type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

func New(cfg httpclient.Config, logger *slog.Logger) *Client {
	return &Client{
		http:   httpclient.New(cfg),
		logger: logger.With("upstream", "ums"),
	}
}

func (c *Client) get(ctx context.Context, token, path string, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		Get(path)
	if err := httpclient.CheckStatus(resp, err); err != nil {
		if errors.Is(err, httpclient.ErrUnavailable) {
			c.logger.WarnContext(ctx, "ums request failed", "path", path, "error", err)
		}
		return err
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		c.logger.WarnContext(ctx, "ums returned malformed body", "path", path, "error", err)
		return fmt.Errorf("%w: %v", httpclient.ErrMalformed, err)
	}
	return nil
}

// VerifyToken resolves a bearer token to the identity that owns it.
// An identity without a user id is treated as malformed.
func (c *Client) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	var id Identity
	if err := c.get(ctx, token, "/api/auth/me", &id); err != nil {
		return nil, err
	}
	if id.Subject() == "" {
		return nil, fmt.Errorf("%w: identity has no user id", httpclient.ErrMalformed)
	}
	return &id, nil
}

// GetLabInfo returns the identity service's record of a lab.
func (c *Client) GetLabInfo(ctx context.Context, labID, token string) (Lab, error) {
	var lab Lab
	if err := c.get(ctx, token, "/api/labs/"+url.PathEscape(labID), &lab); err != nil {
		return nil, err
	}
	return lab, nil
}
