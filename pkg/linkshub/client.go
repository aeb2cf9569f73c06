// Package linkshub is a client for the directory service that owns doctors,
// products and their relations to labs.
package linkshub

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
		logger: logger.With("upstream", "linkshub"),
	}
}

func (c *Client) get(ctx context.Context, token, path string, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		Get(path)
	if err := httpclient.CheckStatus(resp, err); err != nil {
		if !errors.Is(err, httpclient.ErrNotFound) {
			c.logger.WarnContext(ctx, "linkshub request failed", "path", path, "error", err)
		}
		return err
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		c.logger.WarnContext(ctx, "linkshub returned malformed body", "path", path, "error", err)
		return fmt.Errorf("%w: %v", httpclient.ErrMalformed, err)
	}
	return nil
}

func (c *Client) GetDoctor(ctx context.Context, doctorID, token string) (Doctor, error) {
	var d Doctor
	if err := c.get(ctx, token, "/api/v1/doctors/"+url.PathEscape(doctorID), &d); err != nil {
		return nil, err
	}
	return d, nil
}

func (c *Client) GetProduct(ctx context.Context, productID, token string) (Product, error) {
	var p Product
	if err := c.get(ctx, token, "/api/v1/products/"+url.PathEscape(productID), &p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetRelation returns the doctor's relation to a lab.
func (c *Client) GetRelation(ctx context.Context, doctorID, labID, token string) (*Relation, error) {
	var r Relation
	path := fmt.Sprintf("/api/v1/doctors/%s/labs/%s/relation", url.PathEscape(doctorID), url.PathEscape(labID))
	if err := c.get(ctx, token, path, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetLabProducts lists the products a lab offers. A 404 means the lab has
// none and yields an empty list.
func (c *Client) GetLabProducts(ctx context.Context, labID, token string) ([]Product, error) {
	products := []Product{}
	err := c.get(ctx, token, "/api/v1/labs/"+url.PathEscape(labID)+"/products", &products)
	if errors.Is(err, httpclient.ErrNotFound) {
		return []Product{}, nil
	}
	if err != nil {
		return nil, err
	}
	return products, nil
}
