package api

import (
	"context"
	"net/http"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/model"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/routes"
)

func (c *Client) GetContent(ctx context.Context, id model.ContentID) (*model.Content, error) {
	var out model.Content
	err := c.do(ctx, http.MethodGet, routes.Expand(routes.ContentItem, "id", id.String()), nil, &out)
	if err != nil {
		return nil, classify("get content", err)
	}
	return &out, nil
}

func (c *Client) Create(ctx context.Context, content model.Content, idempotencyKey string) (*model.Content, error) {
	content.ID = ""
	var out model.Content
	err := c.do(ctx, http.MethodPost, routes.Content, content, &out, WithIdempotencyKey(idempotencyKey))
	if err != nil {
		return nil, classify("create content", err)
	}
	return &out, nil
}

func (c *Client) Update(ctx context.Context, id model.ContentID, content model.Content, idempotencyKey string) (*model.Content, error) {
	content.ID = id
	var out model.Content
	err := c.do(ctx, http.MethodPut, routes.Expand(routes.ContentItem, "id", id.String()), content, &out, WithIdempotencyKey(idempotencyKey))
	if err != nil {
		return nil, classify("update content", err)
	}
	if out.ID == "" {
		out.ID = id
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, id model.ContentID) error {
	err := c.do(ctx, http.MethodDelete, routes.Expand(routes.ContentItem, "id", id.String()), nil, nil)
	return classify("delete content", err)
}
