package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/SamuelNgundi/fullstack-comic-app/web/core"
)

// Client talks to the catalog REST API. Failed requests are not retried: the
// next page or category change fetches again.
type Client struct {
	log     *slog.Logger
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("empty base url")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &Client{
		log:     log,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type categoryResp struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type comicResp struct {
	ID         int            `json:"id"`
	Slug       string         `json:"slug"`
	Title      string         `json:"title"`
	Thumbnail  string         `json:"thumbnail"`
	Categories []categoryResp `json:"categories"`
}

type pageResp struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  []comicResp `json:"results"`
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn("close response body failed", "error", cerr)
		}
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return core.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		return core.ErrBadArguments
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}

// Comics fetches one page. An absent or "All" category is sent without a
// category filter.
func (c *Client) Comics(ctx context.Context, params core.PageParams) (core.Page[core.RawComic], error) {
	q := url.Values{}
	if !core.IsAllCategory(params.Category) {
		q.Set("category", params.Category)
	}
	if params.Page > 1 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	u := c.baseURL + "/api/comics/"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var pr pageResp
	if err := c.getJSON(ctx, u, &pr); err != nil {
		c.log.Warn("comics request failed", "page", params.Page, "category", params.Category, "error", err)
		return core.Page[core.RawComic]{}, err
	}

	out := core.Page[core.RawComic]{
		Results: make([]core.RawComic, 0, len(pr.Results)),
		Count:   pr.Count,
	}
	for _, cr := range pr.Results {
		out.Results = append(out.Results, core.RawComic{
			ID:         cr.ID,
			Slug:       cr.Slug,
			Title:      cr.Title,
			Thumbnail:  cr.Thumbnail,
			Categories: toCategories(cr.Categories),
		})
	}
	return out, nil
}

func (c *Client) Categories(ctx context.Context) ([]core.Category, error) {
	var crs []categoryResp
	if err := c.getJSON(ctx, c.baseURL+"/api/categories/", &crs); err != nil {
		c.log.Warn("categories request failed", "error", err)
		return nil, err
	}
	return toCategories(crs), nil
}

func toCategories(crs []categoryResp) []core.Category {
	out := make([]core.Category, 0, len(crs))
	for _, cr := range crs {
		out = append(out, core.Category{ID: cr.ID, Name: cr.Name})
	}
	return out
}
