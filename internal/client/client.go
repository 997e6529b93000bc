// Package client es el cliente tipado de la API HTTP de petora-connect.
// Lo usan las vistas de internal/viewstate como lado "commit" de cada mutación.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"petora-connect/internal/domain/groups"
	"petora-connect/internal/domain/listings"
	"petora-connect/internal/domain/posts"
	"petora-connect/internal/platform/httpclient"

	"github.com/gorilla/websocket"
)

const headerDebugUserID = "X-Debug-User-ID"

type Options struct {
	Timeout time.Duration
	// Token se manda como Authorization: Bearer.
	Token string
	// DebugUserID solo sirve contra un servidor en AUTH_MODE=dev.
	DebugUserID string
}

type Client struct {
	http   *httpclient.Client
	dialer *websocket.Dialer
}

func New(baseURL string, opts Options) (*Client, error) {
	hc, err := httpclient.NewWithBaseURL(baseURL, opts.Timeout)
	if err != nil {
		return nil, err
	}
	if hc.BaseURL == "" {
		return nil, fmt.Errorf("client: base url is required")
	}
	if strings.TrimSpace(opts.Token) != "" {
		hc = hc.WithBearer(opts.Token)
	}
	if id := strings.TrimSpace(opts.DebugUserID); id != "" {
		hc.DefaultHeaders[headerDebugUserID] = id
	}
	return &Client{http: hc, dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second}}, nil
}

// ListingInput es el body de creación de una publicación.
type ListingInput struct {
	Name        string   `json:"name"`
	Species     string   `json:"species"`
	Breed       string   `json:"breed"`
	Age         string   `json:"age"`
	Gender      string   `json:"gender"`
	Location    string   `json:"location"`
	ListingType string   `json:"listingType"`
	Price       *float64 `json:"price,omitempty"`
	Description string   `json:"description"`
}

// ListListings pide el catálogo filtrado en el servidor.
func (c *Client) ListListings(ctx context.Context, f listings.Filter) ([]listings.Listing, error) {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Species != "" {
		q.Set("species", string(f.Species))
	}
	if f.ListingType != "" {
		q.Set("listingType", string(f.ListingType))
	}
	path := "/pets"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []listings.Listing
	if err := c.http.DoJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return out, nil
}

func (c *Client) GetListing(ctx context.Context, id string) (listings.View, error) {
	var out listings.View
	if err := c.http.DoJSON(ctx, http.MethodGet, "/pets/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return listings.View{}, fmt.Errorf("get listing %s: %w", id, err)
	}
	return out, nil
}

func (c *Client) CreateListing(ctx context.Context, in ListingInput) (listings.Listing, error) {
	var out listings.Listing
	if err := c.http.DoJSON(ctx, http.MethodPost, "/pets", nil, in, &out); err != nil {
		return listings.Listing{}, fmt.Errorf("create listing: %w", err)
	}
	return out, nil
}

// UpdateListing manda un PATCH parcial: una key ausente no se toca y un valor nil se envía como null.
func (c *Client) UpdateListing(ctx context.Context, id string, patch map[string]any) (listings.Listing, error) {
	var out listings.Listing
	if err := c.http.DoJSON(ctx, http.MethodPatch, "/pets/"+url.PathEscape(id), nil, patch, &out); err != nil {
		return listings.Listing{}, fmt.Errorf("update listing %s: %w", id, err)
	}
	return out, nil
}

func (c *Client) DeleteListing(ctx context.Context, id string) error {
	if err := c.http.DoJSON(ctx, http.MethodDelete, "/pets/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete listing %s: %w", id, err)
	}
	return nil
}

// SetLike usa PUT para dar like y DELETE para quitarlo; ambos son idempotentes.
func (c *Client) SetLike(ctx context.Context, postID string, liked bool) (posts.Post, error) {
	method := http.MethodPut
	if !liked {
		method = http.MethodDelete
	}
	var out posts.Post
	if err := c.http.DoJSON(ctx, method, "/posts/"+url.PathEscape(postID)+"/like", nil, nil, &out); err != nil {
		return posts.Post{}, fmt.Errorf("set like %s: %w", postID, err)
	}
	return out, nil
}

func (c *Client) JoinGroup(ctx context.Context, groupID string) (groups.Group, bool, error) {
	var out struct {
		Group  groups.Group `json:"group"`
		Joined bool         `json:"joined"`
	}
	if err := c.http.DoJSON(ctx, http.MethodPost, "/groups/"+url.PathEscape(groupID)+"/join", nil, nil, &out); err != nil {
		return groups.Group{}, false, fmt.Errorf("join group %s: %w", groupID, err)
	}
	return out.Group, out.Joined, nil
}

func (c *Client) PostMessage(ctx context.Context, groupID, text string) (groups.Message, error) {
	var out groups.Message
	body := map[string]string{"text": text}
	if err := c.http.DoJSON(ctx, http.MethodPost, "/groups/"+url.PathEscape(groupID)+"/messages", nil, body, &out); err != nil {
		return groups.Message{}, fmt.Errorf("post message %s: %w", groupID, err)
	}
	return out, nil
}
