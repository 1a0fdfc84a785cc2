package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"backoffice/internal/domain"
)

const uploadImageEndpoint = "general/upload-image"

var reservedQueryKeys = map[string]bool{
	"page": true, "limit": true, "search": true, "sort_by": true, "sort_order": true,
}

// EncodeQuery serializes a ListQuery into the list endpoint's query string.
func EncodeQuery(q domain.ListQuery) url.Values {
	v := url.Values{}
	page := q.Page
	if page < 1 {
		page = domain.DefaultPage
	}
	limit := q.PerPage
	if limit < 1 {
		limit = domain.DefaultPerPage
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(limit))
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if q.SortBy != "" {
		v.Set("sort_by", q.SortBy)
		if q.SortOrder != "" {
			v.Set("sort_order", string(q.SortOrder))
		}
	}
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		val := strings.TrimSpace(q.Filters[k])
		if val == "" || reservedQueryKeys[k] {
			continue
		}
		v.Set(k, val)
	}
	return v
}

// ItemPath joins a resource and an id: ItemPath("groups", 4) == "groups/4".
func ItemPath(resource string, id int64) string {
	return strings.TrimRight(resource, "/") + "/" + strconv.FormatInt(id, 10)
}

// FetchList issues GET endpoint?query and decodes one page.
func FetchList[T any](ctx context.Context, c *Client, endpoint string, q domain.ListQuery) (domain.PageResult[T], error) {
	env, status, err := c.do(ctx, http.MethodGet, endpoint, EncodeQuery(q), nil)
	if err != nil {
		return domain.PageResult[T]{}, err
	}
	return decodePage[T](status, env)
}

// Create issues POST endpoint with a JSON or multipart body.
func Create[T any](ctx context.Context, c *Client, endpoint string, body any) (T, error) {
	return write[T](ctx, c, endpoint, body)
}

// Update issues POST to an item endpoint (the API uses POST for updates).
func Update[T any](ctx context.Context, c *Client, endpoint string, body any) (T, error) {
	return write[T](ctx, c, endpoint, body)
}

func write[T any](ctx context.Context, c *Client, endpoint string, body any) (T, error) {
	var out T
	env, status, err := c.do(ctx, http.MethodPost, endpoint, nil, body)
	if err != nil {
		return out, err
	}
	if !env.hasData() {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, domain.APIError{Kind: domain.KindDecode, Status: status, Message: "response data does not match the expected shape", Err: err}
	}
	return out, nil
}

// Remove issues DELETE endpoint.
func (c *Client) Remove(ctx context.Context, endpoint string) error {
	_, _, err := c.do(ctx, http.MethodDelete, endpoint, nil, nil)
	return err
}

// Reorder persists a new rank for one item: POST {resource}/{id}/reorder {orders}.
func (c *Client) Reorder(ctx context.Context, resource string, id int64, rank int64) error {
	body := map[string]int64{"orders": rank}
	_, _, err := c.do(ctx, http.MethodPost, ItemPath(resource, id)+"/reorder", nil, body)
	return err
}

// UploadedImage is the reference returned by the upload endpoint. Name is what
// entities persist, URL is only for immediate preview.
type UploadedImage struct {
	Name string `json:"image_name"`
	URL  string `json:"image_url"`
}

// UploadImage sends one image to general/upload-image under folder.
func (c *Client) UploadImage(ctx context.Context, folder, filename string, content io.Reader) (UploadedImage, error) {
	body := Multipart{
		Fields: map[string]string{"folder": folder},
		Files:  []FilePart{{Field: "image", Filename: filename, Content: content}},
	}
	img, err := Create[UploadedImage](ctx, c, uploadImageEndpoint, body)
	if err != nil {
		return UploadedImage{}, err
	}
	if strings.TrimSpace(img.Name) == "" || strings.TrimSpace(img.URL) == "" {
		return UploadedImage{}, domain.APIError{Kind: domain.KindDecode, Status: http.StatusOK, Message: "upload response is missing image_name or image_url"}
	}
	return img, nil
}
