package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"backoffice/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingRow struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *Session) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	sess := NewSession("opaque-token")
	c, err := New(srv.URL+"/api/", sess)
	require.NoError(t, err)
	return c, sess
}

func TestFetchListBookingsFirstPage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/bookings", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "confirmed", r.URL.Query().Get("status"))
		assert.Empty(t, r.URL.Query().Get("search"))
		assert.Equal(t, "Bearer opaque-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		rows := make([]string, 10)
		for i := range rows {
			rows[i] = fmt.Sprintf(`{"id":%d,"status":"confirmed"}`, i+1)
		}
		fmt.Fprintf(w, `{"success":true,"data":[%s],"meta":{"current_page":1,"last_page":5,"per_page":10,"total":47},"info":{"pending":3}}`, strings.Join(rows, ","))
	})

	q := domain.NewListQuery(10)
	q.Filters["status"] = "confirmed"
	page, err := FetchList[bookingRow](context.Background(), c, "admin/bookings", q)
	require.NoError(t, err)
	assert.Len(t, page.Data, 10)
	assert.Equal(t, domain.PageMeta{CurrentPage: 1, LastPage: 5, PerPage: 10, Total: 47}, page.Meta)
	assert.JSONEq(t, `{"pending":3}`, string(page.Info))
}

func TestUnauthorizedLogsOutSession(t *testing.T) {
	var calls int32
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"success":false,"message":"Unauthenticated."}`)
	})
	var loggedOut int32
	sess.OnLogout(func() { atomic.AddInt32(&loggedOut, 1) })

	_, err := FetchList[bookingRow](context.Background(), c, "admin/bookings", domain.NewListQuery(10))
	require.Error(t, err)
	assert.True(t, domain.IsUnauthorized(err))
	assert.Equal(t, Anonymous, sess.State())
	assert.Equal(t, int32(1), atomic.LoadInt32(&loggedOut))

	// anonymous sessions never reach the network
	_, err = FetchList[bookingRow](context.Background(), c, "admin/bookings", domain.NewListQuery(10))
	assert.True(t, domain.IsUnauthorized(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&loggedOut))
}

func TestServerMessageAndFallback(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/coupons":
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"success":false,"errors":{"code":["The code has already been taken."]}}`)
		case "/api/groups":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `<html>oops</html>`)
		case "/api/gifts":
			_, _ = io.WriteString(w, `{"success":false,"message":"Gift already redeemed"}`)
		}
	})
	ctx := context.Background()

	_, err := Create[json.RawMessage](ctx, c, "coupons", map[string]string{"code": "X"})
	apiErr, ok := domain.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindHTTP, apiErr.Kind)
	assert.Equal(t, "The code has already been taken.", apiErr.Message)

	_, err = Create[json.RawMessage](ctx, c, "groups", map[string]string{"name": "Hair"})
	apiErr, _ = domain.AsAPIError(err)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, domain.FallbackMessage(http.StatusInternalServerError), apiErr.Message)

	_, err = Update[json.RawMessage](ctx, c, "gifts", map[string]string{"status": "void"})
	apiErr, _ = domain.AsAPIError(err)
	assert.Equal(t, domain.KindApplication, apiErr.Kind)
	assert.Equal(t, "Gift already redeemed", apiErr.Message)
}

func TestMalformedEnvelopesFailTyped(t *testing.T) {
	bodies := map[string]string{
		"/api/no-flag":   `{"data":[]}`,
		"/api/no-meta":   `{"success":true,"data":[]}`,
		"/api/not-array": `{"success":true,"data":{"id":1},"meta":{"current_page":1,"last_page":1,"per_page":10,"total":1}}`,
		"/api/bad-total": `{"success":true,"data":[{"id":1},{"id":2}],"meta":{"current_page":1,"last_page":1,"per_page":10,"total":1}}`,
		"/api/bad-page":  `{"success":true,"data":[],"meta":{"current_page":0,"last_page":0,"per_page":10,"total":0}}`,
	}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, bodies[r.URL.Path])
	})
	for path := range bodies {
		_, err := FetchList[bookingRow](context.Background(), c, strings.TrimPrefix(path, "/api/"), domain.NewListQuery(10))
		apiErr, ok := domain.AsAPIError(err)
		require.True(t, ok, path)
		assert.Equal(t, domain.KindDecode, apiErr.Kind, path)
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(url+"/api/", NewSession("t"))
	require.NoError(t, err)
	err = c.Remove(context.Background(), "groups/3")
	assert.True(t, domain.IsTransport(err))
}

func TestReorderSendsRank(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/groups/7/reorder", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"orders":3}`, string(body))
		_, _ = io.WriteString(w, `{"success":true}`)
	})
	require.NoError(t, c.Reorder(context.Background(), "groups", 7, 3))
}

func TestUploadImageMultipart(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/general/upload-image", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "services", r.FormValue("folder"))
		f, hdr, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		content, _ := io.ReadAll(f)
		assert.Equal(t, "cut.png", hdr.Filename)
		assert.Equal(t, "PNGDATA", string(content))
		_, _ = io.WriteString(w, `{"success":true,"data":{"image_name":"abc123.png","image_url":"https://cdn.example.com/services/abc123.png"}}`)
	})
	img, err := c.UploadImage(context.Background(), "services", "cut.png", strings.NewReader("PNGDATA"))
	require.NoError(t, err)
	assert.Equal(t, "abc123.png", img.Name)
	assert.Equal(t, "https://cdn.example.com/services/abc123.png", img.URL)
}

func TestEncodeQuery(t *testing.T) {
	q := domain.ListQuery{
		Page:      3,
		PerPage:   25,
		Search:    "  anna ",
		SortBy:    "created_at",
		SortOrder: domain.SortDesc,
		Filters:   map[string]string{"status": "open", "page": "9", "city": " "},
	}
	v := EncodeQuery(q)
	assert.Equal(t, "limit=25&page=3&search=anna&sort_by=created_at&sort_order=desc&status=open", v.Encode())
}
