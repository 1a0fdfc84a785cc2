package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	intconfig "backoffice/internal/config"
	h "backoffice/internal/http/handlers"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type upstream struct {
	mu       sync.Mutex
	requests []*http.Request
	status   int
	body     string
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.requests = append(u.requests, r.Clone(r.Context()))
	if u.status != 0 {
		w.WriteHeader(u.status)
	}
	_, _ = fmt.Fprint(w, u.body)
}

func (u *upstream) last() *http.Request {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.requests) == 0 {
		return nil
	}
	return u.requests[len(u.requests)-1]
}

func newTestRouter(t *testing.T, up http.Handler) *gin.Engine {
	t.Helper()
	return newTestRouterWith(t, up, nil)
}

func newTestRouterWith(t *testing.T, up http.Handler, adjust func(*intconfig.Env)) *gin.Engine {
	t.Helper()
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)
	env := intconfig.Env{
		APIBaseURL:         srv.URL,
		APITimeout:         5 * time.Second,
		RequestIDHeader:    "X-Request-ID",
		SearchDebounce:     50 * time.Millisecond,
		DefaultPageSize:    10,
		MaxPageSize:        100,
		CORSAllowedOrigins: "http://localhost:3000",
		AuthCookie:         "authToken",
		AdminRoles:         "admin",
		ExportCurrency:     "SAR",
	}
	if adjust != nil {
		adjust(&env)
	}
	return NewRouter(env, h.Deps{})
}

func token(t *testing.T, role string) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "7", "exp": time.Now().Add(time.Hour).Unix()}
	if role != "" {
		claims["role"] = role
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func do(r *gin.Engine, method, path, cookie string, body string, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "authToken", Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthIsPublic(t *testing.T) {
	r := newTestRouter(t, &upstream{})
	w := do(r, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAnonymousRequestsAreTurnedAway(t *testing.T) {
	r := newTestRouter(t, &upstream{})

	w := do(r, http.MethodGet, "/api/resources", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["logout"])

	w = do(r, http.MethodGet, "/api/resources/salons", "", "", "Accept", "text/html")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestRoleGate(t *testing.T) {
	r := newTestRouter(t, &upstream{})

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/resources", token(t, "customer"), "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/resources", "opaque-token", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/resources", token(t, "admin"), "").Code)
}

func TestResourcePageIsProxied(t *testing.T) {
	up := &upstream{body: `{"success":true,"data":[{"id":11,"name":"Nour","city":"Riyadh","rating":4.5,"active":true}],"meta":{"current_page":2,"last_page":2,"per_page":10,"total":11}}`}
	r := newTestRouter(t, up)

	w := do(r, http.MethodGet, "/api/resources/salons?page=2&search=%20nour%20&city=Riyadh&sort_by=password", token(t, "admin"), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req := up.last()
	require.NotNil(t, req)
	assert.Equal(t, "/salons", req.URL.Path)
	assert.Equal(t, "2", req.URL.Query().Get("page"))
	assert.Equal(t, "nour", req.URL.Query().Get("search"))
	assert.Equal(t, "Riyadh", req.URL.Query().Get("city"))
	assert.Equal(t, "name", req.URL.Query().Get("sort_by"))
	assert.True(t, strings.HasPrefix(req.Header.Get("Authorization"), "Bearer "))

	var body struct {
		Data   []map[string]any `json:"data"`
		Window struct {
			Start int `json:"start"`
			End   int `json:"end"`
		} `json:"window"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, 11, body.Window.Start)
	assert.Equal(t, 11, body.Window.End)
}

func TestUpstreamUnauthorizedClearsCookie(t *testing.T) {
	up := &upstream{status: http.StatusUnauthorized, body: `{"success":false,"message":"Unauthenticated."}`}
	r := newTestRouter(t, up)

	w := do(r, http.MethodGet, "/api/resources/bookings", token(t, "admin"), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "authToken=;")
}

func TestUnknownResourceAndLocalRejections(t *testing.T) {
	up := &upstream{}
	r := newTestRouter(t, up)
	tok := token(t, "admin")

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/resources/vehicles", tok, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/resources/salons/4/reorder", tok, `{"orders":3}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/resources/groups/4/reorder", tok, `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/resources/coupons", tok, `{"code":""}`).Code)
	assert.Nil(t, up.last(), "rejected requests must not reach the API")
}

func TestGroupReorderIsForwarded(t *testing.T) {
	up := &upstream{body: `{"success":true}`}
	r := newTestRouter(t, up)

	w := do(r, http.MethodPost, "/api/resources/groups/4/reorder", token(t, "admin"), `{"orders":30}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req := up.last()
	require.NotNil(t, req)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/groups/4/reorder", req.URL.Path)
}

func TestExportRendersPDF(t *testing.T) {
	up := &upstream{body: `{"success":true,"data":[{"id":4,"title":"Eid","from":"2026-03-30T00:00:00Z","to":"2026-04-01T00:00:00Z"}],"meta":{"current_page":1,"last_page":1,"per_page":10,"total":1}}`}
	r := newTestRouter(t, up)

	w := do(r, http.MethodGet, "/api/resources/holidays/export.pdf", token(t, "admin"), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "HOLIDAYS_")
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestRoutesListsMountedEndpoints(t *testing.T) {
	r := newTestRouter(t, &upstream{})
	w := do(r, http.MethodGet, "/api/routes", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/live/:resource")
}

func TestMultipartCreateUploadsImageFirst(t *testing.T) {
	var (
		mu      sync.Mutex
		created map[string]any
		order   []string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/general/upload-image", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		order = append(order, "upload")
		mu.Unlock()
		assert.Equal(t, "services", r.FormValue("folder"))
		_, _ = fmt.Fprint(w, `{"success":true,"data":{"image_name":"svc_1.png","image_url":"https://cdn.example.com/svc_1.png"}}`)
	})
	mux.HandleFunc("/services", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, "create")
		_ = json.NewDecoder(r.Body).Decode(&created)
		_, _ = fmt.Fprint(w, `{"success":true,"data":{"id":9,"name":"Cut","icon":"svc_1.png"}}`)
	})
	r := newTestRouter(t, mux)

	var body strings.Builder
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("payload", `{"group_id":2,"name":"Cut","price":80,"duration":30}`))
	fw, err := mw.CreateFormFile("image", "cut.png")
	require.NoError(t, err)
	_, _ = io.WriteString(fw, "\x89PNG")
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/resources/services", strings.NewReader(body.String()))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: "authToken", Value: token(t, "admin")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"upload", "create"}, order)
	assert.Equal(t, "svc_1.png", created["icon"])
	assert.NotContains(t, created, "image_url")
	assert.Contains(t, w.Body.String(), `"image_url":"https://cdn.example.com/svc_1.png"`)
}

func TestWorkingHoursPartialFailureIsMultiStatus(t *testing.T) {
	up := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/working-hours/1") {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = fmt.Fprint(w, `{"success":false,"message":"day locked"}`)
			return
		}
		_, _ = fmt.Fprint(w, `{"success":true,"data":{}}`)
	})
	r := newTestRouter(t, up)

	payload := `{"days":[{"day":0,"opening":"09:00","closing":"18:00"},{"day":1,"opening":"09:00","closing":"18:00"},{"day":5,"closed":true}]}`
	w := do(r, http.MethodPost, "/api/salons/5/working-hours", token(t, "admin"), payload)
	require.Equal(t, http.StatusMultiStatus, w.Code, w.Body.String())

	var body struct {
		Data []struct {
			Day   int    `json:"day"`
			Saved bool   `json:"saved"`
			Error string `json:"error"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 3)
	for _, d := range body.Data {
		assert.Equal(t, d.Day != 1, d.Saved, "day %d", d.Day)
	}
}

func withSecret(env *intconfig.Env) { env.JWTSecret = "test-secret" }

func TestUnverifiedTokensAreRefused(t *testing.T) {
	up := &upstream{}
	r := newTestRouterWith(t, up, withSecret)
	claims := jwt.MapClaims{"role": "admin", "exp": time.Now().Add(time.Hour).Unix()}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	w := do(r, http.MethodGet, "/api/audit", none, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "authToken=;")

	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("someone-else"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/audit", other, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/resources/salons", "opaque-token", "").Code)
	assert.Nil(t, up.last())

	// A correctly signed token reaches the handler, which has no database here.
	w = do(r, http.MethodGet, "/api/audit", token(t, "admin"), "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "audit_disabled")
}

func TestAuditLogNeedsSecret(t *testing.T) {
	r := newTestRouter(t, &upstream{})
	w := do(r, http.MethodGet, "/api/audit", token(t, "admin"), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "verification_required")
}

func TestInvalidMultipartFormNeverUploads(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)
	r := newTestRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.URL.Path)
		mu.Unlock()
		_, _ = fmt.Fprint(w, `{"success":true,"data":{"image_name":"x.png","image_url":"https://cdn.example.com/x.png"}}`)
	}))

	var body strings.Builder
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("payload", `{"group_id":0,"name":"","duration":0}`))
	fw, err := mw.CreateFormFile("image", "cut.png")
	require.NoError(t, err)
	_, _ = io.WriteString(fw, "\x89PNG")
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/resources/services", strings.NewReader(body.String()))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: "authToken", Value: token(t, "admin")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, calls)
}

func TestWorkingHoursUnauthorizedForcesLogout(t *testing.T) {
	up := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/working-hours/1") {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = fmt.Fprint(w, `{"success":false,"message":"expired"}`)
			return
		}
		_, _ = fmt.Fprint(w, `{"success":true,"data":{}}`)
	})
	r := newTestRouter(t, up)

	payload := `{"days":[{"day":0,"opening":"09:00","closing":"18:00"},{"day":1,"opening":"09:00","closing":"18:00"}]}`
	w := do(r, http.MethodPost, "/api/salons/5/working-hours", token(t, "admin"), payload)
	require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Set-Cookie"), "authToken=;")

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["logout"])
}
