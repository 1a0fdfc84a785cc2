package handlers

import (
	"net/http"
	"sync"

	"backoffice/internal/apiclient"
	intconfig "backoffice/internal/config"
	"backoffice/internal/http/middleware"
	"backoffice/internal/repositories"
	"backoffice/internal/resources"
	"backoffice/internal/services"
	"backoffice/internal/utils"

	"github.com/gin-gonic/gin"
)

// Deps is what the handlers need from the process.
type Deps struct {
	Env        intconfig.Env
	Registry   *resources.Registry
	Audit      repositories.AuditRepository
	HTTPClient *http.Client
}

var (
	depsMu sync.RWMutex
	deps   Deps
)

// Configure installs the handler dependencies. It is called once by the router.
func Configure(d Deps) {
	depsMu.Lock()
	defer depsMu.Unlock()
	if d.Registry == nil {
		d.Registry = resources.Default(d.Env.DefaultPageSize, d.Env.MaxPageSize, d.Env.ExportCurrency)
	}
	deps = d
}

func current() Deps {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return deps
}

// clientFor builds the remote API client of one request, bound to its session.
func clientFor(c *gin.Context) (*apiclient.Client, error) {
	d := current()
	reqID := middleware.GetRequestID(c)
	opts := []apiclient.Option{
		apiclient.WithRequestIDHeader(d.Env.RequestIDHeader),
		apiclient.WithRequestID(reqID),
		apiclient.WithLogger(utils.Logger().WithField("request_id", reqID)),
	}
	if d.HTTPClient != nil {
		opts = append(opts, apiclient.WithHTTPClient(d.HTTPClient))
	}
	if d.Env.APITimeout > 0 {
		opts = append(opts, apiclient.WithTimeout(d.Env.APITimeout))
	}
	return apiclient.New(d.Env.APIBaseURL, middleware.GetSession(c), opts...)
}

func auditFor(c *gin.Context) services.AuditService {
	a := services.AuditService{Repo: current().Audit, RequestID: middleware.GetRequestID(c)}
	if sess := middleware.GetSession(c); sess != nil {
		a.Actor = sess.Fingerprint()
		if sess.Verified() {
			a.Role = sess.Role()
		}
	}
	return a
}

func resourceService(c *gin.Context) (services.ResourceService, bool) {
	client, err := clientFor(c)
	if err != nil {
		RespondDomainError(c, err)
		return services.ResourceService{}, false
	}
	return services.ResourceService{
		Registry:  current().Registry,
		Client:    client,
		Audit:     auditFor(c),
		RequestID: middleware.GetRequestID(c),
	}, true
}
