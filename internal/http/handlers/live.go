package handlers

import (
	"net/http"
	"strings"
	"sync"

	"backoffice/internal/http/middleware"
	"backoffice/internal/listing"
	"backoffice/internal/live"
	"backoffice/internal/resources"
	"backoffice/internal/utils"

	"github.com/gin-gonic/gin"
)

var (
	liveOnce   sync.Once
	liveServer *live.Server
)

func liveServerFor() *live.Server {
	liveOnce.Do(func() {
		env := current().Env
		liveServer = live.NewServer(live.Options{
			Debounce:    env.SearchDebounce,
			Timeout:     env.APITimeout,
			CheckOrigin: originChecker(env.AllowedOrigins()),
			Logger:      utils.Logger().WithField("module", "live"),
		})
	})
	return liveServer
}

// originChecker admits same-origin upgrades and the configured CORS origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[strings.TrimRight(origin, "/")]; ok {
			return true
		}
		return strings.EqualFold(strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://"), r.Host)
	}
}

// LiveResource upgrades to a websocket that drives one list screen: search
// keystrokes are debounced server-side and every state change is pushed back.
// The initial query comes from the URL like GetResourcePage.
func LiveResource(c *gin.Context) {
	res, ok := lookup(c)
	if !ok {
		return
	}
	client, err := clientFor(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	loggedOut := make(chan struct{})
	var closeOnce sync.Once
	if sess := middleware.GetSession(c); sess != nil {
		sess.OnLogout(func() { closeOnce.Do(func() { close(loggedOut) }) })
	}

	binding := live.Binding{
		Resource: res,
		Open: func(opts resources.LiveOptions) resources.Live {
			return res.Open(client, opts)
		},
		Query:     listing.ParseQuery(c.Request.URL.Query(), res.Spec().Query),
		Audit:     auditFor(c),
		LoggedOut: loggedOut,
	}
	reqID := middleware.GetRequestID(c)
	if err := liveServerFor().Serve(c.Writer, c.Request, binding); err != nil {
		utils.Logger().WithError(err).WithField("request_id", reqID).Debug("live session ended")
	}
}
