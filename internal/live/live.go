// Package live serves interactive list screens over a websocket. The browser
// sends commands (search keystrokes, page changes, drops) and receives a view
// after every state change of the server-side list controller.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"backoffice/internal/domain"
	"backoffice/internal/listing"
	"backoffice/internal/reorder"
	"backoffice/internal/resources"
	"backoffice/internal/utils"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 8 << 10
	outboxSize = 64
)

// Command is one message from the browser.
type Command struct {
	Type     string            `json:"type"`
	Text     string            `json:"text,omitempty"`
	Page     int               `json:"page,omitempty"`
	Limit    int               `json:"limit,omitempty"`
	SortBy   string            `json:"sort_by,omitempty"`
	Order    domain.SortOrder  `json:"sort_order,omitempty"`
	Key      string            `json:"key,omitempty"`
	Value    string            `json:"value,omitempty"`
	Filters  map[string]string `json:"filters,omitempty"`
	Index    int               `json:"index,omitempty"`
	OldIndex int               `json:"old_index,omitempty"`
	NewIndex int               `json:"new_index,omitempty"`
}

const (
	CmdSearch    = "search"
	CmdSubmit    = "submit"
	CmdPage      = "page"
	CmdPageSize  = "page_size"
	CmdSort      = "sort"
	CmdFilter    = "filter"
	CmdReload    = "reload"
	CmdDragStart = "drag_start"
	CmdMove      = "move"
)

// Event is one message to the browser.
type Event struct {
	Type  string          `json:"type"`
	View  *resources.View `json:"view,omitempty"`
	Drop  *reorder.Drop   `json:"drop,omitempty"`
	Index *int            `json:"index,omitempty"`
	Error string          `json:"error,omitempty"`
}

const (
	EvView         = "view"
	EvDragFeedback = "drag_feedback"
	EvMoved        = "moved"
	EvError        = "error"
	EvLogout       = "logout"
)

// Auditor records accepted and failed drops.
type Auditor interface {
	Record(ctx context.Context, resource, action string, targetID int64, err error)
}

// Options configures a Server.
type Options struct {
	Debounce    time.Duration
	Timeout     time.Duration
	CheckOrigin func(r *http.Request) bool
	Logger      *logrus.Entry
}

// Server upgrades requests and runs one list controller per connection.
type Server struct {
	upgrader websocket.Upgrader
	opts     Options
}

func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logrus.NewEntry(utils.Logger())
	}
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     opts.CheckOrigin,
		},
		opts: opts,
	}
}

// Binding is what one connection is attached to.
type Binding struct {
	Resource resources.Resource
	Open     func(resources.LiveOptions) resources.Live
	Query    domain.ListQuery
	Audit    Auditor
	// LoggedOut is closed when the session behind the connection ends.
	LoggedOut <-chan struct{}
}

// Serve upgrades the request and blocks until the connection closes.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, b Binding) error {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	sess := &session{
		conn:   conn,
		out:    make(chan Event, outboxSize),
		done:   make(chan struct{}),
		log:    s.opts.Logger.WithField("resource", b.Resource.Spec().Name),
		audit:  b.Audit,
		name:   b.Resource.Spec().Name,
		query:  b.Resource.Spec().Query,
		logout: b.LoggedOut,
	}
	sess.list = b.Open(resources.LiveOptions{
		Query:       b.Query,
		Debounce:    s.opts.Debounce,
		Timeout:     s.opts.Timeout,
		OnChange:    sess.publish,
		OnDragStart: sess.dragFeedback,
	})
	return sess.run(r.Context())
}

type session struct {
	conn   *websocket.Conn
	list   resources.Live
	out    chan Event
	done   chan struct{}
	once   sync.Once
	log    *logrus.Entry
	audit  Auditor
	name   string
	query  listing.QuerySpec
	logout <-chan struct{}
}

func (s *session) run(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop()
	}()

	s.list.Start(ctx)
	err := s.readLoop(ctx)

	s.list.Close()
	s.list.Wait()
	s.stop()
	<-writerDone
	_ = s.conn.Close()

	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return nil
	}
	return err
}

func (s *session) stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *session) send(ev Event) {
	select {
	case s.out <- ev:
	case <-s.done:
	}
}

func (s *session) publish(v resources.View) {
	s.send(Event{Type: EvView, View: &v})
}

func (s *session) dragFeedback(index int) {
	s.send(Event{Type: EvDragFeedback, Index: &index})
}

func (s *session) readLoop(ctx context.Context) error {
	s.conn.SetReadLimit(maxMessage)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	if s.logout != nil {
		go func() {
			select {
			case <-s.logout:
				s.send(Event{Type: EvLogout, Error: domain.FallbackMessage(http.StatusUnauthorized)})
				_ = s.conn.SetReadDeadline(time.Now())
			case <-s.done:
			}
		}()
	}

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return err
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.send(Event{Type: EvError, Error: "malformed command"})
			continue
		}
		s.dispatch(ctx, cmd)
	}
}

func (s *session) dispatch(ctx context.Context, cmd Command) {
	switch cmd.Type {
	case CmdSearch:
		s.list.SetSearch(cmd.Text)
	case CmdSubmit:
		s.list.SetSearch(cmd.Text)
		s.list.FlushSearch()
	case CmdPage:
		s.list.SetPage(cmd.Page)
	case CmdPageSize:
		if s.query.MaxPerPage > 0 && cmd.Limit > s.query.MaxPerPage {
			cmd.Limit = s.query.MaxPerPage
		}
		s.list.SetPageSize(cmd.Limit)
	case CmdSort:
		if !slices.Contains(s.query.SortFields, cmd.SortBy) {
			s.send(Event{Type: EvError, Error: "cannot sort by " + cmd.SortBy})
			return
		}
		if cmd.Order != domain.SortAsc && cmd.Order != domain.SortDesc {
			cmd.Order = ""
		}
		s.list.SetSort(cmd.SortBy, cmd.Order)
	case CmdFilter:
		filters := cmd.Filters
		if filters == nil {
			filters = map[string]string{cmd.Key: cmd.Value}
		}
		for k, v := range filters {
			if !slices.Contains(s.query.Filters, k) {
				s.send(Event{Type: EvError, Error: "cannot filter by " + k})
				continue
			}
			s.list.SetFilter(k, v)
		}
	case CmdReload:
		s.list.Reload()
	case CmdDragStart:
		s.list.BeginDrag(cmd.Index)
	case CmdMove:
		s.move(ctx, cmd.OldIndex, cmd.NewIndex)
	default:
		s.send(Event{Type: EvError, Error: "unknown command " + cmd.Type})
	}
}

func (s *session) move(ctx context.Context, oldIndex, newIndex int) {
	drop, err := s.list.Move(ctx, oldIndex, newIndex)
	switch {
	case errors.Is(err, reorder.ErrNoMove):
		return
	case errors.Is(err, reorder.ErrOutOfRange), errors.Is(err, reorder.ErrNotLoaded), errors.Is(err, resources.ErrNotReorderable):
		s.send(Event{Type: EvError, Error: err.Error()})
		return
	}
	if s.audit != nil {
		s.audit.Record(ctx, s.name, "reorder", drop.ID, err)
	}
	if err != nil {
		s.log.WithError(err).WithField("id", drop.ID).Warn("drop rejected by server")
		s.send(Event{Type: EvError, Drop: &drop, Error: userMessage(err)})
		return
	}
	s.send(Event{Type: EvMoved, Drop: &drop})
}

func (s *session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case ev := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(ev); err != nil {
				s.log.WithError(err).Debug("live write failed")
				s.stop()
				_ = s.conn.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.stop()
				_ = s.conn.Close()
				return
			}
		case <-s.done:
			s.drain()
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}

// drain flushes events that were queued before the session stopped.
func (s *session) drain() {
	for {
		select {
		case ev := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(ev); err != nil {
				return
			}
		default:
			return
		}
	}
}

func userMessage(err error) string {
	if apiErr, ok := domain.AsAPIError(err); ok {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return domain.FallbackMessage(apiErr.Status)
	}
	return err.Error()
}
