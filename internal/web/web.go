package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/handlers"

	"medcal/internal/calendar"
	"medcal/internal/config"
	"medcal/internal/ics"
	appLog "medcal/internal/log"
	"medcal/internal/view"
)

// Server serves the calendar screen: a JSON view API backed by one session
// state, a server-rendered HTML page, the iCalendar feed and metrics.
type Server struct {
	cfg      *config.Config
	mux      *http.ServeMux
	cal      calendar.Calendar
	events   calendar.EventSource
	renderer view.Renderer
	now      func() time.Time
	metrics  *metrics
	page     *template.Template

	// The session state has one writer at a time; each response renders the
	// state produced by its own action.
	stateMu sync.Mutex
	state   view.State
}

//go:embed templates/*.html
var templatesFS embed.FS

var errBadDate = errors.New("invalid date")

// Option customizes a Server.
type Option func(*Server)

// WithClock replaces time.Now, e.g. to pin "today" in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer constructs a Server over events. The session opens on today.
func NewServer(cfg *config.Config, events calendar.EventSource, opts ...Option) *Server {
	cal := calendar.New(cfg.Location(), cfg.FirstWeekday())
	s := &Server{
		cfg:    cfg,
		mux:    http.NewServeMux(),
		cal:    cal,
		events: events,
		renderer: view.Renderer{
			Calendar: cal,
			Events:   events,
			Locale:   view.LookupLocale(cfg.Locale),
		},
		now:     time.Now,
		metrics: newMetrics(),
		page:    template.Must(template.ParseFS(templatesFS, "templates/*.html")),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = view.NewState(cal, s.now())
	s.registerRoutes()
	return s
}

// Handler returns the full middleware stack around the routes.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		h = s.basicAuthMiddleware(h)
	}
	h = s.metrics.middleware(s.knownPath, h)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(h)
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(s.cfg.LogLevel == "debug"))(h)
}

// Start serves on cfg.Listen until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

var routes = []string{
	"/health",
	"/api/view",
	"/api/view/next",
	"/api/view/prev",
	"/api/view/select",
	"/api/view/today",
	"/api/events",
	"/api/grid",
	"/calendar",
	"/calendar.ics",
	"/preview.png",
	"/metrics",
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/view", s.handleView)
	s.mux.HandleFunc("POST /api/view/next", s.actionHandler(func(*http.Request) (view.Action, error) {
		return view.NextMonth{}, nil
	}))
	s.mux.HandleFunc("POST /api/view/prev", s.actionHandler(func(*http.Request) (view.Action, error) {
		return view.PrevMonth{}, nil
	}))
	s.mux.HandleFunc("POST /api/view/select", s.actionHandler(func(r *http.Request) (view.Action, error) {
		date, err := s.parseDate(r.URL.Query().Get("date"))
		if err != nil {
			return nil, err
		}
		return view.SelectDate{Date: date}, nil
	}))
	s.mux.HandleFunc("POST /api/view/today", s.actionHandler(func(*http.Request) (view.Action, error) {
		return view.Today{Now: s.now()}, nil
	}))
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /api/grid", s.handleGrid)
	s.mux.HandleFunc("GET /calendar", s.handleCalendarPage)
	s.mux.HandleFunc("GET /calendar.ics", s.handleICS)
	s.mux.HandleFunc("GET /preview.png", s.handlePreview)
	if s.cfg.Metrics {
		s.mux.Handle("GET /metrics", s.metrics.handler())
	}
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/calendar", http.StatusFound)
	})
}

func (s *Server) knownPath(p string) bool {
	for _, r := range routes {
		if r == p {
			return true
		}
	}
	return p == "/"
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="MedCal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Apply runs action against the session state and returns the new view.
func (s *Server) Apply(a view.Action) view.View {
	now := s.now()

	s.stateMu.Lock()
	s.state = view.Reduce(s.cal, s.state, a)
	st := s.state
	s.stateMu.Unlock()

	s.metrics.actions.WithLabelValues(view.ActionName(a)).Inc()
	appLog.Debug("view action applied",
		"action", view.ActionName(a),
		"month", st.CurrentMonth.Format("2006-01"),
		"selected", st.SelectedDate.Format(time.DateOnly),
	)
	return s.renderer.Render(st, now)
}

// Rollover sends the session back to today. It runs as the midnight job.
func (s *Server) Rollover(_ context.Context) error {
	v := s.Apply(view.Today{Now: s.now()})
	appLog.Info("day rollover", "month", v.Month, "selected", v.Day.Date)
	return nil
}

// State returns a copy of the session state.
func (s *Server) State() view.State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

func (s *Server) actionHandler(parse func(*http.Request) (view.Action, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := parse(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		v := s.Apply(a)
		// Form posts from the HTML page go back to the page.
		if strings.Contains(r.Header.Get("Accept"), "text/html") {
			http.Redirect(w, r, "/calendar", http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// handleView renders the session state, or a stateless view when month
// and/or date are given:
//
// GET /api/view?month=2025-01&date=2025-01-20
//   - month: shown month (default: the date's month, else the session's)
//   - date:  selected day, reconciled into the month
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	st := s.State()

	if q.Get("month") == "" && q.Get("date") == "" {
		writeJSON(w, http.StatusOK, s.renderer.Render(st, s.now()))
		return
	}

	if d := q.Get("date"); d != "" {
		date, err := s.parseDate(d)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		st = view.Reduce(s.cal, st, view.SelectDate{Date: date})
	}
	if m := q.Get("month"); m != "" {
		month, err := view.ParseMonth(s.cal, m)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid month, want YYYY-MM")
			return
		}
		st.CurrentMonth = month
		st = view.Reconcile(s.cal, st)
	}

	writeJSON(w, http.StatusOK, s.renderer.Render(st, s.now()))
}

// eventDTO is a JSON-friendly view of a medication event.
type eventDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Dosage      string    `json:"dosage"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Notes       *string   `json:"notes,omitempty"`
}

type eventsResponse struct {
	Date      string     `json:"date"`
	HasEvents bool       `json:"has_events"`
	Events    []eventDTO `json:"events"`
}

// handleEvents answers the day query.
//
// GET /api/events?date=2025-01-15 (default: today)
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	date := s.cal.StartOfDay(s.now())
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := s.parseDate(d)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		date = parsed
	}

	events := s.cal.EventsOn(s.events, date)
	resp := eventsResponse{
		Date:      date.Format(time.DateOnly),
		HasEvents: s.cal.HasEventsOn(s.events, date),
		Events:    make([]eventDTO, 0, len(events)),
	}
	for _, e := range events {
		resp.Events = append(resp.Events, eventDTO{
			ID:          e.ID.String(),
			Name:        e.Name,
			Dosage:      e.Dosage,
			ScheduledAt: e.ScheduledDate.In(s.cal.Loc()),
			Notes:       e.Notes,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type gridCellDTO struct {
	Day  int     `json:"day"`
	Date *string `json:"date"`
}

type gridResponse struct {
	Month        string        `json:"month"`
	FirstWeekday string        `json:"first_weekday"`
	Offset       int           `json:"offset"`
	DaysInMonth  int           `json:"days_in_month"`
	Cells        []gridCellDTO `json:"cells"`
}

// handleGrid returns the raw month layout; padding cells have a null date.
//
// GET /api/grid?month=2025-01 (default: the session's month)
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	month := s.State().CurrentMonth
	if m := r.URL.Query().Get("month"); m != "" {
		parsed, err := view.ParseMonth(s.cal, m)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid month, want YYYY-MM")
			return
		}
		month = parsed
	}

	cells := s.cal.BuildMonthGrid(month)
	resp := gridResponse{
		Month:        s.cal.StartOfMonth(month).Format("2006-01"),
		FirstWeekday: s.cal.FirstWeekday.String(),
		Offset:       s.cal.LeadingOffset(month),
		DaysInMonth:  s.cal.DaysInMonth(month),
		Cells:        make([]gridCellDTO, 0, len(cells)),
	}
	for _, c := range cells {
		dto := gridCellDTO{Day: c.Day}
		if !c.IsPadding() {
			d := c.Date.Format(time.DateOnly)
			dto.Date = &d
		}
		resp.Cells = append(resp.Cells, dto)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCalendarPage renders the session view as HTML. The snapshot job
// waits for its data-ready marker.
func (s *Server) handleCalendarPage(w http.ResponseWriter, _ *http.Request) {
	v := s.renderer.Render(s.State(), s.now())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.ExecuteTemplate(w, "calendar.html", v); err != nil {
		appLog.Error("calendar page render failed", err)
	}
}

func (s *Server) handleICS(w http.ResponseWriter, _ *http.Request) {
	body, err := ics.Encode(s.events.All(), ics.ExportOptions{
		Name:     s.renderer.Locale.Title,
		Location: s.cal.Loc(),
		Stamp:    s.now(),
	})
	if err != nil {
		appLog.Error("ics export failed", err)
		writeError(w, http.StatusInternalServerError, "failed to export calendar")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="medcal.ics"`)
	_, _ = w.Write([]byte(body))
}

// handlePreview serves the last snapshot written by the capture job.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.cfg.Snapshot.Output)
}

func (s *Server) parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("date is required, want YYYY-MM-DD")
	}
	t, err := view.ParseDate(s.cal, v)
	if err != nil {
		return time.Time{}, errBadDate
	}
	return t, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
