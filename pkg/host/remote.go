package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/justyntemme/ladderfilter/pkg/framework/debug"
	"github.com/justyntemme/ladderfilter/pkg/framework/param"
	"github.com/justyntemme/ladderfilter/pkg/framework/state"
	"github.com/justyntemme/ladderfilter/pkg/plugin"
)

// maxStateBody bounds PUT /state bodies.
const maxStateBody = 64 << 10

// ParamValue is the JSON form of one parameter.
type ParamValue struct {
	Key        string  `json:"key"`
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Normalized float64 `json:"normalized"`
	Position   float64 `json:"position"`
	Text       string  `json:"text"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Discrete   bool    `json:"discrete"`
}

// paramUpdate is a PUT /params/{key} body. Exactly one field is set.
type paramUpdate struct {
	Value      *float64 `json:"value"`
	Normalized *float64 `json:"normalized"`
	Position   *float64 `json:"position"`
	Text       *string  `json:"text"`
}

func (u paramUpdate) fields() int {
	n := 0
	for _, set := range []bool{u.Value != nil, u.Normalized != nil, u.Position != nil, u.Text != nil} {
		if set {
			n++
		}
	}
	return n
}

// StatsFunc returns the current host statistics.
type StatsFunc func() Stats

// Remote is the HTTP control API of a running host.
//
//	GET    /params        all parameters
//	DELETE /params        reset every parameter to its default
//	GET    /params/{key}  one parameter
//	PUT    /params/{key}  {"value": x}, {"normalized": x}, {"position": x} or {"text": s}
//	GET    /state         the state document
//	PUT    /state         restore a state document
//	GET    /stats         processing and buffer health
//
// Values are clamped to the parameter range. A position is a control's
// travel in [0, 1] and follows the parameter's skew.
type Remote struct {
	router *chi.Mux
	inst   *plugin.Instance
	params *param.Registry
	state  *state.Manager
	stats  StatsFunc
	log    *debug.Logger
}

// NewRemote creates the API over an instance and its state schema. stats
// may be nil.
func NewRemote(inst *plugin.Instance, sm *state.Manager, stats StatsFunc) *Remote {
	s := &Remote{
		router: chi.NewRouter(),
		inst:   inst,
		params: inst.Processor().GetParameters(),
		state:  sm,
		stats:  stats,
		log:    debug.Default().Named("remote"),
	}
	s.setupRoutes()
	return s
}

func (s *Remote) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Route("/params", func(r chi.Router) {
		r.Get("/", s.handleParams)
		r.Delete("/", s.handleResetParams)
		r.Get("/{key}", s.handleParam)
		r.Put("/{key}", s.handleSetParam)
	})
	r.Get("/state", s.handleState)
	r.Put("/state", s.handleSetState)
	r.Get("/stats", s.handleStats)
}

// ServeHTTP implements http.Handler.
func (s *Remote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Remote) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("remote API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("remote: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("remote API shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("remote shutdown: %w", err)
	}
	return nil
}

func (s *Remote) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Remote) handleParams(w http.ResponseWriter, r *http.Request) {
	all := s.params.All()
	out := make([]ParamValue, len(all))
	for i, p := range all {
		out[i] = s.paramValue(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Remote) handleResetParams(w http.ResponseWriter, r *http.Request) {
	s.params.ResetAll()
	s.log.Info("parameters reset")
	s.handleParams(w, r)
}

func (s *Remote) handleParam(w http.ResponseWriter, r *http.Request) {
	p := s.params.GetByKey(chi.URLParam(r, "key"))
	if p == nil {
		http.Error(w, "unknown parameter", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.paramValue(p))
}

func (s *Remote) handleSetParam(w http.ResponseWriter, r *http.Request) {
	p := s.params.GetByKey(chi.URLParam(r, "key"))
	if p == nil {
		http.Error(w, "unknown parameter", http.StatusNotFound)
		return
	}

	var body paramUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.fields() != 1 {
		http.Error(w, `expected one of {"value"|"normalized"|"position": number} or {"text": string}`, http.StatusBadRequest)
		return
	}

	switch {
	case body.Value != nil:
		p.Set(*body.Value)
	case body.Normalized != nil:
		s.inst.SetParamNormalized(p.ID, *body.Normalized)
	case body.Position != nil:
		p.Set(p.FromProportion(*body.Position))
	case body.Text != nil:
		normalized, err := s.inst.GetParamValueByString(p.ID, *body.Text)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p.Set(s.inst.NormalizedParamToPlain(p.ID, normalized))
	}
	s.log.Debug("set %s = %g", p.Key, p.Get())
	writeJSON(w, http.StatusOK, s.paramValue(p))
}

func (s *Remote) handleState(w http.ResponseWriter, r *http.Request) {
	doc, err := s.state.Serialize()
	if err != nil {
		s.log.Error("serialize state: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func (s *Remote) handleSetState(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxStateBody))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	if err := s.state.Restore(body); err != nil {
		s.log.Warn("state restore rejected: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.log.Info("state restored")
	s.handleParams(w, r)
}

func (s *Remote) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		http.Error(w, "no statistics", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.stats())
}

func (s *Remote) paramValue(p *param.Parameter) ParamValue {
	v := p.Get()
	text, _ := s.inst.GetParamStringByValue(p.ID, s.inst.PlainParamToNormalized(p.ID, v))
	return ParamValue{
		Key:        p.Key,
		Name:       p.Name,
		Value:      v,
		Normalized: s.inst.GetParamNormalized(p.ID),
		Position:   p.ToProportion(v),
		Text:       text,
		Min:        p.Min,
		Max:        p.Max,
		Discrete:   p.IsDiscrete(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
