package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Simplici0/primaauto/internal/obs"
	"github.com/Simplici0/primaauto/internal/premium"
	"github.com/Simplici0/primaauto/internal/render"
	"github.com/Simplici0/primaauto/web"
)

const (
	channelWeb  = "web"
	channelText = "text"
	channelAPI  = "api"
)

type server struct {
	rates   premium.Config
	logger  zerolog.Logger
	metrics *obs.Metrics
}

type baseViewData struct {
	ErrorMessage string
}

type quoteFormView struct {
	DeductibleDM int
	DeductibleRT int
	SumRC        string
	SumGM        string
}

type quoteViewData struct {
	baseViewData
	DeductiblesDM []int
	DeductiblesRT []int
	MinRC         string
	MinGM         string
	StepRC        string
	StepGM        string
	Form          quoteFormView
	Lines         []render.Line
	Total         *render.Line
}

type apiQuoteResponse struct {
	Breakdown premium.Breakdown `json:"desglose"`
	Lines     []render.Line     `json:"lineas"`
	Total     render.Line       `json:"total"`
}

// maxAPIBodyBytes caps the JSON quote request; a valid one is well under 1 KiB.
const maxAPIBodyBytes = 64 << 10

type apiError struct {
	Error string `json:"error"`
}

func newServer(rates premium.Config, logger zerolog.Logger, metrics *obs.Metrics) *server {
	return &server{rates: rates, logger: logger, metrics: metrics}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(obs.RequestLogger{Logger: s.logger, Metrics: s.metrics}.Middleware)

	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		panic(fmt.Sprintf("static assets: %v", err))
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.Get("/", s.handleQuoteForm)
	r.Post("/quote", s.handleQuoteSubmit)
	r.Get("/quote.txt", s.handleQuoteText)
	r.Post("/api/quotes", s.handleAPIQuote)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	return r
}

func (s *server) handleQuoteForm(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, http.StatusOK, "quote.html", s.newQuoteView(quoteFormView{
		DeductibleDM: s.defaultDeductible(premium.MaterialDamage),
		DeductibleRT: s.defaultDeductible(premium.TotalTheft),
		SumRC:        s.rates.BaseSumRC.String(),
		SumGM:        s.rates.BaseSumGM.String(),
	}))
}

func (s *server) handleQuoteSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	view := s.newQuoteView(echoForm(r))
	in, err := parseQuoteFormValues(r, s.rates)
	if err != nil {
		s.metrics.ObserveQuote(channelWeb, obs.ResultInvalidInput, 0)
		view.ErrorMessage = err.Error()
		s.renderTemplate(w, http.StatusBadRequest, "quote.html", view)
		return
	}

	breakdown, err := s.calculate(channelWeb, in)
	if err != nil {
		view.ErrorMessage = deductibleMessage(err)
		s.renderTemplate(w, http.StatusBadRequest, "quote.html", view)
		return
	}

	total := render.Total(breakdown)
	view.Lines = render.Lines(breakdown)
	view.Total = &total
	s.renderTemplate(w, http.StatusOK, "quote.html", view)
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	in, err := parseQuoteFormValues(r, s.rates)
	if err != nil {
		s.metrics.ObserveQuote(channelText, obs.ResultInvalidInput, 0)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	breakdown, err := s.calculate(channelText, in)
	if err != nil {
		http.Error(w, deductibleMessage(err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := render.WriteText(w, breakdown); err != nil {
		s.logger.Error().Err(err).Msg("write text quote")
	}
}

func (s *server) handleAPIQuote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAPIBodyBytes)

	var req apiQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.ObserveQuote(channelAPI, obs.ResultInvalidInput, 0)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, apiError{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid json body"})
		return
	}

	in, err := parseAPIQuoteRequest(req, s.rates)
	if err != nil {
		s.metrics.ObserveQuote(channelAPI, obs.ResultInvalidInput, 0)
		writeJSON(w, http.StatusUnprocessableEntity, apiError{Error: err.Error()})
		return
	}

	breakdown, err := s.calculate(channelAPI, in)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, apiError{Error: deductibleMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, apiQuoteResponse{
		Breakdown: breakdown,
		Lines:     render.Lines(breakdown),
		Total:     render.Total(breakdown),
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// calculate runs the premium calculator and records the outcome. Only
// ErrInvalidDeductible is expected back from it.
func (s *server) calculate(channel string, in premium.Input) (premium.Breakdown, error) {
	breakdown, err := premium.Calculate(s.rates, in)
	if err != nil {
		result := obs.ResultInvalidInput
		if errors.Is(err, premium.ErrInvalidDeductible) {
			result = obs.ResultInvalidDeductible
		}
		s.metrics.ObserveQuote(channel, result, 0)
		s.logger.Warn().
			Err(err).
			Str("channel", channel).
			Int("ded_dm", in.DeductibleDM).
			Int("ded_rt", in.DeductibleRT).
			Msg("quote rejected")
		return premium.Breakdown{}, err
	}

	s.metrics.ObserveQuote(channel, obs.ResultOK, breakdown.Total.InexactFloat64())
	s.logger.Debug().
		Str("channel", channel).
		Str("total", breakdown.Total.StringFixed(2)).
		Msg("quote calculated")
	return breakdown, nil
}

func (s *server) newQuoteView(form quoteFormView) quoteViewData {
	return quoteViewData{
		DeductiblesDM: s.rates.Surcharges[premium.MaterialDamage].Keys(),
		DeductiblesRT: s.rates.Surcharges[premium.TotalTheft].Keys(),
		MinRC:         s.rates.BaseSumRC.String(),
		MinGM:         s.rates.BaseSumGM.String(),
		StepRC:        s.rates.IncrementRC.String(),
		StepGM:        s.rates.IncrementGM.String(),
		Form:          form,
	}
}

// defaultDeductible preselects the tier without surcharge, or the first key.
func (s *server) defaultDeductible(c premium.Coverage) int {
	table := s.rates.Surcharges[c]
	keys := table.Keys()
	for _, k := range keys {
		if table[k].IsZero() {
			return k
		}
	}
	if len(keys) == 0 {
		return 0
	}
	return keys[0]
}

func echoForm(r *http.Request) quoteFormView {
	view := quoteFormView{
		SumRC: strings.TrimSpace(r.FormValue("sa_rc")),
		SumGM: strings.TrimSpace(r.FormValue("sa_gm")),
	}
	view.DeductibleDM, _ = strconv.Atoi(strings.TrimSpace(r.FormValue("ded_dm")))
	view.DeductibleRT, _ = strconv.Atoi(strings.TrimSpace(r.FormValue("ded_rt")))
	return view
}

func deductibleMessage(err error) string {
	var dErr *premium.DeductibleError
	if errors.As(err, &dErr) {
		return fmt.Sprintf("Deducible no válido para %s: %d%%", dErr.Coverage.Label(), dErr.Percent)
	}
	return err.Error()
}

func (s *server) renderTemplate(w http.ResponseWriter, status int, page string, data any) {
	templates, err := template.ParseFS(web.FS,
		"templates/layout.html",
		"templates/"+page,
	)
	if err != nil {
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.logger.Error().Err(err).Str("page", page).Msg("render template")
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
