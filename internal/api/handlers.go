package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/bantay/internal/analytics"
	"github.com/starford/bantay/internal/apperr"
	"github.com/starford/bantay/internal/dashboard"
	"github.com/starford/bantay/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *dashboard.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *dashboard.Service) *Handler {
	return &Handler{svc: svc}
}

func kindParam(r *http.Request) models.Kind {
	k := strings.ToLower(chi.URLParam(r, "kind"))
	// Plural path segments read better: /api/requests/overview.
	k = strings.TrimSuffix(k, "s")
	return models.Kind(k)
}

func dimensionParam(r *http.Request) analytics.Dimension {
	return analytics.Dimension(strings.ToLower(chi.URLParam(r, "dimension")))
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrUnknownKind), errors.Is(err, apperr.ErrUnknownDimension):
		writeJSON(w, http.StatusNotFound, domainErrorBody(err))
	case errors.Is(err, apperr.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, domainErrorBody(err))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// criteriaOrBadRequest parses filter parameters, writing a 400 on failure.
func criteriaOrBadRequest(w http.ResponseWriter, r *http.Request) (analytics.Criteria, bool) {
	c, err := ParseCriteria(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return c, false
	}
	return c, true
}

// Overview handles GET /api/{kind}/overview.
//
//	@Summary		Headline counts and breakdowns for one record kind
//	@Tags			analytics
//	@Produce		json
//	@Param			kind	path		string	true	"Record kind"	Enums(requests, cases)
//	@Param			window	query		string	false	"Time window"	Enums(today, this_week, this_month, this_year, custom)
//	@Success		200		{object}	OverviewResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/{kind}/overview [get]
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	c, ok := criteriaOrBadRequest(w, r)
	if !ok {
		return
	}
	out, err := h.svc.Overview(r.Context(), kindParam(r), c)
	if err != nil {
		writeError(w, "overview", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Breakdown handles GET /api/{kind}/breakdown/{dimension}.
//
//	@Summary		Count filtered records by one dimension
//	@Tags			analytics
//	@Produce		json
//	@Param			kind		path		string	true	"Record kind"
//	@Param			dimension	path		string	true	"Dimension"	Enums(status, category, zone, gender, employment, weekday, month, year, age, subject)
//	@Success		200			{object}	BreakdownResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/{kind}/breakdown/{dimension} [get]
func (h *Handler) Breakdown(w http.ResponseWriter, r *http.Request) {
	c, ok := criteriaOrBadRequest(w, r)
	if !ok {
		return
	}
	out, err := h.svc.Breakdown(r.Context(), kindParam(r), dimensionParam(r), c)
	if err != nil {
		writeError(w, "breakdown", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Top handles GET /api/{kind}/top/{dimension}.
//
//	@Summary		Rank labels of a dimension by count
//	@Description	Ties keep first-encountered order. Without within_days the configured ranking window applies (0 ranks the whole filtered set).
//	@Tags			analytics
//	@Produce		json
//	@Param			kind		path		string	true	"Record kind"
//	@Param			dimension	path		string	true	"Dimension"
//	@Param			n			query		int		false	"Number of entries"
//	@Param			within_days	query		int		false	"Only rank records from the last N days"
//	@Success		200			{object}	RankingResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/{kind}/top/{dimension} [get]
func (h *Handler) Top(w http.ResponseWriter, r *http.Request) {
	c, ok := criteriaOrBadRequest(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	n, err := intParam(q, "n", 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	within, err := intParam(q, "within_days", -1)
	if err != nil || (q.Get("within_days") != "" && within < 0) {
		writeJSON(w, http.StatusBadRequest, errorBody("within_days must be a non-negative number"))
		return
	}
	out, err := h.svc.Top(r.Context(), kindParam(r), dimensionParam(r), n, within, c)
	if err != nil {
		writeError(w, "top", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Compare handles GET /api/{kind}/compare/{dimension}.
//
//	@Summary		This year vs last year per label
//	@Tags			analytics
//	@Produce		json
//	@Param			kind		path		string	true	"Record kind"
//	@Param			dimension	path		string	true	"Dimension"
//	@Param			value		query		string	false	"Single label to compare; all labels when omitted"
//	@Success		200			{object}	CompareResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/{kind}/compare/{dimension} [get]
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	c, ok := criteriaOrBadRequest(w, r)
	if !ok {
		return
	}
	dim := dimensionParam(r)
	out, err := h.svc.YearOverYear(r.Context(), kindParam(r), dim, r.URL.Query().Get("value"), c)
	if err != nil {
		writeError(w, "compare", err)
		return
	}
	writeJSON(w, http.StatusOK, CompareResponse{Dimension: dim, Comparisons: out})
}

// Monthly handles GET /api/{kind}/monthly.
//
//	@Summary		Twelve monthly buckets per requested year
//	@Tags			analytics
//	@Produce		json
//	@Param			kind	path		string	true	"Record kind"
//	@Param			years	query		string	false	"Comma separated years; defaults to the current year"
//	@Success		200		{object}	MonthlyResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/{kind}/monthly [get]
func (h *Handler) Monthly(w http.ResponseWriter, r *http.Request) {
	c, ok := criteriaOrBadRequest(w, r)
	if !ok {
		return
	}
	years, err := yearsParam(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	out, err := h.svc.Monthly(r.Context(), kindParam(r), years, c)
	if err != nil {
		writeError(w, "monthly", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Series handles GET /api/{kind}/series.
//
//	@Summary		Sparse monthly series with summary statistics
//	@Tags			analytics
//	@Produce		json
//	@Param			kind	path		string	true	"Record kind"
//	@Success		200		{object}	SeriesResponse
//	@Security		BearerAuth
//	@Router			/{kind}/series [get]
func (h *Handler) Series(w http.ResponseWriter, r *http.Request) {
	c, ok := criteriaOrBadRequest(w, r)
	if !ok {
		return
	}
	out, err := h.svc.Series(r.Context(), kindParam(r), c)
	if err != nil {
		writeError(w, "series", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Forecast handles GET /api/{kind}/forecast.
//
//	@Summary		Next-month volume estimate
//	@Description	Returns ready=false with the history length when fewer than six months have records.
//	@Tags			analytics
//	@Produce		json
//	@Param			kind	path		string	true	"Record kind"
//	@Success		200		{object}	ForecastResponse
//	@Security		BearerAuth
//	@Router			/{kind}/forecast [get]
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	c, ok := criteriaOrBadRequest(w, r)
	if !ok {
		return
	}
	out, err := h.svc.Forecast(r.Context(), kindParam(r), c)
	if err != nil {
		writeError(w, "forecast", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Vocabulary handles GET /api/vocabulary.
//
//	@Summary		Fixed label sets for filters and chart axes
//	@Tags			meta
//	@Produce		json
//	@Success		200	{object}	VocabularyResponse
//	@Security		BearerAuth
//	@Router			/vocabulary [get]
func (h *Handler) Vocabulary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, NewVocabulary())
}

// NewVocabulary builds the vocabulary payload.
func NewVocabulary() VocabularyResponse {
	v := VocabularyResponse{
		Zones:      models.Zones,
		Categories: make(map[string][]string),
		Statuses:   make(map[string][]string),
		AgeCutoff:  models.AgeCutoff,
	}
	for _, k := range models.Kinds {
		v.Kinds = append(v.Kinds, string(k))
		v.Categories[string(k)] = models.Categories(k)
		for _, s := range models.Statuses(k) {
			v.Statuses[string(k)] = append(v.Statuses[string(k)], string(s))
		}
	}
	for _, d := range analytics.Dimensions {
		v.Dimensions = append(v.Dimensions, string(d))
	}
	return v
}
