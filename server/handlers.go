package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/Irisfrogy/data-visulization/models"
	"github.com/Irisfrogy/data-visulization/services"
	"github.com/Irisfrogy/data-visulization/storage"
	"github.com/Irisfrogy/data-visulization/utils"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

const pageTitle = "NYC Airbnb Dashboard"

// CacheStatus is the view cache as seen by the health and debug endpoints.
type CacheStatus interface {
	Ping(ctx context.Context) error
	Len(ctx context.Context) (int, error)
}

// DashboardHandler serves the page and its JSON API.
type DashboardHandler struct {
	svc    *services.DashboardService
	cache  CacheStatus
	logger *utils.Logger
}

// NewDashboardHandler creates the handler. cache may be nil.
func NewDashboardHandler(svc *services.DashboardService, cache CacheStatus, logger *utils.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, cache: cache, logger: logger}
}

// Selection is a set of selector values.
type Selection struct {
	NeighbourhoodGroup string `json:"neighbourhood_group"`
	RoomType           string `json:"room_type"`
	PriceCeiling       string `json:"price_ceiling"`
}

// OptionsResponse lists what each selector offers.
type OptionsResponse struct {
	NeighbourhoodGroups []services.SelectOption `json:"neighbourhood_groups"`
	RoomTypes           []services.SelectOption `json:"room_types"`
	PriceCeilings       []services.SelectOption `json:"price_ceilings"`
	Defaults            Selection               `json:"defaults"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Listings  int    `json:"listings"`
	Cache     string `json:"cache"`
	Timestamp int64  `json:"timestamp"`
	Message   string `json:"message,omitempty"`
}

type StatsResponse struct {
	Fingerprint string                `json:"fingerprint"`
	Report      *models.InsightReport `json:"report"`
	CachedViews *int                  `json:"cached_views,omitempty"`
}

func (h *DashboardHandler) options() OptionsResponse {
	data := h.svc.Dataset()
	def := services.DefaultFilter()
	return OptionsResponse{
		NeighbourhoodGroups: services.SelectorOptions(data.Regions),
		RoomTypes:           services.SelectorOptions(data.RoomTypes),
		PriceCeilings:       services.PriceCeilingOptions,
		Defaults: Selection{
			NeighbourhoodGroup: def.NeighbourhoodGroup,
			RoomType:           def.RoomType,
			PriceCeiling:       def.CeilingLabel(),
		},
	}
}

// GetIndex handles GET /
func (h *DashboardHandler) GetIndex(w http.ResponseWriter, r *http.Request) {
	opts := h.options()
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Title string
		OptionsResponse
	}{Title: pageTitle, OptionsResponse: opts})
	if err != nil {
		h.logger.Error("[http] render page: %v", err)
		h.writeErrorResponse(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GetOptions handles GET /api/options
func (h *DashboardHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, h.options())
}

// GetView handles GET /api/view
func (h *DashboardHandler) GetView(w http.ResponseWriter, r *http.Request) {
	f, ok := h.parseFilter(w, r)
	if !ok {
		return
	}
	h.writeJSONResponse(w, http.StatusOK, h.svc.ComputeView(r.Context(), f))
}

// GetListingsCSV handles GET /api/listings.csv
func (h *DashboardHandler) GetListingsCSV(w http.ResponseWriter, r *http.Request) {
	f, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="listings.csv"`)
	cw, err := storage.NewCSVWriter(w)
	if err != nil {
		h.logger.Warn("[http] export header: %v", err)
		return
	}
	if err := cw.Write(h.svc.Subset(f)); err != nil {
		h.logger.Warn("[http] export %s: %v", f.Key(), err)
	}
	cw.Close()
}

// GetHealth handles GET /health
func (h *DashboardHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Listings:  h.svc.Dataset().Len(),
		Cache:     "disabled",
		Timestamp: time.Now().Unix(),
	}

	if h.cache != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.cache.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Cache = "unhealthy"
			resp.Message = "cache unreachable: " + err.Error()
		} else {
			resp.Cache = "healthy"
		}
	}
	h.writeJSONResponse(w, http.StatusOK, resp)
}

// GetStats handles GET /debug/stats
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	data := h.svc.Dataset()
	resp := StatsResponse{
		Fingerprint: data.Fingerprint(),
		Report:      h.svc.Insights().Generate(data.Listings),
	}
	if h.cache != nil {
		if n, err := h.cache.Len(r.Context()); err == nil {
			resp.CachedViews = &n
		}
	}
	h.writeJSONResponse(w, http.StatusOK, resp)
}

func (h *DashboardHandler) parseFilter(w http.ResponseWriter, r *http.Request) (services.Filter, bool) {
	q := r.URL.Query()
	f, err := services.ParseFilter(q.Get("neighbourhood_group"), q.Get("room_type"), q.Get("price_ceiling"))
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return services.Filter{}, false
	}
	return f, true
}

func (h *DashboardHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("[http] encode response: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"internal_error","message":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(body)
}

func (h *DashboardHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	errorType := "internal_error"
	switch statusCode {
	case http.StatusBadRequest:
		errorType = "bad_request"
	case http.StatusNotFound:
		errorType = "not_found"
	}

	h.writeJSONResponse(w, statusCode, map[string]string{
		"error":   errorType,
		"message": message,
	})
}
