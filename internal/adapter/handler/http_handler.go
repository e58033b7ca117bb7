package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/rl1809/catalog-service/internal/core/domain"
	"github.com/rl1809/catalog-service/internal/core/service"
	"github.com/rl1809/catalog-service/internal/port"
)

type HTTPHandler struct {
	catalog        *service.CatalogService
	images         port.ImageStore
	logger         *zap.Logger
	maxUploadBytes int64
}

func NewHTTPHandler(catalog *service.CatalogService, images port.ImageStore, logger *zap.Logger, maxUploadBytes int64) *HTTPHandler {
	return &HTTPHandler{
		catalog:        catalog,
		images:         images,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes wires up the router. A deployment that needs authentication
// mounts its middleware around the admin and write routes here.
func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api/products", func(r chi.Router) {
		r.Post("/new", h.CreateItem)
		r.Get("/all", h.SearchItems)
		r.Get("/latest", h.LatestItems)
		r.Get("/categories", h.Categories)
		r.Get("/admin-products", h.AdminItems)
		r.Get("/category/{category}", h.ItemsByCategory)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.ItemByID)
			r.Put("/", h.UpdateItem)
			r.Delete("/", h.DeleteItem)
		})
	})

	return r
}

type ItemsResponse struct {
	Success  bool          `json:"success"`
	Products []domain.Item `json:"products"`
}

type SearchResponse struct {
	Success   bool          `json:"success"`
	Products  []domain.Item `json:"products"`
	TotalPage int           `json:"totalPage"`
}

type CategoriesResponse struct {
	Success    bool     `json:"success"`
	Categories []string `json:"categories"`
}

type ItemResponse struct {
	Success bool        `json:"success"`
	Product domain.Item `json:"product"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *HTTPHandler) LatestItems(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.LatestItems(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemsResponse{Success: true, Products: products})
}

func (h *HTTPHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Success: true, Categories: categories})
}

func (h *HTTPHandler) AdminItems(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.AdminItems(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemsResponse{Success: true, Products: products})
}

func (h *HTTPHandler) ItemByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.catalog.ItemByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemResponse{Success: true, Product: *product})
}

func (h *HTTPHandler) ItemsByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	products, err := h.catalog.ItemsByCategory(r.Context(), category)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemsResponse{Success: true, Products: products})
}

func (h *HTTPHandler) SearchItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw := service.RawSearchQuery{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Price:    q.Get("price"),
		Sort:     q.Get("sort"),
		Page:     q.Get("page"),
	}

	result, err := h.catalog.SearchItems(r.Context(), raw)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Success:   true,
		Products:  result.Items,
		TotalPage: result.TotalPage,
	})
}

func (h *HTTPHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "please add a photo")
		return
	}
	defer file.Close()

	ref, err := h.images.Save(r.Context(), header.Filename, file)
	if err != nil {
		h.logger.Error("image upload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store photo")
		return
	}

	price, _ := strconv.ParseFloat(r.FormValue("price"), 64)
	stock, _ := strconv.Atoi(r.FormValue("stock"))

	product, err := h.catalog.CreateItem(r.Context(), service.CreateItemInput{
		Name:        r.FormValue("name"),
		Category:    r.FormValue("category"),
		Price:       price,
		Stock:       stock,
		Description: r.FormValue("description"),
		Size:        r.FormValue("size"),
		Color:       r.FormValue("color"),
		ImageRef:    ref,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.logger.Info("item created", zap.String("id", product.ID))
	writeJSON(w, http.StatusCreated, MessageResponse{Success: true, Message: "product created successfully"})
}

func (h *HTTPHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var form url.Values
	var input service.UpdateItemInput

	if err := r.ParseMultipartForm(h.maxUploadBytes); err == nil {
		form = url.Values(r.MultipartForm.Value)

		if file, header, err := r.FormFile("photo"); err == nil {
			defer file.Close()
			ref, err := h.images.Save(r.Context(), header.Filename, file)
			if err != nil {
				h.logger.Error("image upload failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "failed to store photo")
				return
			}
			input.ImageRef = &ref
		}
	} else if err := r.ParseForm(); err == nil {
		form = r.PostForm
	} else {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input.Name = formString(form, "name")
	input.Category = formString(form, "category")
	input.Description = formString(form, "description")
	input.Size = formString(form, "size")
	input.Color = formString(form, "color")

	if raw := formString(form, "price"); raw != nil {
		price, err := strconv.ParseFloat(*raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid price")
			return
		}
		input.Price = &price
	}
	if raw := formString(form, "stock"); raw != nil {
		stock, err := strconv.Atoi(*raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid stock")
			return
		}
		input.Stock = &stock
	}

	product, err := h.catalog.UpdateItem(r.Context(), id, input)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.logger.Info("item updated", zap.String("id", product.ID))
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "product updated successfully"})
}

func (h *HTTPHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.catalog.DeleteItem(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.logger.Info("item deleted", zap.String("id", id))
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "product deleted successfully"})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		h.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// formString returns the field's value when it was present in the
// form, nil when it was absent. Presence matters: updates are partial.
func formString(form url.Values, name string) *string {
	if !form.Has(name) {
		return nil
	}
	v := form.Get(name)
	return &v
}

func (h *HTTPHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, service.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "product not found")
	default:
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Success: false, Message: message})
}
