package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"phonestore/models"
	"phonestore/services"
	"phonestore/utils"
)

// PhoneController handles catalog requests
type PhoneController struct {
	Catalog *services.CatalogService
}

// NewPhoneController creates a new PhoneController
func NewPhoneController(catalog *services.CatalogService) *PhoneController {
	return &PhoneController{Catalog: catalog}
}

func listParams(r *http.Request) (services.ListParams, error) {
	page, err := pageFrom(r)
	if err != nil {
		return services.ListParams{}, err
	}
	minPrice, err := queryInt64(r, "minPrice")
	if err != nil {
		return services.ListParams{}, err
	}
	maxPrice, err := queryInt64(r, "maxPrice")
	if err != nil {
		return services.ListParams{}, err
	}

	q := r.URL.Query()
	search := q.Get("search")
	if search == "" {
		search = q.Get("q")
	}
	return services.ListParams{
		Page:      page,
		Brand:     q.Get("brand"),
		MinPrice:  minPrice,
		MaxPrice:  maxPrice,
		RAM:       q.Get("ram"),
		Storage:   q.Get("storage"),
		Search:    search,
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}, nil
}

// GetPhones lists active phones with filters, sorting and pagination
func (pc *PhoneController) GetPhones(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	list, err := pc.Catalog.List(ctx, params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, list)
}

// GetPhoneByID retrieves a single phone with related phones
func (pc *PhoneController) GetPhoneByID(w http.ResponseWriter, r *http.Request) {
	id, err := services.ParseID("phone", mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	details, err := pc.Catalog.GetByID(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, details)
}

// ComparePhones returns the phones named by the comma separated ids parameter
func (pc *PhoneController) ComparePhones(w http.ResponseWriter, r *http.Request) {
	ids := strings.Split(r.URL.Query().Get("ids"), ",")

	ctx, cancel := requestContext(r)
	defer cancel()
	phones, err := pc.Catalog.Compare(ctx, ids)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, phones)
}

// SearchPhones runs a text search with optional JSON filters
func (pc *PhoneController) SearchPhones(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters, err := services.ParseSearchFilters(q.Get("filters"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	phones, err := pc.Catalog.Search(ctx, q.Get("q"), q.Get("category"), filters)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, phones)
}

// CreatePhone handles adding a new phone (Admin only)
func (pc *PhoneController) CreatePhone(w http.ResponseWriter, r *http.Request) {
	var phone models.Phone
	if !decodeJSON(w, r, &phone) {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	created, err := pc.Catalog.Create(ctx, &phone)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, created)
}

// UpdatePhone applies a partial update to a phone (Admin only)
func (pc *PhoneController) UpdatePhone(w http.ResponseWriter, r *http.Request) {
	id, err := services.ParseID("phone", mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	patch, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || !isJSONObject(patch) {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	updated, err := pc.Catalog.Update(ctx, id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, updated)
}

func isJSONObject(b []byte) bool {
	var obj map[string]json.RawMessage
	return json.Unmarshal(b, &obj) == nil && obj != nil
}

// DeletePhone handles deleting a phone (Admin only)
func (pc *PhoneController) DeletePhone(w http.ResponseWriter, r *http.Request) {
	id, err := services.ParseID("phone", mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := pc.Catalog.Delete(ctx, id); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "Phone deleted successfully")
}
