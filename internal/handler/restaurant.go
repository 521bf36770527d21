package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"foodorder/internal/mw"
	"foodorder/internal/service"
)

func GetMyRestaurantHandler(restaurants *service.RestaurantService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		restaurant, err := restaurants.GetMine(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, restaurant)
	}
}

func CreateMyRestaurantHandler(restaurants *service.RestaurantService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var in service.RestaurantInput
		if !decodeJSON(w, r, &in) {
			return
		}

		restaurant, err := restaurants.Create(r.Context(), userID, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, restaurant)
	}
}

func UpdateMyRestaurantHandler(restaurants *service.RestaurantService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var in service.RestaurantInput
		if !decodeJSON(w, r, &in) {
			return
		}

		restaurant, err := restaurants.Update(r.Context(), userID, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, restaurant)
	}
}

func GetRestaurantHandler(restaurants *service.RestaurantService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		restaurant, err := restaurants.Get(r.Context(), chi.URLParam(r, "restaurantId"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, restaurant)
	}
}

func SearchRestaurantsHandler(restaurants *service.RestaurantService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, err := strconv.Atoi(q.Get("page"))
		if err != nil {
			page = 1
		}

		var cuisines []string
		for _, c := range strings.Split(q.Get("selectedCuisines"), ",") {
			if c = strings.TrimSpace(c); c != "" {
				cuisines = append(cuisines, c)
			}
		}

		result, err := restaurants.Search(r.Context(), chi.URLParam(r, "city"), service.SearchQuery{
			Query:    q.Get("searchQuery"),
			Cuisines: cuisines,
			Page:     page,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
