package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"

	"restaurant-listing-admin/internal/domain"
	"restaurant-listing-admin/internal/form"
	"restaurant-listing-admin/internal/listing"
	"restaurant-listing-admin/internal/locations"
	"restaurant-listing-admin/internal/models"
	"restaurant-listing-admin/internal/notify"
	"restaurant-listing-admin/internal/psgc"
	"restaurant-listing-admin/internal/screen"
	errs "restaurant-listing-admin/pkg/errors"
	"restaurant-listing-admin/pkg/events"
	"restaurant-listing-admin/pkg/metrics"

	"github.com/gorilla/mux"
)

// PageData represents data for the restaurant listing page
type PageData struct {
	Restaurants []models.Restaurant
	Total       int
	Stats       *models.RestaurantStats
	FoodTypes   []string
}

// mutationResponse is the JSON shape returned by the POST endpoints. The
// page's toast widget renders Messages in order.
type mutationResponse struct {
	Status   string           `json:"status"`
	ID       int64            `json:"id,omitempty"`
	Messages []notify.Message `json:"messages"`
}

// formMu serializes the handlers that drive the shared form session. Each
// request rebuilds the dialog state in several steps, and an interleaved
// request must not observe another's half-built buffer.
var formMu sync.Mutex

// metrics
var (
	mPageViews     = metrics.Default.Counter("admin_page_views_total", "Listing page renders")
	mRegionLookups = metrics.Default.Counter("region_lookups_total", "Region list requests")
	mBrgyLookups   = metrics.Default.Counter("barangay_lookups_total", "Barangay list requests")
	mLookupErrors  = metrics.Default.Counter("location_lookup_failures_total", "Failed region or barangay lookups")
)

func HomeHandler(store *listing.Store, repo domain.Repository, foodTypes []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mPageViews.Inc(1)

		// Refresh keeps the previous snapshot when the fetch fails, so the
		// page always renders with whatever data we have.
		store.Refresh(r.Context())
		restaurants := store.Restaurants()

		stats, err := repo.GetRestaurantStatsCtx(r.Context())
		if err != nil {
			log.Printf("Error fetching restaurant stats: %v", err)
			stats = &models.RestaurantStats{Total: len(restaurants)}
		}

		data := PageData{
			Restaurants: restaurants,
			Total:       len(restaurants),
			Stats:       stats,
			FoodTypes:   foodTypes,
		}

		if err := ExecuteTemplate(w, "restaurants.tmpl", data); err != nil {
			http.Error(w, fmt.Sprintf("template error: %v", err), http.StatusInternalServerError)
			return
		}
	}
}

// APIRestaurantsHandler returns the listing as JSON, same name ordering as
// the page.
func APIRestaurantsHandler(repo domain.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		restaurants, err := repo.GetRestaurantsCtx(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("Error fetching restaurants: %v", err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(restaurants)
	}
}

// RegionsHandler returns the merged municipality and city list of the
// configured province, loading it on first use.
func RegionsHandler(resolver *locations.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mRegionLookups.Inc(1)

		regions := resolver.Regions()
		if len(regions) == 0 {
			if err := resolver.LoadRegions(r.Context()); err != nil {
				log.Printf("Error loading regions: %v", err)
				writeLookupError(w, lookupMessage(err, notify.MsgRegionsFailed))
				return
			}
			regions = resolver.Regions()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(regions)
	}
}

// BarangaysHandler selects a region and returns its barangays. The lookup
// treats the code as a municipality first and falls back to the city
// endpoint, since barangay parents live in two parallel taxonomies.
func BarangaysHandler(resolver *locations.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mBrgyLookups.Inc(1)

		vars := mux.Vars(r)
		code := vars["code"]
		if code == "" {
			http.Error(w, "Missing region code", http.StatusBadRequest)
			return
		}

		if err := resolver.Select(r.Context(), code); err != nil {
			writeLookupError(w, lookupMessage(err, notify.MsgBrgyFailed))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resolver.Subdivisions())
	}
}

// EditRestaurantHandler opens the form session in edit mode and returns the
// prefilled buffer together with the resolved region code and its barangays,
// so the dialog can restore both dropdowns.
func EditRestaurantHandler(repo domain.Repository, resolver *locations.Resolver, session *form.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		id, err := strconv.ParseInt(vars["id"], 10, 64)
		if err != nil {
			http.Error(w, "Invalid restaurant ID", http.StatusBadRequest)
			return
		}

		restaurant, err := repo.GetRestaurantByIDCtx(r.Context(), id)
		if err != nil {
			http.Error(w, fmt.Sprintf("Restaurant not found: %v", err), http.StatusNotFound)
			return
		}

		formMu.Lock()
		defer formMu.Unlock()
		session.OpenEdit(*restaurant)
		buffer := session.Buffer()

		// Best effort: a municipality stored by name maps back to its code so
		// the barangay dropdown can be populated. When the name is unknown the
		// region stays unselected and the dialog still opens.
		regionCode := ""
		var barangays []models.Subdivision
		if buffer.Municipality != "" {
			if code, ok := resolver.RegionCodeByName(r.Context(), buffer.Municipality); ok {
				regionCode = code
				if err := resolver.Select(r.Context(), code); err == nil {
					barangays = resolver.Subdivisions()
				}
			}
		}

		payload := struct {
			ID         int64                `json:"id"`
			Mode       string               `json:"mode"`
			Buffer     form.Buffer          `json:"buffer"`
			RegionCode string               `json:"region_code"`
			Barangays  []models.Subdivision `json:"barangays"`
		}{
			ID:         id,
			Mode:       session.Mode().String(),
			Buffer:     buffer,
			RegionCode: regionCode,
			Barangays:  barangays,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}
}

// SaveRestaurantHandler handles both create (no id in path) and update.
// The posted form replaces the session buffer, then the controller decides
// between insert and update from the session's edit target.
func SaveRestaurantHandler(repo domain.Repository, session *form.Session, ctrl *screen.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		formMu.Lock()
		defer formMu.Unlock()

		vars := mux.Vars(r)
		if idStr, ok := vars["id"]; ok {
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				http.Error(w, "Invalid restaurant ID", http.StatusBadRequest)
				return
			}
			restaurant, err := repo.GetRestaurantByIDCtx(r.Context(), id)
			if err != nil {
				http.Error(w, fmt.Sprintf("Restaurant not found: %v", err), http.StatusNotFound)
				return
			}
			session.OpenEdit(*restaurant)
			// The posted selection replaces the prefilled one wholesale.
			for _, ft := range session.Buffer().FoodTypes {
				session.ToggleFoodType(ft)
			}
		} else {
			session.OpenCreate()
		}

		session.SetName(r.FormValue("name"))
		session.SetMunicipality(r.FormValue("municipality"))
		session.SetLocation(r.FormValue("location"))
		session.SetDescription(r.FormValue("description"))
		session.SetImageURL(r.FormValue("image_url"))
		for _, ft := range r.Form["food_types"] {
			session.ToggleFoodType(ft)
		}

		recorder := notify.NewRecorder()
		err := ctrl.Submit(r.Context(), recorder)

		w.Header().Set("Content-Type", "application/json")
		switch {
		case err == nil:
			json.NewEncoder(w).Encode(mutationResponse{Status: "ok", Messages: recorder.Messages()})
		case errs.Is(err, errs.ErrValidation):
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(mutationResponse{Status: "error", Messages: recorder.Messages()})
		default:
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(mutationResponse{Status: "error", Messages: recorder.Messages()})
		}
	}
}

// DeleteRestaurantHandler deletes after the browser-side confirm() passed,
// signalled by confirmed=true in the form body. Anything else is a no-op.
func DeleteRestaurantHandler(ctrl *screen.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		id, err := strconv.ParseInt(vars["id"], 10, 64)
		if err != nil {
			http.Error(w, "Invalid restaurant ID", http.StatusBadRequest)
			return
		}

		confirmed := r.FormValue("confirmed") == "true"
		recorder := notify.NewRecorder()

		// Delete may close an edit session pointed at the same restaurant.
		formMu.Lock()
		defer formMu.Unlock()

		if err := ctrl.Delete(r.Context(), id, func() bool { return confirmed }, recorder); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(mutationResponse{Status: "error", ID: id, Messages: recorder.Messages()})
			return
		}

		status := "ok"
		if !confirmed {
			status = "cancelled"
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mutationResponse{Status: status, ID: id, Messages: recorder.Messages()})
	}
}

// HistoryHandler returns the audit trail of one restaurant plus the state
// rebuilt from it.
func HistoryHandler(es events.EventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		id, err := strconv.ParseInt(vars["id"], 10, 64)
		if err != nil {
			http.Error(w, "Invalid restaurant ID", http.StatusBadRequest)
			return
		}

		stored, err := es.ListByRestaurant(r.Context(), id)
		if err != nil {
			http.Error(w, fmt.Sprintf("Error fetching history: %v", err), http.StatusInternalServerError)
			return
		}

		data := struct {
			Events []events.StoredEvent `json:"events"`
			State  *events.RebuiltState `json:"state"`
		}{
			Events: stored,
			State:  events.Replay(stored),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(data)
	}
}

// APIStatsHandler provides listing statistics via JSON API
func APIStatsHandler(repo domain.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := repo.GetRestaurantStatsCtx(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("Error fetching stats: %v", err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	}
}

// lookupMessage picks the toast for a failed location lookup. A response
// with an unexpected shape gets its own message; anything else keeps the
// endpoint's generic failure text.
func lookupMessage(err error, fallback string) string {
	if errors.Is(err, psgc.ErrMalformed) {
		return notify.MsgBadLookupData
	}
	return fallback
}

func writeLookupError(w http.ResponseWriter, msg string) {
	mLookupErrors.Inc(1)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
