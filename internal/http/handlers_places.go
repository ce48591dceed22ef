package http

import (
	"net/http"
	"time"

	"pinledger/internal/core"
	"pinledger/internal/geo"
	"pinledger/internal/log"
)

type placeView struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Distance  *float64 `json:"distance_m,omitempty"`
}

type nearbyView struct {
	Radius float64     `json:"radius_m"`
	Places []placeView `json:"places"`
}

func newPlaceView(p core.PointOfInterest) placeView {
	return placeView{ID: p.ID, Name: p.Name, Latitude: p.Latitude, Longitude: p.Longitude}
}

func (s *Server) handleListPlaces(w http.ResponseWriter, r *http.Request) {
	views := make([]placeView, 0, len(s.deps.Places))
	for _, p := range s.deps.Places {
		views = append(views, newPlaceView(p))
	}
	NewResponse().JSON(views).Write(w)
}

// handleNearby lists the places strictly within the radius of ?lat=&lon=,
// closest first.
func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	lat, err := queryFloat(r, "lat")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	lon, err := queryFloat(r, "lon")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	from := core.Coordinates{Latitude: lat, Longitude: lon}
	view := nearbyView{Radius: s.deps.Radius, Places: []placeView{}}
	for _, m := range geo.Nearest(from, s.deps.Places) {
		if m.Distance >= s.deps.Radius {
			break
		}
		pv := newPlaceView(m.Place)
		d := m.Distance
		pv.Distance = &d
		view.Places = append(view.Places, pv)
	}
	NewResponse().JSON(view).Write(w)
}

// handleReportLocation ingests a device position for the proximity monitor.
func (s *Server) handleReportLocation(w http.ResponseWriter, r *http.Request) {
	if s.deps.Locations == nil {
		ErrorResponse(http.StatusServiceUnavailable, "location ingest disabled").Write(w)
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	lat, err := p.GetFloat("latitude")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	lon, err := p.GetFloat("longitude")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	accuracy := 0.0
	if p.Has("accuracy") {
		if accuracy, err = p.GetFloat("accuracy"); err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
	}

	sample := core.LocationSample{
		Coordinates: core.Coordinates{Latitude: lat, Longitude: lon},
		Accuracy:    accuracy,
		Timestamp:   time.Now(),
	}
	delivered := s.deps.Locations.Publish(sample)
	log.FromContext(r.Context()).DebugContext(r.Context(), "Location reported",
		append(log.NewFields().WithPosition(lat, lon).ToSlice(), "subscribers", delivered)...)

	NewResponse().Status(http.StatusAccepted).JSON(map[string]int{"delivered": delivered}).Write(w)
}
