package site

import (
	"bytes"
	"errors"
	htmltemplate "html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/transitdir/internal/catalog"
	"github.com/ziadkadry99/transitdir/internal/detail"
	"github.com/ziadkadry99/transitdir/internal/directory"
)

type categoryLink struct {
	Label  string
	URL    string
	Active bool
}

type card struct {
	Anchor    string
	URL       string
	Number    string
	Label     string
	Icon      string
	Details   string
	StopCount int
	Fare      string
}

type pageData struct {
	Title      string
	City       string
	Lang       string
	State      directory.State
	Categories []categoryLink
	ClearURL   string
	Cards      []card
	Empty      bool
	Page       int
	TotalPages int
	PrevURL    string
	NextURL    string
	Notice     string
	Dialog     htmltemplate.HTML
}

// AnchorFor names the card element of a route. The detail dialog returns
// focus to it when closed.
func AnchorFor(id int) string {
	return "route-" + strconv.Itoa(id)
}

// link joins a path and an encoded directory state.
func link(path string, s directory.State) string {
	if q := s.Encode(); q != "" {
		return path + "?" + q
	}
	return path
}

func (s *Site) controller(r *http.Request, selector directory.Selector) *directory.Controller {
	ctrl := directory.New(s.catalog, s.cfg.PageSize, selector)
	ctrl.Restore(directory.ParseState(r.URL.Query()))
	return ctrl
}

func (s *Site) pageData(ctrl *directory.Controller) pageData {
	state := ctrl.State()
	view := ctrl.View()

	data := pageData{
		Title:      s.cfg.Title,
		City:       s.cfg.City,
		Lang:       s.cfg.Locale,
		State:      state,
		Empty:      view.Empty(),
		Page:       view.Page,
		TotalPages: view.TotalPages,
	}

	for _, c := range catalog.Categories() {
		data.Categories = append(data.Categories, categoryLink{
			Label:  c.Label(),
			URL:    link("/", ctrl.Preview(func(p *directory.Controller) { p.SetCategory(c) })),
			Active: state.Category == c,
		})
	}
	data.ClearURL = link("/", ctrl.Preview((*directory.Controller).ClearCategory))

	if view.HasPrev() {
		data.PrevURL = link("/", ctrl.Preview((*directory.Controller).PrevPage))
	}
	if view.HasNext() {
		data.NextURL = link("/", ctrl.Preview((*directory.Controller).NextPage))
	}

	for _, route := range view.Items {
		data.Cards = append(data.Cards, card{
			Anchor:    AnchorFor(route.ID),
			URL:       link("/routes/"+strconv.Itoa(route.ID), state),
			Number:    route.Number,
			Label:     route.Category.DisplayLabel(),
			Icon:      catalog.IconOrFallback(route.Category),
			Details:   route.Summary(),
			StopCount: route.StopCount(),
			Fare:      detail.FormatFare(s.printer, s.cfg.Currency, route.Fare),
		})
	}
	return data
}

func (s *Site) handleDirectory(w http.ResponseWriter, r *http.Request) {
	ctrl := s.controller(r, nil)
	s.renderPage(w, http.StatusOK, s.pageData(ctrl))
}

func (s *Site) handleRoute(w http.ResponseWriter, r *http.Request) {
	view := detail.NewView()
	ctrl := s.controller(r, view)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err == nil {
		_, err = ctrl.Activate(id, AnchorFor(id))
	} else {
		err = directory.ErrRouteNotFound
	}

	data := s.pageData(ctrl)
	if errors.Is(err, directory.ErrRouteNotFound) {
		data.Notice = "Route not found."
		s.renderPage(w, http.StatusNotFound, data)
		return
	}

	dialog, err := detail.RenderHTML(view.Current(), detail.Options{
		CloseURL: link("/", ctrl.State()),
		Currency: s.cfg.Currency,
		Printer:  s.printer,
	})
	if err != nil {
		log.Printf("rendering route %d: %v", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	data.Title = view.Current().Route.Number + " | " + s.cfg.Title
	data.Dialog = dialog
	s.renderPage(w, http.StatusOK, data)
}

func (s *Site) renderPage(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		log.Printf("rendering page: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
