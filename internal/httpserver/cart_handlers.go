package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/agrotern2025/agrotern/internal/cart"
	mw "github.com/agrotern2025/agrotern/internal/middleware"
)

func (s *Server) cartViews() cartViewBuilder {
	return cartViewBuilder{taxonomy: s.cfg.Taxonomy, images: s.cfg.Images, bundle: s.cfg.Bundle}
}

// CartPage renders the cart page.
func (s *Server) CartPage(w http.ResponseWriter, r *http.Request) {
	items, err := s.store(r).Read(r.Context())
	if err != nil {
		s.storageFailed(w, r, err)
		return
	}
	view := s.cartViews().build(mw.Lang(r), items)
	data := s.pageData(r, "cart.title", "cart.description", view)
	data.SEO.Robots = "noindex, follow"
	s.withStructuredData(r, &data)
	s.renderPage(w, r, "cart", data)
}

// CartItems re-renders the list and summary, e.g. after a change event.
func (s *Server) CartItems(w http.ResponseWriter, r *http.Request) {
	s.renderCart(w, r, s.store(r))
}

func (s *Server) renderCart(w http.ResponseWriter, r *http.Request, store *cart.Store) {
	items, err := store.Read(r.Context())
	if err != nil {
		s.storageFailed(w, r, err)
		return
	}
	s.renderFragment(w, r, "cart", s.cartViews().build(mw.Lang(r), items))
}

type rowForm struct {
	Index int `validate:"gte=0"`
}

func (s *Server) parseRow(r *http.Request) (rowForm, bool) {
	idx, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("index")))
	if err != nil {
		return rowForm{}, false
	}
	form := rowForm{Index: idx}
	if err := s.validate.Struct(form); err != nil {
		return rowForm{}, false
	}
	return form, true
}

// CartSetQty updates the quantity of one row, clamped to [1, 999].
func (s *Server) CartSetQty(w http.ResponseWriter, r *http.Request) {
	form, ok := s.parseRow(r)
	if !ok {
		s.badRequest(w, r)
		return
	}
	store := s.store(r)
	if _, err := store.SetQty(r.Context(), form.Index, cart.ParseQty(r.PostFormValue("qty"))); err != nil {
		s.storageFailed(w, r, err)
		return
	}
	s.renderCart(w, r, store)
}

// CartRemove deletes one row.
func (s *Server) CartRemove(w http.ResponseWriter, r *http.Request) {
	form, ok := s.parseRow(r)
	if !ok {
		s.badRequest(w, r)
		return
	}
	store := s.store(r)
	if _, err := store.RemoveAt(r.Context(), form.Index); err != nil {
		s.storageFailed(w, r, err)
		return
	}
	s.renderCart(w, r, store)
}

// CartClear asks for confirmation first; with confirm=yes it empties the cart.
func (s *Server) CartClear(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	if r.FormValue("confirm") != "yes" {
		s.renderFragment(w, r, "cart_confirm", CartView{Lang: lang})
		return
	}
	store := s.store(r)
	if err := store.Clear(r.Context()); err != nil {
		s.storageFailed(w, r, err)
		return
	}
	s.renderCart(w, r, store)
}

// CartBadge renders the header counter: the sum of quantities.
func (s *Server) CartBadge(w http.ResponseWriter, r *http.Request) {
	s.renderFragment(w, r, "badge", BadgeView{Count: s.cartCount(r.Context(), s.store(r))})
}
