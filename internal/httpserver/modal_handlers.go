package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/agrotern2025/agrotern/internal/cart"
	mw "github.com/agrotern2025/agrotern/internal/middleware"
	"github.com/agrotern2025/agrotern/internal/modal"
	"github.com/agrotern2025/agrotern/internal/platform/httpx"
)

// modalClosedEvent is the HX-Trigger event the page script uses to restore focus.
const modalClosedEvent = "modal:closed"

var focusPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{0,128}$`)

// ModalView is the model of the product dialog fragment.
type ModalView struct {
	modal.View
	Lang string
}

// returnFocus reads the id of the element that opened the dialog: the focus
// form value on close and confirm, the htmx trigger id on open.
func returnFocus(r *http.Request) string {
	focus := r.FormValue("focus")
	if focus == "" {
		focus = mw.HTMXInfoFromContext(r.Context()).TriggerID
	}
	if !focusPattern.MatchString(focus) {
		return ""
	}
	return focus
}

func (s *Server) modalLabels(lang string) modal.Labels {
	return modal.Labels{
		PriceOnRequest: s.cfg.Bundle.T(lang, "product.price_on_request"),
		FallbackTitle:  s.cfg.Bundle.T(lang, "product.fallback_title"),
	}
}

// ModalOpen renders the detail dialog of one product.
func (s *Server) ModalOpen(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	product, ok := s.lookup(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var d modal.Dialog
	d.Open(product, returnFocus(r))
	view, err := s.modals.Build(&d, lang, s.modalLabels(lang))
	if err != nil {
		s.badRequest(w, r)
		return
	}
	s.renderFragment(w, r, "modal", ModalView{View: view, Lang: lang})
}

// ModalClose empties the dialog host and tells the page where focus returns.
func (s *Server) ModalClose(w http.ResponseWriter, r *http.Request) {
	reason := modal.ParseCloseReason(r.FormValue("reason"))
	s.closeDialog(w, returnFocus(r), reason)
}

type confirmForm struct {
	ProductID string `validate:"required,max=128"`
	Qty       int    `validate:"gte=1,lte=999"`
}

// ModalConfirm commits the stepper quantity to the cart and closes the dialog.
func (s *Server) ModalConfirm(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	form := confirmForm{ProductID: chi.URLParam(r, "id"), Qty: cart.ParseQty(r.PostFormValue("qty"))}
	if err := s.validate.Struct(form); err != nil {
		s.badRequest(w, r)
		return
	}
	product, ok := s.lookup(w, r, form.ProductID)
	if !ok {
		return
	}

	var d modal.Dialog
	d.Open(product, returnFocus(r))
	_, focus, err := d.Confirm(r.Context(), s.store(r), s.cfg.Images, form.Qty)
	switch {
	case errors.Is(err, modal.ErrUnavailable):
		s.writeError(w, r, httpx.NewError("out_of_stock", s.cfg.Bundle.T(lang, "error.unavailable"), http.StatusConflict))
		return
	case err != nil:
		s.storageFailed(w, r, err)
		return
	}
	s.closeDialog(w, focus, modal.ReasonConfirm)
}

func (s *Server) closeDialog(w http.ResponseWriter, focus string, reason modal.CloseReason) {
	payload, _ := json.Marshal(map[string]any{
		modalClosedEvent: map[string]string{"focus": focus, "reason": reason.String()},
	})
	w.Header().Set("HX-Trigger", string(payload))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
}
