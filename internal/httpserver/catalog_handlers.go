package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/agrotern2025/agrotern/internal/cart"
	"github.com/agrotern2025/agrotern/internal/catalog"
	"github.com/agrotern2025/agrotern/internal/filter"
	mw "github.com/agrotern2025/agrotern/internal/middleware"
	"github.com/agrotern2025/agrotern/internal/nav"
	"github.com/agrotern2025/agrotern/internal/platform/httpx"
	"github.com/agrotern2025/agrotern/internal/platform/requestctx"
	"github.com/agrotern2025/agrotern/internal/seo"
)

func (s *Server) views() catalogViewBuilder {
	return catalogViewBuilder{taxonomy: s.cfg.Taxonomy, images: s.cfg.Images, bundle: s.cfg.Bundle}
}

// selectProducts loads the feed and applies the filter. A feed failure is
// logged and yields an empty selection.
func (s *Server) selectProducts(ctx context.Context, st filter.State) []catalog.Product {
	feed, err := s.cfg.Catalog.Load(ctx)
	if err != nil {
		requestctx.Logger(ctx).Error("catalog feed unavailable", zap.Error(err))
		return nil
	}
	return catalog.Select(feed, st.Criteria())
}

// listedProducts maps the selection onto the ItemList schema.
func (s *Server) listedProducts(r *http.Request, lang string, products []catalog.Product) []seo.ProductItem {
	out := make([]seo.ProductItem, 0, len(products))
	for _, p := range products {
		item := seo.ProductItem{
			Name:        p.Title,
			Description: p.Desc,
			Image:       seo.AbsoluteURL(r, s.cfg.Images.Resolve(p.Image)),
			SKU:         p.ID,
			InStock:     p.Purchasable(),
		}
		if p.Brand != "" {
			item.Brand = s.cfg.Taxonomy.BrandLabel(p.Category, p.Brand, lang)
		}
		if p.Price != nil {
			price := p.Price.Decimal
			item.Price = &price
		}
		out = append(out, item)
	}
	return out
}

// Home renders the landing page with category tiles.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	data := s.pageData(r, "home.title", "home.description", s.views().home(lang))
	brand := s.cfg.Bundle.T(lang, "brand.name")
	s.withStructuredData(r, &data, seo.Organization(brand, seo.AbsoluteURL(r, "/"), seo.AbsoluteURL(r, s.cfg.SiteRoot+"/img/hero.png")))
	s.renderPage(w, r, "home", data)
}

// CatalogPage renders the full catalog page for the filter in the URL.
func (s *Server) CatalogPage(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	st := filter.FromQuery(r.URL.Query(), s.cfg.Taxonomy)
	products := s.selectProducts(r.Context(), st)
	view := s.views().build(lang, st, products)

	data := s.pageData(r, "catalog.title", "catalog.description", view)
	if !st.IsAll() {
		data.Breadcrumbs = nav.Breadcrumbs(r.URL.Path, nav.Crumb{
			Href:  catalogURL(filter.State{Category: st.Category}),
			Label: s.cfg.Taxonomy.CategoryLabel(string(st.Category), lang),
		})
	}
	s.withStructuredData(r, &data, seo.ItemList(s.listedProducts(r, lang, products), currencyCode))
	s.renderPage(w, r, "catalog", data)
}

// CatalogGrid applies a filter patch to the URL the browser shows and
// re-renders the catalog region. The new URL is pushed to history, or
// replaced when nav=replace.
func (s *Server) CatalogGrid(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	q := r.URL.Query()
	patch := filter.PatchFromForm(q)
	navigation := filter.ParseNavigation(q.Get("nav"))

	current := currentCatalogURL(mw.HTMXInfoFromContext(r.Context()).CurrentURL)
	next := filter.Apply(current, patch)
	st := filter.FromQuery(next.Query(), s.cfg.Taxonomy)

	if !patch.Empty() {
		w.Header().Set(navigation.HeaderName(), next.String())
	}
	products := s.selectProducts(r.Context(), st)
	view := s.views().build(lang, st, products)
	s.renderFragment(w, r, "catalog", view)
}

type addForm struct {
	ProductID string `validate:"required,max=128"`
	Qty       int    `validate:"gte=1,lte=999"`
}

// AddToCart adds one unit of a product, or the submitted qty, and answers with
// the card button in its confirmation state.
func (s *Server) AddToCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := mw.Lang(r)
	form := addForm{ProductID: chi.URLParam(r, "id"), Qty: cart.ParseQty(r.PostFormValue("qty"))}
	if err := s.validate.Struct(form); err != nil {
		s.badRequest(w, r)
		return
	}
	product, ok := s.lookup(w, r, form.ProductID)
	if !ok {
		return
	}

	store := s.store(r)
	_, err := store.Add(ctx, cart.FromProduct(product, s.cfg.Images), form.Qty, product.Stock)
	switch {
	case errors.Is(err, cart.ErrOutOfStock):
		s.writeError(w, r, httpx.NewError("out_of_stock", s.cfg.Bundle.T(lang, "error.unavailable"), http.StatusConflict))
		return
	case err != nil:
		s.storageFailed(w, r, err)
		return
	}
	s.renderFragment(w, r, "add_button", AddButtonView{Lang: lang, ID: product.ID, Added: true, RevertMS: addedRevertMS})
}

// lookup resolves a product id through the feed index, answering 404 when it
// is unknown.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request, id string) (catalog.Product, bool) {
	ctx := r.Context()
	idx, err := s.cfg.Catalog.Index(ctx)
	if err != nil {
		requestctx.Logger(ctx).Error("catalog feed unavailable", zap.Error(err))
		s.writeError(w, r, httpx.Unavailable("catalog_unavailable", "catalog is unavailable", storageRetryAfter))
		return catalog.Product{}, false
	}
	p, err := idx.Lookup(id)
	if err != nil {
		s.writeError(w, r, httpx.NewError("not_found", s.cfg.Bundle.T(mw.Lang(r), "error.not_found"), http.StatusNotFound))
		return catalog.Product{}, false
	}
	return p, true
}
