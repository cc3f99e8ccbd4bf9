package httpserver

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartPageAfterRepeatedAdds(t *testing.T) {
	env := newTestServer(t, staticSource(testFeed))
	v := newVisitor(t, env)

	for i := 0; i < 2; i++ {
		resp, body := v.add("Pea A")
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
	}

	doc := v.page("/cart")
	rows := doc.Find(".cart-item")
	require.Equal(t, 1, rows.Length())
	assert.Equal(t, "0", rows.AttrOr("data-index", ""))
	assert.Equal(t, "Pea A", strings.TrimSpace(rows.Find(".ci-title").Text()))
	assert.Equal(t, "2", rows.Find("input.qty").AttrOr("value", ""))
	qtyForm := rows.Find("form.ci-qty")
	assert.Equal(t, "/cart/qty", qtyForm.AttrOr("hx-post", ""))
	assert.Equal(t, "change", qtyForm.AttrOr("hx-trigger", ""))
	assert.Equal(t, "0", qtyForm.Find(`input[name="index"]`).AttrOr("value", ""))
	assert.Equal(t, "100\u00a0₴", strings.TrimSpace(rows.Find(".price").Text()))
	assert.Equal(t, "200\u00a0₴", strings.TrimSpace(rows.Find(".subtotal").Text()))
	assert.Equal(t, "Насіння", strings.TrimSpace(rows.Find(".badge").Text()))
	assert.Equal(t, "2", doc.Find("#sum-count").Text())
	assert.Equal(t, "200\u00a0₴", doc.Find("#sum-total").Text())
	assert.Equal(t, "2", doc.Find("#cart-count").Text())
	_, hidden := doc.Find("#cart-empty").Attr("hidden")
	assert.True(t, hidden)
}

func TestCartRowWithoutPrice(t *testing.T) {
	env := newTestServer(t, staticSource(testFeed))
	v := newVisitor(t, env)

	_, _ = v.add("Pea A")
	resp, _ := v.add("Carrot")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc := v.page("/cart")
	carrot := doc.Find(`.cart-item[data-index="1"]`)
	assert.Equal(t, "за запитом", strings.TrimSpace(carrot.Find(".price").Text()))
	assert.Equal(t, "—", strings.TrimSpace(carrot.Find(".subtotal").Text()))
	assert.Equal(t, "2", doc.Find("#sum-count").Text())
	assert.Equal(t, "100\u00a0₴", doc.Find("#sum-total").Text(), "unpriced rows add nothing to the total")
}

func TestCartEmptyHidesSummary(t *testing.T) {
	env := newTestServer(t, staticSource(testFeed))
	v := newVisitor(t, env)

	doc := v.page("/cart")
	assert.Equal(t, 0, doc.Find(".cart-item").Length())
	assert.Equal(t, 0, doc.Find("#cart-summary").Length())
	_, hidden := doc.Find("#cart-empty").Attr("hidden")
	assert.False(t, hidden)
	assert.Equal(t, "Ваш кошик порожній.", strings.TrimSpace(doc.Find("#cart-empty").Text()))
}

func TestCartSetQtyAndRemove(t *testing.T) {
	env := newTestServer(t, staticSource(testFeed))
	v := newVisitor(t, env)
	_, _ = v.add("Pea A")
	_, _ = v.add("Pea B")

	resp, body := v.htmx(http.MethodPost, "/cart/qty", url.Values{"index": {"0"}, "qty": {"5000"}}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	doc := parseHTML(t, body)
	assert.Equal(t, "999", doc.Find(`.cart-item[data-index="0"] input.qty`).AttrOr("value", ""), "cart page caps at 999 regardless of stock")

	resp, body = v.htmx(http.MethodPost, "/cart/qty", url.Values{"index": {"1"}, "qty": {"abc"}}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", parseHTML(t, body).Find(`.cart-item[data-index="1"] input.qty`).AttrOr("value", ""))

	resp, _ = v.htmx(http.MethodPost, "/cart/qty", url.Values{"index": {"-1"}, "qty": {"2"}}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = v.htmx(http.MethodPost, "/cart/qty", url.Values{"index": {"7"}, "qty": {"2"}}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "out of range rows are ignored")
	assert.Equal(t, 2, parseHTML(t, body).Find(".cart-item").Length())

	resp, body = v.htmx(http.MethodPost, "/cart/remove", url.Values{"index": {"0"}}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc = parseHTML(t, body)
	require.Equal(t, 1, doc.Find(".cart-item").Length())
	assert.Equal(t, "Pea B", strings.TrimSpace(doc.Find(".ci-title").Text()))
	assert.Equal(t, "0", doc.Find(".cart-item").AttrOr("data-index", ""), "indexes follow storage order")
}

func TestCartClearAsksFirst(t *testing.T) {
	env := newTestServer(t, staticSource(testFeed))
	v := newVisitor(t, env)
	_, _ = v.add("Pea A")

	resp, body := v.htmx(http.MethodPost, "/cart/clear", url.Values{}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Очистити весь кошик?")
	assert.Equal(t, 1, v.page("/cart").Find(".cart-item").Length(), "nothing cleared before confirmation")

	resp, body = v.htmx(http.MethodPost, "/cart/clear?confirm=yes", url.Values{}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := parseHTML(t, body)
	assert.Equal(t, 0, doc.Find(".cart-item").Length())
	assert.Equal(t, 0, doc.Find("#cart-summary").Length())
}

func TestCartBadgeCountsQuantities(t *testing.T) {
	env := newTestServer(t, staticSource(testFeed))
	v := newVisitor(t, env)
	_, _ = v.add("Pea A")
	_, _ = v.add("Pea A")
	_, _ = v.add("Pea B")

	resp, body := v.do(http.MethodGet, "/fragments/cart-badge", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "3", strings.TrimSpace(body))

	other := newVisitor(t, env)
	_, body = other.do(http.MethodGet, "/fragments/cart-badge", nil, nil)
	assert.Equal(t, "0", strings.TrimSpace(body), "each visitor has their own cart")
}
