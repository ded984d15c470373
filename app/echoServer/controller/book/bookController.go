package book

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"bookgalaxy/app/echoServer/httperr"
	"bookgalaxy/app/echoServer/reqx"
	"bookgalaxy/app/echoServer/validation"
	"bookgalaxy/model"
	bookrepo "bookgalaxy/repository/book"
	booksvc "bookgalaxy/service/book"
	"bookgalaxy/util/apperr"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const HeaderTotalCount = "X-Total-Count"

type Controller struct {
	Svc booksvc.Service
	V   *validation.Validator
	Log *slog.Logger
}

// Create
// @Summary      Add a book to the catalog
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  model.BookInput  true  "Book"
// @Success      201  {object}  model.Book
// @Failure      400  {object}  httperr.Body
// @Failure      403  {object}  httperr.Body
// @Router       /v1/books [post]
func (h *Controller) Create(c echo.Context) error {
	var in model.BookInput
	if err := reqx.Body(c, h.V, &in); err != nil {
		return httperr.Write(c, h.Log, "book create", err)
	}
	b, err := h.Svc.Create(c.Request().Context(), in)
	if err != nil {
		return httperr.Write(c, h.Log, "book create", err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Update
// @Summary      Replace a book's details
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int              true  "Book ID"
// @Param        payload  body  model.BookInput  true  "Book"
// @Success      200  {object}  model.Book
// @Failure      400  {object}  httperr.Body
// @Failure      404  {object}  httperr.Body
// @Router       /v1/books/{id} [put]
func (h *Controller) Update(c echo.Context) error {
	id, err := reqx.ID(c, "id")
	if err != nil {
		return httperr.Write(c, h.Log, "book update", err)
	}
	var in model.BookInput
	if err := reqx.Body(c, h.V, &in); err != nil {
		return httperr.Write(c, h.Log, "book update", err)
	}
	b, err := h.Svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return httperr.Write(c, h.Log, "book update", err)
	}
	return c.JSON(http.StatusOK, b)
}

// Delete
// @Summary      Remove a book
// @Tags         books
// @Security     BearerAuth
// @Param        id  path  int  true  "Book ID"
// @Success      204
// @Failure      404  {object}  httperr.Body
// @Router       /v1/books/{id} [delete]
func (h *Controller) Delete(c echo.Context) error {
	id, err := reqx.ID(c, "id")
	if err != nil {
		return httperr.Write(c, h.Log, "book delete", err)
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return httperr.Write(c, h.Log, "book delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List
// @Summary      Browse the catalog
// @Description  Search, filter, sort and page books. List filters accept repeated keys or comma lists.
// @Tags         books
// @Produce      json
// @Param        q           query  string  false  "title, author, ISBN or description"
// @Param        genre       query  string  false  "genre(s)"
// @Param        author      query  string  false  "author(s)"
// @Param        language    query  string  false  "language(s)"
// @Param        format      query  string  false  "format(s)"
// @Param        publisher   query  string  false  "publisher(s)"
// @Param        min_price   query  number  false  "minimum price"
// @Param        max_price   query  number  false  "maximum price"
// @Param        min_rating  query  number  false  "minimum average rating"
// @Param        max_rating  query  number  false  "maximum average rating"
// @Param        in_stock    query  bool    false  "only books with stock"
// @Param        in_library  query  bool    false  "only purchasable books"
// @Param        category    query  string  false  "award | bestseller | new_release | deals"
// @Param        sort        query  string  false  "title | date | price_asc | price_desc | popularity"
// @Param        page        query  int     false  "page, from 1"
// @Param        page_size   query  int     false  "items per page (max 100)"
// @Success      200  {object}  booksvc.Page
// @Failure      400  {object}  httperr.Body
// @Router       /v1/books [get]
func (h *Controller) List(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return httperr.Write(c, h.Log, "book list", err)
	}
	page, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		return httperr.Write(c, h.Log, "book list", err)
	}
	c.Response().Header().Set(HeaderTotalCount, strconv.Itoa(page.Total))
	return c.JSON(http.StatusOK, page)
}

// Detail
// @Summary      Book detail
// @Tags         books
// @Produce      json
// @Param        id  path  int  true  "Book ID"
// @Success      200  {object}  model.Book
// @Failure      404  {object}  httperr.Body
// @Router       /v1/books/{id} [get]
func (h *Controller) Detail(c echo.Context) error {
	id, err := reqx.ID(c, "id")
	if err != nil {
		return httperr.Write(c, h.Log, "book detail", err)
	}
	b, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		return httperr.Write(c, h.Log, "book detail", err)
	}
	return c.JSON(http.StatusOK, b)
}

func parseFilter(c echo.Context) (bookrepo.Filter, error) {
	f := bookrepo.Filter{
		Search:     strings.TrimSpace(c.QueryParam("q")),
		Genres:     reqx.List(c, "genre"),
		Authors:    reqx.List(c, "author"),
		Languages:  reqx.List(c, "language"),
		Formats:    reqx.List(c, "format"),
		Publishers: reqx.List(c, "publisher"),
		Category:   bookrepo.Category(strings.TrimSpace(c.QueryParam("category"))),
		Sort:       bookrepo.Sort(strings.TrimSpace(c.QueryParam("sort"))),
	}
	fields := map[string]string{}

	var err error
	if f.MinPrice, err = decimalParam(c, "min_price"); err != nil {
		fields["min_price"] = "number"
	}
	if f.MaxPrice, err = decimalParam(c, "max_price"); err != nil {
		fields["max_price"] = "number"
	}
	if f.MinRating, err = floatParam(c, "min_rating"); err != nil {
		fields["min_rating"] = "number"
	}
	if f.MaxRating, err = floatParam(c, "max_rating"); err != nil {
		fields["max_rating"] = "number"
	}
	if f.InStock, err = reqx.Bool(c, "in_stock"); err != nil {
		fields["in_stock"] = "boolean"
	}
	if f.InLibrary, err = reqx.Bool(c, "in_library"); err != nil {
		fields["in_library"] = "boolean"
	}
	if f.Page, err = reqx.Int(c, "page", 1); err != nil {
		fields["page"] = "integer"
	}
	if f.PageSize, err = reqx.Int(c, "page_size", booksvc.DefaultPageSize); err != nil {
		fields["page_size"] = "integer"
	}
	if len(fields) > 0 {
		return f, apperr.Invalid(fields)
	}
	return f, nil
}

func decimalParam(c echo.Context, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.QueryParam(key))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func floatParam(c echo.Context, key string) (*float64, error) {
	raw := strings.TrimSpace(c.QueryParam(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
