package echoServer

import (
	"bookgalaxy/app/echoServer/controller/announcement"
	"bookgalaxy/app/echoServer/controller/auth"
	"bookgalaxy/app/echoServer/controller/book"
	"bookgalaxy/app/echoServer/controller/bookmark"
	"bookgalaxy/app/echoServer/controller/cart"
	"bookgalaxy/app/echoServer/controller/fulfillment"
	"bookgalaxy/app/echoServer/controller/member"
	"bookgalaxy/app/echoServer/controller/order"
	"bookgalaxy/app/echoServer/controller/review"
	"bookgalaxy/service/policy"
	jwtutil "bookgalaxy/util/jwt"

	"github.com/labstack/echo/v4"
)

type C struct {
	Auth         *auth.Controller
	Book         *book.Controller
	Cart         *cart.Controller
	Order        *order.Controller
	Fulfillment  *fulfillment.Controller
	Review       *review.Controller
	Bookmark     *bookmark.Controller
	Announcement *announcement.Controller
	Member       *member.Controller
	JWT          jwtutil.Config
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/members/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)
	pub.GET("/books", c.Book.List)
	pub.GET("/books/:id", c.Book.Detail)
	pub.GET("/books/:id/reviews", c.Review.ListByBook)
	pub.GET("/announcements/active", c.Announcement.Active)

	// Auth
	auth := e.Group("/v1", JWTAuth(c.JWT))

	// Catalog (staff, admin)
	books := Guard(policy.ManageBooks)
	auth.POST("/books", c.Book.Create, books)
	auth.PUT("/books/:id", c.Book.Update, books)
	auth.DELETE("/books/:id", c.Book.Delete, books)

	// Cart
	useCart := Guard(policy.UseCart)
	auth.GET("/cart", c.Cart.View, useCart)
	auth.GET("/cart/summary", c.Cart.Summary, useCart)
	auth.DELETE("/cart", c.Cart.Clear, useCart)
	auth.POST("/cart/items", c.Cart.Add, useCart)
	auth.PUT("/cart/items/:bookId", c.Cart.SetQuantity, useCart)
	auth.DELETE("/cart/items/:bookId", c.Cart.Remove, useCart)

	// Orders. Per-order routes are checked against the owner in the service.
	auth.POST("/orders", c.Order.Checkout, Guard(policy.Checkout))
	auth.GET("/orders/my", c.Order.Mine, Guard(policy.Checkout))
	auth.GET("/orders/:id", c.Order.Get)
	auth.POST("/orders/:id/cancel", c.Order.Cancel)

	// Reviews
	auth.GET("/books/:id/can-review", c.Review.CanReview, Guard(policy.WriteReview))
	auth.POST("/books/:id/reviews", c.Review.Create, Guard(policy.WriteReview))
	auth.PUT("/reviews/:id", c.Review.Update)
	auth.DELETE("/reviews/:id", c.Review.Delete)

	// Bookmarks
	marks := Guard(policy.UseBookmarks)
	auth.GET("/bookmarks", c.Bookmark.List, marks)
	auth.POST("/bookmarks/:bookId", c.Bookmark.Add, marks)
	auth.DELETE("/bookmarks/:bookId", c.Bookmark.Remove, marks)

	// Counter (staff)
	counter := Guard(policy.FulfillOrders)
	auth.POST("/fulfillments", c.Fulfillment.Fulfill, counter)
	auth.GET("/fulfillments/pending/:code", c.Fulfillment.Pending, counter)
	auth.GET("/fulfillments/mine", c.Fulfillment.Mine, counter)

	// Admin
	auth.POST("/staff", c.Auth.CreateStaff, Guard(policy.CreateStaff))

	members := Guard(policy.ManageMembers)
	auth.GET("/members", c.Member.List, members)
	auth.GET("/members/:id", c.Member.Get, members)
	auth.DELETE("/members/:id", c.Member.Delete, members)

	news := Guard(policy.ManageAnnouncements)
	auth.POST("/announcements", c.Announcement.Create, news)
	auth.PUT("/announcements/:id", c.Announcement.Update, news)
	auth.DELETE("/announcements/:id", c.Announcement.Delete, news)
}
