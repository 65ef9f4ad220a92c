package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/minivalidation/internal/handler"
	"github.com/deppfellow/minivalidation/internal/model"
)

func registerV1Routes(g *echo.Group, h *handler.Handlers) {
	g.GET("/rules", h.Schema.ListRules)
	g.GET("/rules/:name", h.Schema.GetRules)

	contacts := g.Group("/contacts")
	contacts.POST("", handler.Handle(h.Contact.Handler, h.Contact.CreateContact, http.StatusCreated, model.CreateContactRules))
	contacts.POST("/validate", handler.HandleNoContent(h.Contact.Handler, h.Contact.ValidateContact, http.StatusNoContent, model.CreateContactRules))
	contacts.GET("/:id", h.Contact.GetContact)
	contacts.PATCH("/:id/notes", handler.Handle(h.Contact.Handler, h.Contact.UpdateNotes, http.StatusOK, model.UpdateNotesRules))
}
