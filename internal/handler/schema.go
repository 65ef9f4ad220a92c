package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/minivalidation/internal/errs"
	"github.com/deppfellow/minivalidation/internal/server"
	"github.com/deppfellow/minivalidation/internal/validation"
)

// RuleTable is the published form of one request type's rule table.
type RuleTable struct {
	Name   string                       `json:"name"`
	Fields []validation.FieldDescriptor `json:"fields"`
}

// DescribeRules publishes rules under name.
func DescribeRules[T any](name string, rules *validation.RuleSet[T]) RuleTable {
	return RuleTable{Name: name, Fields: rules.Describe()}
}

// SchemaHandler lets clients discover the rules request bodies are checked
// against, so forms can validate before submitting.
type SchemaHandler struct {
	Handler
	tables []RuleTable
}

func NewSchemaHandler(s *server.Server, tables ...RuleTable) *SchemaHandler {
	return &SchemaHandler{
		Handler: NewHandler(s),
		tables:  tables,
	}
}

// ListRules handles GET /api/v1/rules.
func (h *SchemaHandler) ListRules(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"tables": h.tables,
	})
}

// GetRules handles GET /api/v1/rules/:name.
func (h *SchemaHandler) GetRules(c echo.Context) error {
	name := c.Param("name")
	for _, table := range h.tables {
		if table.Name == name {
			return c.JSON(http.StatusOK, table)
		}
	}
	return errs.NewNotFoundError("No rule table named "+name, true, nil)
}
