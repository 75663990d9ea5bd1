package routes

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/hookbox/internal/app/domain"
)

// MessageLister serves paginated listings.
type MessageLister interface {
	List(ctx context.Context, filter domain.ListFilter) (domain.Page, error)
}

// MessageRoutes registers the read API.
type MessageRoutes struct {
	messages MessageLister
}

// NewMessageRoutes constructs message routes.
func NewMessageRoutes(messages MessageLister) *MessageRoutes {
	return &MessageRoutes{messages: messages}
}

// RegisterRoutes registers message endpoints.
func (m *MessageRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/messages", m.handleList)
}

func (m *MessageRoutes) handleList(c echo.Context) error {
	filter, err := domain.ParseListQuery(domain.ListQuery{
		Page:      c.QueryParam("page"),
		PageSize:  c.QueryParam("page_size"),
		Source:    c.QueryParam("source"),
		StartDate: c.QueryParam("start_date"),
		EndDate:   c.QueryParam("end_date"),
	})
	if err != nil {
		return validationResponse(c, err)
	}

	page, err := m.messages.List(c.Request().Context(), filter)
	if err != nil {
		if domain.IsValidation(err) {
			return validationResponse(c, err)
		}
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func validationResponse(c echo.Context, err error) error {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": validation.Error(),
			"field": validation.Field,
		})
	}
	return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
}
