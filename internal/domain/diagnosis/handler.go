package diagnosis

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/diagnoses", h.ListDiagnoses)
	api.GET("/diagnoses/:clientId", h.GetLatestDiagnosis)
	api.POST("/diagnoses/:clientId", h.CreateDiagnosis)
	api.PUT("/diagnoses/:id", h.UpdateDiagnosis)
}

// httpError maps service errors onto responses. Store failures keep their
// detail in Internal for the error handler to log.
func httpError(err error) error {
	if msg, ok := InputError(err); ok {
		return echo.NewHTTPError(http.StatusBadRequest, msg)
	}
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "server error").SetInternal(err)
}

func bindFields(c echo.Context) (Fields, error) {
	var f Fields
	if err := c.Bind(&f); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
			return f, he
		}
		return f, echo.NewHTTPError(http.StatusBadRequest, ErrInvalidBody.Error()).SetInternal(err)
	}
	return f, nil
}

func (h *Handler) ListDiagnoses(c echo.Context) error {
	items, err := h.svc.ListAll(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetLatestDiagnosis(c echo.Context) error {
	d, err := h.svc.GetLatestByClient(c.Request().Context(), c.Param("clientId"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) CreateDiagnosis(c echo.Context) error {
	// The client id is checked before the body so a bad id wins over a bad body.
	if !IsValidClientID(c.Param("clientId")) {
		return httpError(ErrInvalidClientID)
	}
	f, err := bindFields(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Create(c.Request().Context(), c.Param("clientId"), f)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) UpdateDiagnosis(c echo.Context) error {
	f, err := bindFields(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Update(c.Request().Context(), c.Param("id"), f)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}
