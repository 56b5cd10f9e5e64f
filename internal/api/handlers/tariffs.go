package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/farmashop/pricingapi/internal/domain"
	"github.com/farmashop/pricingapi/internal/repository"
	"github.com/farmashop/pricingapi/internal/service"
	"github.com/farmashop/pricingapi/pkg/errors"
)

// HandleListTariffs handles GET /tarifas-clientes
func HandleListTariffs(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tariffs, err := repos.Tariff.List(c.Request.Context())
		if err != nil {
			logger.Error("Failed to list tariffs", zap.Error(err))
			renderError(c, http.StatusInternalServerError, err.Error())
			return
		}

		c.HTML(http.StatusOK, "tariffs.html", gin.H{
			"tariffs": tariffs,
			"msg":     c.Query("msg"),
			"error":   c.Query("error"),
		})
	}
}

// HandleCreateTariff handles POST /tarifas-clientes
func HandleCreateTariff(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		input := tariffInputFromForm(c)

		tariffService := service.NewTariffService(repos, logger)
		tariff, err := tariffService.Create(c.Request.Context(), input)
		if err != nil {
			if _, ok := err.(*errors.ErrValidation); ok {
				redirectFlash(c, "/tarifas-clientes", "error", err.Error())
				return
			}
			logger.Error("Failed to create tariff", zap.Error(err))
			redirectFlash(c, "/tarifas-clientes", "error", "no se pudo crear la tarifa")
			return
		}

		redirectFlash(c, "/tarifas-clientes", "msg", "Tarifa \""+tariff.Name+"\" creada")
	}
}

// HandleEditTariff handles GET /tarifas-clientes/:id
func HandleEditTariff(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseTariffID(c)
		if !ok {
			return
		}

		tariff, err := repos.Tariff.GetByID(c.Request.Context(), id)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				renderError(c, http.StatusNotFound, "tarifa no encontrada")
				return
			}
			logger.Error("Failed to get tariff", zap.Int64("tariff_id", int64(id)), zap.Error(err))
			renderError(c, http.StatusInternalServerError, err.Error())
			return
		}

		// Reference selector for the prices page link; failure only loses the
		// dropdown.
		selector, err := repos.Tariff.ListForReferenceSelector(c.Request.Context())
		if err != nil {
			logger.Warn("Failed to list reference tariffs", zap.Error(err))
			selector = nil
		}

		c.HTML(http.StatusOK, "tariff_edit.html", gin.H{
			"tariff":   tariff,
			"selector": selector,
			"msg":      c.Query("msg"),
			"error":    c.Query("error"),
		})
	}
}

// HandleUpdateTariff handles POST /tarifas-clientes/:id
func HandleUpdateTariff(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseTariffID(c)
		if !ok {
			return
		}
		self := "/tarifas-clientes/" + c.Param("id")

		input := tariffInputFromForm(c)

		tariffService := service.NewTariffService(repos, logger)
		if _, err := tariffService.Update(c.Request.Context(), id, input); err != nil {
			switch err.(type) {
			case *errors.ErrValidation:
				redirectFlash(c, self, "error", err.Error())
			case *errors.ErrNotFound:
				renderError(c, http.StatusNotFound, "tarifa no encontrada")
			default:
				logger.Error("Failed to update tariff", zap.Int64("tariff_id", int64(id)), zap.Error(err))
				redirectFlash(c, self, "error", "no se pudo guardar la tarifa")
			}
			return
		}

		redirectFlash(c, self, "msg", "Tarifa guardada")
	}
}

// tariffInputFromForm reads the tariff form fields. Dates arrive as
// YYYY-MM-DD; unparseable dates are treated as absent.
func tariffInputFromForm(c *gin.Context) service.TariffInput {
	input := service.TariffInput{
		Name:   c.PostForm("name"),
		Active: isChecked(c.PostForm("active")),
		Notes:  c.PostForm("notes"),
	}
	input.StartDate = parseFormDate(c.PostForm("startDate"))
	input.EndDate = parseFormDate(c.PostForm("endDate"))
	return input
}

func isChecked(value string) bool {
	switch value {
	case "1", "true", "on", "activa":
		return true
	}
	return false
}

func parseFormDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &t
}

// parseTariffID reads the :id route param. Id 0 is valid (General).
func parseTariffID(c *gin.Context) (domain.TariffID, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 0 {
		renderError(c, http.StatusNotFound, "tarifa no encontrada")
		return 0, false
	}
	return domain.TariffID(id), true
}

func redirectFlash(c *gin.Context, path, param, message string) {
	c.Redirect(http.StatusSeeOther, path+"?"+param+"="+url.QueryEscape(message))
}

func renderError(c *gin.Context, status int, message string) {
	c.HTML(status, "error.html", gin.H{
		"status":  status,
		"message": message,
	})
}
