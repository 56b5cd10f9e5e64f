package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/farmashop/pricingapi/internal/domain"
	"github.com/farmashop/pricingapi/internal/repository"
	"github.com/farmashop/pricingapi/internal/service"
	"github.com/farmashop/pricingapi/pkg/errors"
)

// HandleActiveMatrix handles GET /tarifas-clientes/matriz
func HandleActiveMatrix(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		brandID := parseOptionalInt64(c.Query("marcaId"))

		matrixService := service.NewMatrixService(repos, logger)
		matrix, err := matrixService.BuildActiveMatrix(c.Request.Context(), brandID)
		if err != nil {
			logger.Error("Failed to build active matrix", zap.Error(err))
			renderError(c, http.StatusInternalServerError, err.Error())
			return
		}

		c.HTML(http.StatusOK, "matrix.html", gin.H{
			"matrix":  matrix,
			"marcaId": c.Query("marcaId"),
		})
	}
}

// HandleTariffPrices handles GET /tarifas-clientes/:id/precios
func HandleTariffPrices(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseTariffID(c)
		if !ok {
			return
		}

		refTariffID := domain.GeneralTariffID
		if ref := parseOptionalInt64(c.Query("refTarifaId")); ref != nil {
			refTariffID = domain.TariffID(*ref)
		}
		brandID := parseOptionalInt64(c.Query("marcaId"))

		matrixService := service.NewMatrixService(repos, logger)
		matrix, err := matrixService.BuildPriceMatrix(c.Request.Context(), id, refTariffID, brandID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				renderError(c, http.StatusNotFound, "tarifa no encontrada")
				return
			}
			logger.Error("Failed to build price matrix", zap.Int64("tariff_id", int64(id)), zap.Error(err))
			renderError(c, http.StatusInternalServerError, err.Error())
			return
		}

		data := gin.H{
			"matrix":      matrix,
			"marcaId":     c.Query("marcaId"),
			"marcaNombre": c.Query("marcaNombre"),
			"refTarifaId": c.Query("refTarifaId"),
			"msg":         c.Query("msg"),
			"error":       c.Query("error"),
		}

		if c.Query("debug") == "1" {
			dbName, err := repos.Article.DatabaseName(c.Request.Context())
			if err != nil {
				dbName = "error: " + err.Error()
			}
			data["debugDatabase"] = dbName
		}

		c.HTML(http.StatusOK, "prices.html", data)
	}
}

// HandleBulkSavePrices handles POST /tarifas-clientes/:id/precios
func HandleBulkSavePrices(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseTariffID(c)
		if !ok {
			return
		}

		req := service.BulkSaveRequest{
			// PostFormMap accepts both nested and bracket-flattened keys
			// (precios[123]=x), so stale form encoders keep working.
			Prices: c.PostFormMap("precios"),
			SKUs:   c.PostFormMap("skus"),
		}

		reconciler := service.NewReconcilerService(repos, logger)
		result, err := reconciler.Reconcile(c.Request.Context(), id, req)
		if err != nil {
			logger.Error("Bulk price save failed", zap.Int64("tariff_id", int64(id)), zap.Error(err))
			c.Redirect(http.StatusSeeOther, pricesRedirect(c, "error", "no se pudieron guardar los precios: "+err.Error()))
			return
		}

		param, message := result.OutcomeMessage()
		c.Redirect(http.StatusSeeOther, pricesRedirect(c, param, message))
	}
}

// pricesRedirect rebuilds the prices URL with the outcome flash, carrying the
// brand and reference tariff filters through the redirect.
func pricesRedirect(c *gin.Context, param, message string) string {
	values := url.Values{}
	if marcaID := c.PostForm("marcaId"); marcaID != "" {
		values.Set("marcaId", marcaID)
	}
	if refTariffID := c.PostForm("refTarifaId"); refTariffID != "" {
		values.Set("refTarifaId", refTariffID)
	}
	values.Set(param, message)
	return "/tarifas-clientes/" + c.Param("id") + "/precios?" + values.Encode()
}

func parseOptionalInt64(value string) *int64 {
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil
	}
	return &parsed
}
