package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contest-backend/internal/common/errors"
	"contest-backend/internal/common/middleware"
	"contest-backend/internal/common/money"
	"contest-backend/internal/features/contest/models"
	"contest-backend/internal/features/contest/service"
)

// @Summary Record a currency price sample
// @Tags admin
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param request body CurrencyPriceRequest true "Sample keyed by unix seconds"
// @Success 201 {object} models.PriceSample
// @Failure 400 {object} middleware.ErrorResponse "Too old, duplicate or non-positive"
// @Failure 403 {object} middleware.ErrorResponse "Admin access required"
// @Router /admin/prices/currency [post]
func (h *ContestHandler) recordCurrencyPrice(c *gin.Context) {
	var req CurrencyPriceRequest
	if !bindJSON(c, &req) {
		return
	}
	value, err := money.Parse(req.Value)
	if err != nil {
		middleware.HandleError(c, errors.NewValidationError("value", err.Error()))
		return
	}
	sample, err := h.service.RecordCurrencyPrice(c.Request.Context(), caller(c), req.OpenTime, value, req.IntervalSec)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sample)
}

// @Summary Record an asset price sample
// @Tags admin
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param request body AssetPriceRequest true "Sample keyed by unix milliseconds"
// @Success 201 {object} models.PriceSample
// @Router /admin/prices/asset [post]
func (h *ContestHandler) recordAssetPrice(c *gin.Context) {
	var req AssetPriceRequest
	if !bindJSON(c, &req) {
		return
	}
	value, err := money.Parse(req.Value)
	if err != nil {
		middleware.HandleError(c, errors.NewValidationError("value", err.Error()))
		return
	}
	sample, err := h.service.RecordAssetPrice(c.Request.Context(), caller(c), req.Time, value)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sample)
}

// @Summary Create category
// @Tags admin
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param request body CategoryInput true "Category"
// @Success 201 {object} models.Category
// @Failure 409 {object} middleware.ErrorResponse "Category exists"
// @Router /admin/categories [post]
func (h *ContestHandler) createCategory(c *gin.Context) {
	var in service.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	cat, err := h.service.CreateCategory(c.Request.Context(), caller(c), in)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *ContestHandler) editCategory(c *gin.Context) {
	var in service.CategoryEdit
	if !bindJSON(c, &in) {
		return
	}
	cat, err := h.service.EditCategory(c.Request.Context(), caller(c), c.Param("id"), in)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

// @Summary Create level
// @Description Contests snapshot the level when they start; later edits only affect new contests.
// @Tags admin
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param request body LevelInput true "Level"
// @Success 201 {object} models.Level
// @Router /admin/levels [post]
func (h *ContestHandler) createLevel(c *gin.Context) {
	var in service.LevelInput
	if !bindJSON(c, &in) {
		return
	}
	level, err := h.service.CreateLevel(c.Request.Context(), caller(c), in)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, level)
}

func (h *ContestHandler) editLevel(c *gin.Context) {
	var in service.LevelInput
	if !bindJSON(c, &in) {
		return
	}
	level, err := h.service.EditLevel(c.Request.Context(), caller(c), c.Param("id"), in)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, level)
}

func (h *ContestHandler) setConfig(c *gin.Context) {
	var cfg models.GlobalConfig
	if !bindJSON(c, &cfg) {
		return
	}
	saved, err := h.service.SetGlobalConfig(c.Request.Context(), caller(c), cfg)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// @Summary Mirror an external profile
// @Tags admin
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param request body ProfileInput true "Profile"
// @Success 200 {object} models.Profile
// @Failure 409 {object} middleware.ErrorResponse "Username belongs to another profile"
// @Router /admin/profiles [post]
func (h *ContestHandler) syncProfile(c *gin.Context) {
	var in service.ProfileInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.service.SyncProfile(c.Request.Context(), caller(c), in)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Run a sweep
// @Description Settles finished contests, re-checks entries waiting for a price and archives old entries. Safe to call repeatedly.
// @Tags admin
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} service.SweepReport
// @Router /admin/sweep [post]
func (h *ContestHandler) sweep(c *gin.Context) {
	report, err := h.service.Sweep(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	if report.Settled == nil {
		report.Settled = []uint64{}
	}
	c.JSON(http.StatusOK, report)
}

// @Summary Block an entry
// @Description Claws back exactly what settlement credited for the entry.
// @Tags admin
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Entry ID"
// @Success 200 {object} models.Entry
// @Failure 409 {object} middleware.ErrorResponse "Already blocked"
// @Router /admin/entries/{id}/block [post]
func (h *ContestHandler) blockEntry(c *gin.Context) {
	entry, err := h.service.BlockEntry(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *ContestHandler) getTransfers(c *gin.Context) {
	transfers, err := h.service.Transfers(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	if transfers == nil {
		transfers = []models.TransferRequest{}
	}
	c.JSON(http.StatusOK, TransfersResponse{Transfers: transfers, Total: len(transfers)})
}
