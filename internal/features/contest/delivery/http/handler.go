package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"contest-backend/internal/common/errors"
	"contest-backend/internal/common/middleware"
	"contest-backend/internal/common/money"
	"contest-backend/internal/features/contest/models"
	"contest-backend/internal/features/contest/service"
)

type ContestHandler struct {
	service service.ContestService
}

func NewContestHandler(service service.ContestService) *ContestHandler {
	return &ContestHandler{service: service}
}

// RegisterRoutes mounts the API. auth must store a middleware.Caller;
// escrowGuard protects the deposit notification endpoint.
func (h *ContestHandler) RegisterRoutes(router *gin.RouterGroup, auth, escrowGuard gin.HandlerFunc) {
	escrow := router.Group("/escrow", escrowGuard)
	{
		escrow.POST("/deposits", h.applyDeposit)
	}

	api := router.Group("", auth, middleware.RequireAuth())
	{
		api.GET("/prices/:series", h.getPriceSamples)
		api.GET("/categories/:id", h.getCategory)
		api.GET("/levels/:id", h.getLevel)
		api.GET("/config", h.getConfig)
		api.GET("/profiles/:id", h.getProfile)
		api.GET("/profiles/by-username/:hash", h.getProfileByUsernameHash)

		api.POST("/entries", h.enter)
		api.GET("/entries", h.getEntries)
		api.GET("/entries/:id", h.getEntry)
		api.POST("/entries/:id/refund", h.refund)
		api.POST("/entries/:id/votes", h.vote)

		api.GET("/contests/:id", h.getContest)
		api.GET("/contests/:id/votes", h.getContestVotes)
		api.GET("/contests/:id/settlement", h.getSettlement)
	}

	admin := api.Group("/admin", middleware.RequireAdmin())
	{
		admin.POST("/prices/currency", h.recordCurrencyPrice)
		admin.POST("/prices/asset", h.recordAssetPrice)
		admin.POST("/categories", h.createCategory)
		admin.PUT("/categories/:id", h.editCategory)
		admin.POST("/levels", h.createLevel)
		admin.PUT("/levels/:id", h.editLevel)
		admin.PUT("/config", h.setConfig)
		admin.POST("/profiles", h.syncProfile)
		admin.POST("/sweep", h.sweep)
		admin.POST("/entries/:id/block", h.blockEntry)
		admin.GET("/transfers", h.getTransfers)
	}
}

// caller переводит Telegram-пользователя в идентичность движка
func caller(c *gin.Context) models.Caller {
	tg, _ := middleware.CallerFrom(c)
	return models.Caller{Account: tg.Account(), Admin: tg.Admin}
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.HandleError(c, errors.NewValidationError("body", err.Error()))
		return false
	}
	return true
}

func uintParam(c *gin.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		middleware.HandleError(c, errors.NewValidationError(name, "must be a positive integer"))
		return 0, false
	}
	return v, true
}

func int64Query(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		middleware.HandleError(c, errors.NewValidationError(name, "must be an integer"))
		return 0, false
	}
	return v, true
}

// @Summary Record an escrow deposit
// @Description Called by the escrow service for every transfer into an entry. The deposit is always recorded; the status tells whether the entry joined a contest.
// @Tags escrow
// @Accept json
// @Produce json
// @Security EscrowToken
// @Param request body DepositRequest true "Deposit"
// @Success 200 {object} service.ActivationResult
// @Failure 400 {object} middleware.ErrorResponse "Invalid quantity or foreign token"
// @Failure 401 {object} middleware.ErrorResponse "Invalid escrow token"
// @Failure 404 {object} middleware.ErrorResponse "Entry not found"
// @Router /escrow/deposits [post]
func (h *ContestHandler) applyDeposit(c *gin.Context) {
	var req DepositRequest
	if !bindJSON(c, &req) {
		return
	}
	amount, symbol, err := money.ParseAsset(req.Quantity)
	if err != nil {
		middleware.HandleError(c, errors.NewValidationError("quantity", err.Error()))
		return
	}

	res, err := h.service.ApplyPayment(c.Request.Context(), req.EntryID, amount, symbol)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Price samples
// @Tags prices
// @Produce json
// @Security TelegramInitData
// @Param series path string true "currency or asset"
// @Param from query int false "Lower bound (inclusive)"
// @Param to query int false "Upper bound (inclusive), 0 = none"
// @Success 200 {object} PriceSamplesResponse
// @Router /prices/{series} [get]
func (h *ContestHandler) getPriceSamples(c *gin.Context) {
	from, ok := int64Query(c, "from")
	if !ok {
		return
	}
	to, ok := int64Query(c, "to")
	if !ok {
		return
	}
	series := models.Series(c.Param("series"))
	samples, err := h.service.PriceSamples(c.Request.Context(), series, from, to)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	if samples == nil {
		samples = []models.PriceSample{}
	}
	c.JSON(http.StatusOK, PriceSamplesResponse{Series: series, Samples: samples})
}

func (h *ContestHandler) getCategory(c *gin.Context) {
	cat, err := h.service.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *ContestHandler) getLevel(c *gin.Context) {
	level, err := h.service.GetLevel(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, level)
}

func (h *ContestHandler) getConfig(c *gin.Context) {
	cfg, err := h.service.GlobalConfig(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// @Summary Get profile
// @Tags profiles
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Profile ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} middleware.ErrorResponse "Profile not found"
// @Router /profiles/{id} [get]
func (h *ContestHandler) getProfile(c *gin.Context) {
	p, err := h.service.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ContestHandler) getProfileByUsernameHash(c *gin.Context) {
	p, err := h.service.ProfileByUsernameHash(c.Request.Context(), c.Param("hash"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Enter a level
// @Description Creates an open entry. It joins a contest once the escrow deposit covers the level price.
// @Tags entries
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param request body EntryInput true "Entry"
// @Success 201 {object} models.Entry
// @Failure 400 {object} middleware.ErrorResponse "Invalid request"
// @Failure 401 {object} middleware.ErrorResponse "Caller does not own the profile"
// @Failure 412 {object} middleware.ErrorResponse "A live entry already exists"
// @Router /entries [post]
func (h *ContestHandler) enter(c *gin.Context) {
	var in service.EntryInput
	if !bindJSON(c, &in) {
		return
	}
	entry, err := h.service.Enter(c.Request.Context(), caller(c), in)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// @Summary Entries of a user in a level
// @Tags entries
// @Produce json
// @Security TelegramInitData
// @Param user_id query string true "Profile ID"
// @Param level_id query string true "Level ID"
// @Success 200 {object} EntriesResponse
// @Router /entries [get]
func (h *ContestHandler) getEntries(c *gin.Context) {
	userID, levelID := c.Query("user_id"), c.Query("level_id")
	if userID == "" || levelID == "" {
		middleware.HandleError(c, errors.NewValidationError("query", "user_id and level_id are required"))
		return
	}
	entries, err := h.service.EntriesByUserLevel(c.Request.Context(), userID, levelID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	c.JSON(http.StatusOK, EntriesResponse{Entries: entries, Total: len(entries)})
}

func (h *ContestHandler) getEntry(c *gin.Context) {
	entry, err := h.service.GetEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// @Summary Refund an unassigned entry
// @Tags entries
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Entry ID"
// @Param request body RefundRequest true "Destination"
// @Success 200 {object} models.TransferRequest
// @Failure 400 {object} middleware.ErrorResponse "Invalid address"
// @Failure 412 {object} middleware.ErrorResponse "Entry already assigned or empty"
// @Router /entries/{id}/refund [post]
func (h *ContestHandler) refund(c *gin.Context) {
	var req RefundRequest
	if !bindJSON(c, &req) {
		return
	}
	tr, err := h.service.RefundEntry(c.Request.Context(), caller(c), c.Param("id"), req.To, req.Memo)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, tr)
}

// @Summary Vote for an entry
// @Tags votes
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Entry ID"
// @Param request body VoteRequest true "Voter"
// @Success 201 {object} models.Vote
// @Failure 412 {object} middleware.ErrorResponse "Outside the voting window or already voted"
// @Router /entries/{id}/votes [post]
func (h *ContestHandler) vote(c *gin.Context) {
	var req VoteRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.service.Vote(c.Request.Context(), caller(c), c.Param("id"), req.VoterUserID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// @Summary Get contest
// @Description Status is derived from the current time: open, closed, voting, settleable or settled.
// @Tags contests
// @Produce json
// @Security TelegramInitData
// @Param id path int true "Contest ID"
// @Success 200 {object} service.ContestView
// @Failure 404 {object} middleware.ErrorResponse "Contest not found"
// @Router /contests/{id} [get]
func (h *ContestHandler) getContest(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	view, err := h.service.GetContest(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ContestHandler) getContestVotes(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	votes, err := h.service.VotesByContest(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	if votes == nil {
		votes = []models.Vote{}
	}
	c.JSON(http.StatusOK, ContestVotesResponse{ContestID: id, Votes: votes, Total: len(votes)})
}

func (h *ContestHandler) getSettlement(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	st, err := h.service.GetSettlement(ctx, id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	cfg, err := h.service.GlobalConfig(ctx)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, SettlementView{
		Settlement: st,
		Display: map[string]string{
			"escrow":         money.Format(st.Escrow, cfg.CurrencySymbol),
			"fee":            money.Format(st.Fee, cfg.CurrencySymbol),
			"net_pool":       money.Format(st.NetPool, cfg.CurrencySymbol),
			"to_fee_account": money.Format(st.ToFee, cfg.CurrencySymbol),
		},
	})
}
