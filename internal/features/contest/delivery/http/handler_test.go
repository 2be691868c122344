package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contest-backend/internal/common/middleware"
	"contest-backend/internal/features/contest/models"
	"contest-backend/internal/features/contest/service"
	"contest-backend/internal/features/contest/store"
)

const (
	adminID     = 1
	escrowToken = "escrow-secret"
	userHeader  = "X-Test-User"
)

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

func init() {
	gin.SetMode(gin.TestMode)
}

// testAuth stands in for TelegramAuth: the caller id comes from a header.
func testAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader(userHeader); raw != "" {
			id, _ := strconv.ParseInt(raw, 10, 64)
			middleware.SetCaller(c, middleware.Caller{TelegramID: id, Admin: id == adminID})
		}
		c.Next()
	}
}

type apiFixture struct {
	t      *testing.T
	router *gin.Engine
	clock  *fixedClock
}

func newFixture(t *testing.T) *apiFixture {
	t.Helper()
	clock := &fixedClock{t: time.Unix(1_700_000_000, 0)}
	eng := service.NewEngine(store.New(), service.WithClock(clock))
	require.NoError(t, eng.Bootstrap(context.Background(), models.GlobalConfig{
		EntryExpirationSec: 43200,
		PriceFreshnessSec:  1800,
		PriceRetentionSec:  43200,
		CurrencySymbol:     "TON",
		PriceSeries:        models.SeriesCurrency,
	}))

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler())
	NewContestHandler(eng).RegisterRoutes(r.Group("/api/v1"), testAuth(), middleware.RequireEscrowToken(escrowToken))
	return &apiFixture{t: t, router: r, clock: clock}
}

func (f *apiFixture) do(method, path string, as int64, body interface{}, headers ...string) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != 0 {
		req.Header.Set(userHeader, strconv.FormatInt(as, 10))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) mustDo(method, path string, as int64, body interface{}, wantStatus int) *httptest.ResponseRecorder {
	f.t.Helper()
	w := f.do(method, path, as, body)
	require.Equal(f.t, wantStatus, w.Code, w.Body.String())
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

// seed creates a category, a two-seat level, a fresh price and profiles for
// Telegram users 100 and 200.
func (f *apiFixture) seed() {
	f.t.Helper()
	f.mustDo(http.MethodPost, "/admin/categories", adminID, CategoryInput{ID: "video", Name: "Video"}, http.StatusCreated)
	f.mustDo(http.MethodPost, "/admin/levels", adminID, LevelInput{
		ID: "lvl", Name: "Starter", CategoryID: "video", Price: 1000, ParticipantLimit: 2,
		SubmissionPeriod: 3600, VotePeriod: 3600, Fee: 45, Prizes: []uint32{70, 30},
	}, http.StatusCreated)
	f.mustDo(http.MethodPost, "/admin/prices/currency", adminID, CurrencyPriceRequest{
		OpenTime: f.clock.t.Unix(), Value: "5.0000", IntervalSec: 60,
	}, http.StatusCreated)
	for _, id := range []string{"100", "200"} {
		f.mustDo(http.MethodPost, "/admin/profiles", adminID, ProfileInput{
			ID: "u" + id, Username: "user." + id, Account: id, Active: true,
		}, http.StatusOK)
	}
}

func (f *apiFixture) deposit(entryID, quantity string) *httptest.ResponseRecorder {
	f.t.Helper()
	return f.do(http.MethodPost, "/escrow/deposits", 0, DepositRequest{EntryID: entryID, Quantity: quantity},
		middleware.EscrowTokenHeader, escrowToken)
}

func TestContestFlowOverHTTP(t *testing.T) {
	f := newFixture(t)
	f.seed()

	f.mustDo(http.MethodPost, "/entries", 100, EntryInput{ID: "e1", UserID: "u100", LevelID: "lvl"}, http.StatusCreated)
	f.mustDo(http.MethodPost, "/entries", 200, EntryInput{ID: "e2", UserID: "u200", LevelID: "lvl"}, http.StatusCreated)

	w := f.deposit("e1", "2.0000 TON")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[service.ActivationResult](t, w)
	assert.Equal(t, service.ActivationActivated, res.Status)
	contestPath := "/contests/" + strconv.FormatUint(res.ContestID, 10)

	w = f.deposit("e2", "1.0000 TON")
	assert.Equal(t, service.ActivationInsufficient, decode[service.ActivationResult](t, w).Status)
	w = f.deposit("e2", "1.0000 TON")
	assert.Equal(t, service.ActivationActivated, decode[service.ActivationResult](t, w).Status)

	view := decode[service.ContestView](t, f.mustDo(http.MethodGet, contestPath, 100, nil, http.StatusOK))
	assert.Equal(t, uint32(2), view.ParticipantCount)
	assert.Equal(t, models.ContestStatusClosed, view.Status)

	// voting opens after the submission period
	w = f.do(http.MethodPost, "/entries/e1/votes", 200, VoteRequest{VoterUserID: "u200"})
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	f.clock.t = f.clock.t.Add(time.Hour)
	f.mustDo(http.MethodPost, "/entries/e1/votes", 200, VoteRequest{VoterUserID: "u200"}, http.StatusCreated)

	votes := decode[ContestVotesResponse](t, f.mustDo(http.MethodGet, contestPath+"/votes", 100, nil, http.StatusOK))
	assert.Equal(t, 1, votes.Total)

	f.clock.t = f.clock.t.Add(time.Hour)
	report := decode[service.SweepReport](t, f.mustDo(http.MethodPost, "/admin/sweep", adminID, nil, http.StatusOK))
	assert.Equal(t, []uint64{res.ContestID}, report.Settled)

	st := decode[SettlementView](t, f.mustDo(http.MethodGet, contestPath+"/settlement", 100, nil, http.StatusOK))
	assert.Equal(t, "0.1800 TON", st.Display["fee"])
	require.Len(t, st.Payouts, 2)

	p := decode[models.Profile](t, f.mustDo(http.MethodGet, "/profiles/u100", 100, nil, http.StatusOK))
	assert.Equal(t, int64(26740), p.Winnings)
	p = decode[models.Profile](t, f.mustDo(http.MethodGet, "/profiles/by-username/"+models.HashUsername("user.200"), 100, nil, http.StatusOK))
	assert.Equal(t, int64(11460), p.Winnings)

	entries := decode[EntriesResponse](t, f.mustDo(http.MethodGet, "/entries?user_id=u100&level_id=lvl", 100, nil, http.StatusOK))
	assert.Equal(t, 1, entries.Total)
}

func TestEscrowEndpointRequiresToken(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, "/escrow/deposits", 0, DepositRequest{EntryID: "e1", Quantity: "1.0000 TON"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.deposit("e1", "lots")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.deposit("e1", "99999999999999999999 TON")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.deposit("missing", "1.0000 TON")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthorizationMapping(t *testing.T) {
	f := newFixture(t)
	f.seed()

	w := f.do(http.MethodGet, "/levels/lvl", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodPost, "/admin/sweep", 100, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// user 200 cannot enter on behalf of u100
	w = f.do(http.MethodPost, "/entries", 200, EntryInput{ID: "e1", UserID: "u100", LevelID: "lvl"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))

	f.mustDo(http.MethodPost, "/entries", 100, EntryInput{ID: "e1", UserID: "u100", LevelID: "lvl"}, http.StatusCreated)
	w = f.do(http.MethodPost, "/entries", 100, EntryInput{ID: "e2", UserID: "u100", LevelID: "lvl"})
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)

	w = f.do(http.MethodPost, "/entries", 100, EntryInput{ID: "e1", UserID: "u100", LevelID: "lvl"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRefundOverHTTP(t *testing.T) {
	f := newFixture(t)
	f.seed()
	f.mustDo(http.MethodPost, "/entries", 100, EntryInput{ID: "e1", UserID: "u100", LevelID: "lvl"}, http.StatusCreated)
	require.Equal(t, http.StatusOK, f.deposit("e1", "0.5000 TON").Code)

	w := f.do(http.MethodPost, "/entries/e1/refund", 100, RefundRequest{To: "nowhere"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	tr := decode[models.TransferRequest](t, f.mustDo(http.MethodPost, "/entries/e1/refund", 100,
		RefundRequest{To: "EQDtFpEwcFAEcRe5mLVh2N6C0x-_hJEM7W61_JLnSF74p4q2"}, http.StatusOK))
	assert.Equal(t, int64(5000), tr.Amount)
	assert.Equal(t, models.TransferReasonRefund, tr.Reason)

	transfers := decode[TransfersResponse](t, f.mustDo(http.MethodGet, "/admin/transfers", adminID, nil, http.StatusOK))
	assert.Equal(t, 1, transfers.Total)
}

func TestQueryValidation(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/contests/abc", 100, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/contests/9", 100, nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/entries?user_id=u100", 100, nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/prices/gold", 100, nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/prices/currency?from=x", 100, nil).Code)

	samples := decode[PriceSamplesResponse](t, f.mustDo(http.MethodGet, "/prices/currency", 100, nil, http.StatusOK))
	assert.Empty(t, samples.Samples)
}
