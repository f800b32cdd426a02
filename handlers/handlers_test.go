package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"travellocal/middleware"
	"travellocal/models"
	"travellocal/services/backend"
	"travellocal/services/unlock"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, "u1")
		c.Set(middleware.TokenKey, "tok")
		c.Next()
	})
	return r
}

func do(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type fakeCalendar struct {
	year, month int
	selected    string
	token       string
	updated     models.RequestStatus
	updateErr   error
}

func (f *fakeCalendar) Month(ctx context.Context, token string, year, month int, selected string) (*models.CalendarResponse, error) {
	f.token, f.year, f.month, f.selected = token, year, month, selected
	if month < 1 || month > 12 {
		return nil, errors.New("invalid month")
	}
	return &models.CalendarResponse{Year: year, Month: month, SelectedDate: selected}, nil
}

func (f *fakeCalendar) UpdateStatus(ctx context.Context, token string, id int, status models.RequestStatus) error {
	f.updated = status
	return f.updateErr
}

func TestCalendarHandlers(t *testing.T) {
	svc := &fakeCalendar{}
	h := NewCalendarHandler(svc, time.UTC)
	h.now = func() time.Time { return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC) }
	r := testRouter()
	r.GET("/calendar", h.GetMonthHandler)
	r.PATCH("/calendar/reservations/:id/status", h.UpdateStatusHandler)

	w := do(r, http.MethodGet, "/calendar", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2025, svc.year)
	assert.Equal(t, 6, svc.month)
	assert.Equal(t, "tok", svc.token)

	w = do(r, http.MethodGet, "/calendar?year=2024&month=2&selected=2024-02-29", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-02-29", svc.selected)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/calendar?month=x", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/calendar?month=13", "").Code)

	w = do(r, http.MethodPatch, "/calendar/reservations/5/status", `{"status":"ACCEPTED"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusAccepted, svc.updated)

	w = do(r, http.MethodPatch, "/calendar/reservations/5/status", `{"status":"MAYBE"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPatch, "/calendar/reservations/5/status", `{"status":"REJECTED"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodPatch, "/calendar/reservations/5/status", `{"status":"PENDING"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.StatusRejected, svc.updated)

	svc.updateErr = backend.ErrUnauthorized
	w = do(r, http.MethodPatch, "/calendar/reservations/5/status", `{"status":"REJECTED"}`, "Accept-Language", "en")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Login required")
}

type fakeUnlock struct {
	unlockErr error
}

func (f *fakeUnlock) Status(ctx context.Context, userID, token string, id int) (bool, error) {
	return false, nil
}

func (f *fakeUnlock) Schedule(ctx context.Context, userID, token string, id int) (*models.ScheduleView, error) {
	if id == 404 {
		return nil, backend.ErrNotFound
	}
	return &models.ScheduleView{TourProgramID: id}, nil
}

func (f *fakeUnlock) Quote(ctx context.Context, userID, token string, id int) (*models.UnlockQuote, error) {
	return &models.UnlockQuote{TourProgramID: id, Balance: 150, Cost: 100, Remaining: 50, Affordable: true}, nil
}

func (f *fakeUnlock) UnlockWithPoints(ctx context.Context, userID, token string, id int) (*models.UnlockResult, error) {
	if f.unlockErr != nil {
		return nil, f.unlockErr
	}
	return &models.UnlockResult{TourProgramID: id, State: models.UnlockUnlocked, Unlocked: true, Synced: true}, nil
}

func (f *fakeUnlock) CreatePayment(ctx context.Context, userID, token string, id int) (*models.PaymentIntentResponse, error) {
	return nil, unlock.ErrAlreadyUnlocked
}

func (f *fakeUnlock) ConfirmPayment(ctx context.Context, userID, token string, id int, intentID string) (*models.UnlockResult, error) {
	return &models.UnlockResult{TourProgramID: id, Unlocked: true}, nil
}

func (f *fakeUnlock) Reconcile(ctx context.Context, payload models.ReconcilePayload) error {
	return nil
}

func TestTourHandlers(t *testing.T) {
	svc := &fakeUnlock{}
	h := NewTourHandler(svc)
	r := testRouter()
	r.GET("/tours/:id/schedule", h.GetScheduleHandler)
	r.GET("/tours/:id/unlock/quote", h.GetQuoteHandler)
	r.POST("/tours/:id/unlock", h.UnlockHandler)
	r.POST("/tours/:id/unlock/payment", h.CreatePaymentHandler)
	r.POST("/tours/:id/unlock/payment/confirm", h.ConfirmPaymentHandler)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/tours/3/schedule", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/tours/404/schedule", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/tours/abc/schedule", "").Code)

	w := do(r, http.MethodGet, "/tours/3/unlock/quote", "")
	require.Equal(t, http.StatusOK, w.Code)
	var quote models.UnlockQuote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, int64(50), quote.Remaining)

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/tours/3/unlock", "").Code)

	svc.unlockErr = unlock.ErrInsufficientPoints
	w = do(r, http.MethodPost, "/tours/3/unlock", "", "Accept-Language", "ko")
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "포인트")

	svc.unlockErr = &backend.APIError{Status: http.StatusServiceUnavailable}
	assert.Equal(t, http.StatusBadGateway, do(r, http.MethodPost, "/tours/3/unlock", "").Code)

	assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/tours/3/unlock/payment", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/tours/3/unlock/payment/confirm", `{}`).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/tours/3/unlock/payment/confirm", `{"paymentIntentId":"pi_1"}`).Code)
}

type fakeTranslator struct {
	req models.TranslateRequest
}

func (f *fakeTranslator) Translate(ctx context.Context, userID string, req models.TranslateRequest) models.TranslationEntry {
	f.req = req
	return models.TranslationEntry{Original: req.Text, Translated: req.Text, Target: req.Target, Provider: "none"}
}

func (f *fakeTranslator) History(ctx context.Context, userID string) ([]models.TranslationEntry, string, error) {
	return []models.TranslationEntry{{Original: "a"}}, "a", nil
}

type memLanguages struct {
	langs map[string]string
}

func (m *memLanguages) SetSelectedLanguage(ctx context.Context, userID, lang string) error {
	m.langs[userID] = lang
	return nil
}

func (m *memLanguages) GetSelectedLanguage(ctx context.Context, userID string) (string, error) {
	return m.langs[userID], nil
}

func TestTranslationAndDeviceHandlers(t *testing.T) {
	translator := &fakeTranslator{}
	langs := &memLanguages{langs: map[string]string{}}
	th := NewTranslationHandler(translator, langs)
	dh := NewDeviceHandler(langs)
	r := testRouter()
	r.POST("/translate", th.TranslateHandler)
	r.GET("/translate/history", th.HistoryHandler)
	r.PUT("/device/language", dh.SetLanguageHandler)
	r.GET("/device/language", dh.GetLanguageHandler)

	w := do(r, http.MethodPost, "/translate", `{"text":"hello"}`, "Accept-Language", "ja-JP,ja;q=0.9")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ja", translator.req.Target)

	w = do(r, http.MethodPut, "/device/language", `{"language":"zh-CN"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "zh", langs.langs["u1"])

	do(r, http.MethodPost, "/translate", `{"text":"hello"}`, "Accept-Language", "ja")
	assert.Equal(t, "zh", translator.req.Target)

	w = do(r, http.MethodGet, "/device/language", "")
	assert.JSONEq(t, `{"language":"zh"}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/translate", `{}`).Code)

	w = do(r, http.MethodGet, "/translate/history", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reuseText":"a"`)
}

type fakeTourism struct {
	area, keyword string
	page, rows    int
}

func (f *fakeTourism) AreaBased(ctx context.Context, areaCode string, page, rows int) models.TourismPage {
	f.area, f.page, f.rows = areaCode, page, rows
	return models.TourismPage{Items: []models.TourismItem{}, PageNo: page}
}

func (f *fakeTourism) SearchKeyword(ctx context.Context, keyword string, page, rows int) models.TourismPage {
	f.keyword = keyword
	return models.TourismPage{Items: []models.TourismItem{{Title: keyword}}, PageNo: page}
}

func TestTourismHandlers(t *testing.T) {
	src := &fakeTourism{}
	h := NewTourismHandler(src)
	r := testRouter()
	r.GET("/tourism/area", h.AreaHandler)
	r.GET("/tourism/search", h.SearchHandler)

	w := do(r, http.MethodGet, "/tourism/area?areaCode=6&page=2&rows=5", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "6", src.area)
	assert.Equal(t, 2, src.page)
	assert.Equal(t, 5, src.rows)
	assert.Contains(t, w.Body.String(), `"items":[]`)

	w = do(r, http.MethodGet, "/tourism/search?keyword=%EB%B6%80%EC%82%B0", "")
	assert.Equal(t, "부산", src.keyword)
}

type fakeRooms struct{}

func (fakeRooms) CreateChatRoom(ctx context.Context, token string, req models.ChatRoomRequest) (*models.ChatRoom, error) {
	return &models.ChatRoom{ID: "r1", TourProgramID: req.TourProgramID, HostID: req.HostID}, nil
}

func TestChatRoomHandler(t *testing.T) {
	h := NewChatHandler(fakeRooms{}, "ws://127.0.0.1:1/ws", time.Second)
	r := testRouter()
	r.POST("/chat/rooms", h.CreateRoomHandler)

	w := do(r, http.MethodPost, "/chat/rooms", `{"tourProgramId":3,"hostId":"h1"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"r1"`)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/chat/rooms", `{"hostId":"h1"}`).Code)
}

func TestChatBridgeReportsUnavailableBroker(t *testing.T) {
	h := NewChatHandler(fakeRooms{}, "ws://127.0.0.1:1/ws", time.Second)
	r := testRouter()
	r.GET("/ws/chat/:roomId", h.BridgeHandler)
	srv := httptest.NewServer(r)
	defer srv.Close()

	header := http.Header{"Accept-Language": []string{"en"}}
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/chat/9", header)
	require.NoError(t, err)
	defer conn.Close()

	var msg bridgeError
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
	assert.NotEmpty(t, msg.Error)
}
