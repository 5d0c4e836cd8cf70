package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/application/service"
	"github.com/sangkips/salon-billing-api/internal/config"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/domain/enum"
	"github.com/sangkips/salon-billing-api/internal/infrastructure/session"
	"github.com/sangkips/salon-billing-api/internal/presentation/http/handler"
	"github.com/sangkips/salon-billing-api/internal/presentation/http/middleware"
	"github.com/sangkips/salon-billing-api/internal/testutil"
	"github.com/sangkips/salon-billing-api/pkg/notify"
	"github.com/sangkips/salon-billing-api/pkg/printer"
	"github.com/sangkips/salon-billing-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success       bool                  `json:"success"`
	Message       string                `json:"message"`
	Data          json.RawMessage       `json:"data"`
	Notifications []notify.Notification `json:"notifications"`
	Meta          struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

type server struct {
	t      *testing.T
	db     *testutil.MemDB
	jwt    *utils.JWTManager
	router *gin.Engine
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewMemDB()
	jwt := utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	numbers, err := utils.NewInvoiceNumberGenerator("INV", 3)
	require.NoError(t, err)

	billingService := service.NewBillingService(
		session.NewStore(16, time.Hour),
		db.Catalog(), db.Customers(), db.InvoiceRepo(), db.Settings(), db,
		numbers,
		service.BillingPolicy{Consistency: config.ConsistencyTransactional, AllowNegativeTotal: true, AllowZeroPayment: true},
		nil,
	)
	exports := service.NewExportService(db.InvoiceRepo(), db.Customers(), db.Attendance(), db.Expenses(), db.Analytics())
	h := &Handlers{
		Auth:       handler.NewAuthHandler(service.NewAuthService(db.Users(), jwt)),
		Catalog:    handler.NewCatalogHandler(service.NewCatalogService(db.Catalog())),
		Customer:   handler.NewCustomerHandler(service.NewCustomerService(db.Customers())),
		Settings:   handler.NewSettingsHandler(service.NewSettingsService(db.Settings())),
		Billing:    handler.NewBillingHandler(billingService),
		Invoice:    handler.NewInvoiceHandler(service.NewInvoiceService(db.InvoiceRepo())),
		Report:     handler.NewReportHandler(exports),
		Printer:    handler.NewPrinterHandler(service.NewPrinterService(printer.Discard(), db.InvoiceRepo(), db.Settings(), 32, nil)),
		Employee:   handler.NewEmployeeHandler(service.NewEmployeeService(db.Users())),
		Attendance: handler.NewAttendanceHandler(service.NewAttendanceService(db.Attendance())),
		Finance:    handler.NewFinanceHandler(service.NewFinanceService(db.Expenses(), db.Analytics())),
		Dashboard:  handler.NewDashboardHandler(service.NewDashboardService(db.Analytics(), db.InvoiceRepo())),
	}

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfigFor(1000, 1))
	t.Cleanup(limiter.Stop)

	cfg := &config.Config{App: config.AppConfig{Name: "salon-billing-api"}}
	router := Setup(h, &Deps{
		JWTManager:      jwt,
		Cfg:             cfg,
		IdempotencyRepo: db.Idempotency(),
		RateLimiter:     limiter,
	})
	return &server{t: t, db: db, jwt: jwt, router: router}
}

func (s *server) token(role string) string {
	s.t.Helper()
	u := s.db.AddUser(entity.User{Name: role, Email: role + "@salon.test", Role: role, IsActive: true})
	pair, err := s.jwt.IssuePair(u.ID, u.Email, u.Role)
	require.NoError(s.t, err)
	return pair.AccessToken
}

func (s *server) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestHealth(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newServer(t)

	tests := map[string]string{
		"missing header": "",
		"garbage token":  "not-a-jwt",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			w := s.do(http.MethodGet, "/api/v1/customers", token, nil)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.False(t, decode(t, w).Success)
		})
	}
}

func TestLoginAndMe(t *testing.T) {
	s := newServer(t)
	hashed, err := utils.HashPassword("secret123")
	require.NoError(t, err)
	s.db.AddUser(entity.User{Name: "Desk", Email: "desk@salon.test", Password: hashed, Role: entity.RoleStaff, IsActive: true})

	w := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "desk@salon.test", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "desk@salon.test", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &tokens))
	require.NotEmpty(t, tokens.AccessToken)

	w = s.do(http.MethodGet, "/api/v1/auth/me", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me entity.User
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &me))
	assert.Equal(t, "desk@salon.test", me.Email)
}

func TestSettingsUpdateRequiresAdmin(t *testing.T) {
	s := newServer(t)
	body := map[string]any{"business_name": "Glow"}

	w := s.do(http.MethodPut, "/api/v1/settings", s.token(entity.RoleStaff), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPut, "/api/v1/settings", s.token(entity.RoleAdmin), body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decode(t, w)
	require.Len(t, env.Notifications, 1)
	assert.Equal(t, notify.KindSuccess, env.Notifications[0].Kind)
}

type sessionView struct {
	ID    uuid.UUID `json:"id"`
	State string    `json:"state"`
}

func TestCheckoutAndPaymentOverHTTP(t *testing.T) {
	s := newServer(t)
	token := s.token(entity.RoleStaff)
	svc := s.db.AddService(entity.Service{Name: "Haircut", MinPrice: decimal.NewFromInt(500), IsActive: true})
	cust := s.db.AddCustomer(entity.Customer{Name: "Asha", PhoneNumber: "9800000001"})

	w := s.do(http.MethodPost, "/api/v1/billing/sessions", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sess sessionView
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &sess))
	base := "/api/v1/billing/sessions/" + sess.ID.String()

	w = s.do(http.MethodPost, base+"/items", token, map[string]any{"item_type": "service", "item_id": svc.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decode(t, w)
	require.Len(t, env.Notifications, 1)
	assert.Equal(t, "Haircut added to cart", env.Notifications[0].Message)

	// Checkout without a customer is rejected before anything is stored
	w = s.do(http.MethodPost, base+"/checkout", token, nil, middleware.IdempotencyKeyHeader, "co-1")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "no customer", decode(t, w).Message)
	assert.Empty(t, s.db.Invoices())

	w = s.do(http.MethodPut, base+"/customer", token, map[string]any{"customer_id": cust.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, base+"/checkout", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "checkout requires an idempotency key")

	// The failed attempt was not stored, so the key can be reused
	w = s.do(http.MethodPost, base+"/checkout", token, nil, middleware.IdempotencyKeyHeader, "co-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := w.Body.String()

	w = s.do(http.MethodPost, base+"/checkout", token, nil, middleware.IdempotencyKeyHeader, "co-1")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, first, w.Body.String())
	require.Len(t, s.db.Invoices(), 1)

	w = s.do(http.MethodPost, base+"/payments", token, map[string]any{"payment_method": "upi"}, middleware.IdempotencyKeyHeader, "pay-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	inv := s.db.Invoices()[0]
	assert.Equal(t, enum.PaymentStatusPaid, inv.PaymentStatus)
	require.Len(t, s.db.Payments(), 1)
	assert.True(t, s.db.Payments()[0].Amount.Equal(decimal.NewFromInt(500)))

	w = s.do(http.MethodGet, base, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &sess))
	assert.Equal(t, "payment_recorded", sess.State)

	w = s.do(http.MethodGet, "/api/v1/invoices/"+inv.ID.String()+"/receipt", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), inv.InvoiceNumber)
}

func TestIdempotencyKeyIsBoundToEndpoint(t *testing.T) {
	s := newServer(t)
	token := s.token(entity.RoleStaff)
	svc := s.db.AddService(entity.Service{Name: "Facial", MinPrice: decimal.NewFromInt(800), IsActive: true})
	cust := s.db.AddCustomer(entity.Customer{Name: "Ravi", PhoneNumber: "9800000002"})

	open := func() string {
		w := s.do(http.MethodPost, "/api/v1/billing/sessions", token, nil)
		require.Equal(t, http.StatusCreated, w.Code)
		var v sessionView
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &v))
		base := "/api/v1/billing/sessions/" + v.ID.String()
		require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/items", token, map[string]any{"item_type": "service", "item_id": svc.ID}).Code)
		require.Equal(t, http.StatusOK, s.do(http.MethodPut, base+"/customer", token, map[string]any{"customer_id": cust.ID}).Code)
		return base
	}

	first, second := open(), open()
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, first+"/checkout", token, nil, middleware.IdempotencyKeyHeader, "same").Code)

	w := s.do(http.MethodPost, second+"/checkout", token, nil, middleware.IdempotencyKeyHeader, "same")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Len(t, s.db.Invoices(), 1)
}

func TestExportDownload(t *testing.T) {
	s := newServer(t)
	s.db.AddCustomer(entity.Customer{Name: "Meera", PhoneNumber: "9800000003"})

	w := s.do(http.MethodGet, "/api/v1/reports/customers/export", s.token(entity.RoleStaff), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, w.Body.Len())
}

func TestUnknownSessionIsNotFound(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/api/v1/billing/sessions/"+uuid.NewString(), s.token(entity.RoleStaff), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEmployeesRequireAdmin(t *testing.T) {
	s := newServer(t)
	body := map[string]any{"name": "Ravi", "email": "ravi@salon.test", "password": "secret1"}

	w := s.do(http.MethodPost, "/api/v1/employees", s.token(entity.RoleStaff), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := s.token(entity.RoleAdmin)
	w = s.do(http.MethodPost, "/api/v1/employees", admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created entity.User
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	assert.Equal(t, entity.RoleStaff, created.Role)
	assert.NotContains(t, w.Body.String(), "secret1")

	w = s.do(http.MethodPost, "/api/v1/employees", admin, body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/api/v1/employees?search=ravi", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAttendanceOverHTTP(t *testing.T) {
	s := newServer(t)
	token := s.token(entity.RoleStaff)

	w := s.do(http.MethodPost, "/api/v1/attendance/check-out", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/v1/attendance/check-in", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/api/v1/attendance/check-in", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/api/v1/attendance?date=2026/01/01", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/attendance", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []entity.Attendance
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &records))
	assert.Len(t, records, 1)
}

func TestDashboardAndEmptyReport(t *testing.T) {
	s := newServer(t)
	token := s.token(entity.RoleStaff)

	w := s.do(http.MethodGet, "/api/v1/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"daily_revenue"`)

	w = s.do(http.MethodGet, "/api/v1/reports/sales/export?start_date=2020-01-01&end_date=2020-01-31", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No sales records found for this period", decode(t, w).Message)
}
