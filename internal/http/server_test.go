package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/services"
	"fintrack/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	srv     *Server
	ts      *httptest.Server
	store   *storage.Store
	catalog *services.CategoryCatalog
	food    int64
	salary  int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	catalog := services.NewCategoryCatalog(store)
	require.NoError(t, catalog.SeedDefaults(ctx))

	srv, err := NewServer(":0", Deps{
		Credentials: services.NewCredentialService(store),
		Sessions:    services.NewSessionService(store, time.Hour),
		Ledger:      services.NewLedgerService(store, catalog, nil),
		Reports:     services.NewReportService(store),
		Categories:  catalog,
		Tokens:      auth.NewTokenIssuer(testSecret, time.Hour),
		Health:      store,
	}, Options{RateLimitPerMinute: 1000})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown(context.Background())
	})

	env := &testEnv{srv: srv, ts: ts, store: store, catalog: catalog}
	cats, err := catalog.ListAll(ctx)
	require.NoError(t, err)
	for _, c := range cats {
		switch c.Name {
		case "Food":
			env.food = c.ID
		case "Salary":
			env.salary = c.ID
		}
	}
	require.NotZero(t, env.food)
	require.NotZero(t, env.salary)
	return env
}

// browser returns a client that keeps cookies and does not follow redirects.
func (e *testEnv) browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (e *testEnv) get(t *testing.T, c *http.Client, path string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(e.ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (e *testEnv) post(t *testing.T, c *http.Client, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := c.PostForm(e.ts.URL+path, form)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

// follow reads the page a redirect points to.
func (e *testEnv) follow(t *testing.T, c *http.Client, resp *http.Response) string {
	t.Helper()
	require.Contains(t, []int{http.StatusFound, http.StatusSeeOther}, resp.StatusCode)
	_, body := e.get(t, c, resp.Header.Get("Location"))
	return body
}

func (e *testEnv) signup(t *testing.T, c *http.Client, username, password string) {
	t.Helper()
	resp := e.post(t, c, "/auth/register", url.Values{
		"username": {username}, "password": {password}, "confirm": {password},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/auth/login", resp.Header.Get("Location"))

	resp = e.post(t, c, "/auth/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
}

func (e *testEnv) addTransaction(t *testing.T, c *http.Client, kind, amount, date string, category int64, note string) {
	t.Helper()
	resp := e.post(t, c, "/expenses/add", url.Values{
		"kind":        {kind},
		"amount":      {amount},
		"date":        {date},
		"category_id": {strconv.FormatInt(category, 10)},
		"note":        {note},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t)
	c := env.browser(t)

	resp, body := env.get(t, c, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)

	resp, _ = env.get(t, c, "/readyz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = env.get(t, c, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "http_requests_total")
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.get(t, env.browser(t), "/auth/login")
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
	assert.True(t, strings.HasPrefix(resp.Header.Get("X-Request-ID"), "req_"))
}

func TestUnauthenticatedRedirectKeepsNext(t *testing.T) {
	env := newTestEnv(t)
	c := env.browser(t)

	for _, path := range []string{"/", "/expenses/add", "/expenses/month?year=2024&month=3", "/expenses/report", "/expenses/1"} {
		resp, _ := env.get(t, c, path)
		require.Equal(t, http.StatusFound, resp.StatusCode, path)
		loc, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/auth/login", loc.Path)
		assert.Equal(t, path, loc.Query().Get("next"))
	}
}

func TestRegisterLoginDashboard(t *testing.T) {
	env := newTestEnv(t)
	c := env.browser(t)
	env.signup(t, c, "alice", "secret")

	resp, body := env.get(t, c, "/")
	assert.Contains(t, body, "Logged in.")
	assert.Contains(t, body, "alice")
	assert.Contains(t, body, "No transactions yet.")
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	// The flash is shown once.
	_, body = env.get(t, c, "/")
	assert.NotContains(t, body, "Logged in.")

	// Guest pages bounce a logged-in browser.
	resp, _ = env.get(t, c, "/auth/login")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, _ = env.get(t, c, "/auth/logout")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, env.follow(t, c, resp), "Logged out.")

	resp, _ = env.get(t, c, "/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestRegisterDuplicateAndMismatch(t *testing.T) {
	env := newTestEnv(t)
	c := env.browser(t)
	env.signup(t, c, "alice", "secret")

	other := env.browser(t)
	resp := env.post(t, other, "/auth/register", url.Values{
		"username": {"alice"}, "password": {"x"}, "confirm": {"x"},
	})
	assert.Equal(t, "/auth/register", resp.Header.Get("Location"))
	assert.Contains(t, env.follow(t, other, resp), "That username is already taken")

	resp = env.post(t, other, "/auth/register", url.Values{
		"username": {"bob"}, "password": {"x"}, "confirm": {"y"},
	})
	assert.Contains(t, env.follow(t, other, resp), "Passwords do not match.")
}

func TestLoginFailureAndNext(t *testing.T) {
	env := newTestEnv(t)
	c := env.browser(t)
	env.signup(t, c, "alice", "secret")

	guest := env.browser(t)
	resp := env.post(t, guest, "/auth/login", url.Values{
		"username": {"alice"}, "password": {"wrong"}, "next": {"/expenses/report"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth/login?next=%2Fexpenses%2Freport", resp.Header.Get("Location"))
	body := env.follow(t, guest, resp)
	assert.Contains(t, body, "Invalid username or password.")
	assert.Contains(t, body, `value="/expenses/report"`)

	resp = env.post(t, guest, "/auth/login", url.Values{
		"username": {"nobody"}, "password": {"secret"},
	})
	assert.Contains(t, env.follow(t, guest, resp), "Invalid username or password.")

	resp = env.post(t, guest, "/auth/login", url.Values{
		"username": {"alice"}, "password": {"secret"}, "next": {"/expenses/report"},
	})
	assert.Equal(t, "/expenses/report", resp.Header.Get("Location"))

	evil := env.browser(t)
	resp = env.post(t, evil, "/auth/login", url.Values{
		"username": {"alice"}, "password": {"secret"}, "next": {"//evil.example/"},
	})
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestTransactionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	c := env.browser(t)
	env.signup(t, c, "alice", "secret")

	env.addTransaction(t, c, "Income", "1000", "2024-03-01", env.salary, "March pay")
	env.addTransaction(t, c, "Expense", "12.50", "2024-03-02", env.food, "Lunch")

	_, body := env.get(t, c, "/")
	assert.Contains(t, body, "1000.00")
	assert.Contains(t, body, "12.50")
	assert.Contains(t, body, "987.50")

	txs, err := env.srv.ledger.ListAll(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	lunch := txs[0]
	require.Equal(t, "Lunch", lunch.Note)
	id := strconv.FormatInt(lunch.ID, 10)

	resp, body := env.get(t, c, "/expenses/"+id)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Food")

	resp, body = env.get(t, c, "/expenses/"+id+"/edit")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="12.50"`)

	resp = env.post(t, c, "/expenses/"+id+"/edit", url.Values{
		"kind":        {"Expense"},
		"amount":      {"15"},
		"date":        {"2024-03-02"},
		"category_id": {strconv.FormatInt(env.food, 10)},
		"note":        {"Dinner"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/expenses/"+id, resp.Header.Get("Location"))
	body = env.follow(t, c, resp)
	assert.Contains(t, body, "Transaction updated.")
	assert.Contains(t, body, "Dinner")

	_, body = env.get(t, c, "/expenses/month?year=2024&month=3")
	assert.Contains(t, body, "March 2024")
	assert.Contains(t, body, "985.00")
	assert.Contains(t, body, "February 2024")
	assert.Contains(t, body, "April 2024")

	_, body = env.get(t, c, "/expenses/month?year=2024&month=4")
	assert.Contains(t, body, "No transactions.")

	resp = env.post(t, c, "/expenses/"+id+"/delete", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, env.follow(t, c, resp), "Transaction deleted.")

	resp, _ = env.get(t, c, "/expenses/"+id)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	c := env.browser(t)
	env.signup(t, c, "alice", "secret")

	cases := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing amount", url.Values{"kind": {"Expense"}, "date": {"2024-03-01"}, "category_id": {"1"}}, "Missing required fields."},
		{"negative amount", url.Values{"kind": {"Expense"}, "amount": {"-5"}, "date": {"2024-03-01"}, "category_id": {"1"}}, "Amount must be a positive number."},
		{"bad date", url.Values{"kind": {"Expense"}, "amount": {"5"}, "date": {"01/03/2024"}, "category_id": {"1"}}, "Invalid date"},
		{"unknown category", url.Values{"kind": {"Expense"}, "amount": {"5"}, "date": {"2024-03-01"}, "category_id": {"999"}}, "Unknown category."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.post(t, c, "/expenses/add", tc.form)
			require.Equal(t, http.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, "/expenses/add", resp.Header.Get("Location"))
			assert.Contains(t, env.follow(t, c, resp), tc.want)
		})
	}

	txs, err := env.srv.ledger.ListAll(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestOtherUsersTransactionsAreHidden(t *testing.T) {
	env := newTestEnv(t)
	alice := env.browser(t)
	env.signup(t, alice, "alice", "secret")
	env.addTransaction(t, alice, "Expense", "9.99", "2024-03-02", env.food, "Private")

	txs, err := env.srv.ledger.ListAll(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	id := strconv.FormatInt(txs[0].ID, 10)

	bob := env.browser(t)
	env.signup(t, bob, "bob", "hunter2")

	for _, path := range []string{"/expenses/" + id, "/expenses/" + id + "/edit"} {
		resp, _ := env.get(t, bob, path)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
	resp := env.post(t, bob, "/expenses/"+id+"/delete", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, body := env.get(t, bob, "/expenses/report")
	assert.NotContains(t, body, "Private")

	resp, _ = env.get(t, alice, "/expenses/"+id)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMonthRejectsOutOfRangeMonth(t *testing.T) {
	env := newTestEnv(t)
	c := env.browser(t)
	env.signup(t, c, "alice", "secret")

	resp, body := env.get(t, c, "/expenses/month?year=2024&month=13")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Month must be between 1 and 12.")

	resp, _ = env.get(t, c, "/expenses/month?month=abc")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestChangePasswordEndsOtherSessions(t *testing.T) {
	env := newTestEnv(t)
	first := env.browser(t)
	env.signup(t, first, "alice", "secret")

	second := env.browser(t)
	resp := env.post(t, second, "/auth/login", url.Values{"username": {"alice"}, "password": {"secret"}})
	require.Equal(t, "/", resp.Header.Get("Location"))

	resp = env.post(t, first, "/auth/password", url.Values{
		"current": {"wrong"}, "password": {"new"}, "confirm": {"new"},
	})
	assert.Equal(t, "/auth/password", resp.Header.Get("Location"))

	resp = env.post(t, first, "/auth/password", url.Values{
		"current": {"secret"}, "password": {"new"}, "confirm": {"new"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, env.follow(t, first, resp), "Password changed.")

	resp, _ = env.get(t, second, "/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	fresh := env.browser(t)
	resp = env.post(t, fresh, "/auth/login", url.Values{"username": {"alice"}, "password": {"new"}})
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestUnknownPathRendersNotFound(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.get(t, env.browser(t), "/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "does not exist")
	// The error page quotes the request id for support.
	assert.Contains(t, body, resp.Header.Get("X-Request-ID"))
}

func (e *testEnv) api(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = strings.NewReader(string(b))
	}
	req, err := http.NewRequest(method, e.ts.URL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestAPI(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, env.browser(t), "alice", "secret")

	resp, out := env.api(t, http.MethodPost, "/api/v1/auth/token", "", map[string]string{"username": "alice", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid username or password", out["error"])

	resp, out = env.api(t, http.MethodPost, "/api/v1/auth/token", "", map[string]string{"username": "alice", "password": "secret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := out["token"].(string)
	require.NotEmpty(t, token)

	t.Run("requires token", func(t *testing.T) {
		resp, _ := env.api(t, http.MethodGet, "/api/v1/transactions", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("WWW-Authenticate"))

		resp, _ = env.api(t, http.MethodGet, "/api/v1/transactions", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("categories", func(t *testing.T) {
		resp, out := env.api(t, http.MethodGet, "/api/v1/categories", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, out["categories"], 8)
	})

	var id string
	t.Run("create", func(t *testing.T) {
		resp, out := env.api(t, http.MethodPost, "/api/v1/transactions", token, map[string]any{
			"kind": "expense", "amount": 20.5, "date": "2024-03-05", "category_id": env.food, "note": "groceries",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "Expense", out["kind"])
		assert.Equal(t, "20.5", out["amount"])
		id = strconv.FormatInt(int64(out["id"].(float64)), 10)
		assert.Equal(t, "/api/v1/transactions/"+id, resp.Header.Get("Location"))
	})

	t.Run("create validation", func(t *testing.T) {
		resp, out := env.api(t, http.MethodPost, "/api/v1/transactions", token, map[string]any{
			"kind": "Expense", "amount": "0", "date": "2024-03-05", "category_id": env.food,
		})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "amount", out["field"])
	})

	t.Run("get update list", func(t *testing.T) {
		resp, out := env.api(t, http.MethodGet, "/api/v1/transactions/"+id, token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "groceries", out["note"])

		resp, out = env.api(t, http.MethodPut, "/api/v1/transactions/"+id, token, map[string]any{
			"kind": "Expense", "amount": "25", "date": "2024-03-06", "category_id": env.food, "note": "market",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "market", out["note"])
		assert.Equal(t, "2024-03-06", out["date"])

		resp, out = env.api(t, http.MethodGet, "/api/v1/transactions?year=2024&month=3", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, out["transactions"], 1)

		resp, out = env.api(t, http.MethodGet, "/api/v1/transactions?year=2024&month=4", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, out["transactions"], 0)

		resp, _ = env.api(t, http.MethodGet, "/api/v1/transactions?limit=0", token, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("reports", func(t *testing.T) {
		resp, out := env.api(t, http.MethodGet, "/api/v1/reports/monthly?year=2024&month=3", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		totals := out["totals"].(map[string]any)
		assert.Equal(t, "25", totals["expense"])
		assert.Equal(t, "-25", totals["balance"])

		resp, _ = env.api(t, http.MethodGet, "/api/v1/reports/monthly?year=2024&month=0", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = env.api(t, http.MethodGet, "/api/v1/reports/monthly?year=2024&month=14", token, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		resp, out = env.api(t, http.MethodGet, "/api/v1/reports/lifetime", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, out["transactions"], 1)
	})

	t.Run("other user sees 404", func(t *testing.T) {
		env.signup(t, env.browser(t), "bob", "hunter2")
		_, out := env.api(t, http.MethodPost, "/api/v1/auth/token", "", map[string]string{"username": "bob", "password": "hunter2"})
		bobToken := out["token"].(string)

		resp, _ := env.api(t, http.MethodGet, "/api/v1/transactions/"+id, bobToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp, _ = env.api(t, http.MethodDelete, "/api/v1/transactions/"+id, bobToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("delete", func(t *testing.T) {
		resp, _ := env.api(t, http.MethodDelete, "/api/v1/transactions/"+id, token, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp, _ = env.api(t, http.MethodGet, "/api/v1/transactions/"+id, token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "/"},
		{"/expenses/report", "/expenses/report"},
		{"/expenses/month?year=2024&month=3", "/expenses/month?year=2024&month=3"},
		{"//evil.example", "/"},
		{"/\\evil.example", "/"},
		{"https://evil.example/", "/"},
		{"relative", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeNext(tt.in), "safeNext(%q)", tt.in)
	}
}

func TestDecodeFlash(t *testing.T) {
	f, ok := decodeFlash(flashCookie(Flash{Kind: FlashWarning, Message: "careful"}, false).Value)
	require.True(t, ok)
	assert.Equal(t, Flash{Kind: FlashWarning, Message: "careful"}, f)

	for _, bad := range []string{"", "%%%", "c3VjY2Vzcw", "Ym9ndXMKaGk"} {
		_, ok := decodeFlash(bad)
		assert.False(t, ok, bad)
	}
}

func TestExportDownloads(t *testing.T) {
	env := newTestEnv(t)
	c := env.browser(t)
	env.signup(t, c, "alice", "secret")
	env.addTransaction(t, c, "Expense", "12.50", "2024-03-02", env.food, "Lunch")

	resp, body := env.get(t, c, "/expenses/export?format=csv")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".csv")
	assert.Contains(t, body, "ID,Date,Kind,Category,Amount,Note")
	assert.Contains(t, body, "2024-03-02,Expense,Food,12.50,Lunch")

	resp, body = env.get(t, c, "/expenses/export")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
	assert.True(t, strings.HasPrefix(body, "PK"), "xlsx is a zip archive")

	resp, _ = env.get(t, c, "/expenses/export?format=pdf")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
