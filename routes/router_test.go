package routes

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"idcard.link/configs"
	"idcard.link/models"
	"idcard.link/pkg/testdb"
	"idcard.link/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type envelope struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data"`
	Warnings []string        `json:"warnings"`
}

type testServer struct {
	app *fiber.App
	db  *gorm.DB
}

func newTestServer(t *testing.T, loginLimit int) *testServer {
	t.Helper()
	db := testdb.Open(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Username:     "encoder",
		PasswordHash: string(hash),
		FullName:     "Front Desk",
		IsActive:     true,
	}).Error)

	cfg := &configs.AppConfig{
		AppName:         "ID Cards",
		JWTSecret:       "test-secret",
		SessionTTL:      time.Hour,
		CookieName:      "token",
		RequestTimeout:  5 * time.Second,
		StoragePath:     t.TempDir(),
		SeniorPrefix:    "LC-SC-",
		YouthPrefix:     "LC-YMC-",
		AllowCardNoEdit: true,
		LoginRateLimit:  loginLimit,
	}
	app := NewApp(cfg)
	SetupRoutes(app, NewContainer(db, cfg, services.NewInMemoryRevocationStore()))
	return &testServer{app: app, db: db}
}

func (s *testServer) do(t *testing.T, method, path, body string, cookie *http.Cookie) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func (s *testServer) login(t *testing.T) *http.Cookie {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/login", `{"username":"encoder","password":"s3cret-pass"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			require.True(t, c.HttpOnly)
			require.NotEmpty(t, c.Value)
			return c
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

func TestAPIRequiresSession(t *testing.T) {
	s := newTestServer(t, 0)

	resp := s.do(t, http.MethodPost, "/api/scid", `{"fullName":"Juan"}`, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.False(t, decode(t, resp).Success)

	var count int64
	require.NoError(t, s.db.Model(&models.SeniorCard{}).Count(&count).Error)
	require.Zero(t, count)

	resp = s.do(t, http.MethodGet, "/home", "", nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/signin", resp.Header.Get(fiber.HeaderLocation))
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	s := newTestServer(t, 0)
	resp := s.do(t, http.MethodPost, "/api/login", `{"username":"encoder","password":"nope"}`, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Empty(t, resp.Cookies())
}

func TestCardLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t, 0)
	cookie := s.login(t)

	resp := s.do(t, http.MethodGet, "/api/scid/next", "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var next struct {
		Next string `json:"next"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&next))
	resp.Body.Close()
	require.Equal(t, "LC-SC-000001", next.Next)

	resp = s.do(t, http.MethodPost, "/api/scid", `{"scid":"IGNORED","fullName":"Juan Dela Cruz","birthDate":"1950-01-02"}`, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	env := decode(t, resp)
	var created []models.SeniorCard
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Len(t, created, 1)
	require.Equal(t, "LC-SC-000001", created[0].SCID)
	require.Equal(t, models.CardStatusID, created[0].Status)

	resp = s.do(t, http.MethodPost, "/api/scid", `{"birthDate":"1950-01-02"}`, cookie)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/scid?query=juan,ID", "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found []models.SeniorCard
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &found))
	require.Len(t, found, 1)

	resp = s.do(t, http.MethodPut, "/api/scid/status", `{"scid":"LC-SC-000001","status":"PRINTED"}`, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPut, "/api/scid/status", `{"scid":"LC-SC-000001","status":"LOST"}`, cookie)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/api/scid?scid=LC-SC-000001", "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, decode(t, resp).Success)

	resp = s.do(t, http.MethodDelete, "/api/scid?scid=LC-SC-000001", "", cookie)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/api/scid", "", cookie)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateIgnoresClientIDAndTimestamps(t *testing.T) {
	s := newTestServer(t, 0)
	cookie := s.login(t)
	body := `{"id":777,"fullName":"Juan","created_at":"2001-01-01T00:00:00Z"}`

	var ids []uint
	for i := 0; i < 2; i++ {
		resp := s.do(t, http.MethodPost, "/api/scid", body, cookie)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var created []models.SeniorCard
		require.NoError(t, json.Unmarshal(decode(t, resp).Data, &created))
		require.Len(t, created, 1)
		require.NotEqual(t, uint(777), created[0].ID)
		require.NotEqual(t, 2001, created[0].CreatedAt.Year())
		ids = append(ids, created[0].ID)
	}
	require.NotEqual(t, ids[0], ids[1])

	var stored []models.SeniorCard
	require.NoError(t, s.db.Order("scid").Find(&stored).Error)
	require.Len(t, stored, 2)
	require.Equal(t, "LC-SC-000001", stored[0].SCID)
	require.Equal(t, "LC-SC-000002", stored[1].SCID)
}

func TestLogoutRevokesSession(t *testing.T) {
	s := newTestServer(t, 0)
	cookie := s.login(t)

	resp := s.do(t, http.MethodGet, "/api/me", "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/logout", "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/me", "", cookie)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDeactivatedAccountLosesSession(t *testing.T) {
	s := newTestServer(t, 0)
	cookie := s.login(t)

	resp := s.do(t, http.MethodGet, "/api/me", "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.db.Model(&models.User{}).Where("username = ?", "encoder").Update("is_active", false).Error)

	resp = s.do(t, http.MethodGet, "/api/me", "", cookie)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.False(t, decode(t, resp).Success)
}

func TestLoginRateLimit(t *testing.T) {
	s := newTestServer(t, 2)
	for i := 0; i < 2; i++ {
		resp := s.do(t, http.MethodPost, "/api/login", `{"username":"encoder","password":"nope"}`, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp := s.do(t, http.MethodPost, "/api/login", `{"username":"encoder","password":"s3cret-pass"}`, nil)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestUnknownAPIRouteIsJSON(t *testing.T) {
	s := newTestServer(t, 0)
	cookie := s.login(t)
	resp := s.do(t, http.MethodGet, "/api/nothing-here", "", cookie)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.False(t, decode(t, resp).Success)
}

func TestAssetUploadAndServe(t *testing.T) {
	s := newTestServer(t, 0)
	cookie := s.login(t)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 8, 4))))
	pixel := base64.StdEncoding.EncodeToString(buf.Bytes())
	body := `{"image":"data:image/png;base64,` + pixel + `","folder":"Signature","filename":"LC-SC-000001"}`
	resp := s.do(t, http.MethodPost, "/api/upload", body, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/scpics/Signature/LC-SC-000001", "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/scpics/Images/LC-SC-000001", "", cookie)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/scpics/Other/LC-SC-000001", "", cookie)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestPrintPage(t *testing.T) {
	s := newTestServer(t, 0)
	cookie := s.login(t)

	resp := s.do(t, http.MethodPost, "/api/youthid", `{"fullName":"Ana Reyes","barangay":"San Roque"}`, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/print/youth/LC-YMC-000001", "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(page), "LC-YMC-000001")
	require.Contains(t, string(page), "San Roque")
	require.Contains(t, string(page), "data:image/png;base64,")

	resp = s.do(t, http.MethodGet, "/print/youth/LC-YMC-000099", "", cookie)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
