package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/m0nesy/f1kz-be/internal/api"
	"github.com/m0nesy/f1kz-be/internal/database"
	"github.com/m0nesy/f1kz-be/internal/f1api"
	"github.com/m0nesy/f1kz-be/internal/models"
	"github.com/m0nesy/f1kz-be/internal/services"
)

var testSecret = []byte("router-test-secret")

type fakeF1 struct {
	body json.RawMessage
	err  error
}

func (f *fakeF1) Fetch(_ context.Context, _ string, _ url.Values) (json.RawMessage, error) {
	return f.body, f.err
}

type fakeAI struct {
	text     string
	image    []byte
	textErr  error
	imageErr error
}

func (f *fakeAI) GenerateText(_ context.Context, _ string) (string, error) {
	return f.text, f.textErr
}

func (f *fakeAI) GenerateImage(_ context.Context, _ string) ([]byte, error) {
	return f.image, f.imageErr
}

func newTestServer(t *testing.T, f1 *fakeF1, aiClient *fakeAI) *httptest.Server {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	if f1 == nil {
		f1 = &fakeF1{body: json.RawMessage(`{}`)}
	}
	if aiClient == nil {
		aiClient = &fakeAI{}
	}

	router := api.NewRouter(api.Options{
		UserService: services.NewUserService(db),
		NewsService: services.NewNewsService(aiClient, time.Hour),
		F1Client:    f1,
		AIClient:    aiClient,
		JWTSecret:   testSecret,
		CORSOrigins: []string{"*"},
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return doReq(t, req)
}

func doReq(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func TestAuthScenario(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	// Register alice.
	resp, body := postJSON(t, srv.URL+"/api/auth/register", map[string]any{
		"username": "alice",
		"email":    "a@x.com",
		"password": "secret1",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created models.User
	require.NoError(t, json.Unmarshal(body, &created))
	require.Equal(t, "alice", created.Username)
	require.NotContains(t, string(body), "password")

	// Login with the right password.
	resp, body = postJSON(t, srv.URL+"/api/auth/login", map[string]any{
		"usernameOrEmail": "alice",
		"password":        "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var login struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body, &login))
	require.NotEmpty(t, login.Token)
	require.Equal(t, created.ID, login.User.ID)

	// Wrong password: generic 401.
	resp, body = postJSON(t, srv.URL+"/api/auth/login", map[string]any{
		"usernameOrEmail": "alice",
		"password":        "wrong",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.JSONEq(t, `{"message":"Invalid credentials"}`, string(body))

	// /user/me with the token.
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/user/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	resp, body = doReq(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me models.User
	require.NoError(t, json.Unmarshal(body, &me))
	require.Equal(t, created.ID, me.ID)
	require.Equal(t, "alice", me.Username)

	// /user/me without a header.
	req, err = http.NewRequest(http.MethodGet, srv.URL+"/api/user/me", nil)
	require.NoError(t, err)
	resp, body = doReq(t, req)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.JSONEq(t, `{"message":"No Authorization header"}`, string(body))
}

func TestRegister_RejectsMalformedFields(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp, _ := postJSON(t, srv.URL+"/api/auth/register", map[string]any{
		"username": "alice",
		"email":    "not-an-email",
		"password": "secret1",
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateMe_FavoritesRoundTrip(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	_, _ = postJSON(t, srv.URL+"/api/auth/register", map[string]any{
		"username": "alice", "email": "a@x.com", "password": "secret1",
	}, nil)
	_, body := postJSON(t, srv.URL+"/api/auth/login", map[string]any{
		"usernameOrEmail": "a@x.com", "password": "secret1",
	}, nil)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &login))

	favorites := []string{"alonso", "sainz"}
	b, _ := json.Marshal(map[string]any{"favoriteDriversIds": favorites})
	req, err := http.NewRequest(http.MethodPatch, srv.URL+"/api/user/me", bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+login.Token)
	resp, body := doReq(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	req, err = http.NewRequest(http.MethodGet, srv.URL+"/api/user/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	_, body = doReq(t, req)

	var me models.User
	require.NoError(t, json.Unmarshal(body, &me))
	require.Equal(t, favorites, me.FavoriteDriverIDs)
}

func TestF1Proxy_RelaysAndFailsUniformly(t *testing.T) {
	const payload = `{"drivers":[{"driverId":"max_verstappen"}]}`
	srv := newTestServer(t, &fakeF1{body: json.RawMessage(payload)}, nil)

	resp, body := doReq(t, mustGet(t, srv.URL+"/api/f1api/drivers"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, payload, string(body))

	srvDown := newTestServer(t, &fakeF1{err: f1api.ErrUpstream}, nil)
	resp, body = doReq(t, mustGet(t, srvDown.URL+"/api/f1api/standings/drivers"))
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.JSONEq(t, `{"message":"Error fetching data from external F1 API"}`, string(body))
}

func TestAI_GenerateNews(t *testing.T) {
	srv := newTestServer(t, nil, &fakeAI{text: "model output"})

	resp, body := postJSON(t, srv.URL+"/api/ai/generate-news", map[string]string{"prompt": "write news"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"news":"model output"}`, string(body))

	// Empty prompt is rejected before the bridge is involved.
	resp, _ = postJSON(t, srv.URL+"/api/ai/generate-news", map[string]string{"prompt": ""}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAI_GenerateImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	srv := newTestServer(t, nil, &fakeAI{image: png})

	resp, body := postJSON(t, srv.URL+"/api/ai/generate-image", map[string]string{"prompt": "podium"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	require.Equal(t, png, body)

	srvDown := newTestServer(t, nil, &fakeAI{imageErr: errors.New("no image data found in AI response")})
	resp, _ = postJSON(t, srvDown.URL+"/api/ai/generate-image", map[string]string{"prompt": "podium"}, nil)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestNewsLatest_GeneratesOnDemand(t *testing.T) {
	feed := `{"news":[{"title":"T","summary":"S","category":"race","date":"2026-08-30"}]}`
	srv := newTestServer(t, nil, &fakeAI{text: feed})

	resp, body := doReq(t, mustGet(t, srv.URL+"/api/news/latest"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		News []models.NewsItem `json:"news"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.News, 1)
	require.Equal(t, models.CategoryRace, out.News[0].Category)
}

func TestUnknownRoute_JSON404(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp, body := doReq(t, mustGet(t, srv.URL+"/api/nope"))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.JSONEq(t, `{"message":"Not found"}`, string(body))
}

func mustGet(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	return req
}
