package onboarding

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/sicko7947/multipageform/tempdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClient struct {
	t      *testing.T
	app    *fiber.App
	cookie *http.Cookie
}

func newTestClient(t *testing.T) *testClient {
	app := fiber.New()
	api := app.Group("/api/v1", tempdata.Middleware(tempdata.NewCookieCodec([]byte("0123456789abcdef0123456789abcdef"), nil)))
	RegisterRoutes(api, newTestOrchestrator(t))
	return &testClient{t: t, app: app}
}

// do sends a request carrying the current temp data cookie and keeps the one
// the response sets
func (c *testClient) do(method, path, body string) (*http.Response, map[string]any) {
	c.t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cookie != nil {
		req.AddCookie(&http.Cookie{Name: c.cookie.Name, Value: c.cookie.Value})
	}

	resp, err := c.app.Test(req)
	require.NoError(c.t, err)

	for _, ck := range resp.Cookies() {
		if ck.Name != tempdata.DefaultCookieName {
			continue
		}
		if ck.Value == "" {
			c.cookie = nil
		} else {
			c.cookie = ck
		}
	}

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
	}
	return resp, decoded
}

func TestRoutes_OnboardingFlow(t *testing.T) {
	client := newTestClient(t)

	resp, body := client.do(http.MethodGet, "/api/v1/onboarding/", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "No onboarding in progress", body["error"])

	resp, body = client.do(http.MethodPost, "/api/v1/onboarding/identity", `{"name":"Ada","email":"ada@example.com"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, client.cookie)
	guid, _ := body["guid"].(string)
	require.NotEmpty(t, guid)

	resp, body = client.do(http.MethodPost, "/api/v1/onboarding/interests", `{"interests":["go"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, guid, body["guid"])

	resp, body = client.do(http.MethodGet, "/api/v1/onboarding/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, _ := body["data"].(map[string]any)
	assert.Equal(t, float64(2), data["step"])
	assert.Equal(t, "Ada", data["name"])

	resp, body = client.do(http.MethodGet, "/api/v1/onboarding/exists/"+guid, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["exists"])

	resp, _ = client.do(http.MethodDelete, "/api/v1/onboarding/", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Nil(t, client.cookie)

	resp, body = client.do(http.MethodGet, "/api/v1/onboarding/exists/"+guid, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["exists"])
}

func TestRoutes_Errors(t *testing.T) {
	client := newTestClient(t)

	resp, _ := client.do(http.MethodPost, "/api/v1/onboarding/identity", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = client.do(http.MethodPost, "/api/v1/onboarding/identity", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = client.do(http.MethodPost, "/api/v1/onboarding/interests", `{"interests":["go"]}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = client.do(http.MethodDelete, "/api/v1/onboarding/", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = client.do(http.MethodGet, "/api/v1/onboarding/exists/nope", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
