//go:build integration

package integration

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/Patator33/Gestion-locative/internal/app"
	"github.com/Patator33/Gestion-locative/internal/config"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	"github.com/Patator33/Gestion-locative/internal/server"
	"github.com/Patator33/Gestion-locative/internal/services"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

var (
	application *app.App
	baseURL     string
)

// TestMain runs the suite against the Postgres database named by DB_URL.
func TestMain(m *testing.M) {
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		log.Println("DB_URL not set, skipping integration tests")
		os.Exit(0)
	}
	utils.PasswordHashCost = 4

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		log.Fatal(err)
	}
	encKey, err := utils.RandomKey(32)
	if err != nil {
		log.Fatal(err)
	}
	uploads, err := os.MkdirTemp("", "rentals-uploads-*")
	if err != nil {
		log.Fatal(err)
	}

	cfg := &config.Config{
		AppName:                  "rentals-service-integration",
		Env:                      "test",
		Location:                 time.UTC,
		StorageBackend:           config.StorageBackendPostgres,
		DBUrl:                    dbURL,
		DBEncryptionKey:          encKey,
		UploadsDir:               uploads,
		MaxUploadBytes:           1 << 20,
		RSAPrivateKey:            key,
		RSAPublicKey:             &key.PublicKey,
		TokenTTL:                 time.Hour,
		AuthRateLimitPerMinute:   6000,
		AuthRateLimitBurst:       500,
		LDFlag_SendgridFromEmail: "no-reply@example.com",
	}

	application, err = app.NewApp(cfg)
	if err != nil {
		log.Fatal("Failed to initialize the application: ", err)
	}
	blobs, err := services.NewLocalBlobStore(uploads)
	if err != nil {
		log.Fatal(err)
	}
	srv := server.New(application, server.Deps{
		Clock:    utils.RealClock(),
		Delivery: &services.Delivery{FromEmail: cfg.LDFlag_SendgridFromEmail},
		Blobs:    blobs,
	})
	ts := httptest.NewServer(srv.Handler)
	baseURL = ts.URL

	code := m.Run()

	ts.Close()
	application.Close()
	_ = os.RemoveAll(uploads)
	os.Exit(code)
}

// --- Generic Request Helper ---

func doRequest(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var payload string
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		payload = string(b)
	}
	req, err := http.NewRequest(method, baseURL+path, strings.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func registerOwner(t *testing.T) (string, *models.User) {
	t.Helper()
	resp := doRequest(t, http.MethodPost, "/api/auth/register", "", dtos.RegisterRequest{
		Email:    fmt.Sprintf("owner-%s@example.com", uuid.NewString()[:8]),
		Password: "secret123",
		Name:     "Bailleur Intégration",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tok := decodeBody[dtos.TokenResponse](t, resp)
	return tok.AccessToken, tok.User
}

func ctx() context.Context { return context.Background() }
