package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plantsim/internal/api/websocket"
	"plantsim/internal/auth"
	"plantsim/internal/config"
	"plantsim/internal/interfaces"
	"plantsim/internal/simulation"
)

type stubLM struct {
	cfg   *config.Config
	fleet *simulation.Fleet
}

func (s *stubLM) Config() *config.Config { return s.cfg }

func (s *stubLM) Fleet() *simulation.Fleet { return s.fleet }

func (s *stubLM) Shutdown(context.Context) error { return nil }

func (s *stubLM) GetCurrentStatus() interfaces.SystemStatus {
	return interfaces.SystemStatus{
		State:           "running",
		MachineCount:    s.fleet.MachineCount(),
		SimulationSpeed: s.fleet.Speed(),
	}
}

func testServer(t *testing.T) (*Server, *simulation.Fleet) {
	t.Helper()
	t.Setenv("PLANTSIM_TEST_API_KEY", "test-key")
	t.Setenv("PLANTSIM_TEST_JWT_SECRET", "handler-test-signing-secret-0123456789")

	cfg := &config.Config{
		Server: config.ServerConfig{HTTPPort: 0},
		Auth: config.AuthConfig{
			APIKeyEnv:      "PLANTSIM_TEST_API_KEY",
			JWTSecretEnv:   "PLANTSIM_TEST_JWT_SECRET",
			AccessTokenTTL: time.Hour,
		},
	}

	logger := zap.NewNop()
	rng := rand.New(rand.NewSource(42))
	fleet := simulation.NewFleet(5, 5*time.Second, 1.0, logger, rng)
	fleet.Tick(time.Now().UTC(), simulation.ShiftDay)

	authService := auth.NewAuthService(cfg.Auth)
	hub := websocket.NewHub(logger, authService)
	lm := &stubLM{cfg: cfg, fleet: fleet}

	return NewServer(cfg, lm, logger, hub, authService), fleet
}

func doRequest(s *Server, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

var apiKeyHeader = map[string]string{"X-API-Key": "test-key"}

func TestHealthIsPublic(t *testing.T) {
	s, _ := testServer(t)

	w := doRequest(s, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSensorDataRequiresAuth(t *testing.T) {
	s, _ := testServer(t)

	w := doRequest(s, http.MethodGet, "/sensordata", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(s, http.MethodGet, "/sensordata", nil, map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSensorDataReturnsFullSnapshot(t *testing.T) {
	s, _ := testServer(t)

	w := doRequest(s, http.MethodGet, "/sensordata", nil, apiKeyHeader)
	require.Equal(t, http.StatusOK, w.Code)

	var snapshot map[string]simulation.SensorReading
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	assert.Len(t, snapshot, 5)

	reading, ok := snapshot["Machine_1"]
	require.True(t, ok)
	assert.Equal(t, "Machine_1", reading.MachineID)
	assert.NotEmpty(t, reading.ProductType)
}

func TestSensorDataAcceptsQueryAPIKey(t *testing.T) {
	s, _ := testServer(t)

	w := doRequest(s, http.MethodGet, "/sensordata?api_key=test-key", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetMachine(t *testing.T) {
	s, _ := testServer(t)

	w := doRequest(s, http.MethodGet, "/machine/Machine_2", nil, apiKeyHeader)
	require.Equal(t, http.StatusOK, w.Code)

	var reading simulation.SensorReading
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reading))
	assert.Equal(t, "Machine_2", reading.MachineID)
}

func TestGetMachineNotFound(t *testing.T) {
	s, _ := testServer(t)

	w := doRequest(s, http.MethodGet, "/machine/NoSuchId", nil, apiKeyHeader)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestForceState(t *testing.T) {
	s, fleet := testServer(t)

	body, _ := json.Marshal(map[string]string{"state": "maintenance"})
	w := doRequest(s, http.MethodPost, "/machine/Machine_3/force-state", body, apiKeyHeader)
	require.Equal(t, http.StatusOK, w.Code)

	reading := fleet.GetSnapshot()["Machine_3"]
	assert.Equal(t, simulation.StateMaintenance, reading.State)
	assert.Nil(t, reading.ErrorCode)
}

func TestForceStateInvalidState(t *testing.T) {
	s, _ := testServer(t)

	body, _ := json.Marshal(map[string]string{"state": "exploded"})
	w := doRequest(s, http.MethodPost, "/machine/Machine_1/force-state", body, apiKeyHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForceStateUnknownMachine(t *testing.T) {
	s, _ := testServer(t)

	body, _ := json.Marshal(map[string]string{"state": "idle"})
	w := doRequest(s, http.MethodPost, "/machine/NoSuchId/force-state", body, apiKeyHeader)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetSimulationSpeed(t *testing.T) {
	s, fleet := testServer(t)

	body, _ := json.Marshal(map[string]float64{"speed": 2.0})
	w := doRequest(s, http.MethodPost, "/simulation/speed", body, apiKeyHeader)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, fleet.Speed())
}

func TestSetSimulationSpeedOutOfRange(t *testing.T) {
	s, fleet := testServer(t)

	for _, speed := range []float64{0.01, 11.0, -1.0} {
		body, _ := json.Marshal(map[string]float64{"speed": speed})
		w := doRequest(s, http.MethodPost, "/simulation/speed", body, apiKeyHeader)
		assert.Equal(t, http.StatusBadRequest, w.Code, "speed %v", speed)
	}
	assert.Equal(t, 1.0, fleet.Speed())
}

func TestFactoryStatus(t *testing.T) {
	s, _ := testServer(t)

	w := doRequest(s, http.MethodGet, "/status", nil, apiKeyHeader)
	require.Equal(t, http.StatusOK, w.Code)

	var status struct {
		TotalMachines     int            `json:"total_machines"`
		MachineStates     map[string]int `json:"machine_states"`
		OverallEfficiency float64        `json:"overall_efficiency"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))

	assert.Equal(t, 5, status.TotalMachines)
	assert.Len(t, status.MachineStates, 4)
	assert.GreaterOrEqual(t, status.OverallEfficiency, 0.0)
	assert.LessOrEqual(t, status.OverallEfficiency, 100.0)
}

func TestErrorsEndpoint(t *testing.T) {
	s, fleet := testServer(t)

	require.True(t, fleet.ForceState("Machine_1", simulation.StateError))

	w := doRequest(s, http.MethodGet, "/errors", nil, apiKeyHeader)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		TotalErrors int `json:"total_errors"`
		Errors      []struct {
			MachineID string  `json:"machine_id"`
			ErrorCode *string `json:"error_code"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Equal(t, 1, resp.TotalErrors)
	assert.Equal(t, "Machine_1", resp.Errors[0].MachineID)
	require.NotNil(t, resp.Errors[0].ErrorCode)
}

func TestTokenExchange(t *testing.T) {
	s, _ := testServer(t)

	body, _ := json.Marshal(map[string]string{"api_key": "test-key"})
	w := doRequest(s, http.MethodPost, "/auth/token", body, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)

	// The issued token authenticates API calls.
	w = doRequest(s, http.MethodGet, "/sensordata", nil, map[string]string{
		"Authorization": "Bearer " + resp.AccessToken,
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTokenExchangeRejectsBadKey(t *testing.T) {
	s, _ := testServer(t)

	body, _ := json.Marshal(map[string]string{"api_key": "wrong"})
	w := doRequest(s, http.MethodPost, "/auth/token", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
