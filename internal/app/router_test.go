package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"fleetdash/internal/config"
	"fleetdash/internal/domain/user"
	"fleetdash/internal/domain/vehicle"
	wstypes "fleetdash/internal/domain/websocket"
	"fleetdash/internal/repository/file"
	"fleetdash/internal/upstream/upstreamtest"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

const masterPhone = "0799"

func newTestApp(t *testing.T) (*upstreamtest.Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := upstreamtest.New(t)
	fake.MasterPhone = masterPhone
	fake.AddUser(masterPhone, "Owner", user.RoleUser)
	fake.AddUser("0700", "Admin", user.RoleAdmin)
	fake.AddUser("0755", "Chebet", user.RoleDriver)
	fake.AddVehicle("KBX 1", vehicle.StatusActive)
	fake.AddVehicle("KBX 2", vehicle.StatusMaintenance)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	kv, err := file.NewRecordsRepository(t.TempDir())
	require.NoError(t, err)

	cfg := config.AppConfig{
		CORSOrigins:     []string{"*"},
		UpstreamURL:     fake.URL(),
		UpstreamTimeout: 5 * time.Second,
		SessionTTL:      time.Hour,
		SessionCookie:   "fleet_session",
		JWTSecret:       fake.Secret,
		MasterPhone:     masterPhone,
		RecordsBackend:  config.RecordsBackendFile,
	}

	ctx, cancel := context.WithCancel(context.Background())
	engine := gin.New()
	svc := Build(ctx, engine, cfg, Deps{Redis: rdb, RecordsKV: kv}, zap.NewNop())

	srv := httptest.NewServer(engine)
	t.Cleanup(func() {
		srv.Close()
		svc.Wait()
		cancel()
	})
	return fake, srv.URL + "/api/v1"
}

func newBrowser(t *testing.T, base string) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, base: base, client: &http.Client{Jar: jar}}
}

func (b *browser) do(method, path string, body interface{}) (*http.Response, []byte) {
	b.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(b.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, b.base+path, reader)
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, raw
}

func (b *browser) json(method, path string, body interface{}, status int, out interface{}) {
	b.t.Helper()
	resp, raw := b.do(method, path, body)
	require.Equal(b.t, status, resp.StatusCode, string(raw))
	if out == nil {
		return
	}
	var env envelope
	require.NoError(b.t, json.Unmarshal(raw, &env))
	require.NoError(b.t, json.Unmarshal(env.Data, out))
}

func (b *browser) login(phone string) {
	b.t.Helper()
	b.json(http.MethodPost, "/auth/login", map[string]string{"phone": phone, "password": upstreamtest.Password}, http.StatusOK, nil)
}

type rowsView struct {
	Rows []struct {
		Key      string `json:"key"`
		Selected bool   `json:"selected"`
	} `json:"rows"`
	Total    int `json:"total"`
	Filtered int `json:"filtered"`
}

func TestHealthNeedsNoSession(t *testing.T) {
	_, base := newTestApp(t)
	resp, _ := newBrowser(t, base).do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("X-Session-ID"))
}

func TestLoginFlow(t *testing.T) {
	_, base := newTestApp(t)
	b := newBrowser(t, base)

	b.json(http.MethodGet, "/vehicles", nil, http.StatusUnauthorized, nil)
	b.json(http.MethodGet, "/auth/me", nil, http.StatusUnauthorized, nil)

	resp, raw := b.do(http.MethodPost, "/auth/login", map[string]string{"phone": "0700", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(raw), "Invalid credentials")

	b.login("0700")

	var me struct {
		User user.User `json:"user"`
	}
	b.json(http.MethodGet, "/auth/me", nil, http.StatusOK, &me)
	assert.Equal(t, user.RoleAdmin, me.User.Role)

	var overview struct {
		Cards struct {
			TotalVehicles  int `json:"total_vehicles"`
			UtilizationPct int `json:"utilization_pct"`
		} `json:"cards"`
	}
	b.json(http.MethodGet, "/dashboard/overview", nil, http.StatusOK, &overview)
	assert.Equal(t, 2, overview.Cards.TotalVehicles)
	assert.Equal(t, 50, overview.Cards.UtilizationPct)

	b.json(http.MethodPost, "/auth/logout", nil, http.StatusOK, nil)
	b.json(http.MethodGet, "/vehicles", nil, http.StatusUnauthorized, nil)
}

func TestCreateVehicleAppearsOnce(t *testing.T) {
	_, base := newTestApp(t)
	b := newBrowser(t, base)
	b.login("0700")

	b.json(http.MethodPost, "/vehicles", vehicle.CreateVehicleRequest{VehicleNumber: "KCZ 9", Make: "Isuzu", Model: "FRR"}, http.StatusCreated, nil)

	var view rowsView
	b.json(http.MethodGet, "/vehicles?search=kcz", nil, http.StatusOK, &view)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "KCZ 9", view.Rows[0].Key)
	assert.Equal(t, 3, view.Total)

	b.json(http.MethodPost, "/vehicles", map[string]string{"make": "Isuzu"}, http.StatusBadRequest, nil)
}

func TestSelectionAndExport(t *testing.T) {
	_, base := newTestApp(t)
	b := newBrowser(t, base)
	b.login("0700")

	var sel struct {
		Selection []string `json:"selection"`
	}
	b.json(http.MethodPost, "/vehicles/selection/KBX%202", nil, http.StatusOK, &sel)
	assert.Equal(t, []string{"KBX 2"}, sel.Selection)

	var view rowsView
	b.json(http.MethodGet, "/vehicles?sort=vehicle_number", nil, http.StatusOK, &view)
	require.Len(t, view.Rows, 2)
	assert.False(t, view.Rows[0].Selected)
	assert.True(t, view.Rows[1].Selected)

	resp, raw := b.do(http.MethodGet, "/vehicles/export?format=csv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "vehicles_"+time.Now().Format("2006-01-02")+".csv")
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2, "header plus the selected row")
	assert.True(t, strings.HasPrefix(lines[1], "KBX 2,"))

	resp, _ = b.do(http.MethodGet, "/vehicles/export?format=xlsx", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")

	resp, _ = b.do(http.MethodGet, "/vehicles/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	b.json(http.MethodDelete, "/vehicles/selection", nil, http.StatusOK, nil)
	resp, raw = b.do(http.MethodGet, "/vehicles/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, strings.Split(strings.TrimSpace(string(raw)), "\n"), 3)
}

func TestRoles(t *testing.T) {
	_, base := newTestApp(t)

	driverBrowser := newBrowser(t, base)
	driverBrowser.login("0755")
	driverBrowser.json(http.MethodGet, "/vehicles", nil, http.StatusOK, nil)
	driverBrowser.json(http.MethodPost, "/vehicles", vehicle.CreateVehicleRequest{VehicleNumber: "X", Make: "X", Model: "X"}, http.StatusForbidden, nil)
	driverBrowser.json(http.MethodGet, "/users", nil, http.StatusForbidden, nil)

	admin := newBrowser(t, base)
	admin.login("0700")
	admin.json(http.MethodPut, "/users/0700/role", map[string]string{"role": "user"}, http.StatusForbidden, nil)
	admin.json(http.MethodDelete, "/users/0700", nil, http.StatusForbidden, nil)

	t.Run("role change signs the account out", func(t *testing.T) {
		admin.json(http.MethodPut, "/users/0755/role", map[string]string{"role": "manager"}, http.StatusOK, nil)
		driverBrowser.json(http.MethodGet, "/vehicles", nil, http.StatusUnauthorized, nil)

		driverBrowser.login("0755")
		driverBrowser.json(http.MethodPost, "/vehicles", vehicle.CreateVehicleRequest{VehicleNumber: "KMG 1", Make: "Mazda", Model: "T35"}, http.StatusCreated, nil)
	})
}

func TestMasterAccount(t *testing.T) {
	_, base := newTestApp(t)

	master := newBrowser(t, base)
	master.login(masterPhone)

	var users struct {
		Total       int    `json:"total"`
		MasterPhone string `json:"master_phone"`
	}
	master.json(http.MethodGet, "/users", nil, http.StatusOK, &users)
	assert.Equal(t, 3, users.Total)
	assert.Equal(t, masterPhone, users.MasterPhone)

	master.json(http.MethodPut, "/users/0755/role", map[string]string{"role": "manager"}, http.StatusOK, nil)
	master.json(http.MethodPost, "/vehicles", vehicle.CreateVehicleRequest{VehicleNumber: "X", Make: "X", Model: "X"}, http.StatusForbidden, nil)

	admin := newBrowser(t, base)
	admin.login("0700")
	admin.json(http.MethodPut, "/users/"+masterPhone+"/role", map[string]string{"role": "driver"}, http.StatusForbidden, nil)
	admin.json(http.MethodDelete, "/users/"+masterPhone, nil, http.StatusForbidden, nil)
}

func TestRecords(t *testing.T) {
	_, base := newTestApp(t)
	admin := newBrowser(t, base)
	admin.login("0700")
	other := newBrowser(t, base)
	other.login("0755")

	var trip struct {
		ID        string  `json:"id"`
		TotalCost float64 `json:"total_cost"`
	}
	admin.json(http.MethodPost, "/trips", map[string]interface{}{
		"vehicle_number": "KBX 1", "driver": "Amina", "origin": "Nairobi", "destination": "Nakuru",
		"date": "2025-01-02", "distance_km": 160, "fuel_type": "diesel",
	}, http.StatusCreated, &trip)
	assert.Equal(t, 800.0, trip.TotalCost)

	admin.json(http.MethodPost, "/trips", map[string]interface{}{
		"vehicle_number": "KBX 1", "driver": "Amina", "origin": "A", "destination": "B",
		"date": "2025-01-02", "distance_km": 1, "fuel_type": "kerosene",
	}, http.StatusBadRequest, nil)

	var totals struct {
		Trips    int     `json:"trips"`
		FuelCost float64 `json:"fuel_cost"`
	}
	admin.json(http.MethodGet, "/records/totals", nil, http.StatusOK, &totals)
	assert.Equal(t, 1, totals.Trips)
	assert.Equal(t, 800.0, totals.FuelCost)

	var theirs rowsView
	other.json(http.MethodGet, "/trips", nil, http.StatusOK, &theirs)
	assert.Zero(t, theirs.Total, "records are kept per account")

	var estimate struct {
		Estimate struct {
			CostPerKm float64 `json:"cost_per_km"`
			TotalCost float64 `json:"total_cost"`
		} `json:"estimate"`
	}
	admin.json(http.MethodGet, "/fuel/estimate?distance_km=100&fuel_type=petrol", nil, http.StatusOK, &estimate)
	assert.Equal(t, 6.0, estimate.Estimate.CostPerKm)
	assert.Equal(t, 600.0, estimate.Estimate.TotalCost)
	for _, distance := range []string{"NaN", "Inf", "-Inf", "far"} {
		admin.json(http.MethodGet, "/fuel/estimate?distance_km="+distance+"&fuel_type=diesel", nil, http.StatusBadRequest, nil)
	}

	admin.json(http.MethodDelete, "/trips/"+trip.ID, nil, http.StatusOK, nil)
	admin.json(http.MethodDelete, "/trips/"+trip.ID, nil, http.StatusNotFound, nil)
}

func (b *browser) sessionID() string {
	b.t.Helper()
	u, err := url.Parse(b.base)
	require.NoError(b.t, err)
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == "fleet_session" {
			return c.Value
		}
	}
	b.t.Fatal("no session cookie")
	return ""
}

func readUntil(t *testing.T, conn *websocket.Conn, want wstypes.EventType) json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg struct {
			Type wstypes.EventType `json:"type"`
			Data json.RawMessage   `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == want {
			return msg.Data
		}
	}
}

func TestWebSocket(t *testing.T) {
	_, base := newTestApp(t)
	wsURL := "ws" + strings.TrimPrefix(base, "http") + "/ws"

	t.Run("anonymous sessions are rejected", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	admin := newBrowser(t, base)
	admin.login("0700")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?session="+admin.sessionID(), nil)
	require.NoError(t, err)
	defer conn.Close()

	var hello struct {
		Phone    string                `json:"phone"`
		Channels []wstypes.ChannelType `json:"channels"`
	}
	require.NoError(t, json.Unmarshal(readUntil(t, conn, wstypes.EventTypeConnected), &hello))
	assert.Equal(t, "0700", hello.Phone)
	assert.Contains(t, hello.Channels, wstypes.ChannelFleet)

	t.Run("refresh answers with an overview", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(map[string]string{"type": string(wstypes.EventTypeRefresh)}))
		var overview struct {
			Cards struct {
				TotalVehicles int `json:"total_vehicles"`
			} `json:"cards"`
		}
		require.NoError(t, json.Unmarshal(readUntil(t, conn, wstypes.EventTypeOverview), &overview))
		assert.Equal(t, 2, overview.Cards.TotalVehicles)
	})

	t.Run("mutations are pushed", func(t *testing.T) {
		admin.json(http.MethodPost, "/vehicles", vehicle.CreateVehicleRequest{VehicleNumber: "KDA 5", Make: "Scania", Model: "R450"}, http.StatusCreated, nil)

		var change wstypes.ChangeData
		require.NoError(t, json.Unmarshal(readUntil(t, conn, wstypes.EventTypeChanged), &change))
		assert.Equal(t, wstypes.ChangeData{Dataset: "vehicles", Action: "created", Key: "KDA 5", By: "0700"}, change)

		var overview struct {
			Cards struct {
				TotalVehicles int `json:"total_vehicles"`
			} `json:"cards"`
		}
		require.NoError(t, json.Unmarshal(readUntil(t, conn, wstypes.EventTypeOverview), &overview))
		assert.Equal(t, 3, overview.Cards.TotalVehicles)
	})

	t.Run("stats", func(t *testing.T) {
		var stats struct {
			Total int `json:"total_connections"`
		}
		admin.json(http.MethodGet, "/admin/ws/stats", nil, http.StatusOK, &stats)
		assert.Equal(t, 1, stats.Total)
	})
}
