// Package upstreamtest runs an in-memory fleet API for tests.
package upstreamtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"fleetdash/internal/domain/auth"
	"fleetdash/internal/domain/driver"
	"fleetdash/internal/domain/user"
	"fleetdash/internal/domain/vehicle"
	"fleetdash/internal/pkg/isotime"

	"github.com/golang-jwt/jwt/v5"
)

// Password is accepted for every seeded account.
const Password = "secret"

// Server is a fake fleet API backed by maps. Tokens are HS256 JWTs signed with
// Secret whose subject is the caller's phone.
type Server struct {
	*httptest.Server

	Secret string
	TTL    time.Duration
	// MasterPhone may administer users whatever its role and cannot be modified.
	MasterPhone string

	mu       sync.Mutex
	users    map[string]*user.User
	vehicles []vehicle.Vehicle
	drivers  []driver.Driver
	nextID   int64
	fail     map[string]int
	calls    map[string]int
}

// New starts a server and closes it when the test ends.
func New(t testing.TB) *Server {
	s := &Server{
		Secret: "test-secret",
		TTL:    time.Hour,
		users:  make(map[string]*user.User),
		fail:   make(map[string]int),
		calls:  make(map[string]int),
		nextID: 1,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.route))
	t.Cleanup(s.Close)
	return s
}

// URL is the API base URL to hand to upstream.NewClient.
func (s *Server) URL() string { return s.Server.URL + "/api" }

// AddUser seeds an account.
func (s *Server) AddUser(phone, name string, role user.Role) *user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &user.User{ID: s.id(), Username: name, Phone: phone, Email: strings.ToLower(name) + "@fleet.test", Role: role, CreatedAt: isotime.Now()}
	s.users[phone] = u
	return u
}

// AddVehicle seeds a vehicle.
func (s *Server) AddVehicle(number string, status vehicle.Status) vehicle.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := vehicle.Vehicle{ID: s.id(), VehicleNumber: number, Make: "Toyota", Model: "Hiace", LicensePlate: number, Status: status, CreatedAt: isotime.Now(), UpdatedAt: isotime.Now()}
	s.vehicles = append(s.vehicles, v)
	return v
}

// AddDriver seeds a driver.
func (s *Server) AddDriver(name, license string, status driver.Status) driver.Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := driver.Driver{ID: s.id(), Name: name, LicenseNumber: license, Status: status, CreatedAt: isotime.Now(), UpdatedAt: isotime.Now()}
	s.drivers = append(s.drivers, d)
	return d
}

// Token mints an access token for phone that expires after ttl.
func (s *Server) Token(phone string, ttl time.Duration) string {
	claims := jwt.RegisteredClaims{Subject: phone, ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.Secret))
	if err != nil {
		panic(err)
	}
	return token
}

// FailNext makes the next n requests whose "METHOD /path" starts with prefix answer 500.
func (s *Server) FailNext(prefix string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[prefix] = n
}

// Calls returns how many requests matched "METHOD /path" exactly.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

func (s *Server) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")
	key := r.Method + " " + path

	s.mu.Lock()
	s.calls[key]++
	for prefix, n := range s.fail {
		if n > 0 && strings.HasPrefix(key, prefix) {
			s.fail[prefix] = n - 1
			s.mu.Unlock()
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "upstream exploded"})
			return
		}
	}
	s.mu.Unlock()

	switch {
	case key == "POST /auth/login":
		s.login(w, r)
		return
	case key == "POST /auth/register":
		s.register(w, r)
		return
	}

	caller, ok := s.authenticate(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token has expired"})
		return
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case key == "GET /auth/me":
		writeJSON(w, http.StatusOK, auth.MeResponse{User: caller})
	case parts[0] == "vehicles":
		s.vehiclesRoute(w, r, parts[1:])
	case parts[0] == "drivers":
		s.driversRoute(w, r, parts[1:])
	case parts[0] == "users":
		s.usersRoute(w, r, caller, parts[1:])
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
	}
}

func (s *Server) authenticate(r *http.Request) (*user.User, bool) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.Secret), nil
	})
	if err != nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[claims.Subject]
	if !ok {
		return nil, false
	}
	copied := *u
	return &copied, true
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid body"})
		return
	}
	s.mu.Lock()
	u, ok := s.users[req.Phone]
	s.mu.Unlock()
	if !ok || req.Password != Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, auth.LoginResponse{
		Message:      "Login successful",
		AccessToken:  s.Token(u.Phone, s.TTL),
		RefreshToken: s.Token(u.Phone, 24*s.TTL),
		User:         u,
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name          string `json:"name"`
		Phone         string `json:"phone"`
		Email         string `json:"email"`
		LicenseNumber string `json:"license_number"`
		Password      string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid body"})
		return
	}
	s.mu.Lock()
	_, exists := s.users[body.Phone]
	s.mu.Unlock()
	if exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Phone already registered"})
		return
	}
	u := s.AddUser(body.Phone, body.Name, user.RoleDriver)
	s.AddDriver(body.Name, body.LicenseNumber, driver.StatusAvailable)
	writeJSON(w, http.StatusCreated, auth.RegisterResponse{Message: "Registered", User: u})
}

func (s *Server) vehiclesRoute(w http.ResponseWriter, r *http.Request, rest []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(rest) == 0 || rest[0] == "" {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, vehicle.ListResponse{Vehicles: append([]vehicle.Vehicle{}, s.vehicles...)})
		case http.MethodPost:
			var req vehicle.CreateVehicleRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VehicleNumber == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "vehicle_number is required"})
				return
			}
			status := req.Status
			if status == "" {
				status = vehicle.StatusActive
			}
			v := vehicle.Vehicle{ID: s.id(), VehicleNumber: req.VehicleNumber, Make: req.Make, Model: req.Model, Year: req.Year, LicensePlate: req.LicensePlate, Mileage: req.Mileage, Status: status, CreatedAt: isotime.Now(), UpdatedAt: isotime.Now()}
			s.vehicles = append(s.vehicles, v)
			writeJSON(w, http.StatusCreated, vehicle.ItemResponse{Message: "Vehicle created", Vehicle: &v})
		}
		return
	}

	id, _ := strconv.ParseInt(rest[0], 10, 64)
	for i, v := range s.vehicles {
		if v.ID != id {
			continue
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, vehicle.ItemResponse{Vehicle: &v})
		case http.MethodPut:
			var req vehicle.UpdateVehicleRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Status != nil {
				s.vehicles[i].Status = *req.Status
			}
			if req.Mileage != nil {
				s.vehicles[i].Mileage = *req.Mileage
			}
			s.vehicles[i].UpdatedAt = isotime.Now()
			updated := s.vehicles[i]
			writeJSON(w, http.StatusOK, vehicle.ItemResponse{Message: "Vehicle updated", Vehicle: &updated})
		case http.MethodDelete:
			s.vehicles = append(s.vehicles[:i], s.vehicles[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Vehicle deleted"})
		}
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Vehicle not found"})
}

func (s *Server) driversRoute(w http.ResponseWriter, r *http.Request, rest []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(rest) == 0 || rest[0] == "" {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, driver.ListResponse{Drivers: append([]driver.Driver{}, s.drivers...)})
		case http.MethodPost:
			var req driver.CreateDriverRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "name is required"})
				return
			}
			status := req.Status
			if status == "" {
				status = driver.StatusAvailable
			}
			d := driver.Driver{ID: s.id(), Name: req.Name, LicenseNumber: req.LicenseNumber, Status: status, CreatedAt: isotime.Now(), UpdatedAt: isotime.Now()}
			s.drivers = append(s.drivers, d)
			writeJSON(w, http.StatusCreated, driver.ItemResponse{Message: "Driver created", Driver: &d})
		}
		return
	}

	id, _ := strconv.ParseInt(rest[0], 10, 64)
	for i, d := range s.drivers {
		if d.ID != id {
			continue
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, driver.ItemResponse{Driver: &d})
		case http.MethodPut:
			var req driver.UpdateDriverRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Status != nil {
				s.drivers[i].Status = *req.Status
			}
			s.drivers[i].UpdatedAt = isotime.Now()
			updated := s.drivers[i]
			writeJSON(w, http.StatusOK, driver.ItemResponse{Message: "Driver updated", Driver: &updated})
		case http.MethodDelete:
			s.drivers = append(s.drivers[:i], s.drivers[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Driver deleted"})
		}
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Driver not found"})
}

func (s *Server) usersRoute(w http.ResponseWriter, r *http.Request, caller *user.User, rest []string) {
	if !caller.CanManageFleet() && caller.Phone != s.MasterPhone {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Admin access required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(rest) == 0 || rest[0] == "" {
		list := user.ListResponse{Users: []user.User{}, MasterPhone: s.MasterPhone}
		for _, u := range s.users {
			list.Users = append(list.Users, *u)
		}
		writeJSON(w, http.StatusOK, list)
		return
	}

	u, ok := s.users[rest[0]]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
		return
	}
	if u.Phone == s.MasterPhone {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Cannot modify master account"})
		return
	}
	switch {
	case r.Method == http.MethodPut && len(rest) == 2 && rest[1] == "role":
		var req user.UpdateRoleRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		u.Role = req.Role
		updated := *u
		writeJSON(w, http.StatusOK, user.ItemResponse{Message: "Role updated", User: &updated})
	case r.Method == http.MethodDelete:
		delete(s.users, rest[0])
		writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "Method not allowed"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
