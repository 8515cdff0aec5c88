package endpoint_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ariebrainware/aba-tracker/config"
	"github.com/ariebrainware/aba-tracker/endpoint"
	"github.com/ariebrainware/aba-tracker/model"
	"github.com/ariebrainware/aba-tracker/storage"
	"github.com/ariebrainware/aba-tracker/store"
	"github.com/ariebrainware/aba-tracker/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type apiResp struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// testServer is a router over a fresh database with a logged-in admin.
type testServer struct {
	r          *gin.Engine
	db         *gorm.DB
	adminToken string
	uploadDir  string
}

func testConfig(uploadDir string) *config.Config {
	return &config.Config{
		AppName:       "ABA Tracker",
		AppEnv:        "test",
		JWTSecret:     testJWTSecret,
		TokenTTL:      time.Hour,
		RateLimit:     100,
		RateWindow:    time.Minute,
		UploadDriver:  "local",
		UploadDir:     uploadDir,
		UploadBaseURL: "/uploads",
	}
}

// SetupTestServer builds the full router on an in-memory database and seeds
// an admin account, returning its token.
func SetupTestServer(t *testing.T) *testServer {
	t.Helper()
	util.FlushTherapistCache()
	db := model.OpenTestDB(t)
	uploadDir := t.TempDir()

	images, err := storage.NewLocalStore(uploadDir, "/uploads")
	require.NoError(t, err)

	s := &testServer{
		r:         endpoint.NewRouter(endpoint.Options{Config: testConfig(uploadDir), DB: db, ImageStore: images}),
		db:        db,
		uploadDir: uploadDir,
	}

	_, err = store.CreateAccount(db, store.AccountInput{Username: "admin", Password: "adminpass", Role: model.RoleAdmin})
	require.NoError(t, err)
	s.adminToken = s.login(t, "admin", "adminpass")
	return s
}

func doRequest(r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

// call performs a request and decodes the envelope.
func (s *testServer) call(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResp) {
	t.Helper()
	rr := doRequest(s.r, method, path, token, body)
	return rr, ParseAPIResp(t, rr)
}

// mustCall is call that fails the test unless the status is want.
func (s *testServer) mustCall(t *testing.T, want int, method, path, token string, body interface{}) apiResp {
	t.Helper()
	rr, resp := s.call(t, method, path, token, body)
	require.Equal(t, want, rr.Code, "%s %s: %s", method, path, rr.Body.String())
	return resp
}

// ParseAPIResp decodes a standard API response from a ResponseRecorder.
// It fails the test on decoding error.
func ParseAPIResp(t *testing.T, rr *httptest.ResponseRecorder) apiResp {
	t.Helper()
	var resp apiResp
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v; body: %s", err, rr.Body.String())
	}
	return resp
}

// decodeData unmarshals the envelope data into dst.
func decodeData(t *testing.T, resp apiResp, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, dst))
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := s.mustCall(t, http.StatusOK, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, resp, &data)
	require.NotEmpty(t, data.Token)
	return data.Token
}

// registerTherapist registers a therapist through the public endpoint and
// returns its token.
func (s *testServer) registerTherapist(t *testing.T, username, password string) string {
	t.Helper()
	resp := s.mustCall(t, http.StatusCreated, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"password": password,
		"role":     model.RoleTherapist,
		"name":     username,
	})
	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, resp, &data)
	return data.Token
}

func (s *testServer) therapistID(t *testing.T, username string) uint {
	t.Helper()
	var therapist model.Therapist
	require.NoError(t, s.db.Where("username = ?", username).First(&therapist).Error)
	return therapist.ID
}

func (s *testServer) createPatient(t *testing.T, name, dob string) uint {
	t.Helper()
	resp := s.mustCall(t, http.StatusCreated, http.MethodPost, "/api/admin/create-patient", s.adminToken, map[string]string{
		"name": name,
		"dob":  dob,
	})
	var data struct {
		Patient model.Patient `json:"patient"`
	}
	decodeData(t, resp, &data)
	return data.Patient.ID
}

func (s *testServer) assignTherapist(t *testing.T, therapistID, patientID uint) {
	t.Helper()
	s.mustCall(t, http.StatusCreated, http.MethodPost, "/api/admin/assign-therapist", s.adminToken, map[string]uint{
		"therapist_id": therapistID,
		"patient_id":   patientID,
	})
}

func colorsGoal() map[string]interface{} {
	return map[string]interface{}{
		"name": "Colors",
		"images": []map[string]interface{}{
			{"url": "a.png", "label": "red", "isCorrect": true},
			{"url": "b.png", "label": "blue", "isCorrect": false},
		},
	}
}

type goalData struct {
	Goal   model.Goal        `json:"goal"`
	Images []model.GoalImage `json:"images"`
}

func (s *testServer) createGoal(t *testing.T, token string, body interface{}) goalData {
	t.Helper()
	resp := s.mustCall(t, http.StatusCreated, http.MethodPost, "/api/therapist/create-goal", token, body)
	var data goalData
	decodeData(t, resp, &data)
	return data
}

// therapistWithPatient registers therapist t1, creates patient Alex and links them.
func (s *testServer) therapistWithPatient(t *testing.T) (token string, patientID uint) {
	t.Helper()
	token = s.registerTherapist(t, "t1", "pw1")
	patientID = s.createPatient(t, "Alex", "2015-01-01")
	s.assignTherapist(t, s.therapistID(t, "t1"), patientID)
	return token, patientID
}

func path(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
