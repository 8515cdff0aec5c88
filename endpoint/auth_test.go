package endpoint_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/ariebrainware/aba-tracker/config"
	"github.com/ariebrainware/aba-tracker/model"
	"github.com/ariebrainware/aba-tracker/util"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	s := SetupTestServer(t)
	s.registerTherapist(t, "t1", "pw1")

	resp := s.mustCall(t, http.StatusOK, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "t1",
		"password": "pw1",
	})
	assert.True(t, resp.Success)

	var data struct {
		Token string `json:"token"`
		User  struct {
			ID       uint   `json:"id"`
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	decodeData(t, resp, &data)
	assert.Equal(t, "t1", data.User.Username)
	assert.Equal(t, model.RoleTherapist, data.User.Role)

	claims, err := util.ParseToken(data.Token)
	require.NoError(t, err)
	assert.Equal(t, data.User.ID, claims.UserID)
	assert.Equal(t, model.RoleTherapist, claims.Role)
}

func TestLogin_InvalidCredentialsLookAlike(t *testing.T) {
	s := SetupTestServer(t)
	s.registerTherapist(t, "t1", "pw1")

	wrongPass, wrongResp := s.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "t1", "password": "nope"})
	unknown, unknownResp := s.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ghost", "password": "pw1"})

	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrongResp.Msg, unknownResp.Msg)
	assert.False(t, wrongResp.Success)
}

func TestLogin_MissingFields(t *testing.T) {
	s := SetupTestServer(t)
	rr, resp := s.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "t1"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, resp.Success)
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
	}{
		{
			name:       "therapist",
			body:       map[string]string{"username": "t1", "password": "pw1", "role": "therapist", "name": "T One"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "patient with dob",
			body:       map[string]string{"username": "p1", "password": "pw1", "role": "patient", "name": "Alex", "dob": "2015-01-01"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "patient without name",
			body:       map[string]string{"username": "p2", "password": "pw1", "role": "patient"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad dob",
			body:       map[string]string{"username": "p3", "password": "pw1", "role": "patient", "name": "Sam", "dob": "2015-13-40"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown role",
			body:       map[string]string{"username": "x", "password": "pw1", "role": "parent"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "admin self signup",
			body:       map[string]string{"username": "root", "password": "pw1", "role": "admin"},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "duplicate username",
			body:       map[string]string{"username": "admin", "password": "pw1", "role": "therapist"},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SetupTestServer(t)
			rr, resp := s.call(t, http.MethodPost, "/api/auth/register", "", tt.body)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus != http.StatusCreated {
				assert.False(t, resp.Success)
				return
			}
			var data struct {
				Token string `json:"token"`
				Role  string `json:"role"`
				ID    uint   `json:"id"`
			}
			decodeData(t, resp, &data)
			assert.NotEmpty(t, data.Token)
			assert.Equal(t, tt.body["role"], data.Role)
			assert.NotZero(t, data.ID)
		})
	}
}

func TestRegister_TherapistCanUseTokenImmediately(t *testing.T) {
	s := SetupTestServer(t)
	token := s.registerTherapist(t, "t1", "pw1")

	resp := s.mustCall(t, http.StatusOK, http.MethodGet, "/api/therapist/patients", token, nil)
	var data struct {
		Patients []model.Patient `json:"patients"`
	}
	decodeData(t, resp, &data)
	assert.Empty(t, data.Patients)
}

func TestRoleGuards(t *testing.T) {
	s := SetupTestServer(t)
	therapistToken := s.registerTherapist(t, "t1", "pw1")

	rr, _ := s.call(t, http.MethodGet, "/api/admin/patients", therapistToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = s.call(t, http.MethodGet, "/api/therapist/my-goals", s.adminToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = s.call(t, http.MethodGet, "/api/therapist/my-goals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, _ = s.call(t, http.MethodGet, "/api/therapist/my-goals", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogout_RevokesToken(t *testing.T) {
	s := SetupTestServer(t)
	token := s.registerTherapist(t, "t1", "pw1")
	claims, err := util.ParseToken(token)
	require.NoError(t, err)

	rdb, mock := redismock.NewClientMock()
	config.SetRedisClientForTesting(rdb)
	t.Cleanup(func() { config.SetRedisClientForTesting(nil) })

	key := "revoked_token:" + claims.ID
	mock.ExpectExists(key).SetVal(0)
	mock.CustomMatch(func(expected, actual []interface{}) error {
		if len(actual) < 3 || fmt.Sprint(actual[0]) != "set" || fmt.Sprint(actual[1]) != key {
			return fmt.Errorf("unexpected command %v", actual)
		}
		return nil
	}).ExpectSet(key, "1", time.Hour).SetVal("OK")
	mock.ExpectExists(key).SetVal(1)

	s.mustCall(t, http.StatusOK, http.MethodDelete, "/api/auth/logout", token, nil)

	rr, _ := s.call(t, http.MethodGet, "/api/therapist/patients", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogout_RequiresToken(t *testing.T) {
	s := SetupTestServer(t)
	rr, _ := s.call(t, http.MethodDelete, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
