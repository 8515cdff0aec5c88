package endpoint

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ariebrainware/aba-tracker/store"
	"github.com/ariebrainware/aba-tracker/workflow"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondStoreError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: name is required", store.ErrValidation), http.StatusBadRequest},
		{workflow.ErrNoGoals, http.StatusBadRequest},
		{fmt.Errorf("%w: 0 results for 1 goals", workflow.ErrResultsMismatch), http.StatusBadRequest},
		{store.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("%w: patient 1 is not assigned to you", store.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: goal", store.ErrNotFound), http.StatusNotFound},
		{store.ErrConflict, http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			r := gin.New()
			w, resp, err := doRequestWithHandler(r, requestSpec{
				method:       http.MethodGet,
				registerPath: "/err",
				requestPath:  "/err",
				handler:      func(c *gin.Context) { respondStoreError(c, tt.err, "Something failed") },
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, false, resp["success"])
		})
	}
}

func TestParseIDParamOrRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		path string
		want int
	}{
		{"/item/7", http.StatusOK},
		{"/item/0", http.StatusBadRequest},
		{"/item/-1", http.StatusBadRequest},
		{"/item/abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r := gin.New()
			w, _, err := doRequestWithHandler(r, requestSpec{
				method:       http.MethodGet,
				registerPath: "/item/:id",
				requestPath:  tt.path,
				handler: func(c *gin.Context) {
					id, ok := parseIDParamOrRespond(c, "id")
					if !ok {
						return
					}
					c.JSON(http.StatusOK, gin.H{"id": id})
				},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestIsoDateValidator(t *testing.T) {
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	type payload struct {
		DOB string `json:"dob" binding:"isodate"`
	}
	tests := []struct {
		dob  string
		want int
	}{
		{"2015-01-01", http.StatusOK},
		{"", http.StatusOK},
		{"2015-02-30", http.StatusBadRequest},
		{"01/01/2015", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.dob, func(t *testing.T) {
			r := gin.New()
			w, _, err := doRequestWithHandler(r, requestSpec{
				method:       http.MethodPost,
				registerPath: "/dob",
				requestPath:  "/dob",
				body:         map[string]string{"dob": tt.dob},
				handler: func(c *gin.Context) {
					var p payload
					if !bindJSONOrRespond(c, &p, "Invalid request body") {
						return
					}
					c.JSON(http.StatusOK, gin.H{"dob": p.DOB})
				},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestGetDBOrRespond_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	w, resp, err := doRequestWithHandler(r, requestSpec{
		method:       http.MethodPost,
		registerPath: "/login",
		requestPath:  "/login",
		body:         map[string]string{"username": "t1", "password": "pw1"},
		handler:      Login,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, resp["success"])
}
