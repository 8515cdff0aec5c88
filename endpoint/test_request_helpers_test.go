package endpoint

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
)

type requestSpec struct {
	method       string
	registerPath string
	requestPath  string
	handler      gin.HandlerFunc
	body         interface{}
}

// doRequestWithHandler mounts spec.handler on r and performs one request
// against it, decoding the JSON envelope when there is a body.
func doRequestWithHandler(r *gin.Engine, spec requestSpec) (*httptest.ResponseRecorder, map[string]interface{}, error) {
	r.Handle(spec.method, spec.registerPath, spec.handler)

	var buf bytes.Buffer
	if spec.body != nil {
		if err := json.NewEncoder(&buf).Encode(spec.body); err != nil {
			return nil, nil, err
		}
	}
	req := httptest.NewRequest(spec.method, spec.requestPath, &buf)
	if spec.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			return w, nil, err
		}
	}
	return w, response, nil
}
