package mux

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_authRouter(t *testing.T) {
	m, _ := newTestMux(t)

	m.authRouter.Path("/test").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, userID(r))
	})

	ts := httptest.NewServer(m)
	defer ts.Close()

	var errObj errorResponse
	assertGet(t, ts, "/test", &errObj, 401)
	assert.Equal(t, "Unauthorized", errObj.Message)

	assertGet(t, ts, "/test", &errObj, 401, "not-a-token")

	signed := token(t, 42)

	// test using auth header
	var id int64
	resp := assertGet(t, ts, "/test", &id, 200, signed)
	assert.Equal(t, int64(42), id)
	if assert.NotNil(t, resp) {
		assert.Equal(t, "42", resp.Header.Get("FairTable-UserID"))
	}

	// test using query parameter
	id = 0
	assertGet(t, ts, "/test?access_token="+url.QueryEscape(signed), &id, 200)
	assert.Equal(t, int64(42), id)
}
