package mux

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairtable-server/internal/jwt"
	"fairtable-server/pkg/blackjack"
	"fairtable-server/pkg/room"
	"fairtable-server/pkg/room/gamefactory"
	"fairtable-server/pkg/round"
	"fairtable-server/pkg/store"
	"fairtable-server/pkg/verify"
)

func setupJWT(t *testing.T) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	jwt.SetKeys(&key.PublicKey, key)
}

func token(t *testing.T, userID int64) string {
	t.Helper()

	signed, err := jwt.Sign(userID)
	require.NoError(t, err)
	return signed
}

// newTestMux returns a mux backed by an in-memory store
func newTestMux(t *testing.T) (*Mux, *store.Memory) {
	t.Helper()
	setupJWT(t)

	clock := quartz.NewReal()
	mem := store.NewMemory(clock)
	manager := round.NewManager(mem, clock, round.DefaultOptions())

	pitBoss := room.NewPitBoss(manager, mem, gamefactory.New(blackjack.DefaultOptions()))
	pitBoss.StartShift()
	t.Cleanup(pitBoss.EndShift)

	verifier := verify.NewService(mem, mem, clock, verify.DefaultOptions(), verify.Replayers(blackjack.DefaultOptions()))
	return NewMux("v1.2.3", pitBoss, verifier), mem
}

func assertDo(t *testing.T, req *http.Request, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	if len(signedJWT) > 0 {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", signedJWT[0]))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Error(err)
		return nil
	}
	defer resp.Body.Close()

	if statusCode != resp.StatusCode {
		b, _ := io.ReadAll(resp.Body)
		t.Log(string(b))
		assert.Equal(t, statusCode, resp.StatusCode)
		return nil
	}

	if respObj != nil {
		if err := json.NewDecoder(resp.Body).Decode(respObj); err != nil {
			t.Error(err)
			return nil
		}
	}

	return resp
}

func assertGet(t *testing.T, ts *httptest.Server, path string, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Error(err)
		return nil
	}

	return assertDo(t, req, respObj, statusCode, signedJWT...)
}

func assertPost(t *testing.T, ts *httptest.Server, path string, payload interface{}, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	var body io.Reader
	switch val := payload.(type) {
	case string:
		body = strings.NewReader(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			t.Error(err)
			return nil
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, body)
	if err != nil {
		t.Error(err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	return assertDo(t, req, respObj, statusCode, signedJWT...)
}
