package blob

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/httpclient"
)

func TestLocalPut(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, "http://localhost:3000/blobs/", nil)
	require.NoError(t, err)

	obj, err := store.Put(context.Background(), PutRequest{
		Name:        "tickets-1700000000000.csv",
		ContentType: "text/csv",
		Body:        strings.NewReader("id,summary\n1,printer\n"),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(obj.Name, "tickets-1700000000000-"))
	assert.True(t, strings.HasSuffix(obj.Name, ".csv"))
	assert.Equal(t, "http://localhost:3000/blobs/"+obj.Name, obj.URL)
	assert.Equal(t, int64(21), obj.Size)

	data, err := os.ReadFile(filepath.Join(dir, obj.Name))
	require.NoError(t, err)
	assert.Equal(t, "id,summary\n1,printer\n", string(data))
}

func TestLocalPutSameNameDoesNotCollide(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "http://x/blobs", nil)
	require.NoError(t, err)

	a, err := store.Put(context.Background(), PutRequest{Name: "t.csv", Body: strings.NewReader("a")})
	require.NoError(t, err)
	b, err := store.Put(context.Background(), PutRequest{Name: "t.csv", Body: strings.NewReader("b")})
	require.NoError(t, err)
	assert.NotEqual(t, a.URL, b.URL)
}

func TestLocalRejectsPathNames(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "http://x/blobs", nil)
	require.NoError(t, err)

	for _, name := range []string{"../escape.csv", "a/b.csv", "", "/abs.csv"} {
		_, err := store.Put(context.Background(), PutRequest{Name: name, Body: strings.NewReader("x")})
		assert.Error(t, err, name)
	}
}

func TestCheckToken(t *testing.T) {
	assert.ErrorIs(t, CheckToken(""), ErrMissingCredential)
	assert.ErrorIs(t, CheckToken("not-a-token"), ErrInvalidCredential)
	assert.ErrorIs(t, CheckToken(TokenPrefix), ErrInvalidCredential)
	assert.NoError(t, CheckToken(TokenPrefix+"store_secret"))
}

func newRemote(t *testing.T, handler http.HandlerFunc, token string) *Remote {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := httpclient.New(httpclient.Options{Name: "blob-test", BaseURL: server.URL}, nil)
	return NewRemote(client, token, nil)
}

func TestRemotePut(t *testing.T) {
	token := TokenPrefix + "abc_123"
	store := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		assert.Equal(t, "text/csv", r.Header.Get("x-content-type"))
		assert.True(t, strings.HasPrefix(r.URL.Path, "/tickets-42-"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"https://blob.example/tickets-42-x.csv","pathname":"tickets-42-x.csv","contentType":"text/csv"}`))
	}, token)

	obj, err := store.Put(context.Background(), PutRequest{
		Name:        "tickets-42.csv",
		ContentType: "text/csv",
		Size:        3,
		Body:        strings.NewReader("a,b"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://blob.example/tickets-42-x.csv", obj.URL)
	assert.Equal(t, int64(3), obj.Size)
}

func TestRemoteCredentials(t *testing.T) {
	called := false
	handler := func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusForbidden)
	}

	_, err := newRemote(t, handler, "").Put(context.Background(), PutRequest{Name: "a.csv", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.False(t, called, "store must not be contacted without a token")

	_, err = newRemote(t, handler, TokenPrefix+"revoked").Put(context.Background(), PutRequest{Name: "a.csv", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrInvalidCredential)
	assert.True(t, called)
}

func TestRemoteServerError(t *testing.T) {
	store := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, TokenPrefix+"ok")

	_, err := store.Put(context.Background(), PutRequest{Name: "a.csv", Body: strings.NewReader("x")})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredential)
	assert.NotErrorIs(t, err, ErrMissingCredential)
}
