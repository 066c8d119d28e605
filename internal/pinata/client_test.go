package pinata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPinFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinFileToIPFS", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("pinata_api_key"))
		assert.Equal(t, "secret", r.Header.Get("pinata_secret_api_key"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "logo.png", header.Filename)

		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)

		_ = json.NewEncoder(w).Encode(map[string]string{"IpfsHash": "QmImageHash"})
	}))
	defer srv.Close()

	client := NewClient("key", "secret", WithEndpoint(srv.URL))
	uri, err := client.PinFile(context.Background(), "logo.png", []byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.pinata.cloud/ipfs/QmImageHash", uri)
}

func TestPinJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinJSONToIPFS", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var doc map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
		assert.Equal(t, "Foo", doc["name"])

		_ = json.NewEncoder(w).Encode(map[string]string{"IpfsHash": "QmJsonHash"})
	}))
	defer srv.Close()

	client := NewClient("key", "secret", WithEndpoint(srv.URL), WithGateway("https://ipfs.example.com"))
	uri, err := client.PinJSON(context.Background(), map[string]string{"name": "Foo"})
	require.NoError(t, err)
	assert.Equal(t, "https://ipfs.example.com/ipfs/QmJsonHash", uri)
}

func TestPin_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
	}))
	defer srv.Close()

	client := NewClient("bad", "creds", WithEndpoint(srv.URL))
	_, err := client.PinJSON(context.Background(), map[string]string{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "401"))
}

func TestPin_EmptyHashRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	client := NewClient("key", "secret", WithEndpoint(srv.URL))
	_, err := client.PinFile(context.Background(), "logo.png", []byte{1})
	require.Error(t, err)
}
