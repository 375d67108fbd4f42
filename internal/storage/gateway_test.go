package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datanexus/internal/config"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) (Store, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	st, err := NewGateway(config.StoreGatewayConfig{Endpoint: srv.URL, TimeoutSec: 5})
	require.NoError(t, err)
	return st, srv
}

func TestGatewayUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		st, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)

			f, hdr, err := r.FormFile("file")
			require.NoError(t, err)
			defer f.Close()

			payload, _ := io.ReadAll(f)
			assert.Equal(t, "dataset.csv", hdr.Filename)
			assert.Equal(t, "a,b,c", string(payload))

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"cid":"bafkreitest","fileName":"dataset.csv","fileSize":"5"}`))
		})

		res, err := st.Upload(ctx, strings.NewReader("a,b,c"), "dataset.csv", 5)
		require.NoError(t, err)
		assert.Equal(t, "bafkreitest", res.CID)
		assert.Equal(t, "dataset.csv", res.FileName)
		assert.Equal(t, int64(5), res.FileSizeBytes)
	})

	t.Run("gateway rejects payload", func(t *testing.T) {
		st, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})

		_, err := st.Upload(ctx, strings.NewReader("x"), "x.bin", 1)
		ue, ok := AsUploadError(err)
		require.True(t, ok)
		assert.Equal(t, ReasonRejected, ue.Reason)
	})

	t.Run("payload too large", func(t *testing.T) {
		st, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
		})

		_, err := st.Upload(ctx, strings.NewReader("x"), "x.bin", 1)
		ue, ok := AsUploadError(err)
		require.True(t, ok)
		assert.Equal(t, ReasonTooLarge, ue.Reason)
	})

	t.Run("local size limit enforced before any request", func(t *testing.T) {
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer srv.Close()

		st, err := NewGateway(config.StoreGatewayConfig{Endpoint: srv.URL, TimeoutSec: 5, MaxUploadBytes: 10})
		require.NoError(t, err)

		_, err = st.Upload(ctx, strings.NewReader("0123456789abcdef"), "big.bin", 16)
		ue, ok := AsUploadError(err)
		require.True(t, ok)
		assert.Equal(t, ReasonTooLarge, ue.Reason)
		assert.False(t, called)
	})

	t.Run("store unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // refuse connections

		st, err := NewGateway(config.StoreGatewayConfig{Endpoint: srv.URL, TimeoutSec: 1})
		require.NoError(t, err)

		_, err = st.Upload(ctx, strings.NewReader("x"), "x.bin", 1)
		ue, ok := AsUploadError(err)
		require.True(t, ok)
		assert.Equal(t, ReasonUnreachable, ue.Reason)
	})

	t.Run("response missing cid", func(t *testing.T) {
		st, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"fileName":"x.bin","fileSize":"1"}`))
		})

		_, err := st.Upload(ctx, strings.NewReader("x"), "x.bin", 1)
		ue, ok := AsUploadError(err)
		require.True(t, ok)
		assert.Equal(t, ReasonInternal, ue.Reason)
	})
}

func TestGatewayList(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stored objects", func(t *testing.T) {
		st, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			w.Write([]byte(`{
				"fileList": [
					{"cid":"bafkreione","fileName":"a.csv","fileSizeInBytes":2048,"createdAt":1700000000},
					{"cid":"bafkreitwo","fileName":"b.csv","fileSizeInBytes":500,"createdAt":1700000001}
				],
				"totalFiles": 2
			}`))
		})

		objects, total, err := st.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, objects, 2)
		assert.Equal(t, "bafkreione", objects[0].CID)
		assert.Equal(t, int64(2048), objects[0].FileSizeBytes)
	})

	t.Run("empty listing is not an error", func(t *testing.T) {
		st, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"fileList":[],"totalFiles":0}`))
		})

		objects, total, err := st.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, objects)
		assert.Zero(t, total)
	})
}
