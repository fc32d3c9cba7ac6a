package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkpage/linkpage/internal/service"
	"github.com/linkpage/linkpage/internal/storage"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	part, err := mw.CreateFormFile(field, "avatar.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestImageUpload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	local, err := storage.NewLocal(dir, testBaseURL+"/static/")
	require.NoError(t, err)

	store := &memStore{}
	owner := store.seedProfile(7, "grace")
	link := store.seedLink(owner.ID, "https://grace.dev", true)

	svc := service.NewImageService(store, store, local, nil, 1<<20, quietLogger(), nil)
	h := NewImageHandler(svc, testBaseURL, quietLogger())

	r := chi.NewRouter()
	r.Post("/profile/images/{kind}", h.UploadProfile)
	r.Post("/links/{linkID}/icon", h.UploadLinkIcon)

	send := func(target, field string, data []byte) (*httptest.ResponseRecorder, envelope) {
		body, contentType := multipartBody(t, field, data)
		req := httptest.NewRequest(http.MethodPost, target, body)
		req.Header.Set("Content-Type", contentType)
		req = req.WithContext(asUser(req.Context(), 7))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		var env envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		return rec, env
	}

	t.Run("profile picture", func(t *testing.T) {
		rec, env := send("/profile/images/profile_picture", "file", pngBytes)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body struct {
			ProfilePicture string `json:"profile_picture"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &body))
		require.True(t, strings.HasPrefix(body.ProfilePicture, testBaseURL+"/static/7/profile_picture-"), body.ProfilePicture)

		key := strings.TrimPrefix(body.ProfilePicture, testBaseURL+"/static/")
		_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
		assert.NoError(t, err)
	})

	t.Run("link icon", func(t *testing.T) {
		rec, env := send("/links/"+itoa(link.ID)+"/icon", "file", pngBytes)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, string(env.Data), "/static/7/link_icon-")
	})

	t.Run("rejections", func(t *testing.T) {
		rec, env := send("/profile/images/banner", "file", pngBytes)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Unknown image kind", env.Message)

		rec, env = send("/profile/images/company_logo", "upload", pngBytes)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "file", env.Field)

		rec, env = send("/profile/images/company_logo", "file", []byte("%PDF-1.7\n"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Only PNG, JPEG, GIF and WebP images are supported", env.Message)

		rec, _ = send("/links/abc/icon", "file", pngBytes)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/profile/images/profile_picture", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req = req.WithContext(asUser(req.Context(), 7))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
