package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_LoginAndMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "docgia", body["username"])
			_, _ = w.Write([]byte(`{"success":true,"token":"tok","user":{"id":"u1","username":"docgia","role":"user","coins":5}}`))
		case "/api/auth/me":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"success":true,"user":{"id":"u1","username":"docgia","role":"user","coins":7}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/", time.Second, nil)
	res, err := c.Login(context.Background(), "docgia", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, int64(5), res.User.Coins)

	me, err := c.Me(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(7), me.Coins)
}

func TestClient_ErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/me":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"code":"TOKEN_INVALID","message":"Phiên hết hạn"}`))
		case "/chapters/purchase/c1":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"message":"Bạn không đủ xu để mua chương này"}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		}
	}))

	c := New(srv.URL, time.Second, nil)
	ctx := context.Background()

	_, err := c.Me(ctx, "tok")
	assert.ErrorIs(t, err, ErrUnauthorized)
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "TOKEN_INVALID", rejected.Code)

	_, err = c.Purchase(ctx, "tok", "c1")
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Bạn không đủ xu để mua chương này", Message(err))

	_, err = c.Refresh(ctx, "tok")
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, http.StatusBadGateway, rejected.Status)
	assert.NotErrorIs(t, err, ErrNetwork)

	srv.Close()
	_, err = c.Me(ctx, "tok")
	assert.ErrorIs(t, err, ErrNetwork)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestClient_ChapterPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"success":true,"price":30,"data":{"chapter":{"id":"c1","storyId":"s1","number":2,"title":"Hai","coinPrice":30,"isLocked":true,"preview":"Mở..."},"prevChapter":{"id":"c0","number":1,"title":"Một"},"nextChapter":null}}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL, time.Second, nil).Chapter(context.Background(), "", "c1")
	require.NoError(t, err)
	assert.True(t, res.Data.Chapter.IsLocked)
	assert.Equal(t, "Mở...", res.Data.Chapter.Preview)
	require.NotNil(t, res.Data.Chapter.CoinPrice)
	assert.Equal(t, int64(30), *res.Data.Chapter.CoinPrice)
	assert.Nil(t, res.Data.Chapter.Price)
	assert.Nil(t, res.Data.NextChapter)
	assert.Equal(t, "c0", res.Data.PrevChapter.ID)
}

func TestClient_IncrementViews(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"views":3}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, nil)
	n, err := c.IncrementStoryViews(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	_, err = c.IncrementChapterViews(context.Background(), "s1", "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"/stories/s1/increment-views", "/stories/s1/chapters/c1/increment-views"}, paths)
}
