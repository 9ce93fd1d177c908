package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAPI struct {
	mu    sync.Mutex
	coins int64
	owned bool
}

func (s *stubAPI) serve(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, status int, body any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		assert.NoError(t, json.NewEncoder(w).Encode(body))
	}
	user := func() map[string]any {
		return map[string]any{"id": "u1", "username": "docgia", "role": "user", "coins": s.coins}
	}
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "matkhau1" {
			write(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Sai tên đăng nhập hoặc mật khẩu"})
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		write(w, http.StatusOK, map[string]any{"success": true, "token": "tok", "user": user()})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			write(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Phiên hết hạn"})
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		write(w, http.StatusOK, map[string]any{"success": true, "user": user()})
	})
	mux.HandleFunc("/api/chapters/c1", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		locked := !(s.owned && r.Header.Get("Authorization") == "Bearer tok")
		chapter := map[string]any{"id": "c1", "storyId": "s1", "number": 1, "title": "Khởi đầu", "coinPrice": 40}
		chapter["isLocked"] = locked
		data := map[string]any{"chapter": chapter, "story": map[string]any{"id": "s1", "title": "Kiếm Lai"}}
		if locked {
			chapter["preview"] = "Ngày xưa..."
		} else {
			chapter["content"] = "Ngày xưa có một thanh kiếm."
		}
		write(w, http.StatusOK, map[string]any{"success": true, "data": data})
	})
	mux.HandleFunc("/api/chapters/purchase/c1", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.owned = true
		s.coins -= 40
		write(w, http.StatusOK, map[string]any{"success": true, "message": "Mua chương thành công"})
	})
	mux.HandleFunc("/api/stories/s1/increment-views", func(w http.ResponseWriter, _ *http.Request) {
		write(w, http.StatusOK, map[string]any{"success": true, "views": 1})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type cliEnv struct {
	apiURL string
	cred   string
}

func (e cliEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test")
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--api", e.apiURL, "--credentials", e.cred}, args...))
	err := root.Execute()
	return out.String(), err
}

func newCLIEnv(t *testing.T, api *stubAPI) cliEnv {
	t.Setenv("READER_LOG_LEVEL", "error")
	srv := api.serve(t)
	return cliEnv{apiURL: srv.URL + "/api", cred: filepath.Join(t.TempDir(), "credential.json")}
}

func TestCLI_LoginReadBuyLogout(t *testing.T) {
	env := newCLIEnv(t, &stubAPI{coins: 100})

	out, err := env.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Chưa đăng nhập")

	out, err = env.run(t, "matkhau1\n", "login", "docgia")
	require.NoError(t, err)
	assert.Contains(t, out, "Đăng nhập thành công: docgia (user, 100 xu)")

	out, err = env.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "docgia")

	out, err = env.run(t, "\n", "read", "s1", "c1")
	require.NoError(t, err)
	assert.Contains(t, out, "[Chương bị khóa] Giá: 40 xu")
	assert.Contains(t, out, "--buy")

	out, err = env.run(t, "y\n\n", "read", "s1", "c1", "--buy")
	require.NoError(t, err)
	assert.Contains(t, out, "Mua chương thành công")
	assert.Contains(t, out, "Ngày xưa có một thanh kiếm.")
	assert.Contains(t, out, "Số xu còn lại: 60")

	out, err = env.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Đã đăng xuất")

	out, err = env.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Chưa đăng nhập")
}

func TestCLI_BuyWithoutLoginShowsRedirect(t *testing.T) {
	env := newCLIEnv(t, &stubAPI{coins: 100})

	out, err := env.run(t, "y\n", "read", "s1", "c1", "--buy")
	require.NoError(t, err)
	assert.Contains(t, out, "/login?redirect=%2Fchapters%2Fc1")
	assert.NotContains(t, out, "Mở khóa")
}

func TestCLI_DeclinedPurchase(t *testing.T) {
	api := &stubAPI{coins: 100}
	env := newCLIEnv(t, api)
	_, err := env.run(t, "matkhau1\n", "login", "docgia")
	require.NoError(t, err)

	out, err := env.run(t, "n\n", "read", "s1", "c1", "--buy")
	require.NoError(t, err)
	assert.Contains(t, out, "Mở khóa \"Khởi đầu\" với giá 40 xu?")
	api.mu.Lock()
	assert.False(t, api.owned)
	api.mu.Unlock()
}

func TestCLI_LoginFailureShowsServerMessage(t *testing.T) {
	env := newCLIEnv(t, &stubAPI{})

	_, err := env.run(t, "sai\n", "login", "docgia")
	require.Error(t, err)
	assert.Equal(t, "Sai tên đăng nhập hoặc mật khẩu", err.Error())
}

func TestCLI_StoryAndRaw(t *testing.T) {
	env := newCLIEnv(t, &stubAPI{coins: 5})

	out, err := env.run(t, "", "story", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "s1")

	_, err = env.run(t, "", "raw", "get", "/auth/me")
	require.Error(t, err)

	_, err = env.run(t, "matkhau1\n", "login", "docgia")
	require.NoError(t, err)
	out, err = env.run(t, "", "raw", "get", "/auth/me")
	require.NoError(t, err)
	assert.Contains(t, out, "200 OK")
	assert.Contains(t, out, `"coins":5`)
}

func TestCLI_Version(t *testing.T) {
	root := NewRootCmd("1.2.3")
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "1.2.3\n", out.String())
}
