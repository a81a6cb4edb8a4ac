package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dkeye/Babel/internal/config"
	"github.com/dkeye/Babel/internal/domain"
)

func newTestClient(url string) *Client {
	return NewClient(&config.Config{
		DeepLAPIKey: "test-key",
		DeepLAPIURL: url,
	})
}

func TestTranslateSuccess(t *testing.T) {
	var gotAuth string
	var gotBody request

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"translations": []map[string]string{{"text": "hello world"}},
		})
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Translate(context.Background(), "привет мир", domain.LangRussian, domain.LangEnglish)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "hello world" {
		t.Errorf("translation = %q, want %q", got, "hello world")
	}
	if gotAuth != "DeepL-Auth-Key test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if len(gotBody.Text) != 1 || gotBody.Text[0] != "привет мир" {
		t.Errorf("request text = %v", gotBody.Text)
	}
	if gotBody.SourceLang != "RU" || gotBody.TargetLang != "EN" {
		t.Errorf("langs = %s→%s, want RU→EN", gotBody.SourceLang, gotBody.TargetLang)
	}
}

func TestTranslateNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Translate(context.Background(), "hi", domain.LangEnglish, domain.LangRussian)
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("err = %v, want status 403 error", err)
	}
}

func TestTranslateMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Translate(context.Background(), "hi", domain.LangEnglish, domain.LangRussian); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestTranslateEmptyTranslations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"translations":[]}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Translate(context.Background(), "hi", domain.LangEnglish, domain.LangRussian); err == nil {
		t.Fatal("expected error for empty translations")
	}
}

func TestTranslateContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestClient(srv.URL).Translate(ctx, "hi", domain.LangEnglish, domain.LangRussian); err == nil {
		t.Fatal("expected context cancellation error")
	}
}
