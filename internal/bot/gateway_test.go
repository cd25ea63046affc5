package bot

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const updateBody = `{"update_id":1,"message":{"message_id":2,"from":{"id":42,"first_name":"A"},"chat":{"id":42},"text":"hello"}}`

func newTestGateway() (*Gateway, *[]tgbotapi.Update) {
	var dispatched []tgbotapi.Update
	g := NewGateway("topsecret", func(u tgbotapi.Update) {
		dispatched = append(dispatched, u)
	}, zerolog.Nop())
	return g, &dispatched
}

func TestGatewayRejectsMissingSecret(t *testing.T) {
	g, dispatched := newTestGateway()
	srv := httptest.NewServer(g.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/webhook", "application/json", strings.NewReader(updateBody))
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if len(*dispatched) != 0 {
		t.Fatalf("%d updates reached the pipeline, want 0", len(*dispatched))
	}
}

func TestGatewayRejectsWrongSecret(t *testing.T) {
	g, dispatched := newTestGateway()
	srv := httptest.NewServer(g.Handler())
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/webhook", strings.NewReader(updateBody))
	req.Header.Set(SecretTokenHeader, "not-the-secret")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if len(*dispatched) != 0 {
		t.Fatalf("%d updates reached the pipeline, want 0", len(*dispatched))
	}
}

func TestGatewayAcksValidUpdate(t *testing.T) {
	g, dispatched := newTestGateway()
	srv := httptest.NewServer(g.Handler())
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/webhook", strings.NewReader(updateBody))
	req.Header.Set(SecretTokenHeader, "topsecret")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Fatalf("body = %q, want %q", body, "ok")
	}

	if len(*dispatched) != 1 {
		t.Fatalf("%d updates dispatched, want 1", len(*dispatched))
	}
	msg := (*dispatched)[0].Message
	if msg == nil || msg.Text != "hello" || msg.From.ID != 42 {
		t.Fatalf("unexpected dispatched update: %+v", (*dispatched)[0])
	}
}

func TestGatewayRejectsMalformedBody(t *testing.T) {
	g, dispatched := newTestGateway()
	srv := httptest.NewServer(g.Handler())
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/webhook", strings.NewReader("{broken"))
	req.Header.Set(SecretTokenHeader, "topsecret")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if len(*dispatched) != 0 {
		t.Fatalf("%d updates reached the pipeline, want 0", len(*dispatched))
	}
}

func TestGatewayHealthEndpoint(t *testing.T) {
	g, _ := newTestGateway()
	srv := httptest.NewServer(g.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "alive" {
		t.Fatalf("body = %q, want %q", body, "alive")
	}
}

func TestGatewayUnknownPathNotFound(t *testing.T) {
	g, dispatched := newTestGateway()
	srv := httptest.NewServer(g.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/unknown")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if len(*dispatched) != 0 {
		t.Fatalf("%d updates reached the pipeline, want 0", len(*dispatched))
	}
}

func TestGatewayWebhookRequiresPost(t *testing.T) {
	g, _ := newTestGateway()
	srv := httptest.NewServer(g.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/webhook")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}
