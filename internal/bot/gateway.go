package bot

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// SecretTokenHeader is the header Telegram sends with every webhook callback
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// Gateway validates inbound webhook callbacks and feeds them to the
// message pipeline. Validation failures never reach the pipeline;
// validated updates are always acked regardless of downstream outcome.
type Gateway struct {
	secret   string
	dispatch func(update tgbotapi.Update)
	logger   zerolog.Logger
}

// NewGateway creates a webhook gateway
func NewGateway(secret string, dispatch func(update tgbotapi.Update), logger zerolog.Logger) *Gateway {
	return &Gateway{
		secret:   secret,
		dispatch: dispatch,
		logger:   logger.With().Str("component", "gateway").Logger(),
	}
}

// Handler returns the HTTP handler serving the webhook and health endpoints
func (g *Gateway) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/", g.handleHealth)
	r.With(g.requireSecret).Post("/webhook", g.handleWebhook)
	return r
}

// requireSecret rejects callbacks whose secret token header does not
// match the configured webhook secret
func (g *Gateway) requireSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(SecretTokenHeader) != g.secret {
			g.logger.Warn().
				Str("remote_addr", r.RemoteAddr).
				Msg("Webhook request with bad secret token rejected")
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleWebhook processes one platform callback
func (g *Gateway) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		g.logger.Warn().Err(err).Msg("Failed to decode webhook update")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	g.dispatch(update)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleHealth serves the liveness probe on the root path
func (g *Gateway) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
