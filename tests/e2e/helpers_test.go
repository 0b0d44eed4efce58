//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/atelier-bot/internal/adapter/icon"
	"github.com/heartmarshall/atelier-bot/internal/adapter/postgres"
	"github.com/heartmarshall/atelier-bot/internal/adapter/postgres/artwork"
	"github.com/heartmarshall/atelier-bot/internal/adapter/postgres/order"
	"github.com/heartmarshall/atelier-bot/internal/adapter/postgres/paper"
	"github.com/heartmarshall/atelier-bot/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/atelier-bot/internal/adapter/postgres/user"
	"github.com/heartmarshall/atelier-bot/internal/adapter/session"
	tgapi "github.com/heartmarshall/atelier-bot/internal/adapter/telegram"
	"github.com/heartmarshall/atelier-bot/internal/bot"
	"github.com/heartmarshall/atelier-bot/internal/config"
	"github.com/heartmarshall/atelier-bot/internal/service/account"
	ordersvc "github.com/heartmarshall/atelier-bot/internal/service/order"
	"github.com/heartmarshall/atelier-bot/internal/service/provision"
	"github.com/heartmarshall/atelier-bot/internal/service/resolver"
	"github.com/heartmarshall/atelier-bot/internal/transport/middleware"
	"github.com/heartmarshall/atelier-bot/internal/transport/rest"
	intake "github.com/heartmarshall/atelier-bot/internal/transport/telegram"
)

const webhookSecret = "e2e-secret"

// ---------------------------------------------------------------------------
// Fake Bot API: records everything the bot sends.
// ---------------------------------------------------------------------------

type outgoing struct {
	Method   string
	ChatID   int64
	Text     string
	Keyboard *tgapi.InlineKeyboardMarkup
}

type fakeBotAPI struct {
	mu  sync.Mutex
	out []outgoing
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	var rec outgoing
	rec.Method = method
	switch method {
	case "sendMessage":
		var body struct {
			ChatID      int64                       `json:"chat_id"`
			Text        string                      `json:"text"`
			ReplyMarkup *tgapi.InlineKeyboardMarkup `json:"reply_markup"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		rec.ChatID, rec.Text, rec.Keyboard = body.ChatID, body.Text, body.ReplyMarkup
	case "sendPhoto":
		_ = r.ParseMultipartForm(1 << 20)
		rec.ChatID, _ = strconv.ParseInt(r.FormValue("chat_id"), 10, 64)
		rec.Text = r.FormValue("caption")
	default:
		_, _ = io.Copy(io.Discard, r.Body)
	}

	f.mu.Lock()
	f.out = append(f.out, rec)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
}

// lastTo returns the last message sent to chatID.
func (f *fakeBotAPI) lastTo(t *testing.T, chatID int64) outgoing {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.out) - 1; i >= 0; i-- {
		if f.out[i].Method == "sendMessage" && f.out[i].ChatID == chatID {
			return f.out[i]
		}
	}
	t.Fatalf("no message sent to chat %d", chatID)
	return outgoing{}
}

func (f *fakeBotAPI) countTo(chatID int64, contains string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, o := range f.out {
		if o.ChatID == chatID && strings.Contains(o.Text, contains) {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// testBot wires the whole application against a real PostgreSQL container
// and the fake Bot API, and talks to it through the webhook.
// ---------------------------------------------------------------------------

type testBot struct {
	URL       string
	Pool      *pgxpool.Pool
	API       *fakeBotAPI
	AtelierID int64
	Sessions  *session.Store

	nextUpdate int64
}

type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

func setupTestBot(t *testing.T) *testBot {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, &slog.HandlerOptions{Level: slog.LevelWarn}))

	api := &fakeBotAPI{}
	apiSrv := httptest.NewServer(api)
	t.Cleanup(apiSrv.Close)

	atelierID := testhelper.NextID()
	botCfg := config.BotConfig{
		Token:         "test-token",
		AtelierID:     atelierID,
		APIURL:        apiSrv.URL,
		Mode:          config.BotModeWebhook,
		WebhookSecret: webhookSecret,
		RatePerMinute: 600,
	}

	users := user.New(pool)
	papers := paper.New(pool)
	artworks := artwork.New(pool)
	orders := order.New(pool)
	tx := postgres.NewTxManager(pool)

	sessions := session.NewStore()
	client := tgapi.NewClient(botCfg, logger)
	notifier := tgapi.NewNotifier(client, atelierID, logger)
	icons := icon.NewMaker(config.IconConfig{Size: 64, Quality: 80, MaxUploadBytes: 1 << 20}, logger)

	router := bot.NewRouter(logger, sessions,
		account.NewService(logger, users, artworks, papers, atelierID),
		ordersvc.NewService(logger, sessions, artworks, papers, orders, notifier, tx),
		provision.NewService(logger, sessions, resolver.NewService(logger, users), users, artworks, papers, icons, tx, atelierID),
	)

	limiter := middleware.NewRateLimiter(botCfg.RatePerMinute, time.Minute)
	t.Cleanup(limiter.Stop)
	handler := intake.NewHandler(logger, client, router, limiter, 1<<20)

	mux := http.NewServeMux()
	rest.NewHealthHandler(pool, sessions, botCfg.Mode, "e2e").Register(mux)
	mux.Handle(intake.WebhookPath, intake.NewWebhook(logger, handler, webhookSecret))

	srv := httptest.NewServer(middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
	)(mux))
	t.Cleanup(srv.Close)

	return &testBot{URL: srv.URL, Pool: pool, API: api, AtelierID: atelierID, Sessions: sessions}
}

func (b *testBot) post(t *testing.T, upd tgapi.Update) {
	t.Helper()
	b.nextUpdate++
	upd.UpdateID = b.nextUpdate

	body, err := json.Marshal(upd)
	require.NoError(t, err)

	resp, err := http.Post(b.URL+"/webhook/"+webhookSecret, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

// say sends a text message from userID and returns the bot's answer.
func (b *testBot) say(t *testing.T, userID int64, username, text string) outgoing {
	t.Helper()
	b.post(t, tgapi.Update{Message: &tgapi.Message{
		From: &tgapi.User{ID: userID, Username: username},
		Chat: tgapi.Chat{ID: userID, Type: "private"},
		Text: text,
	}})
	return b.API.lastTo(t, userID)
}

// press sends a button press from userID and returns the bot's last message.
func (b *testBot) press(t *testing.T, userID int64, username, token string) outgoing {
	t.Helper()
	b.post(t, tgapi.Update{CallbackQuery: &tgapi.CallbackQuery{
		ID:      "cb",
		From:    tgapi.User{ID: userID, Username: username},
		Message: &tgapi.Message{Chat: tgapi.Chat{ID: userID}},
		Data:    token,
	}})
	return b.API.lastTo(t, userID)
}

// tokenFor finds the callback token of the button whose label starts with label.
func tokenFor(t *testing.T, msg outgoing, label string) string {
	t.Helper()
	require.NotNil(t, msg.Keyboard, "message %q has no keyboard", msg.Text)
	for _, row := range msg.Keyboard.InlineKeyboard {
		for _, btn := range row {
			if strings.HasPrefix(btn.Text, label) {
				return btn.CallbackData
			}
		}
	}
	t.Fatalf("no button %q in %+v", label, msg.Keyboard.InlineKeyboard)
	return ""
}
