package ginserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/internal/app/commands"
	"skillswap/internal/app/dto"
	chatsapp "skillswap/internal/app/handlers/chats"
	"skillswap/internal/app/handlers/swaps"
	"skillswap/internal/app/middleware"
	appoutbox "skillswap/internal/app/outbox"
	"skillswap/internal/app/queries"
	domainchat "skillswap/internal/domain/chat"
	"skillswap/internal/domain/user"
	"skillswap/internal/infra/cache"
	"skillswap/internal/infra/obs"
	"skillswap/internal/infra/security"
	"skillswap/internal/infra/storage/memory"
	"skillswap/internal/infra/validation"
)

type testServer struct {
	router   *gin.Engine
	verifier *security.Verifier
	bans     *cache.MemoryBans
	cmds     commands.Bus
	queries  queries.Bus
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := memory.NewStore()
	events := appoutbox.NewRouter()
	box := memory.NewOutbox(events, nil)
	factory := memory.Factory{Store: store, Outbox: box}
	var seq int
	newID := func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}

	bans := cache.NewMemoryBans(cache.RepositoryLookup(factory), time.Minute)
	cmdBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	v := validation.New()
	cmds := middleware.ChainCommands(cmdBus,
		middleware.Validation(v),
		middleware.RejectBannedActors(bans),
		middleware.OutboxFlush(box),
		middleware.Transaction(factory, nil),
	)
	qs := middleware.ChainQueries(queryBus, middleware.QueryValidation(v))
	chatsapp.Register(cmdBus, queryBus, chatsapp.Options{
		Base:             chatsapp.Base{Outbox: box, Clock: time.Now, NewID: newID},
		UoWFactory:       factory,
		MaxContentLength: domainchat.DefaultMaxContentLength,
		FlaggedPageLimit: 10,
	})
	swaps.Register(cmdBus, queryBus, &swaps.Handler{UoWFactory: factory, Outbox: box, Clock: time.Now, NewID: newID})
	events.Subscribe("swap.accepted", chatsapp.OpenOnSwapAccepted(cmds))
	events.Subscribe("user.banned", cache.OnUserBanned(bans))

	for _, u := range []struct {
		id   user.ID
		role user.Role
	}{{"alice", user.RoleUser}, {"bob", user.RoleUser}, {"admin", user.RoleAdmin}} {
		acc, err := user.NewUser(user.CreateParams{ID: u.id, FirstName: string(u.id), Email: string(u.id) + "@example.com", Role: u.role, CreatedAt: time.Now()})
		require.NoError(t, err)
		store.PutUser(acc)
	}

	verifier, err := security.NewVerifier("test-secret", "skillswap")
	require.NoError(t, err)
	auth := AuthMiddleware{Verifier: verifier, Bans: bans}
	router := NewRouter(obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Chat:           ChatHandler{Commands: cmds, Queries: qs},
		Swap:           SwapHandler{Commands: cmds, Queries: qs},
		Admin:          AdminHandler{Commands: cmds, Queries: qs},
		AuthMiddleware: auth.Handle,
	})
	return &testServer{router: router, verifier: verifier, bans: bans, cmds: cmds, queries: qs}
}

func (s *testServer) openChat(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	sw, err := commands.Dispatch[swaps.RequestSwapCommand, dto.Swap](ctx, s.cmds, swaps.RequestSwapCommand{
		RequesterID:    "alice",
		RecipientID:    "bob",
		RequestedSkill: swaps.SkillInput{Name: "Go"},
		OfferedSkill:   swaps.SkillInput{Name: "Spanish"},
	})
	require.NoError(t, err)
	_, err = commands.Dispatch[swaps.RespondSwapCommand, dto.Swap](ctx, s.cmds, swaps.RespondSwapCommand{SwapID: sw.ID, UserID: "bob", Action: swaps.ActionAccept})
	require.NoError(t, err)
	list, err := queries.Ask[chatsapp.ListChatsQuery, dto.ChatList](ctx, s.queries, chatsapp.ListChatsQuery{UserID: "alice"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	return list.Items[0].ID
}

func (s *testServer) do(t *testing.T, method, path string, as user.ID, role user.Role, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		token, err := s.verifier.Sign(security.Principal{UserID: as, Role: role}, time.Hour, time.Now())
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/livez", "", "", "").Code)
	rec := s.do(t, http.MethodGet, "/readyz", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(obs.RequestIDHeader))
}

func TestSendMessageOverHTTP(t *testing.T) {
	s := newTestServer(t)
	chatID := s.openChat(t)
	path := "/api/v1/chats/" + chatID + "/messages"

	rec := s.do(t, http.MethodPost, path, "", "", `{"content":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, path, "alice", user.RoleUser, `{"content":"Hello bob"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Message sent successfully", body["message"])

	rec = s.do(t, http.MethodPost, path, "alice", user.RoleUser, `{"content":"buy SPAM now"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domainchat.ErrContentFiltered.Error(), decode(t, rec)["error"])

	rec = s.do(t, http.MethodPost, path, "alice", user.RoleUser, `{"content":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/chats/missing/messages", "alice", user.RoleUser, `{"content":"hello"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/chats/"+chatID, "bob", user.RoleUser, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Len(t, data["messages"], 2)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	s := newTestServer(t)
	chatID := s.openChat(t)
	s.do(t, http.MethodPost, "/api/v1/chats/"+chatID+"/messages", "alice", user.RoleUser, `{"content":"harassment"}`)

	rec := s.do(t, http.MethodGet, "/api/v1/chats/admin/flagged-messages", "alice", user.RoleUser, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/chats/admin/flagged-messages?page=1&limit=5", "admin", user.RoleAdmin, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Len(t, body["data"], 1)
	assert.NotNil(t, body["pagination"])
}

func TestBannedAccountIsRejected(t *testing.T) {
	s := newTestServer(t)
	chatID := s.openChat(t)

	rec := s.do(t, http.MethodPost, "/api/v1/chats/admin/"+chatID+"/users/bob/ban", "admin", user.RoleAdmin, `{"reason":"severe abuse"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/chats", "bob", user.RoleUser, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "account is banned", decode(t, rec)["error"])

	rec = s.do(t, http.MethodPost, "/api/v1/chats/"+chatID+"/messages", "alice", user.RoleUser, `{"content":"still there?"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(domainchat.ErrContentFiltered))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
