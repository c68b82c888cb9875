package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openConversation(t *testing.T, env *testEnv, token, otherID string) string {
	t.Helper()

	rec := env.do(t, http.MethodGet, "/api/v1/messages/conversation/"+otherID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	conv := decode(t, rec)["conversation"].(map[string]any)
	return conv["id"].(string)
}

func sendMessage(t *testing.T, env *testEnv, token, convID, content string) map[string]any {
	t.Helper()

	path := fmt.Sprintf("/api/v1/messages/conversation/%s/messages", convID)
	rec := env.do(t, http.MethodPost, path, token, map[string]any{"content": content})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	return decode(t, rec)["message"].(map[string]any)
}

func TestGetDirectConversation_CreatedOnceForPair(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.register(t, "alice")
	bobID, bobToken := env.register(t, "bob")

	convID := openConversation(t, env, aliceToken, bobID)

	aliceID := func() string {
		rec := env.do(t, http.MethodGet, "/api/v1/users?search=alice", bobToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		users := decode(t, rec)["users"].([]any)
		require.Len(t, users, 1)
		return users[0].(map[string]any)["id"].(string)
	}()

	// Bob opening the conversation from his side lands on the same one.
	assert.Equal(t, convID, openConversation(t, env, bobToken, aliceID))
}

func TestGetDirectConversation_SelfRejected(t *testing.T) {
	env := newTestEnv(t)
	aliceID, aliceToken := env.register(t, "alice")

	rec := env.do(t, http.MethodGet, "/api/v1/messages/conversation/"+aliceID, aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendAndListMessages(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.register(t, "alice")
	bobID, bobToken := env.register(t, "bob")

	convID := openConversation(t, env, aliceToken, bobID)
	sent := sendMessage(t, env, aliceToken, convID, "hello bob")
	assert.Equal(t, "text", sent["message_type"])
	assert.Equal(t, "alice", sent["sender"].(map[string]any)["username"])

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/messages/conversation/%s/messages", convID), bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	msgs := decode(t, rec)["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello bob", msgs[0].(map[string]any)["content"])
}

func TestSendMessage_NonParticipantForbidden(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.register(t, "alice")
	bobID, _ := env.register(t, "bob")
	_, malloryToken := env.register(t, "mallory")

	convID := openConversation(t, env, aliceToken, bobID)

	path := fmt.Sprintf("/api/v1/messages/conversation/%s/messages", convID)
	rec := env.do(t, http.MethodPost, path, malloryToken, map[string]any{"content": "let me in"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decode(t, rec)["error"])
}

func TestSendMessage_EmptyContentRejected(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.register(t, "alice")
	bobID, _ := env.register(t, "bob")

	convID := openConversation(t, env, aliceToken, bobID)

	path := fmt.Sprintf("/api/v1/messages/conversation/%s/messages", convID)
	rec := env.do(t, http.MethodPost, path, aliceToken, map[string]any{"content": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListConversations_TracksUnread(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.register(t, "alice")
	bobID, bobToken := env.register(t, "bob")

	convID := openConversation(t, env, aliceToken, bobID)
	sendMessage(t, env, aliceToken, convID, "first")
	sendMessage(t, env, aliceToken, convID, "second")

	rec := env.do(t, http.MethodGet, "/api/v1/messages/conversations", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	convs := decode(t, rec)["conversations"].([]any)
	require.Len(t, convs, 1)

	summary := convs[0].(map[string]any)
	assert.Equal(t, float64(2), summary["unread_count"])
	assert.Equal(t, "second", summary["last_message"])
	assert.Equal(t, "alice", summary["participant"].(map[string]any)["username"])

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/messages/conversation/%s/read", convID), bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/messages/conversations", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	convs = decode(t, rec)["conversations"].([]any)
	require.Len(t, convs, 1)
	assert.Equal(t, float64(0), convs[0].(map[string]any)["unread_count"])
}

func TestEditMessage_OnlySender(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.register(t, "alice")
	bobID, bobToken := env.register(t, "bob")

	convID := openConversation(t, env, aliceToken, bobID)
	msg := sendMessage(t, env, aliceToken, convID, "draft")
	msgID := msg["id"].(string)

	rec := env.do(t, http.MethodPut, "/api/v1/messages/"+msgID, bobToken, map[string]any{"content": "hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/v1/messages/"+msgID, aliceToken, map[string]any{"content": "final"})
	require.Equal(t, http.StatusOK, rec.Code)

	edited := decode(t, rec)["message"].(map[string]any)
	assert.Equal(t, "final", edited["content"])
	assert.Equal(t, true, edited["is_edited"])
}

func TestDeleteMessage_OnlySender(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.register(t, "alice")
	bobID, bobToken := env.register(t, "bob")

	convID := openConversation(t, env, aliceToken, bobID)
	msgID := sendMessage(t, env, aliceToken, convID, "oops")["id"].(string)

	rec := env.do(t, http.MethodDelete, "/api/v1/messages/"+msgID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/messages/"+msgID, aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/messages/"+msgID, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
