package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bzero-app/bzero/internal/chat"
	"github.com/bzero-app/bzero/pkg/errcode"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, WithToken("test-token"))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func TestGetMeUnwrapsDataEnvelope(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/users/me", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"data": {"user_id": "u1", "nickname": "Ada", "profile_emoji": "🚀"}}`)
	}))

	me, err := c.GetMe(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u1", me.UserID)
	require.Equal(t, "Ada", me.Nickname)
}

func TestErrorEnvelopeDecodesToCode(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"error": {"code": "UNAUTHORIZED", "message": "token expired"}}`)
	}))

	_, err := c.GetMe(context.Background())
	require.ErrorIs(t, err, errcode.ErrUnauthorized)

	var apiErr *errcode.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "token expired", apiErr.Message)
}

func TestNonEnvelopeErrorFallsBackToStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream timeout"))
	}))

	_, err := c.GetMe(context.Background())
	require.ErrorIs(t, err, errcode.ErrInternalServer)
}

func TestGetRoomMessagesPassesCursor(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rooms/r1/messages", r.URL.Path)
		require.Equal(t, "m42", r.URL.Query().Get("cursor"))
		require.Equal(t, "2", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, `{
			"list": [
				{"message_id": "m41", "room_id": "r1", "user_id": "u2", "content": "later"},
				{"message_id": "m40", "room_id": "r1", "user_id": "u2", "content": "earlier"}
			],
			"pagination": {"total": 42, "offset": 0, "limit": 2}
		}`)
	}))

	resp, err := c.GetRoomMessages(context.Background(), "r1", "m42", 2)
	require.NoError(t, err)
	require.Len(t, resp.List, 2)
	require.Equal(t, "m41", resp.List[0].MessageID, "wire order is newest first")
	require.Equal(t, 42, resp.Pagination.Total)
}

func TestGetRoomMessagesOmitsEmptyCursor(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["cursor"]
		require.False(t, present, "first page request carries no cursor")
		writeJSON(w, http.StatusOK, `{"list": [], "pagination": {"total": 0, "offset": 0, "limit": 50}}`)
	}))

	_, err := c.GetRoomMessages(context.Background(), "r1", "", 50)
	require.NoError(t, err)
}

func TestRequestDMPostsBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/dm/requests", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "u2", body["to_user_id"])

		writeJSON(w, http.StatusOK, `{"data": {"dm_room_id": "dm-1", "status": "pending"}}`)
	}))

	room, err := c.RequestDM(context.Background(), "u2")
	require.NoError(t, err)
	require.Equal(t, "dm-1", room.DMRoomID)
	require.Equal(t, "pending", room.Status)
}

func TestRoomHistoryMapsWireMessages(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"list": [
				{"message_id": "m2", "room_id": "r1", "content": "Ada joined", "is_system": true},
				{"message_id": "m1", "room_id": "r1", "user_id": "u1", "content": "hi",
				 "message_type": "text",
				 "sender": {"user_id": "u1", "nickname": "Ada", "profile_emoji": "🚀"}}
			],
			"pagination": {"total": 2, "offset": 0, "limit": 50}
		}`)
	}))

	msgs, err := NewRoomHistory(c).Messages(context.Background(), "r1", "", 50)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	require.Equal(t, chat.KindSystem, msgs[0].Kind)
	require.True(t, msgs[0].IsSystem())

	require.Equal(t, chat.KindText, msgs[1].Kind)
	require.Equal(t, "u1", msgs[1].SenderID)
	require.NotNil(t, msgs[1].Sender)
	require.Equal(t, "Ada", msgs[1].Sender.Nickname)
	require.Equal(t, chat.StatusSent, msgs[1].EffectiveStatus())
}

func TestRoomHistoryMembers(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rooms/r1/members", r.URL.Path)
		writeJSON(w, http.StatusOK, `{
			"list": [{"user_id": "u1", "nickname": "Ada", "profile_emoji": "🚀"}],
			"pagination": {"total": 1, "offset": 0, "limit": 50}
		}`)
	}))

	members, err := NewRoomHistory(c).Members(context.Background(), "r1")
	require.NoError(t, err)
	require.Equal(t, []chat.Sender{{UserID: "u1", Nickname: "Ada", ProfileEmoji: "🚀"}}, members)
}

func TestDMHistoryMapsWireMessages(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/dm/rooms/dm-1/messages", r.URL.Path)
		writeJSON(w, http.StatusOK, `{
			"list": [{"dm_id": "d1", "dm_room_id": "dm-1", "from_user_id": "u2", "content": "hey"}],
			"pagination": {"total": 1, "offset": 0, "limit": 50}
		}`)
	}))

	h := NewDMHistory(c)
	msgs, err := h.Messages(context.Background(), "dm-1", "", 50)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "d1", msgs[0].ID)
	require.Equal(t, "dm-1", msgs[0].ConversationID)
	require.Equal(t, "u2", msgs[0].SenderID)

	members, err := h.Members(context.Background(), "dm-1")
	require.NoError(t, err)
	require.Nil(t, members)
}

func TestMarkNotificationRead(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/notifications/n1/read", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"data": {"notification_id": "n1", "is_read": true}}`)
	}))

	n, err := c.MarkNotificationRead(context.Background(), "n1")
	require.NoError(t, err)
	require.True(t, n.IsRead)
}
