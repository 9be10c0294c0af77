package chat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeNewMessageEvent(t *testing.T) {
	frame := `{
		"type": "new_message",
		"payload": {
			"message": {
				"message_id": "m1",
				"room_id": "r1",
				"user_id": "u1",
				"content": "hello",
				"message_type": "text",
				"created_at": "2026-08-30T12:00:00Z",
				"sender": {"user_id": "u1", "nickname": "Ada", "profile_emoji": "🚀"}
			}
		}
	}`

	ev, err := DecodeEvent([]byte(frame))
	require.NoError(t, err)

	msg := ev.(NewMessageEvent).Message
	require.Equal(t, "m1", msg.ID)
	require.Equal(t, "r1", msg.ConversationID)
	require.Equal(t, "u1", msg.SenderID)
	require.Equal(t, "hello", msg.Content)
	require.Equal(t, KindText, msg.Kind)
	require.Equal(t, time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), msg.CreatedAt)
	require.NotNil(t, msg.Sender)
	require.Equal(t, "Ada", msg.Sender.Nickname)
}

func TestDecodeNewMessageDefaultsKindToText(t *testing.T) {
	frame := `{"type": "new_message", "payload": {"message": {"message_id": "m1", "content": "x"}}}`

	ev, err := DecodeEvent([]byte(frame))
	require.NoError(t, err)
	require.Equal(t, KindText, ev.(NewMessageEvent).Message.Kind)
}

func TestDecodeSystemMessageForcesSystemKind(t *testing.T) {
	// Servers have sent system notices both flagged and typed; either way
	// the decoded kind is system.
	for _, payload := range []string{
		`{"message": {"message_id": "m1", "content": "Ada joined", "is_system": true}}`,
		`{"message": {"message_id": "m1", "content": "Ada joined", "message_type": "text"}}`,
	} {
		frame := `{"type": "system_message", "payload": ` + payload + `}`
		ev, err := DecodeEvent([]byte(frame))
		require.NoError(t, err)

		msg := ev.(SystemMessageEvent).Message
		require.Equal(t, KindSystem, msg.Kind)
		require.True(t, msg.IsSystem())
	}
}

func TestDecodeNewDMMessageEvent(t *testing.T) {
	frame := `{
		"type": "new_dm_message",
		"payload": {
			"message": {
				"dm_id": "d1",
				"dm_room_id": "dm-room-1",
				"from_user_id": "u2",
				"content": "hi",
				"created_at": "2026-08-30T12:00:00Z"
			}
		}
	}`

	ev, err := DecodeEvent([]byte(frame))
	require.NoError(t, err)

	msg := ev.(NewDMMessageEvent).Message
	require.Equal(t, "d1", msg.ID)
	require.Equal(t, "dm-room-1", msg.ConversationID)
	require.Equal(t, "u2", msg.SenderID)
	require.Equal(t, KindText, msg.Kind)
}

func TestDecodeUnknownEventType(t *testing.T) {
	_, err := DecodeEvent([]byte(`{"type": "presence_ping", "payload": {}}`))

	var unknown *ErrUnknownEvent
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "presence_ping", unknown.Type)
}

func TestDecodeMalformedFrame(t *testing.T) {
	_, err := DecodeEvent([]byte(`not json`))
	require.Error(t, err)
}

func TestErrorEventTextNormalization(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    string
	}{
		{"plain string", `"room is full"`, "room is full"},
		{"description field", `{"description": "invalid token"}`, "invalid token"},
		{"message string", `{"message": "rate limited"}`, "rate limited"},
		{"message object", `{"message": {"code": 42}}`, `{"code": 42}`},
		{"empty payload", ``, "unknown socket error"},
		{"empty string", `""`, "unknown socket error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frame := `{"type": "error"`
			if tc.payload != "" {
				frame += `, "payload": ` + tc.payload
			}
			frame += `}`

			ev, err := DecodeEvent([]byte(frame))
			require.NoError(t, err)
			require.Equal(t, tc.want, ev.(ErrorEvent).Text())
		})
	}
}

func TestCommandEncode(t *testing.T) {
	data, err := JoinRoomCmd("r1").Encode("op-1")
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	require.Equal(t, CmdJoinRoom, env.Type)
	require.Equal(t, "op-1", env.OperationID)
	require.JSONEq(t, `{"room_id": "r1"}`, string(env.Payload))
}

func TestCommandPayloads(t *testing.T) {
	cases := []struct {
		cmd      Command
		wantType string
		wantJSON string
	}{
		{SendMessageCmd("hello"), CmdSendMessage, `{"content": "hello"}`},
		{ShareCardCmd("card-1"), CmdShareCard, `{"card_id": "card-1"}`},
		{JoinDMRoomCmd("dm-1"), CmdJoinDMRoom, `{"dm_room_id": "dm-1"}`},
		{SendDMMessageCmd("dm-1", "hi"), CmdSendDMMessage, `{"dm_room_id": "dm-1", "content": "hi"}`},
	}

	for _, tc := range cases {
		data, err := tc.cmd.Encode("")
		require.NoError(t, err)

		var env Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		require.Equal(t, tc.wantType, env.Type)
		require.JSONEq(t, tc.wantJSON, string(env.Payload))
	}
}
