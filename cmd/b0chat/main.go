package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	hertz "github.com/cloudwego/hertz/pkg/app/client"
	"github.com/mbeoliero/kit/log"

	"github.com/bzero-app/bzero/internal/api"
	"github.com/bzero-app/bzero/internal/chat"
	"github.com/bzero-app/bzero/internal/config"
	"github.com/bzero-app/bzero/pkg/token"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "path to config file")
		roomID     = flag.String("room", "", "group room id to join")
		dmRoomID   = flag.String("dm", "", "dm room id to join")
		authToken  = flag.String("token", os.Getenv("B0_TOKEN"), "bearer token (defaults to B0_TOKEN)")
	)
	flag.Parse()

	ctx := context.TODO()

	if *authToken == "" {
		fmt.Fprintln(os.Stderr, "a token is required: pass -token or set B0_TOKEN")
		os.Exit(1)
	}
	if (*roomID == "") == (*dmRoomID == "") {
		fmt.Fprintln(os.Stderr, "pass exactly one of -room or -dm")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.CtxError(ctx, "failed to load config: %v", err)
		panic(err)
	}
	log.CtxInfo(ctx, "config loaded: api=%s socket=%s", cfg.API.BaseURL, cfg.SocketURL())

	httpClient, err := hertz.NewClient(
		hertz.WithDialTimeout(cfg.API.DialTimeout),
		hertz.WithClientReadTimeout(cfg.API.RequestTimeout),
		hertz.WithWriteTimeout(cfg.API.RequestTimeout),
	)
	if err != nil {
		log.CtxError(ctx, "failed to create http client: %v", err)
		panic(err)
	}
	apiClient := api.MustNewClient(cfg.API.BaseURL, api.WithHertzClient(httpClient), api.WithToken(*authToken))

	self, err := resolveIdentity(ctx, apiClient, *authToken)
	if err != nil {
		log.CtxError(ctx, "failed to resolve identity: %v", err)
		panic(err)
	}

	kind := chat.ConversationRoom
	conversationID := *roomID
	var history chat.HistoryFetcher = api.NewRoomHistory(apiClient)
	if *dmRoomID != "" {
		kind = chat.ConversationDM
		conversationID = *dmRoomID
		history = api.NewDMHistory(apiClient)
	}

	session, err := chat.NewSession(kind, conversationID, self, *authToken, history, chat.SessionOptions{
		SocketURL:   cfg.SocketURL(),
		PageSize:    cfg.Chat.PageSize,
		SendTimeout: cfg.Chat.SendTimeout,
		Conn: chat.ConnConfig{
			Path:           cfg.Socket.Path,
			HandshakeWait:  cfg.Socket.HandshakeWait,
			WriteWait:      cfg.Socket.WriteWait,
			PongWait:       cfg.Socket.PongWait,
			PingPeriod:     cfg.Socket.PingPeriod,
			MaxMessageSize: cfg.Socket.MaxMessageSize,
		},
	})
	if err != nil {
		log.CtxError(ctx, "failed to create session: %v", err)
		panic(err)
	}

	if err := session.LoadHistory(ctx); err != nil {
		log.CtxWarn(ctx, "history load failed: %v", err)
	}
	if err := session.Connect(ctx); err != nil {
		log.CtxError(ctx, "connect failed: %v", err)
		panic(err)
	}

	view := newView(self.UserID)
	view.renderTimeline(session.MessageCache())

	done := make(chan struct{})
	go watchUpdates(session, view, done)
	go readInput(ctx, session, done)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-done:
	}

	session.Disconnect()
	log.CtxInfo(ctx, "session closed: conversation_id=%s", conversationID)
}

// resolveIdentity pulls the user id out of the token and enriches it with
// profile info when the API is reachable.
func resolveIdentity(ctx context.Context, c *api.Client, authToken string) (chat.Identity, error) {
	userID, err := token.UserID(authToken)
	if err != nil {
		return chat.Identity{}, err
	}

	self := chat.Identity{UserID: userID}
	me, err := c.GetMe(ctx)
	if err != nil {
		log.CtxWarn(ctx, "profile fetch failed, sending without display info: %v", err)
		return self, nil
	}
	self.Nickname = me.Nickname
	self.ProfileEmoji = me.ProfileEmoji
	return self, nil
}

// watchUpdates prints session changes as they happen: new messages, status
// transitions on our own sends, and connection state changes.
func watchUpdates(s *chat.Session, v *view, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-s.Updates():
		}

		v.renderState(s.State(), s.LastError())
		v.renderNew(s.MessageCache())
	}
}

func readInput(ctx context.Context, s *chat.Session, done chan struct{}) {
	defer close(done)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit":
			return
		case line == "/reconnect":
			if err := s.Reconnect(ctx); err != nil {
				fmt.Printf("! reconnect: %v\n", err)
			}
		case line == "/older":
			ok, err := s.LoadOlder(ctx)
			if err != nil {
				fmt.Printf("! load older: %v\n", err)
			} else if !ok {
				fmt.Println("* no older messages")
			}
		case strings.HasPrefix(line, "/retry "):
			if err := s.RetryMessage(strings.TrimSpace(strings.TrimPrefix(line, "/retry"))); err != nil {
				fmt.Printf("! retry: %v\n", err)
			}
		case strings.HasPrefix(line, "/card "):
			if err := s.ShareCard(strings.TrimSpace(strings.TrimPrefix(line, "/card"))); err != nil {
				fmt.Printf("! share card: %v\n", err)
			}
		case strings.HasPrefix(line, "/"):
			fmt.Println("* commands: /older /retry <temp_id> /card <card_id> /reconnect /quit")
		default:
			if err := s.SendMessage(line); err != nil {
				fmt.Printf("! send: %v\n", err)
			}
		}
	}
}
