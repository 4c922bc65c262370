package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"golang.org/x/net/context"

	"github.com/fuad-daoud/discord-state/gateway"
	"github.com/fuad-daoud/discord-state/logger/dlog"
	"github.com/fuad-daoud/discord-state/state"
)

// Variables used for command line parameters
var (
	Token   string
	Intents int
	Port    string
)

func init() {
	flag.StringVar(&Token, "t", os.Getenv("DISCORD_TOKEN"), "Bot Token")
	flag.IntVar(&Intents, "i", 0b1111111111111111, "Gateway intents bitmask")
	flag.StringVar(&Port, "p", os.Getenv("PORT"), "Status server port")
	flag.Parse()
}

func main() {
	client, err := state.New(Token)
	if err != nil {
		dlog.Error("creating state client", "err", err)
		os.Exit(1)
	}

	client.AddEventListener(state.NewListenerFunc(func(e state.Ready) {
		dlog.Info("connected", "user", e.User.Tag())
	}))
	client.AddEventListener(state.NewListenerFunc(func(e state.GuildAvailable) {
		dlog.Info("guild available", "guild", e.Guild.Name, "members", e.Guild.MemberCount)
	}))
	client.AddEventListener(state.NewListenerFunc(func(e state.MessageCreate) {
		dlog.Info("message", "channel", e.Message.ChannelID().String(), "content", e.Message.Content)
	}))
	client.AddEventListener(state.NewListenerFunc(func(e state.Diagnostic) {
		dlog.Warn("dispatch dropped", "type", e.Dispatch, "err", e.Err)
	}))

	conn, err := gateway.Dial(context.Background(), Token, Intents, client.HandleDispatch)
	if err != nil {
		dlog.Error("connecting to gateway", "err", err)
		os.Exit(1)
	}
	defer conn.Close()

	if Port != "" {
		go serveStatus(client)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop
	dlog.Info("shutting down")
}

func serveStatus(client *state.Client) {
	http.HandleFunc("/", rootHandler)
	http.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		logRequest(r)
		guilds := 0
		members := 0
		client.Guilds.ForEach(func(g *state.Guild) bool {
			guilds++
			members += g.Members.Len()
			return true
		})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"guilds":   guilds,
			"members":  members,
			"channels": client.Channels.Len(),
			"users":    client.Users.Len(),
		})
	})
	if err := http.ListenAndServe(":"+Port, nil); err != nil {
		dlog.Error("Could not serve on " + Port)
		panic(err)
	}
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	logRequest(r)
	fmt.Fprintf(w, "Hello! you've requested %s\n", r.URL.Path)
}

func logRequest(r *http.Request) {
	fmt.Println("Got request!", r.Method, r.RequestURI)
}
