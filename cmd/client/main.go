// A throwaway interactive client for poking at the server: joins the
// public queue, prints every event, and turns typed commands into paddle
// input and invites.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/gorilla/websocket"
)

type command struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

func main() {
	if len(os.Args) < 3 {
		fmt.Println("usage: client <user_id> <username> [addr]")
		os.Exit(1)
	}
	addr := "localhost:8042"
	if len(os.Args) > 3 {
		addr = os.Args[3]
	}

	u := url.URL{
		Scheme:   "ws",
		Host:     addr,
		Path:     "/game",
		RawQuery: "user_id=" + os.Args[1] + "&username=" + url.QueryEscape(os.Args[2]),
	}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer conn.Close()

	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				log.Println("connection closed:", err)
				os.Exit(0)
			}
			fmt.Println(string(data))
		}
	}()

	fmt.Println("commands: join | variant | up | down | stop | leave | invite <name> | accept <session> | quit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		var cmd command
		switch fields[0] {
		case "join":
			cmd = command{Type: "joinQueue", Data: map[string]bool{"private": false, "variant": false}}
		case "variant":
			cmd = command{Type: "joinQueue", Data: map[string]bool{"private": false, "variant": true}}
		case "up":
			cmd = command{Type: "movePaddle", Data: map[string]float64{"delta": 1}}
		case "down":
			cmd = command{Type: "movePaddle", Data: map[string]float64{"delta": -1}}
		case "stop":
			cmd = command{Type: "movePaddle", Data: map[string]float64{"delta": 0}}
		case "leave":
			cmd = command{Type: "leaveMatch"}
		case "invite":
			if len(fields) < 2 {
				fmt.Println("invite needs a target name")
				continue
			}
			cmd = command{Type: "sendInvite", Data: map[string]string{"target": fields[1]}}
		case "accept":
			if len(fields) < 2 {
				fmt.Println("accept needs a session id")
				continue
			}
			cmd = command{Type: "acceptInvite", Data: map[string]string{"session_id": fields[1]}}
		case "quit":
			return
		default:
			fmt.Println("unknown command:", fields[0])
			continue
		}

		payload, _ := json.Marshal(cmd)
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Fatal("write:", err)
		}
	}
}
