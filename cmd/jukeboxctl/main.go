// jukeboxctl is an interactive console for a running sd-jukebox service,
// standing in for the serial REPL of the original player.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
)

const helpText = `Commands:
  list                      List all tracks
  play <number|name>        Play one track
  playall [shuffle] [repeat] [lowq]
                            Play everything
  stop                      Stop playback
  status                    Show player and mount status
  rescan                    Rebuild the track catalog
  remount                   Force a fresh SD mount attempt
  help                      Show this help
  quit                      Exit`

type client struct {
	base string
	http *http.Client
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "jukebox service address")
	flag.Parse()

	c := &client{
		base: strings.TrimRight(*addr, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}

	rl, err := readline.New("jukebox> ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Println("sd-jukebox console. Type 'help' for commands.")

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return
		case "help":
			fmt.Println(helpText)
		case "list":
			c.list()
		case "play":
			if len(fields) < 2 {
				fmt.Println("usage: play <number|name>")
				continue
			}
			c.play(strings.Join(fields[1:], " "))
		case "playall":
			c.playAll(fields[1:])
		case "stop":
			c.post("/api/stop", nil)
		case "status":
			c.status()
		case "rescan":
			c.post("/api/rescan", nil)
		case "remount":
			c.post("/api/remount", nil)
		default:
			fmt.Printf("unknown command %q, try 'help'\n", fields[0])
		}
	}
}

func (c *client) list() {
	var resp struct {
		Tracks []struct {
			Path string `json:"path"`
			Root string `json:"root"`
		} `json:"tracks"`
		Partial bool `json:"partial"`
	}
	if err := c.getJSON("/api/tracks", &resp); err != nil {
		fmt.Println("error:", err)
		return
	}
	if len(resp.Tracks) == 0 {
		fmt.Println("no tracks found")
		return
	}
	for i, t := range resp.Tracks {
		fmt.Printf("  %d. %s [%s]\n", i+1, t.Path, t.Root)
	}
	if resp.Partial {
		fmt.Println("  (partial: SD card unavailable, internal tracks only)")
	}
}

func (c *client) play(arg string) {
	body := map[string]interface{}{}
	if n, err := strconv.Atoi(arg); err == nil {
		body["index"] = n
	} else {
		body["name"] = arg
	}
	c.post("/api/play", body)
}

func (c *client) playAll(flags []string) {
	body := map[string]interface{}{}
	for _, f := range flags {
		switch f {
		case "shuffle":
			body["shuffle"] = true
		case "repeat":
			body["repeat"] = true
		case "lowq":
			body["lowQuality"] = true
		default:
			fmt.Printf("unknown flag %q\n", f)
			return
		}
	}
	c.post("/api/playall", body)
}

func (c *client) status() {
	var resp struct {
		Playback struct {
			State string `json:"state"`
			Track *struct {
				Path string `json:"path"`
				Root string `json:"root"`
			} `json:"track"`
		} `json:"playback"`
		Mount struct {
			State string `json:"state"`
			Fault string `json:"fault"`
		} `json:"mount"`
		Tracks  int  `json:"tracks"`
		Partial bool `json:"partial"`
	}
	if err := c.getJSON("/api/status", &resp); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("  playback: %s", resp.Playback.State)
	if resp.Playback.Track != nil {
		fmt.Printf(" (%s [%s])", resp.Playback.Track.Path, resp.Playback.Track.Root)
	}
	fmt.Println()
	fmt.Printf("  mount:    %s", resp.Mount.State)
	if resp.Mount.Fault != "" {
		fmt.Printf(" (%s)", resp.Mount.Fault)
	}
	fmt.Println()
	fmt.Printf("  tracks:   %d", resp.Tracks)
	if resp.Partial {
		fmt.Print(" (partial)")
	}
	fmt.Println()
}

func (c *client) getJSON(path string, v interface{}) error {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *client) post(path string, body map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			fmt.Println("error:", err)
			return
		}
	}
	resp, err := c.http.Post(c.base+path, "application/json", &buf)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	text := strings.TrimSpace(string(out))
	if resp.StatusCode >= 400 {
		fmt.Printf("error (%d): %s\n", resp.StatusCode, text)
		return
	}
	fmt.Println(text)
}
