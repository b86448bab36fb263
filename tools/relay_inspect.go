// Command relay_inspect connects to a running relay as a transient client
// and prints the current user and group lists.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	"chat-relay/client"
	"chat-relay/domain"
)

func main() {
	addr := flag.String("addr", "localhost:6001", "relay address")
	wait := flag.Duration("wait", 2*time.Second, "how long to collect frames")
	flag.Parse()

	// Random identity so the probe never collides with a real user
	username := "inspector-" + uuid.NewString()[:8]
	c, err := client.Dial(*addr, username)
	if err != nil {
		log.Fatal("Error connecting to relay: ", err)
	}
	defer c.Close()

	frames := make(chan client.ServerFrame)
	go func() {
		for {
			f, err := c.Receive()
			if err != nil {
				close(frames)
				return
			}
			frames <- f
		}
	}()

	var users, groups []string
	deadline := time.After(*wait)

collect:
	for {
		select {
		case f, ok := <-frames:
			if !ok {
				break collect
			}
			switch f.Kind {
			case domain.KindUserList:
				users = splitCSV(f.Field(0))
			case domain.KindGroupList:
				groups = splitCSV(f.Field(0))
			case domain.KindError:
				fmt.Fprintln(os.Stderr, "Relay error: ", f.Field(0))
			}
			if users != nil && groups != nil {
				break collect
			}
		case <-deadline:
			break collect
		}
	}
	_ = c.Disconnect()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Kind", "Entries"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	table.Append([]string{"Users", strings.Join(withoutProbe(users, username), ", ")})
	table.Append([]string{"Groups", strings.Join(groups, ", ")})
	table.Render()
}

func splitCSV(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// withoutProbe hides the inspector's own transient session from the output.
func withoutProbe(users []string, probe string) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		if u != probe {
			out = append(out, u)
		}
	}
	return out
}
