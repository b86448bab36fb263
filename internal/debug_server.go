package internal

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"chat-relay/sink"
)

//go:embed inspect.html
var templatesFS embed.FS

// UserDirectory is the read-only view of the user registry.
type UserDirectory interface {
	Usernames() []string
}

// GroupDirectory is the read-only view of the group registry.
type GroupDirectory interface {
	Snapshot() map[string][]string
}

type StatsProvider func() map[string]any

type PageData struct {
	Users    []string
	Groups   map[string][]string
	Stats    map[string]any
	Timeline []sink.Entry
}

// StartDebugServer exposes a single HTML page with the live sessions,
// groups, routing counters, and recent activity. Plain HTTP, no auth:
// bind it to localhost or not at all.
func StartDebugServer(port int, users UserDirectory, groups GroupDirectory, statsProvider StatsProvider, timeline *sink.Timeline) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		data := PageData{
			Users:  users.Usernames(),
			Groups: groups.Snapshot(),
			Stats:  make(map[string]any),
		}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}
		if timeline != nil {
			data.Timeline = timeline.Recent()
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), mux)
	}()
}
