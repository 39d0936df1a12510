package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/push-disco/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="{{if eq (stateOrUnknown (printf "%s" .State)) "RUNNING"}}1{{else}}5{{end}}">
<title>Push Disco</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.running { color: green; font-weight: bold; }
.idle { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Push Disco</h1>

<h2>Show</h2>
<table>
<tr><th>State</th><td class="{{if eq (stateOrUnknown (printf "%s" .State)) "RUNNING"}}running{{else if eq (stateOrUnknown (printf "%s" .State)) "IDLE"}}idle{{else}}unknown{{end}}">{{stateOrUnknown (printf "%s" .State)}}</td></tr>
<tr><th>Button Ready</th><td>{{if .Baselined}}yes{{else}}no{{end}}</td></tr>
{{if not .LastShowStart.IsZero}}<tr><th>Last Show Start</th><td>{{.LastShowStart.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Last Show End</th><td>{{if .LastShowEnd.IsZero}}in progress{{else}}{{.LastShowEnd.UTC.Format "2006-01-02T15:04:05Z"}}{{end}}</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} — {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Presses</th><td>{{.Counts.Presses}}</td></tr>
<tr><th>Presses Ignored</th><td>{{.Counts.PressesIgnored}}</td></tr>
<tr><th>Shows Started</th><td>{{.Counts.ShowsStarted}}</td></tr>
<tr><th>Shows Ended</th><td>{{.Counts.ShowsEnded}}</td></tr>
<tr><th>Audio Failures</th><td>{{.Counts.AudioFailures}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Button</th><td>GPIO{{.Config.ButtonPin}}</td></tr>
<tr><th>Relay</th><td>GPIO{{.Config.RelayPin}}</td></tr>
<tr><th>Audio</th><td>{{.Config.AudioFile}}</td></tr>
<tr><th>Volume</th><td>{{printf "%.2f" .Config.Volume}}</td></tr>
<tr><th>Player</th><td>{{.Config.Player}}</td></tr>
<tr><th>Show Duration</th><td>{{.Config.DurationMs}}ms</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/status.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
