package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/geiger-counter/internal/status"
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
	"hex": status.HexCount,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Geiger Counter</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.count { font-size: 1.2em; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.unknown { color: orange; }
</style>
</head>
<body>
<h1>Geiger Counter</h1>

<h2>Count</h2>
<table>
<tr><th>Events</th><td id="count" class="{{if .Updated}}count{{else}}unknown{{end}}">{{.Instrument.Count}}</td></tr>
<tr><th>Serial line</th><td id="count-hex">{{hex .Instrument.Count}}</td></tr>
<tr><th>Feedback</th><td id="mode">{{.Instrument.Mode}}</td></tr>
<tr><th>Last report</th><td>{{if .Instrument.LastReport.IsZero}}never{{else}}{{.Instrument.LastReport.UTC.Format "2006-01-02T15:04:05Z"}}{{end}}</td></tr>
</table>

<h2>Activity</h2>
<table>
<tr><th>Pulses</th><td>{{.Instrument.Pulses}}</td></tr>
<tr><th>Button presses</th><td>{{.Instrument.Presses}}</td></tr>
<tr><th>Bounces dropped</th><td>{{.Instrument.Bounces}}</td></tr>
<tr><th>Reports sent</th><td>{{.Instrument.Reports}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>Serial</th><td>{{.Config.Serial}} @ {{.Config.Baud}} 8N1</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Report period</th><td>{{.Config.PeriodMs}}ms</td></tr>
<tr><th>Pulse width</th><td>{{.Config.PulseWidthUs}}us</td></tr>
<tr><th>Debounce</th><td>{{.Config.SettleMs}}ms</td></tr>
<tr><th>Feedback hold</th><td>{{.Config.HoldMs}}ms @ {{.Config.ToneHz}}Hz</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
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
