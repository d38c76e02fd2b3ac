package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/pill-ring/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"dur": func(d time.Duration) string {
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
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Pill Ring</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.due { color: red; font-weight: bold; }
.counting { color: green; }
.ok { color: green; }
.warn { color: orange; }
.disconnected { color: #888; }
.banner { background: #e6ffe6; border: 1px solid green; padding: 8px; margin: 1em 0; }
form table td input { width: 4em; }
</style>
</head>
<body>
<h1>Pill Ring</h1>

{{if .Applied}}<p class="banner">Interval updated to {{dur .AppliedInterval}}.</p>{{end}}

<h2>Dose</h2>
<table>
<tr><th>Last dose</th><td>{{.LastDose.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Since last dose</th><td>{{dur .SinceLastDose}}</td></tr>
{{if gt .Remaining 0}}<tr><th>Next dose in</th><td class="counting">{{dur .Remaining}} ({{.Segments}}/{{.Config.RingSize}} segments)</td></tr>
{{else}}<tr><th>Next dose</th><td class="due">DUE</td></tr>{{end}}
<tr><th>Mode</th><td>{{.Mode}}</td></tr>
</table>

<h2>Interval</h2>
<form method="POST" action="/">
<table>
<tr><th>Days</th><td><input type="number" name="days" min="0" value="{{.Days}}"></td></tr>
<tr><th>Hours</th><td><input type="number" name="hours" min="0" max="23" value="{{.Hours}}"></td></tr>
<tr><th>Minutes</th><td><input type="number" name="minutes" min="0" max="59" value="{{.Minutes}}"></td></tr>
<tr><th></th><td><input type="submit" value="Update"></td></tr>
</table>
</form>

<h2>System</h2>
<table>
<tr><th>Time sync</th><td class="{{if .TimeSynced}}ok{{else}}warn{{end}}">{{if .TimeSynced}}synced{{else}}device-relative{{end}}</td></tr>
{{if .Config.Broker}}<tr><th>MQTT</th><td class="{{if .MQTTConnected}}ok{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>{{end}}
<tr><th>Doses</th><td>{{.Counts.Doses}}</td></tr>
<tr><th>Tilts</th><td>{{.Counts.Tilts}}</td></tr>
<tr><th>Uptime</th><td>{{dur .Uptime}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

// templateData flattens the snapshot plus form state for the template.
type templateData struct {
	status.Snapshot
	Uptime          time.Duration
	SinceLastDose   time.Duration
	Remaining       time.Duration
	Days            int
	Hours           int
	Minutes         int
	Applied         bool
	AppliedInterval time.Duration
}

func renderHTML(w io.Writer, snap status.Snapshot, applied bool, appliedTotal int64) {
	data := templateData{
		Snapshot:      snap,
		Uptime:        snap.Uptime(),
		SinceLastDose: snap.SinceLastDose(),
		Remaining:     snap.Remaining(),
		Applied:       applied,
	}
	if applied {
		// Show the just-submitted interval; the loop applies it on the
		// next tick.
		data.AppliedInterval = time.Duration(appliedTotal) * time.Second
		total := int(appliedTotal)
		data.Days = total / 86400
		data.Hours = total % 86400 / 3600
		data.Minutes = total % 3600 / 60
	} else {
		data.Days, data.Hours, data.Minutes = snap.IntervalDHM()
	}
	indexTmpl.Execute(w, data)
}
