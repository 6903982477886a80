package inspect

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/spindle-vm/stackwalk"
)

// HttpHandler returns a handler that renders the inspector's state and
// lets an operator reconfigure it: a GET shows the connection status, the
// active configuration, and the last recorded fault; a POST connects or
// disconnects the endpoint.
func HttpHandler() http.Handler {
	return httpHandler{}
}

type httpHandler struct{}

func (h httpHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// GETs render the current state of the endpoint.
	if req.Method == http.MethodGet {
		h.handleGet(w)
		return
	}

	if err := req.ParseForm(); err != nil {
		singletonConn.ActiveConfig.ErrorLogger(fmt.Errorf("failed to parse form: %w", err))
		return
	}

	if _, ok := req.Form["disconnect"]; ok {
		Stop()
		h.handleGet(w)
		return
	}

	if _, ok := req.Form["connect"]; !ok {
		singletonConn.ActiveConfig.ErrorLogger(fmt.Errorf("invalid POST: missing connect/disconnect"))
		return
	}

	// Connect (or re-connect) with the new configuration.
	newAddr := req.Form.Get("addr")
	newCollector := req.Form.Get("collector")
	newEnv := req.Form.Get("env")

	// If there was a running endpoint, tear it down.
	Stop()

	if newAddr != "" || newCollector != "" {
		err := Init(context.Background(),
			WithListenAddr(newAddr),
			WithCollectorURL(newCollector),
			WithEnvironment(newEnv))
		if err != nil {
			singletonConn.ActiveConfig.ErrorLogger(fmt.Errorf("failed to update config: %w", err))
		}
		// Wait a little bit for the connection to be established before
		// rendering the page.
		timeout := time.Now().Add(time.Second)
		for {
			if time.Now().After(timeout) {
				break
			}
			if Status() != Connecting {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
	}

	// Generate the page after the update.
	h.handleGet(w)
}

func (h httpHandler) handleGet(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)

	var statusStr, color string
	switch Status() {
	case Connected:
		statusStr = "connected"
		color = "green"
	case Disconnected:
		statusStr = "disconnected"
		color = "red"
	case Connecting:
		statusStr = "connecting"
		color = "red"
	default:
		statusStr = "unknown"
		color = "gray"
	}

	sb := strings.Builder{}
	sb.WriteString(`<html>
<head>
	<title>Spindle inspector</title>
	<style>
	.circle {
		height: 21px;
		width: 21px;
		border-radius: 50%;
		display: inline-block;
	}
	</style>
</head>
<body>
<h1>Spindle inspector</h1>
<form action="" method="POST">
<div style="
	display:grid;
	gap:3px;
	grid-template-columns: 9em 20em;
	margin-bottom: 10px;"
	>
`)
	sb.WriteString(fmt.Sprintf(`
<div>Connection status:</div>
<div style="display:flex; flex-direction:row; align-items:center; gap:3px">
	<div class="circle" style="background-color:%s;"></div>
	<span>%s</span>
</div>`, color, statusStr))
	sb.WriteString("<div>Listen address:</div>")
	sb.WriteString(fmt.Sprintf(`<input type="text" name="addr" value="%s"/>`,
		html.EscapeString(singletonConn.ActiveConfig.ListenAddr)))
	sb.WriteString("<div>Collector URL:</div>")
	sb.WriteString(fmt.Sprintf(`<input type="text" name="collector" value="%s"/>`,
		html.EscapeString(singletonConn.ActiveConfig.CollectorURL)))
	sb.WriteString("<div>Environment:</div>")
	sb.WriteString(fmt.Sprintf(`<input type="text" name="env" value="%s"/>`,
		html.EscapeString(singletonConn.ActiveConfig.Environment)))

	disconnectAttribute := ""
	if Status() == Disconnected {
		disconnectAttribute = "disabled"
	}

	sb.WriteString(fmt.Sprintf(`
</div>
<input type="submit" value="Reconnect" name="connect"/>
<input type="submit" value="Disconnect" name="disconnect" %s/>
</form>
<h2>Last fault</h2>
`, disconnectAttribute))
	writeLastFault(&sb)
	sb.WriteString(`
</body>
</html>`)

	if _, err := w.Write([]byte(sb.String())); err != nil {
		singletonConn.ActiveConfig.ErrorLogger(fmt.Errorf("failed to write response: %w", err))
	}
}

// writeLastFault renders the most recent fault snapshot with each address
// symbolized, inline frames included.
func writeLastFault(sb *strings.Builder) {
	snap, ok := stackwalk.LastFault()
	if !ok {
		sb.WriteString("<p>No fault recorded.</p>")
		return
	}
	fmt.Fprintf(sb, "<p>Captured at %s.</p>\n<pre>\n",
		snap.CapturedAt.Format(time.RFC3339))
	for _, addr := range snap.Addrs {
		// Captured addresses are return addresses; the call site is the
		// instruction before.
		for _, fr := range stackwalk.Resolve(addr-1, false) {
			writeFrame(sb, &fr)
		}
	}
	sb.WriteString("</pre>")
}

func writeFrame(sb *strings.Builder, fr *stackwalk.Frame) {
	if fr.Func == stackwalk.Unresolved && fr.File == stackwalk.Unresolved {
		fmt.Fprintf(sb, "unknown function (ip: %#x)\n", uint64(fr.Addr))
		return
	}
	name := html.EscapeString(fr.Func)
	file := html.EscapeString(fr.File)
	if fr.Line >= 0 {
		fmt.Fprintf(sb, "%s at %s:%d", name, file, fr.Line)
	} else {
		fmt.Fprintf(sb, "%s at %s (unknown line)", name, file)
	}
	if fr.Inlined {
		sb.WriteString(" [inlined]")
	}
	sb.WriteString("\n")
}
