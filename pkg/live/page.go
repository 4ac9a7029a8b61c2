package live

import (
	"html/template"
	"io"
)

type pageData struct {
	Title    string
	Reactors []pageReactor
}

type pageReactor struct {
	Name string
	HTML template.HTML
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{range .Reactors}}<div data-lance="{{.Name}}">{{.HTML}}</div>
{{end}}<script>` + clientScript + `</script>
</body>
</html>
`))

func writePage(w io.Writer, title string, msgs []Message) error {
	data := pageData{Title: title}
	for _, m := range msgs {
		// Reactor HTML is produced by the reactor's own template.
		data.Reactors = append(data.Reactors, pageReactor{Name: m.Name, HTML: template.HTML(m.HTML)})
	}
	return pageTemplate.Execute(w, data)
}

// clientScript replaces mounted reactor HTML on render messages and sends
// clicks on [data-event] elements as events. data-args holds a JSON array.
const clientScript = `
(function() {
    'use strict';

    var delay = 1000;
    var ws = null;

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        ws = new WebSocket(protocol + '//' + location.host + '/ws');

        ws.onopen = function() { delay = 1000; };

        ws.onmessage = function(e) {
            var msg;
            try { msg = JSON.parse(e.data); } catch (err) { return; }
            if (msg.type === 'render') {
                var el = document.querySelector('[data-lance="' + msg.name + '"]');
                if (el) { el.innerHTML = msg.html; }
            } else if (msg.type === 'error') {
                console.error('[lance]', msg.error);
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                delay = Math.min(delay * 2, 30000);
                connect();
            }, delay);
        };
    }

    document.addEventListener('click', function(e) {
        var el = e.target.closest('[data-event]');
        if (!el || !ws || ws.readyState !== 1) { return; }
        var args = [];
        try { args = JSON.parse(el.getAttribute('data-args') || '[]'); } catch (err) {}
        ws.send(JSON.stringify({event: el.getAttribute('data-event'), args: args}));
    });

    connect();
})();
`
