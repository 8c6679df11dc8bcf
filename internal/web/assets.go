package web

import (
	"embed"
	"io/fs"
	"net/http"
)

// staticAssets holds the CSS served under /static/*.
//
//go:embed static/*
var staticAssets embed.FS

func getStaticFS() http.FileSystem {
	sub, err := fs.Sub(staticAssets, "static")
	if err != nil {
		return http.FS(staticAssets)
	}
	return http.FS(sub)
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>cvsloader</title></head>
<body>
<h1>CVS archive loader</h1>
<p>Visits materialize a CVS repository's trunk history into a Git repository.</p>
<p><a href="/new">Start a visit</a></p>
<div id="visits"></div>
<script>
fetch('/api/visits').then(r => r.json()).then(resp => {
  const list = document.getElementById('visits');
  (resp.data || []).forEach(v => {
    const a = document.createElement('a');
    a.href = '/visit/' + v.id;
    a.textContent = v.origin + ' (' + v.status + ')';
    list.appendChild(a);
    list.appendChild(document.createElement('br'));
  });
});
</script>
</body>
</html>`

const newVisitHTML = `<!DOCTYPE html>
<html>
<head><title>New visit - cvsloader</title></head>
<body>
<h1>Start a visit</h1>
<form id="visit-form">
  <label>Source kind <select name="sourceKind"><option value="local">local</option><option value="pserver">pserver</option><option value="ssh">ssh</option></select></label><br>
  <label>Source path <input name="sourcePath"></label><br>
  <label>Target path <input name="targetPath"></label><br>
  <button type="submit">Start</button>
</form>
<script>
document.getElementById('visit-form').addEventListener('submit', function(e) {
  e.preventDefault();
  const data = Object.fromEntries(new FormData(e.target));
  fetch('/api/visits', {method: 'POST', headers: {'Content-Type': 'application/json'}, body: JSON.stringify(data)})
    .then(r => r.json()).then(resp => { if (resp.data) window.location = '/visit/' + resp.data.id; });
});
</script>
</body>
</html>`

const visitHTML = `<!DOCTYPE html>
<html>
<head><title>Visit - cvsloader</title></head>
<body>
<h1>Visit progress</h1>
<pre id="status">connecting...</pre>
<script>
const id = window.location.pathname.split('/').pop();
const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws/progress/' + id);
ws.onmessage = function(ev) { document.getElementById('status').textContent = ev.data; };
</script>
</body>
</html>`
