package site

// pageTemplate is the html/template for the directory page. The detail
// dialog, when open, is rendered into .Dialog.
const pageTemplate = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <meta name="theme-color" content="#0f766e">
  <title>{{.Title}}</title>
  <link rel="manifest" href="/manifest.webmanifest">
  <link rel="icon" href="/images/icon.svg" type="image/svg+xml">
  <link rel="stylesheet" href="/styles/globals.css">
</head>
<body>
  <header class="hero">
    <h1>{{.Title}}</h1>
    {{with .City}}<p>Find your bus, BRT or chinchi across {{.}}.</p>{{end}}
  </header>
  <main class="directory" id="routes">
    <form class="search" method="get" action="/" role="search">
      <label for="search" class="visually-hidden">Search routes</label>
      <input id="search" type="search" name="q" value="{{.State.Search}}" placeholder="Search by route number, stop or area" autocomplete="off">
      {{with .State.Category}}<input type="hidden" name="category" value="{{.}}">{{end}}
      <button type="submit">Search</button>
    </form>
    <nav class="filters" aria-label="Filter by category">
      {{range .Categories}}<a class="filter{{if .Active}} active{{end}}" href="{{.URL}}" aria-pressed="{{if .Active}}true{{else}}false{{end}}">{{.Label}}</a>
      {{end}}<a class="filter clear" href="{{.ClearURL}}">CLEAR SORT</a>
    </nav>
    {{with .Notice}}<p class="notice" role="alert">{{.}}</p>{{end}}
    {{if .Empty}}
    <p class="empty">No routes found.</p>
    {{else}}
    <ul class="cards">
      {{range .Cards}}<li class="card">
        <img src="{{.Icon}}" alt="" width="56" height="56">
        <span class="card-category">{{.Label}}</span>
        <h2 class="card-number">{{.Number}}</h2>
        <p class="card-details">{{.Details}}</p>
        <p class="card-meta"><span>{{.StopCount}} stops</span> <span>Fare: {{.Fare}}</span></p>
        <a class="card-link" id="{{.Anchor}}" href="{{.URL}}">View details<span class="visually-hidden"> for {{.Number}}</span></a>
      </li>
      {{end}}
    </ul>
    <nav class="pagination" aria-label="Pagination">
      {{if .PrevURL}}<a href="{{.PrevURL}}" rel="prev">Previous</a>{{else}}<span class="disabled" aria-disabled="true">Previous</span>{{end}}
      <span class="page-status">Page {{.Page}} of {{.TotalPages}}</span>
      {{if .NextURL}}<a href="{{.NextURL}}" rel="next">Next</a>{{else}}<span class="disabled" aria-disabled="true">Next</span>{{end}}
    </nav>
    {{end}}
  </main>
  {{.Dialog}}
  <script>
  if ("serviceWorker" in navigator) {
    window.addEventListener("load", function () {
      navigator.serviceWorker.register("/service-worker.js");
    });
  }
  </script>
</body>
</html>`

// serviceWorkerTemplate is the text/template for /service-worker.js.
// CacheName and Assets are JSON literals.
const serviceWorkerTemplate = `// Generated by transitdir.
const CACHE_NAME = {{.CacheName}};
const ASSETS_TO_CACHE = {{.Assets}};

self.addEventListener("install", (event) => {
  event.waitUntil(
    caches.open(CACHE_NAME).then((cache) => cache.addAll(ASSETS_TO_CACHE))
  );
});

self.addEventListener("activate", (event) => {
  event.waitUntil(
    caches.keys()
      .then((keys) =>
        Promise.all(keys.filter((key) => key !== CACHE_NAME).map((key) => caches.delete(key)))
      )
      .then(() => self.clients.claim())
  );
});

self.addEventListener("fetch", (event) => {
  if (event.request.method !== "GET") return;

  event.respondWith(
    fetch(event.request)
      .then((response) => {
        const copy = response.clone();
        caches.open(CACHE_NAME).then((cache) => cache.put(event.request, copy));
        return response;
      })
      .catch((err) =>
        caches.match(event.request).then((cached) => {
          if (cached) return cached;
          throw err;
        })
      )
  );
});
`
