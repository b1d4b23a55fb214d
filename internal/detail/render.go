package detail

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ziadkadry99/transitdir/internal/catalog"
)

// Options controls how a selection is rendered.
type Options struct {
	// CloseURL is the directory URL the close control returns to, without
	// fragment. The selection's ReturnFocus is appended as the fragment.
	CloseURL string
	Currency string
	Printer  *message.Printer
}

func (o Options) withDefaults() Options {
	if o.CloseURL == "" {
		o.CloseURL = "/"
	}
	if o.Currency == "" {
		o.Currency = "Rs"
	}
	if o.Printer == nil {
		o.Printer = message.NewPrinter(language.English)
	}
	return o
}

// NewPrinter returns a number printer for a BCP 47 tag, falling back to
// English when the tag does not parse.
func NewPrinter(tag string) *message.Printer {
	lang, err := language.Parse(tag)
	if err != nil {
		lang = language.English
	}
	return message.NewPrinter(lang)
}

// FormatFare renders a fare with grouping for the printer's locale.
// Unknown fares render as 0.
func FormatFare(p *message.Printer, currency string, fare catalog.Fare) string {
	return p.Sprintf("%s %d", currency, fare.Display())
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))

// RenderDetails converts a route description from Markdown. Raw HTML in the
// description is dropped.
func RenderDetails(details string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(details), &buf); err != nil {
		return "", fmt.Errorf("rendering details: %w", err)
	}
	return template.HTML(buf.String()), nil
}

type dialogData struct {
	Route    catalog.Route
	Label    string
	Icon     string
	Fare     string
	Details  template.HTML
	CloseURL string
}

var dialogTmpl = template.Must(template.New("dialog").Parse(dialogTemplate))

// Render writes the dialog for sel. A nil selection writes nothing.
func Render(w io.Writer, sel *Selection, opts Options) error {
	if sel == nil {
		return nil
	}
	opts = opts.withDefaults()

	details, err := RenderDetails(sel.Route.Details)
	if err != nil {
		return err
	}

	closeURL := opts.CloseURL
	if sel.ReturnFocus != "" {
		closeURL += "#" + sel.ReturnFocus
	}

	return dialogTmpl.Execute(w, dialogData{
		Route:    sel.Route,
		Label:    sel.Route.Category.DisplayLabel(),
		Icon:     catalog.IconOrFallback(sel.Route.Category),
		Fare:     FormatFare(opts.Printer, opts.Currency, sel.Route.Fare),
		Details:  details,
		CloseURL: closeURL,
	})
}

// RenderHTML is Render into a string for embedding in a page template.
func RenderHTML(sel *Selection, opts Options) (template.HTML, error) {
	var buf bytes.Buffer
	if err := Render(&buf, sel, opts); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

const dialogTemplate = `<div class="modal-backdrop" id="route-dialog-backdrop">
  <div class="modal" id="route-dialog" role="dialog" aria-modal="true" aria-labelledby="route-dialog-title" tabindex="-1" data-close-url="{{.CloseURL}}">
    <div class="modal-header">
      <img src="{{.Icon}}" alt="{{.Label}}" width="48" height="48">
      <div>
        <span class="modal-category">{{.Label}}</span>
        <h2 id="route-dialog-title">{{.Route.Number}}</h2>
      </div>
      <a class="modal-close" href="{{.CloseURL}}" aria-label="Close details">&times;</a>
    </div>
    <div class="modal-details">{{.Details}}</div>
    <p class="modal-fare">Fare: {{.Fare}}</p>
    <h3>{{len .Route.Stops}} stops</h3>
    <ol class="modal-stops">
      {{range .Route.Stops}}<li>{{.}}</li>
      {{end}}
    </ol>
    <a class="button" href="{{.CloseURL}}">Close</a>
  </div>
</div>
<script>
(function () {
  var dialog = document.getElementById("route-dialog");
  if (!dialog) return;
  var closeURL = dialog.getAttribute("data-close-url");
  document.body.style.overflow = "hidden";
  requestAnimationFrame(function () { dialog.focus(); });
  window.addEventListener("keydown", function (event) {
    if (event.key === "Escape") {
      event.stopPropagation();
      window.location.href = closeURL;
      return;
    }
    if (event.key !== "Tab") return;
    var focusable = dialog.querySelectorAll('button, [href], input, select, textarea, [tabindex]:not([tabindex="-1"])');
    if (focusable.length === 0) return;
    var first = focusable[0];
    var last = focusable[focusable.length - 1];
    if (event.shiftKey && document.activeElement === first) {
      last.focus();
      event.preventDefault();
    } else if (!event.shiftKey && document.activeElement === last) {
      first.focus();
      event.preventDefault();
    }
  });
  document.getElementById("route-dialog-backdrop").addEventListener("click", function (event) {
    if (event.target === this) window.location.href = closeURL;
  });
})();
</script>
`
