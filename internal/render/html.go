package render

import (
	"bytes"
	"fmt"
	"html"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"mlprobe/internal/facts"
)

var (
	markdownConverter     goldmark.Markdown
	markdownConverterOnce sync.Once
)

// converter is shared; goldmark keeps per-call state in the parse context.
// Raw HTML is allowed because the Markdown view emits <br> and &nbsp;.
func converter() goldmark.Markdown {
	markdownConverterOnce.Do(func() {
		markdownConverter = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		)
	})
	return markdownConverter
}

const htmlHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1em; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
</style>
</head>
<body>
`

func renderHTML(snap *facts.Snapshot, opts Options) (string, error) {
	var body bytes.Buffer
	if err := converter().Convert([]byte(renderMarkdown(snap, opts)), &body); err != nil {
		return "", fmt.Errorf("failed to convert snapshot to HTML: %w", err)
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, htmlHead, html.EscapeString(opts.Title))
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>")
	return out.String(), nil
}
