// Package render produces the text and buttons of a group's chain message.
// Output is Telegram HTML; the template engine escapes member names.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gofiber/template/html/v3"

	"linkchain/internal/config"
	"linkchain/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

const chainTemplate = "chain"

// anonymousName is shown for members whose display name is unknown.
const anonymousName = "Anonymous"

// Renderer turns group state into a chain message. Render is pure: the same
// members always produce byte-identical output.
type Renderer struct {
	engine *html.Engine
	text   config.Copy
}

type link struct {
	Label string
	URL   string
}

type entry struct {
	Ordinal int
	Name    string
	Links   []link
}

type chainView struct {
	Title          string
	Empty          string
	ArchivedMarker string
	Archived       bool
	Entries        []entry
}

// New loads the embedded templates.
func New(text config.Copy) (*Renderer, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("failed to load chain templates: %w", err)
	}

	return &Renderer{engine: engine, text: text}, nil
}

// Render builds the chain message for members in join order. The archived
// variant carries the archived marker and no buttons.
func (r *Renderer) Render(members []models.Member, archived bool) (models.Message, error) {
	view := chainView{
		Title:          r.text.ChainTitle,
		Empty:          r.text.EmptyChain,
		ArchivedMarker: r.text.ArchivedMarker,
		Archived:       archived,
		Entries:        make([]entry, 0, len(members)),
	}

	for i, m := range members {
		e := entry{Ordinal: i + 1, Name: m.Profile.DisplayName}
		if strings.TrimSpace(e.Name) == "" {
			e.Name = anonymousName
		}
		for _, platform := range models.Platforms {
			if url := m.VisibleLink(platform); url != "" {
				e.Links = append(e.Links, link{Label: platform.Label(), URL: url})
			}
		}
		view.Entries = append(view.Entries, e)
	}

	var buf bytes.Buffer
	if err := r.engine.Render(&buf, chainTemplate, view); err != nil {
		return models.Message{}, fmt.Errorf("failed to render chain: %w", err)
	}

	msg := models.Message{Text: strings.TrimSpace(buf.String())}
	if !archived {
		msg.Buttons = ChainButtons()
	}
	return msg, nil
}

// ChainButtons are the affordances of a live chain.
func ChainButtons() [][]models.Button {
	return [][]models.Button{
		{{Label: "🔗 Add me (LinkedIn)", Action: models.ActionAddLinkedIn}},
		{{Label: "📸 Add me (Instagram)", Action: models.ActionAddInstagram}},
		{{Label: "🚪 Remove me", Action: models.ActionRemoveMe}},
	}
}
