package render

import (
	"testing"

	"linkchain/internal/config"
	"linkchain/internal/models"
)

var testCopy = config.Copy{
	ChainTitle:     "Links",
	EmptyChain:     "Nobody yet.",
	ArchivedMarker: "Archived.",
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(testCopy)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func sampleMembers() []models.Member {
	return []models.Member{
		{
			Profile: models.Profile{
				UserID:      "1",
				DisplayName: "Alice",
				LinkedIn:    "https://linkedin.com/in/alice",
				Instagram:   "https://www.instagram.com/alice",
			},
			Contribution: models.Contribution{LinkedIn: true, Instagram: true},
		},
		{
			Profile:      models.Profile{UserID: "2", DisplayName: "Bob", LinkedIn: "https://linkedin.com/in/bob"},
			Contribution: models.Contribution{},
		},
		{
			Profile:      models.Profile{UserID: "3", DisplayName: "Carol", LinkedIn: "https://linkedin.com/in/carol"},
			Contribution: models.Contribution{Instagram: true},
		},
		{
			Profile:      models.Profile{UserID: "4", DisplayName: "Dan", Instagram: "https://www.instagram.com/dan"},
			Contribution: models.Contribution{Instagram: true},
		},
	}
}

func TestRender_Live(t *testing.T) {
	r := newTestRenderer(t)

	msg, err := r.Render(sampleMembers(), false)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := "<b>Links</b>\n" +
		"\n1. Alice - <a href=\"https://linkedin.com/in/alice\">LinkedIn</a> | <a href=\"https://www.instagram.com/alice\">Instagram</a>" +
		"\n2. Bob" +
		"\n3. Carol" +
		"\n4. Dan - <a href=\"https://www.instagram.com/dan\">Instagram</a>"
	if msg.Text != want {
		t.Errorf("Render() text =\n%s\nwant\n%s", msg.Text, want)
	}
	if !msg.HasButtons() {
		t.Fatal("live chain should have buttons")
	}

	var actions []models.Action
	for _, row := range msg.Buttons {
		for _, b := range row {
			actions = append(actions, b.Action)
		}
	}
	wantActions := []models.Action{models.ActionAddLinkedIn, models.ActionAddInstagram, models.ActionRemoveMe}
	if len(actions) != len(wantActions) {
		t.Fatalf("buttons = %v, want %v", actions, wantActions)
	}
	for i := range actions {
		if actions[i] != wantActions[i] {
			t.Errorf("button %d = %v, want %v", i, actions[i], wantActions[i])
		}
	}
}

func TestRender_Archived(t *testing.T) {
	r := newTestRenderer(t)

	live, err := r.Render(sampleMembers(), false)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	archived, err := r.Render(sampleMembers(), true)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if archived.HasButtons() {
		t.Error("archived chain should have no buttons")
	}
	if want := live.Text + "\n\n<i>Archived.</i>"; archived.Text != want {
		t.Errorf("archived text =\n%s\nwant\n%s", archived.Text, want)
	}
}

func TestRender_Empty(t *testing.T) {
	r := newTestRenderer(t)

	msg, err := r.Render(nil, false)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if want := "<b>Links</b>\n\nNobody yet."; msg.Text != want {
		t.Errorf("Render() text = %q, want %q", msg.Text, want)
	}
}

func TestRender_Deterministic(t *testing.T) {
	r := newTestRenderer(t)

	first, err := r.Render(sampleMembers(), false)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for range 5 {
		again, err := r.Render(sampleMembers(), false)
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if again.Text != first.Text {
			t.Fatalf("Render() not deterministic:\n%s\nvs\n%s", again.Text, first.Text)
		}
	}
}

func TestRender_EscapesNames(t *testing.T) {
	r := newTestRenderer(t)

	members := []models.Member{
		{Profile: models.Profile{DisplayName: "<b>Eve</b> & co"}},
		{Profile: models.Profile{DisplayName: "  "}},
	}
	msg, err := r.Render(members, false)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := "<b>Links</b>\n\n1. &lt;b&gt;Eve&lt;/b&gt; &amp; co\n2. Anonymous"
	if msg.Text != want {
		t.Errorf("Render() text = %q, want %q", msg.Text, want)
	}
}
