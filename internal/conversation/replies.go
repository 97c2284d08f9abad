package conversation

import (
	"fmt"
	"html"
	"strings"

	"linkchain/internal/models"
	"linkchain/internal/validation"
)

const helpText = "I collect your LinkedIn and Instagram links so you can add them to group chains.\n\n" +
	"/start - set up your links\n" +
	"/profile - see, change or remove your links\n" +
	"/cancel - stop what I'm waiting for\n\n" +
	"In a group, send /chain to start a new chain."

// HelpText is the reply to /help.
func HelpText() string {
	return helpText
}

func capturePrompt(platform models.Platform) string {
	return html.EscapeString(validation.FormatHint(platform))
}

// savedReply confirms a first-time capture and offers the other platform if
// it is still missing.
func savedReply(profile models.Profile, platform models.Platform) models.Message {
	text := fmt.Sprintf("✅ Got your %s!", platform.Label())

	missing, ok := profile.FirstMissing()
	if !ok {
		return models.Message{
			Text: text + "\n\nYou're all set. Tap \"Add me\" on a chain in your group to share your links there.",
		}
	}
	return models.Message{
		Text: text + fmt.Sprintf("\n\nWould you like to add your %s too?", missing.Label()),
		Buttons: [][]models.Button{{
			addButton(missing),
			skipButton(),
		}},
	}
}

func describeProfile(p models.Profile) string {
	var b strings.Builder
	for i, platform := range models.Platforms {
		if i > 0 {
			b.WriteString("\n")
		}
		link := "not set"
		if p.Has(platform) {
			link = html.EscapeString(p.Link(platform))
		}
		fmt.Fprintf(&b, "%s: %s", platform.Label(), link)
	}
	return b.String()
}

func profileButtons(p models.Profile) [][]models.Button {
	rows := make([][]models.Button, 0, len(models.Platforms))
	for _, platform := range models.Platforms {
		if p.Has(platform) {
			rows = append(rows, []models.Button{
				editButton(platform),
				{Label: "Remove " + platform.Label(), Action: models.RemoveLinkAction(platform)},
			})
		} else {
			rows = append(rows, []models.Button{addButton(platform)})
		}
	}
	return rows
}

func addButton(platform models.Platform) models.Button {
	return models.Button{Label: "Add " + platform.Label(), Action: models.CaptureAction(platform)}
}

func editButton(platform models.Platform) models.Button {
	return models.Button{Label: "Edit " + platform.Label(), Action: models.EditAction(platform)}
}

func skipButton() models.Button {
	return models.Button{Label: "Skip", Action: models.ActionSkip}
}
