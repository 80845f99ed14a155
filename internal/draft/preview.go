package draft

import (
	"strings"

	"github.com/hanjob/resume-api/internal/models"
)

// PreviewItem is one labeled value of the preview.
type PreviewItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Empty bool   `json:"empty"`
}

// PreviewSection groups items under a heading.
type PreviewSection struct {
	Title string        `json:"title"`
	Items []PreviewItem `json:"items"`
}

// Preview is a read-only rendering of a draft.
type Preview struct {
	Sections []PreviewSection `json:"sections"`
}

// BuildPreview renders snapshot and attachments into preview sections.
// Select values are shown with their catalog labels.
func BuildPreview(snapshot models.Snapshot, attachments []models.Attachment) Preview {
	basic := PreviewSection{
		Title: "Basic Information",
		Items: []PreviewItem{
			previewItem("Name", snapshot.Name),
			previewItem("Email", snapshot.Email),
			previewItem("Phone", snapshot.Phone),
			previewItem("Nationality", optionLabel(models.Nationalities, snapshot.Nationality)),
			previewItem("Visa Type", optionLabel(models.VisaTypes, snapshot.VisaType)),
		},
	}

	career := PreviewSection{
		Title: "Education & Career",
		Items: []PreviewItem{
			previewItem("Education", snapshot.Education),
			previewItem("Experience", snapshot.Experience),
			previewItem("Skills", snapshot.Skills),
			previewItem("Languages", snapshot.Languages),
		},
	}

	intro := PreviewSection{
		Title: "Introduction",
		Items: []PreviewItem{previewItem("Introduction", snapshot.Introduction)},
	}

	files := PreviewSection{Title: "Attachments", Items: []PreviewItem{}}
	for _, a := range attachments {
		files.Items = append(files.Items, PreviewItem{
			Label: a.Name,
			Value: a.HumanSize(),
		})
	}

	return Preview{Sections: []PreviewSection{basic, career, intro, files}}
}

func previewItem(label, value string) PreviewItem {
	value = strings.TrimSpace(value)
	return PreviewItem{Label: label, Value: value, Empty: value == ""}
}

func optionLabel(opts []models.Option, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return models.OptionLabel(opts, value)
}
