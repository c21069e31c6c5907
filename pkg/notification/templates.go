package notification

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/onboardflow/platform/pkg/common/models"
)

const footer = "This email was generated automatically by the OnboardFlow intelligent document onboarding system."

func successText(fields map[string]interface{}, docs []models.DocumentDescriptor) string {
	var b strings.Builder
	b.WriteString("OnboardFlow - Intelligent Document Processing\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString("DOCUMENTS PROCESSED SUCCESSFULLY\n\n")
	fmt.Fprintf(&b, "Date/Time: %s\n\n", time.Now().Format("02/01/2006 15:04:05"))

	b.WriteString("PROCESSED DOCUMENTS:\n")
	for _, doc := range docs {
		fmt.Fprintf(&b, "- %s: %s\n", doc.Type, doc.Name)
	}

	if len(fields) > 0 {
		b.WriteString("\nEXTRACTED DATA:\n")
		for _, key := range sortedKeys(fields) {
			fmt.Fprintf(&b, "- %s: %s\n", humanize(key), formatValue(fields[key]))
		}
	}

	b.WriteString("\nStatus: processing completed successfully\n\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString(footer + "\n")
	return b.String()
}

func successHTML(fields map[string]interface{}, docs []models.DocumentDescriptor) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"UTF-8\"></head><body style=\"font-family: Arial, sans-serif; color: #333;\">")
	b.WriteString("<div style=\"background-color: #242149; color: white; padding: 20px; text-align: center;\">")
	b.WriteString("<h1>OnboardFlow</h1><p>Intelligent Document Processing</p></div>")
	b.WriteString("<div style=\"padding: 20px;\">")
	b.WriteString("<h2 style=\"color: #17A460;\">Documents processed successfully</h2>")
	fmt.Fprintf(&b, "<p><strong>Date/Time:</strong> %s</p>", time.Now().Format("02/01/2006 15:04:05"))

	b.WriteString("<h3>Processed documents</h3><ul>")
	for _, doc := range docs {
		fmt.Fprintf(&b, "<li><strong>%s:</strong> %s</li>", doc.Type, doc.Name)
	}
	b.WriteString("</ul>")

	if len(fields) > 0 {
		b.WriteString("<table style=\"width: 100%; border-collapse: collapse;\">")
		b.WriteString("<thead><tr style=\"background-color: #242149; color: white;\">")
		b.WriteString("<th style=\"padding: 8px; text-align: left;\">Field</th><th style=\"padding: 8px; text-align: left;\">Value</th></tr></thead><tbody>")
		for _, key := range sortedKeys(fields) {
			fmt.Fprintf(&b, "<tr><td style=\"padding: 8px; border: 1px solid #ddd;\"><strong>%s</strong></td><td style=\"padding: 8px; border: 1px solid #ddd;\">%s</td></tr>",
				humanize(key), formatValue(fields[key]))
		}
		b.WriteString("</tbody></table>")
	}

	b.WriteString("</div>")
	fmt.Fprintf(&b, "<div style=\"background-color: #f8f9fa; padding: 15px; text-align: center; font-size: 12px; color: #666;\">%s</div>", footer)
	b.WriteString("</body></html>")
	return b.String()
}

func failureText(errorMessage string, docs []models.DocumentDescriptor) string {
	var b strings.Builder
	b.WriteString("OnboardFlow - Intelligent Document Processing\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString("PROCESSING ERROR\n\n")
	fmt.Fprintf(&b, "Date/Time: %s\n\n", time.Now().Format("02/01/2006 15:04:05"))
	fmt.Fprintf(&b, "Error: %s\n\n", errorMessage)

	if len(docs) > 0 {
		b.WriteString("SUBMITTED DOCUMENTS:\n")
		for _, doc := range docs {
			fmt.Fprintf(&b, "- %s: %s\n", doc.Type, doc.Name)
		}
		b.WriteString("\n")
	}

	b.WriteString("The system ran into an error while processing the documents.\n\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString(footer + "\n")
	return b.String()
}

func failureHTML(errorMessage string, docs []models.DocumentDescriptor) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"UTF-8\"></head><body style=\"font-family: Arial, sans-serif; color: #333;\">")
	b.WriteString("<div style=\"background-color: #242149; color: white; padding: 20px; text-align: center;\">")
	b.WriteString("<h1>OnboardFlow</h1><p>Intelligent Document Processing</p></div>")
	b.WriteString("<div style=\"padding: 20px;\">")
	b.WriteString("<h2 style=\"color: #DC3545;\">Processing error</h2>")
	fmt.Fprintf(&b, "<p><strong>Date/Time:</strong> %s</p>", time.Now().Format("02/01/2006 15:04:05"))
	fmt.Fprintf(&b, "<div style=\"padding: 15px; background-color: #ffeaea; border-left: 4px solid #DC3545;\"><p><strong>Error:</strong> %s</p></div>", errorMessage)

	if len(docs) > 0 {
		b.WriteString("<h3>Submitted documents</h3><ul>")
		for _, doc := range docs {
			fmt.Fprintf(&b, "<li><strong>%s:</strong> %s</li>", doc.Type, doc.Name)
		}
		b.WriteString("</ul>")
	}

	b.WriteString("<p>The system ran into an error while processing the documents.</p></div>")
	fmt.Fprintf(&b, "<div style=\"background-color: #f8f9fa; padding: 15px; text-align: center; font-size: 12px; color: #666;\">%s</div>", footer)
	b.WriteString("</body></html>")
	return b.String()
}

func humanize(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func formatValue(value interface{}) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf("%v", value)
}

func sortedKeys(fields map[string]interface{}) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
