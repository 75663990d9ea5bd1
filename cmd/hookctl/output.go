package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/fr0stylo/hookbox/internal/app/domain"
)

var (
	createdColor   = color.New(color.FgGreen, color.Bold)
	duplicateColor = color.New(color.FgYellow)
)

func printDelivery(w io.Writer, result deliveryResult) {
	line := fmt.Sprintf("status=%d message_id=%s duplicate=%t", result.Status, result.MessageID, result.Duplicate)
	if result.Duplicate {
		duplicateColor.Fprintln(w, line)
		return
	}
	createdColor.Fprintln(w, line)
}

// yamlMessage carries raw_data as a decoded document so YAML renders it
// structurally instead of as a byte list.
type yamlMessage struct {
	MessageID string `yaml:"message_id"`
	Timestamp string `yaml:"timestamp"`
	Source    string `yaml:"source"`
	RawData   any    `yaml:"raw_data"`
	CreatedAt string `yaml:"created_at"`
}

type yamlPage struct {
	Messages   []yamlMessage `yaml:"messages"`
	Total      int64         `yaml:"total"`
	Page       int           `yaml:"page"`
	PageSize   int           `yaml:"page_size"`
	TotalPages int           `yaml:"total_pages"`
}

func printPage(w io.Writer, format string, page domain.Page) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(page)
	case "yaml":
		return printPageYAML(w, page)
	case "table":
		return printPageTable(w, page)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func printPageYAML(w io.Writer, page domain.Page) error {
	out := yamlPage{
		Messages:   make([]yamlMessage, 0, len(page.Messages)),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}
	for _, msg := range page.Messages {
		var data any
		if err := json.Unmarshal(msg.RawData, &data); err != nil {
			return fmt.Errorf("decode raw_data for %s: %w", msg.MessageID, err)
		}
		out.Messages = append(out.Messages, yamlMessage{
			MessageID: msg.MessageID,
			Timestamp: msg.Timestamp,
			Source:    msg.Source,
			RawData:   data,
			CreatedAt: msg.CreatedAt,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(out); err != nil {
		return err
	}
	return encoder.Close()
}

func printPageTable(w io.Writer, page domain.Page) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MESSAGE_ID\tTIMESTAMP\tSOURCE\tCREATED_AT")
	for _, msg := range page.Messages {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", msg.MessageID, msg.Timestamp, msg.Source, msg.CreatedAt)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "page %d/%d, %d total\n", page.Page, page.TotalPages, page.Total)
	return err
}
