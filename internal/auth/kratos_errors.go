package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"smartflow/internal/authentication"

	kratos "github.com/ory/kratos-client-go"
)

type kratosUIText struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type kratosErrorBody struct {
	UI struct {
		Messages []kratosUIText `json:"messages"`
		Nodes    []struct {
			Messages []kratosUIText `json:"messages"`
		} `json:"nodes"`
	} `json:"ui"`
	Error struct {
		Message string `json:"message"`
		Reason  string `json:"reason"`
	} `json:"error"`
}

// providerError turns a failed Kratos call into an authentication.ProviderError carrying the message the
// provider chose to show.
func providerError(op string, err error, resp *http.Response) error {
	providerErr := &authentication.ProviderError{Op: op}
	if resp != nil {
		providerErr.Status = resp.StatusCode
	}

	var apiErr *kratos.GenericOpenAPIError
	if errors.As(err, &apiErr) {
		providerErr.Message = parseErrorBody(apiErr.Body())
	}

	if providerErr.Message == "" {
		providerErr.Message = fallbackMessage(providerErr.Status)
	}

	return providerErr
}

func parseErrorBody(body []byte) string {
	var parsed kratosErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}

	var messages []string
	for _, m := range parsed.UI.Messages {
		if m.Type == "error" || m.Type == "" {
			messages = append(messages, m.Text)
		}
	}
	for _, node := range parsed.UI.Nodes {
		for _, m := range node.Messages {
			if m.Type == "error" || m.Type == "" {
				messages = append(messages, m.Text)
			}
		}
	}

	if len(messages) > 0 {
		return strings.Join(messages, " ")
	}

	if parsed.Error.Reason != "" {
		return parsed.Error.Reason
	}

	return parsed.Error.Message
}

// flowMessage collects the messages of a flow that completed without the expected outcome.
func flowMessage(ui kratos.UiContainer) string {
	var messages []string
	for _, m := range ui.GetMessages() {
		messages = append(messages, m.Text)
	}
	for _, node := range ui.GetNodes() {
		for _, m := range node.GetMessages() {
			messages = append(messages, m.Text)
		}
	}

	if len(messages) == 0 {
		return "The link is invalid or has expired."
	}

	return strings.Join(messages, " ")
}

func fallbackMessage(status int) string {
	switch {
	case status == http.StatusTooManyRequests:
		return "Too many attempts. Please wait a moment and try again."
	case status >= http.StatusInternalServerError, status == 0:
		return "The authentication service is unavailable. Please try again later."
	default:
		return "The request could not be completed."
	}
}
