package capability

import (
	"github.com/shamank/skynet-gateway/pkg/model"
	"github.com/tidwall/gjson"
)

// textPaths are tried in order to find the generated text in a provider
// response.
var textPaths = []string{
	"text",
	"response",
	"content.0.text",
	"choices.0.message.content",
	"choices.0.text",
	"data.text",
	"data.content.0.text",
	"data.choices.0.message.content",
	"message",
}

// ExtractText returns the generated text of a completion, or "" when none of
// the known provider shapes match.
func ExtractText(c model.Completion) string {
	if len(c) == 0 || !gjson.ValidBytes(c) {
		return ""
	}
	if r := gjson.ParseBytes(c); r.Type == gjson.String {
		return r.String()
	}
	for _, p := range textPaths {
		if r := gjson.GetBytes(c, p); r.Exists() && r.Type == gjson.String {
			return r.String()
		}
	}
	return ""
}
