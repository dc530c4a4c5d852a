package action

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"

	aierrors "github.com/hrygo/planwise/internal/errors"
)

// Reply schemas. Pointer fields tell a missing or null value apart from an empty one.

type completenessSchema struct {
	HasEnoughInfo *bool   `json:"hasEnoughInfo"`
	Reason        *string `json:"reason"`
}

type taskSchema struct {
	Title    *string `json:"title"`
	DueDate  *string `json:"dueDate"`
	DueTime  *string `json:"dueTime"`
	Priority *string `json:"priority"`
	Category *string `json:"category"`
}

type eventSchema struct {
	Summary     *string `json:"summary"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	StartDate   *string `json:"startDate"`
	StartTime   *string `json:"startTime"`
	EndDate     *string `json:"endDate"`
	EndTime     *string `json:"endTime"`
	Category    *string `json:"category"`
}

type goalSchema struct {
	Type       *string         `json:"type"`
	Title      *string         `json:"title"`
	Category   *string         `json:"category"`
	Target     *string         `json:"target"`
	Deadline   *string         `json:"deadline"`
	Milestones []milestoneItem `json:"milestones"`
}

// milestoneItem accepts either "text" or {"text": "...", "completed": bool}.
type milestoneItem struct {
	Text string
}

func (m *milestoneItem) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &m.Text)
	}
	var obj struct {
		Text      string `json:"text"`
		Completed bool   `json:"completed"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return errors.Wrap(err, "milestone must be a string or an object with text")
	}
	m.Text = obj.Text
	return nil
}

// decodeStrict parses a model reply into T. The reply must be a single JSON object,
// optionally wrapped in a markdown code fence, with no unknown fields.
func decodeStrict[T any](reply string) (*T, error) {
	body := stripCodeFence(reply)
	if !strings.HasPrefix(body, "{") {
		return nil, aierrors.Parse("reply is not a JSON object", nil).WithContext("reply", truncateForLog(reply))
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()
	var v T
	if err := dec.Decode(&v); err != nil {
		return nil, aierrors.Parse("reply does not match schema", err).WithContext("reply", truncateForLog(reply))
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, aierrors.Parse("reply has trailing data after the JSON object", nil).WithContext("reply", truncateForLog(reply))
	}
	return &v, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop the info string, e.g. "json".
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// str dereferences an optional string and trims it.
func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
