package docker

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ahmetb/go-cursor"
	orderedmap "github.com/wk8/go-ordered-map"
)

const (
	layerMessagePrefix = "‣"
	errorPrefix        = "[ERROR]"
)

var legacyBuiltPattern = regexp.MustCompile(`Successfully built ([0-9a-f]+)`)

// streamMessage is one JSON line of an engine build or push stream.
type streamMessage struct {
	Aux         *streamAux         `json:"aux"`
	ErrorDetail *streamErrorDetail `json:"errorDetail"`
	Error       string             `json:"error"`
	ID          string             `json:"id"`
	Progress    string             `json:"progress"`
	Status      string             `json:"status"`
	Stream      string             `json:"stream"`
}

// streamAux carries the image id on build streams. Push streams send a
// different aux shape whose fields are ignored here.
type streamAux struct {
	ID string `json:"ID"`
}

type streamErrorDetail struct {
	Message string `json:"message"`
}

func (m *streamMessage) String() string {
	if m.Status != "" {
		str := fmt.Sprintf("%s ", layerMessagePrefix)
		if m.ID != "" {
			str = fmt.Sprintf("%s %s: ", str, strings.TrimSpace(m.ID))
		}
		return fmt.Sprintf("%s %s ", str, strings.TrimSuffix(m.Status, "\n"))
	}
	if m.Stream != "" {
		return strings.TrimSpace(m.Stream)
	}
	if m.Aux != nil && m.Aux.ID != "" {
		return fmt.Sprintf(" %s %s", layerMessagePrefix, m.Aux.ID)
	}
	if m.ErrorDetail != nil && m.ErrorDetail.Message != "" {
		return fmt.Sprintf("%s %s", errorPrefix, m.ErrorDetail.Message)
	}
	return ""
}

func (m *streamMessage) progressString() string {
	return strings.TrimSpace(m.Progress)
}

// streamOutput aggregates one rendered engine stream.
type streamOutput struct {
	log      string
	auxID    string // image id reported by the daemon
	legacyID string // id scraped from classic builder output
	errMsg   string
}

// imageID prefers the id the daemon reports on the stream and falls
// back to scraping the classic builder's "Successfully built" line.
func (s *streamOutput) imageID() string {
	if s.auxID != "" {
		return s.auxID
	}
	return s.legacyID
}

// renderStream consumes the JSON-line stream of ImageBuild or ImagePush
// and renders it the way the CLI does: layer progress lines overwrite
// each other in place, everything else appends.
func renderStream(r io.Reader) (*streamOutput, error) {
	out := &streamOutput{}
	writer := new(strings.Builder)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineBefore := ""
	lines := orderedmap.New()
	numLayers := 0

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		message := &streamMessage{}
		if err := json.Unmarshal(line, message); err != nil {
			return nil, err
		}

		if message.Aux != nil && message.Aux.ID != "" {
			out.auxID = message.Aux.ID
		}
		if message.Error != "" {
			out.errMsg = message.Error
		} else if message.ErrorDetail != nil && message.ErrorDetail.Message != "" {
			out.errMsg = message.ErrorDetail.Message
		}
		if m := legacyBuiltPattern.FindStringSubmatch(message.Stream); m != nil {
			out.legacyID = m[1]
		}

		messageStr := message.String()
		if messageStr != lineBefore && messageStr != "" {
			if message.ID != "" {
				// layer messages override each other on pull or push
				fmt.Fprintf(writer, "%s%s\n", cursor.MoveUp(numLayers+1), cursor.ClearEntireLine())

				lines.Set(message.ID, fmt.Sprint(messageStr, message.progressString()))
				for line := lines.Oldest(); line != nil; line = line.Next() {
					fmt.Fprintf(writer, "%s%s\n", line.Value, cursor.ClearLineRight())
				}
				numLayers = lines.Len()
			} else {
				fmt.Fprintf(writer, "%s%s\n", messageStr, message.progressString())
				lines = orderedmap.New()
				numLayers = 0
			}
		}

		lineBefore = messageStr
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	out.log = writer.String()
	return out, nil
}
