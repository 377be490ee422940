package bot

import (
	"encoding/xml"
	"io"
)

type twimlResponse struct {
	XMLName xml.Name     `xml:"Response"`
	Message twimlMessage `xml:"Message"`
}

type twimlMessage struct {
	Body  string `xml:"Body"`
	Media string `xml:"Media,omitempty"`
}

// writeTwiML writes a messaging response with an optional media URL.
func writeTwiML(w io.Writer, body, mediaURL string) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(twimlResponse{
		Message: twimlMessage{Body: body, Media: mediaURL},
	})
}
