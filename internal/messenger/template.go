// Package messenger builds Messenger Platform message payloads and sends
// them through the Send API.
package messenger

// Postback payloads carried by the bot's buttons.
const (
	PayloadFootball   = "Football"
	PayloadMovie      = "Movie"
	PayloadGetStarted = "GET_STARTED"
	PayloadBackToTop  = "backToTop"
)

const (
	defaultCallText = "Contact Us"
	callTitle       = "Call Representative"
	callNumber      = "+15105551234"
	backTitle       = "Back"
	footballTitle   = "FOOTBALL NEWS"
	movieTitle      = "Movie Review"
)

// Button types.
const (
	ButtonPostback    = "postback"
	ButtonPhoneNumber = "phone_number"
)

// Message is the "message" object of a Send API request.
// Exactly one of Text or Attachment is set.
type Message struct {
	Text       string      `json:"text,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// Attachment is a template or media attachment.
type Attachment struct {
	Type    string  `json:"type"` // "template" or "image"
	Payload Payload `json:"payload"`
}

// Payload holds the fields of either a button template or an image.
type Payload struct {
	TemplateType string   `json:"template_type,omitempty"`
	Text         string   `json:"text,omitempty"`
	Buttons      []Button `json:"buttons,omitempty"`

	URL        string `json:"url,omitempty"`
	IsReusable bool   `json:"is_reusable,omitempty"`
}

// Button is a button of a button template.
type Button struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

// Text returns a plain text message.
func Text(text string) Message {
	return Message{Text: text}
}

// CallTemplate returns the call-to-action template: a phone button and a
// Back button that returns to the topic choice. Empty text becomes "Contact Us".
func CallTemplate(text string) Message {
	if text == "" {
		text = defaultCallText
	}
	return buttonTemplate(text,
		Button{Type: ButtonPhoneNumber, Title: callTitle, Payload: callNumber},
		Button{Type: ButtonPostback, Title: backTitle, Payload: PayloadBackToTop},
	)
}

// ChoiceTemplate returns the topic picker with football and movie buttons.
func ChoiceTemplate(text string) Message {
	return buttonTemplate(text,
		Button{Type: ButtonPostback, Title: footballTitle, Payload: PayloadFootball},
		Button{Type: ButtonPostback, Title: movieTitle, Payload: PayloadMovie},
	)
}

// ImageAttachment returns a reusable image message.
func ImageAttachment(url string) Message {
	return Message{Attachment: &Attachment{
		Type:    "image",
		Payload: Payload{URL: url, IsReusable: true},
	}}
}

func buttonTemplate(text string, buttons ...Button) Message {
	return Message{Attachment: &Attachment{
		Type: "template",
		Payload: Payload{
			TemplateType: "button",
			Text:         text,
			Buttons:      buttons,
		},
	}}
}

// Kind names the message shape for logs and tests.
func (m Message) Kind() string {
	switch {
	case m.Attachment == nil:
		return "text"
	case m.Attachment.Type == "image":
		return "image"
	case len(m.Attachment.Payload.Buttons) > 0 && m.Attachment.Payload.Buttons[0].Type == ButtonPhoneNumber:
		return "call_template"
	default:
		return "choice_template"
	}
}
