package domain

// DefaultMessagingBaseURL is the WhatsApp click-to-chat service.
const DefaultMessagingBaseURL = "https://wa.me"

// Notification is the business notification for a placed order. DeepLink
// opens a chat to the business with Text prefilled.
type Notification struct {
	Text     string `json:"text"`
	DeepLink string `json:"deepLink"`
}

// Empty reports whether nothing was composed.
func (n Notification) Empty() bool { return n.Text == "" && n.DeepLink == "" }
