// Package chat is the scripted support widget. Replies come from a fixed
// policy; nothing here interprets what the visitor wrote.
package chat

import (
	"context"
	"errors"
	"html/template"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyMessage = errors.New("empty chat message")

const DefaultDelay = 500 * time.Millisecond

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one chat bubble. HTML is set only for bot replies that carry
// links; Text is always a plain rendering of the same content.
type Message struct {
	ID   string        `json:"id"`
	Role Role          `json:"role"`
	Text string        `json:"text"`
	HTML template.HTML `json:"html,omitempty"`
	At   time.Time     `json:"at"`
}

// Contact is one link in the canned reply.
type Contact struct {
	Icon  string
	Label string
	URL   string
}

var DefaultContacts = []Contact{
	{Icon: "📱", Label: "WhatsApp", URL: "https://wa.me/1234567890"},
	{Icon: "💬", Label: "Telegram", URL: "https://t.me/yourhandle"},
	{Icon: "📘", Label: "Facebook", URL: "https://facebook.com/yourpage"},
	{Icon: "📸", Label: "Instagram", URL: "https://instagram.com/yourhandle"},
}

var DefaultResponses = []string{
	"Thanks for reaching out! Our team will get back to you shortly.",
	"Prices on this page refresh every minute.",
	"You can switch between light and dark mode with the toggle in the header.",
	"Connect your wallet with the button at the top of the page.",
	"Market data is provided by public APIs and may be delayed.",
}

type PolicyKind int

const (
	PolicyCanned PolicyKind = iota
	PolicyRandom
)

func (k PolicyKind) String() string {
	if k == PolicyRandom {
		return "random"
	}
	return "canned"
}

// Policy picks the bot's reply. It is either a single canned contact message
// or a uniform pick from a fixed list driven by a seeded source.
type Policy struct {
	kind      PolicyKind
	canned    Message
	responses []string

	mu  sync.Mutex
	rng *rand.Rand
}

// Canned always answers with the contact links.
func Canned(contacts []Contact) *Policy {
	if len(contacts) == 0 {
		contacts = DefaultContacts
	}
	return &Policy{kind: PolicyCanned, canned: contactMessage(contacts)}
}

// Random picks uniformly from responses. The same seed yields the same
// sequence of replies.
func Random(seed int64, responses []string) *Policy {
	if len(responses) == 0 {
		responses = DefaultResponses
	}
	return &Policy{
		kind:      PolicyRandom,
		responses: append([]string(nil), responses...),
		rng:       rand.New(rand.NewSource(seed)),
	}
}

func (p *Policy) Kind() PolicyKind { return p.kind }

func (p *Policy) next() Message {
	if p.kind == PolicyCanned {
		return p.canned
	}
	p.mu.Lock()
	i := p.rng.Intn(len(p.responses))
	p.mu.Unlock()
	return Message{Text: p.responses[i]}
}

var contactTemplate = template.Must(template.New("contact").Parse(
	`We are not available right now.<br><br>You can contact us through:` +
		`{{range .}}<br>{{.Icon}} <a href="{{.URL}}" target="_blank" rel="noopener">{{.Label}}</a>{{end}}`))

func contactMessage(contacts []Contact) Message {
	var html strings.Builder
	if err := contactTemplate.Execute(&html, contacts); err != nil {
		html.Reset()
	}

	var text strings.Builder
	text.WriteString("We are not available right now.\n\nYou can contact us through:")
	for _, c := range contacts {
		text.WriteString("\n" + c.Icon + " " + c.Label + ": " + c.URL)
	}
	return Message{Text: text.String(), HTML: template.HTML(html.String())}
}

// Bot produces one delayed reply per visitor message.
type Bot struct {
	policy *Policy
	delay  time.Duration
	now    func() time.Time
}

type Option func(*Bot)

// WithDelay sets the pause before the reply; zero replies immediately.
func WithDelay(d time.Duration) Option {
	return func(b *Bot) {
		if d >= 0 {
			b.delay = d
		}
	}
}

func NewBot(policy *Policy, opts ...Option) *Bot {
	if policy == nil {
		policy = Canned(nil)
	}
	b := &Bot{policy: policy, delay: DefaultDelay, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Respond returns the visitor's bubble and, after the bot's delay, the reply.
// If ctx ends during the delay only the visitor's bubble is returned along
// with the context error.
func (b *Bot) Respond(ctx context.Context, text string) (Message, Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, Message{}, ErrEmptyMessage
	}
	user := Message{ID: uuid.NewString(), Role: RoleUser, Text: "You: " + text, At: b.now()}

	if b.delay > 0 {
		timer := time.NewTimer(b.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return user, Message{}, ctx.Err()
		case <-timer.C:
		}
	}

	reply := b.policy.next()
	reply.ID = uuid.NewString()
	reply.Role = RoleBot
	reply.At = b.now()
	return user, reply, nil
}

// Transcript is the ordered list of bubbles for one session, capped at limit
// entries with the oldest dropped first.
type Transcript struct {
	mu       sync.RWMutex
	messages []Message
	limit    int
}

func NewTranscript(limit int) *Transcript {
	if limit <= 0 {
		limit = 200
	}
	return &Transcript{limit: limit}
}

func (t *Transcript) Append(msgs ...Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msgs...)
	if over := len(t.messages) - t.limit; over > 0 {
		t.messages = append([]Message(nil), t.messages[over:]...)
	}
}

func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Message(nil), t.messages...)
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}
