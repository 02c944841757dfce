package email

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"summary-stack/internal/models"
	"summary-stack/shared/config"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed summary_template.html
var summaryTemplate string

var tmpl = template.Must(template.New("summary").Parse(summaryTemplate))

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Sender struct {
	config *config.EmailConfig
	send   sendFunc
}

func NewSender(cfg *config.EmailConfig) *Sender {
	return &Sender{
		config: cfg,
		send:   smtp.SendMail,
	}
}

// SummaryEmail is everything rendered into a summary message.
type SummaryEmail struct {
	Video       models.VideoMetadata
	URL         string
	Summary     *models.SummaryResult
	ContentType string
	KeyMoments  []string
	Stats       *models.SummaryStats
}

type templateData struct {
	*SummaryEmail
	SummaryHTML template.HTML
	Date        string
}

func (s *Sender) SendSummary(e *SummaryEmail) error {
	if e == nil || e.Summary == nil {
		return fmt.Errorf("summary cannot be nil")
	}

	video := e.Video.Normalized()
	subject := fmt.Sprintf("Video Summary: %s (%s)", video.Title, video.Channel)

	body, err := RenderSummary(e)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return s.SendHTML(subject, body)
}

// SendHTML sends an email with custom HTML content
func (s *Sender) SendHTML(subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPServer)

	to := []string{s.config.ToEmail}
	msg := []byte(fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.config.ToEmail, s.config.FromEmail, subject, htmlBody))

	addr := fmt.Sprintf("%s:%d", s.config.SMTPServer, s.config.SMTPPort)
	if err := s.send(addr, auth, s.config.FromEmail, to, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// RenderSummary renders the HTML body for a summary email.
func RenderSummary(e *SummaryEmail) (string, error) {
	view := *e
	view.Video = e.Video.Normalized()

	generated := e.Summary.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	data := templateData{
		SummaryEmail: &view,
		SummaryHTML:  template.HTML(SummaryToHTML(e.Summary.Content)),
		Date:         generated.Format("Jan 2, 2006"),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SummaryToHTML converts summary text to HTML. Bullet lines become a list and
// blank-line separated blocks become paragraphs.
func SummaryToHTML(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "• "); ok {
			lines[i] = "- " + rest
		}
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoIntraEmphasis)
	doc := p.Parse([]byte(strings.Join(lines, "\n")))

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank | mdhtml.SkipHTML,
	})
	return string(markdown.Render(doc, renderer))
}
