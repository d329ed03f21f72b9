package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disintegration/imaging"
)

const (
	// Attachments above this size are rejected outright.
	maxAttachmentBytes = 500_000

	// Minimum dimensions, exclusive. Attachments carry dimension metadata
	// so they get the stricter floor; URL-sourced images are decoded and
	// get the looser one.
	attachmentMinWidth  = 300
	attachmentMinHeight = 200
	remoteMinWidth      = 200
	remoteMinHeight     = 100
)

const (
	msgAttachmentInvalid  = "Please attach an image (no GIFs) under 500KB."
	msgAttachmentTooSmall = "Images must be at least 300x200 pixels."
	msgRemoteTooSmall     = "Please attach an image with dimensions larger than 200x100."
	msgRemoteNotImage     = "Please attach an image with text to extract the text from the image."
)

var urlPattern = regexp.MustCompile(`[A-Za-z][A-Za-z0-9+.-]*://\S+`)

// SourceOrigin tags where an image came from.
type SourceOrigin string

const (
	SourceAttachment SourceOrigin = "attachment"
	SourceRemoteURL  SourceOrigin = "url"
)

// ImageSource describes an accepted image regardless of how it arrived.
// SizeBytes is -1 when unknown (URL-sourced images have no size ceiling).
type ImageSource struct {
	Origin      SourceOrigin
	URL         string
	SizeBytes   int64
	ContentType string
	Width       int
	Height      int
}

// GateResult is the outcome of evaluating a message for processable images.
// Exactly one of the fields is meaningful: Data+Source on acceptance,
// UserMessage when the sender should be told why their image was refused.
// Both empty means the message simply carries nothing to process.
type GateResult struct {
	Accepted    bool
	Source      ImageSource
	Data        []byte
	UserMessage string
}

// Gate decides whether an incoming message yields an image worth extracting
// text from, and fetches the bytes when it does.
type Gate struct {
	Client *http.Client
}

// Evaluate inspects a message's first attachment, or failing that the first
// URL in its body. A returned error means an external fetch or decode
// failed; those abort silently.
func (g *Gate) Evaluate(ctx context.Context, m *discordgo.Message) (*GateResult, error) {
	if len(m.Attachments) > 0 {
		return g.evaluateAttachment(ctx, m.Attachments[0])
	}

	url := firstURL(m.Content)
	if url == "" {
		return &GateResult{}, nil
	}
	return g.evaluateURL(ctx, url)
}

func (g *Gate) evaluateAttachment(ctx context.Context, att *discordgo.MessageAttachment) (*GateResult, error) {
	if msg := checkAttachment(att); msg != "" {
		return &GateResult{UserMessage: msg}, nil
	}

	data, err := g.fetch(ctx, att.URL)
	if err != nil {
		return nil, fmt.Errorf("error fetching attachment %s: %w", att.URL, err)
	}

	return &GateResult{
		Accepted: true,
		Data:     data,
		Source: ImageSource{
			Origin:      SourceAttachment,
			URL:         att.URL,
			SizeBytes:   int64(att.Size),
			ContentType: att.ContentType,
			Width:       att.Width,
			Height:      att.Height,
		},
	}, nil
}

// checkAttachment applies the size/type and dimension constraints, in that
// order. An empty return means the attachment is acceptable.
func checkAttachment(att *discordgo.MessageAttachment) string {
	if att.Size >= maxAttachmentBytes || !strings.HasPrefix(att.ContentType, "image/") {
		return msgAttachmentInvalid
	}
	if att.Width <= attachmentMinWidth || att.Height <= attachmentMinHeight {
		return msgAttachmentTooSmall
	}
	return ""
}

func (g *Gate) evaluateURL(ctx context.Context, url string) (*GateResult, error) {
	contentType, err := g.probe(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("error probing URL %s: %w", url, err)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return &GateResult{UserMessage: msgRemoteNotImage}, nil
	}

	data, err := g.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("error fetching URL %s: %w", url, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error decoding image from %s: %w", url, err)
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= remoteMinWidth || height <= remoteMinHeight {
		return &GateResult{UserMessage: msgRemoteTooSmall}, nil
	}

	log.Printf("Accepted URL image %s (%dx%d, %s)", url, width, height, contentType)
	return &GateResult{
		Accepted: true,
		Data:     data,
		Source: ImageSource{
			Origin:      SourceRemoteURL,
			URL:         url,
			SizeBytes:   -1,
			ContentType: contentType,
			Width:       width,
			Height:      height,
		},
	}, nil
}

// firstURL extracts the first scheme://nonspace token from a message body.
func firstURL(content string) string {
	return urlPattern.FindString(content)
}

func (g *Gate) probe(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}
	return resp.Header.Get("Content-Type"), nil
}

func (g *Gate) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
