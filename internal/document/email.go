package document

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"

	"github.com/Veraticus/cardscan/internal/model"
	"golang.org/x/text/encoding/htmlindex"
)

var (
	invisibleBlocks = regexp.MustCompile(`(?is)<(script|style|head)\b.*?</(script|style|head)>`)
	lineBreakTags   = regexp.MustCompile(`(?i)<(br|/p|/div|/tr|/li|/h[1-6])\b[^>]*>`)
	htmlTags        = regexp.MustCompile(`<[^>]*>`)
	blankRuns       = regexp.MustCompile(`\n{3,}`)
	spaceRuns       = regexp.MustCompile(`[ \t]{2,}`)
	replyHeader     = regexp.MustCompile(`^On .+ wrote:\s*$`)
)

var headerDecoder = &mime.WordDecoder{
	CharsetReader: func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, err
		}
		return enc.NewDecoder().Reader(input), nil
	},
}

// ParseEmail decodes an RFC 5322 message into a RawDocument. The first
// text/plain part wins; otherwise the first text/html part is reduced to text.
// Quoted reply text is dropped from the body.
func ParseEmail(r io.Reader, name string) (model.RawDocument, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return model.RawDocument{}, fmt.Errorf("failed to parse email %s: %w", name, err)
	}

	doc := model.RawDocument{
		Subject: decodeHeader(msg.Header.Get("Subject")),
		Sender:  decodeHeader(msg.Header.Get("From")),
		Name:    name,
		Type:    model.DocumentEmail,
	}
	if date, err := msg.Header.Date(); err == nil {
		doc.Date = date
	}

	plain, markup, err := readBody(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if err != nil {
		return model.RawDocument{}, fmt.Errorf("failed to read email body %s: %w", name, err)
	}

	body := plain
	if strings.TrimSpace(body) == "" {
		body = HTMLToText(markup)
	}
	doc.Body = StripQuotedReply(body)
	return doc, nil
}

func decodeHeader(v string) string {
	decoded, err := headerDecoder.DecodeHeader(v)
	if err != nil {
		return v
	}
	return decoded
}

// readBody walks a possibly nested MIME body and returns the first plain and
// first HTML text it finds, converted to UTF-8 from the part's charset.
func readBody(contentType, encoding string, body io.Reader) (plain, markup string, err error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := multipart.NewReader(body, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return plain, markup, err
			}
			p, h, err := readBody(part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), part)
			if err != nil {
				return plain, markup, err
			}
			if plain == "" {
				plain = p
			}
			if markup == "" {
				markup = h
			}
		}
		return plain, markup, nil
	}

	if mediaType != "text/html" && mediaType != "text/plain" {
		return "", "", nil
	}

	data, err := io.ReadAll(decodeTransfer(encoding, body))
	if err != nil {
		return "", "", err
	}
	text := decodeCharset(params["charset"], data)

	if mediaType == "text/html" {
		return "", text, nil
	}
	return text, "", nil
}

// decodeCharset converts data from the named charset to UTF-8. Unknown or
// missing charsets leave the bytes as they are.
func decodeCharset(charset string, data []byte) string {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8", "us-ascii":
		return string(data)
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return string(data)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	case "base64":
		data, err := io.ReadAll(r)
		if err != nil {
			return bytes.NewReader(nil)
		}
		clean := strings.Map(func(c rune) rune {
			if c == '\r' || c == '\n' || c == ' ' {
				return -1
			}
			return c
		}, string(data))
		return base64.NewDecoder(base64.StdEncoding, strings.NewReader(clean))
	default:
		return r
	}
}

// HTMLToText strips tags from an HTML body and decodes its entities.
func HTMLToText(markup string) string {
	text := invisibleBlocks.ReplaceAllString(markup, "")
	text = lineBreakTags.ReplaceAllString(text, "\n")
	text = htmlTags.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(html.UnescapeString(text), "\u00a0", " ")
	text = spaceRuns.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	return strings.TrimSpace(blankRuns.ReplaceAllString(text, "\n\n"))
}

// StripQuotedReply removes quoted lines and everything after an
// "On ... wrote:" attribution line.
func StripQuotedReply(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")

	var kept []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if replyHeader.MatchString(trimmed) {
			break
		}
		if strings.HasPrefix(trimmed, ">") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
