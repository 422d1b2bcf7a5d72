/*
Package speech wraps the Murf text-to-speech API. Audio comes back either
inline as base64 or as a short-lived URL that is downloaded right away.
*/
package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL = "https://api.murf.ai"
	DefaultVoiceID = "en-US-charles"
	DefaultTimeout = 90 * time.Second

	maxErrorBody = 4 << 10
)

// maxAudioBytes caps a downloaded audio file.
var maxAudioBytes int64 = 50 << 20

var (
	ErrNotConfigured = errors.New("murf api key is not configured")
	// ErrNoAudio means the response carried neither inline audio nor a URL.
	ErrNoAudio = errors.New("murf response contained no audio")
	// ErrUnavailable wraps transport failures against Murf or the audio host.
	ErrUnavailable   = errors.New("murf api unavailable")
	ErrAudioTooLarge = errors.New("audio download exceeds size limit")
)

// HTTPError is a non-2xx answer from Murf or from the audio download.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("murf returned status %d: %s", e.StatusCode, e.Body)
}

type generateRequest struct {
	Text           string `json:"text"`
	VoiceID        string `json:"voiceId"`
	Format         string `json:"format"`
	EncodeAsBase64 bool   `json:"encodeAsBase64"`
}

type generateResponse struct {
	AudioFile            string  `json:"audioFile"`
	EncodedAudio         string  `json:"encodedAudio"`
	AudioLengthInSeconds float64 `json:"audioLengthInSeconds"`
}

type Config struct {
	APIKey  string
	BaseURL string
	VoiceID string
	Timeout time.Duration
	// Inline asks Murf for base64 audio instead of a download URL.
	Inline bool
}

// Client is a single-shot Murf client; it never retries.
type Client struct {
	apiKey     string
	baseURL    string
	voiceID    string
	inline     bool
	httpClient *http.Client
	log        *zerolog.Logger
}

func NewClient(cfg Config, log *zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.VoiceID == "" {
		cfg.VoiceID = DefaultVoiceID
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		voiceID:    cfg.VoiceID,
		inline:     cfg.Inline,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

// VoiceID is the voice used when Synthesize gets an empty one.
func (c *Client) VoiceID() string { return c.voiceID }

// Synthesize converts text to MP3 bytes.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("speech: empty text")
	}
	if voiceID == "" {
		voiceID = c.voiceID
	}

	body, err := json.Marshal(generateRequest{
		Text:           text,
		VoiceID:        voiceID,
		Format:         "MP3",
		EncodeAsBase64: c.inline,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/speech/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", c.apiKey)

	start := time.Now()
	c.log.Info().Str("voice_id", voiceID).Int("text_len", len(text)).Msg("Calling Murf API")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.httpError(resp)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var audio []byte
	switch {
	case out.EncodedAudio != "":
		audio, err = base64.StdEncoding.DecodeString(out.EncodedAudio)
		if err != nil {
			return nil, fmt.Errorf("failed to decode inline audio: %w", err)
		}
	case out.AudioFile != "":
		audio, err = c.download(ctx, out.AudioFile)
		if err != nil {
			return nil, err
		}
	default:
		return nil, ErrNoAudio
	}

	c.log.Info().
		Dur("elapsed", time.Since(start)).
		Float64("audio_seconds", out.AudioLengthInSeconds).
		Int("bytes", len(audio)).
		Msg("Murf synthesis succeeded")
	return audio, nil
}

// download fetches the audio URL. The api key is only sent to the Murf host
// itself, never to the signed storage URL.
func (c *Client) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid audio url: %w", err)
	}
	if sameHost(c.baseURL, rawURL) {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: audio download: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.httpError(resp)
	}
	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes+1))
	if err != nil {
		return nil, fmt.Errorf("audio download failed: %w", err)
	}
	if int64(len(audio)) > maxAudioBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrAudioTooLarge, maxAudioBytes)
	}
	if len(audio) == 0 {
		return nil, ErrNoAudio
	}
	return audio, nil
}

func (c *Client) httpError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	err := &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	c.log.Warn().Err(err).Str("url", resp.Request.URL.Redacted()).Msg("Murf call failed")
	return err
}

func sameHost(baseURL, rawURL string) bool {
	b, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(b.Host, u.Host)
}
