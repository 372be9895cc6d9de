package speech

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"audioverse/internal/audio"
	"audioverse/internal/domain/podcast"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GoogleVoices is the fixed catalog offered for the Google engine
var GoogleVoices = []podcast.VoiceOption{
	{ID: "en-US-Chirp3-HD-Charon", Name: "Charon"},
	{ID: "en-GB-Chirp3-HD-Umbriel", Name: "Umbriel"},
	{ID: "en-US-Chirp3-HD-Aoede", Name: "Aoede"},
	{ID: "en-US-Chirp3-HD-Puck", Name: "Puck"},
}

// googleChunkLimit stays a little under the 5000 byte request cap
const googleChunkLimit = 4800

// speechClient is the subset of the Cloud TTS client the engine calls
type speechClient interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error)
	Close() error
}

// GoogleEngine implements Synthesizer with Cloud Text-to-Speech. The
// credential is the path of a service account key file and a client is
// built for every request.
type GoogleEngine struct {
	newClient func(ctx context.Context, credential string) (speechClient, error)
}

func NewGoogleEngine() *GoogleEngine {
	return &GoogleEngine{
		newClient: func(ctx context.Context, credential string) (speechClient, error) {
			c, err := texttospeech.NewClient(ctx, option.WithCredentialsFile(credential))
			if err != nil {
				return nil, err
			}
			return cloudClient{c}, nil
		},
	}
}

type cloudClient struct {
	*texttospeech.Client
}

func (c cloudClient) SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
	return c.Client.SynthesizeSpeech(ctx, req)
}

func (g *GoogleEngine) Name() string { return EngineTypeGoogle.String() }

func (g *GoogleEngine) NeedsCredential() bool { return true }

func (g *GoogleEngine) Voices() []podcast.VoiceOption {
	return GoogleVoices
}

func (g *GoogleEngine) Synthesize(ctx context.Context, req Request) (*audio.Resource, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	client, err := g.newClient(ctx, req.Credential)
	if err != nil {
		return nil, &StatusError{Engine: "Google TTS", Code: http.StatusUnauthorized, Body: err.Error()}
	}
	defer client.Close()

	var data []byte
	chunks := splitIntoChunks(req.Text, googleChunkLimit)
	for i, chunk := range chunks {
		resp, err := client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
			Input: &texttospeechpb.SynthesisInput{
				InputSource: &texttospeechpb.SynthesisInput_Text{Text: chunk},
			},
			Voice: &texttospeechpb.VoiceSelectionParams{
				LanguageCode: languageCode(req.VoiceID),
				Name:         req.VoiceID,
			},
			AudioConfig: &texttospeechpb.AudioConfig{
				AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to synthesize chunk %d: %w", i, googleError(err))
		}
		data = append(data, resp.AudioContent...)
	}

	logrus.WithFields(logrus.Fields{
		"voice":  req.VoiceID,
		"chunks": len(chunks),
		"bytes":  len(data),
	}).Info("Synthesized audio with Google TTS")

	return audio.NewResource(req.Title, audio.FormatMP3, data), nil
}

// googleError folds gRPC status codes into the HTTP-style StatusError
func googleError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	code := http.StatusInternalServerError
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		code = http.StatusUnauthorized
	case codes.ResourceExhausted:
		code = http.StatusTooManyRequests
	case codes.InvalidArgument, codes.NotFound:
		code = http.StatusBadRequest
	case codes.Unavailable:
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	return &StatusError{Engine: "Google TTS", Code: code, Body: st.Message()}
}

// languageCode takes the locale prefix of a voice name, e.g. en-GB
func languageCode(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 2 {
		return "en-US"
	}
	return parts[0] + "-" + parts[1]
}

func splitIntoChunks(text string, limit int) []string {
	var chunks []string
	runes := []rune(text) // safe for UTF-8
	for i := 0; i < len(runes); i += limit {
		end := i + limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
