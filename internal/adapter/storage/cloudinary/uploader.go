package cloudinary

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/domain"
)

// DefaultBaseURL is the Cloudinary upload API root.
const DefaultBaseURL = "https://api.cloudinary.com/v1_1"

// Asset errors
var (
	ErrNotImage       = fmt.Errorf("%w: asset is not an image", domain.ErrValidation)
	ErrMalformedAsset = fmt.Errorf("%w: malformed data URI", domain.ErrValidation)
)

// Config configures the uploader.
type Config struct {
	CloudName    string
	UploadPreset string
	BaseURL      string
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// Uploader implements usecase.AssetUploader with unsigned Cloudinary uploads.
type Uploader struct {
	endpoint string
	preset   string
	client   *http.Client
}

// NewUploader creates an Uploader posting to {BaseURL}/{CloudName}/image/upload.
func NewUploader(cfg Config) (*Uploader, error) {
	if cfg.CloudName == "" || cfg.UploadPreset == "" {
		return nil, errors.New("cloudinary: cloud name and upload preset are required")
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Uploader{
		endpoint: fmt.Sprintf("%s/%s/image/upload", base, cfg.CloudName),
		preset:   cfg.UploadPreset,
		client:   client,
	}, nil
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Upload sends an inline data: URI to Cloudinary under folder and returns the
// secure URL. Remote http(s) references are returned unchanged. Anything else,
// filesystem paths and file:// URIs included, fails with
// domain.ErrUnsupportedImage.
func (u *Uploader) Upload(ctx context.Context, ref, folder string) (string, error) {
	if domain.IsResolvedAsset(ref) {
		return ref, nil
	}
	if !domain.IsDataURI(ref) {
		return "", domain.ErrUnsupportedImage
	}
	if err := checkImage(ref); err != nil {
		return "", err
	}

	body, contentType, err := u.buildForm(ref, folder)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("cloudinary: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("cloudinary: %w", err)
	}
	defer resp.Body.Close()

	var decoded uploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decoded); err != nil && resp.StatusCode < 300 {
		return "", fmt.Errorf("cloudinary: decode response: %w", err)
	}

	if resp.StatusCode >= 300 {
		msg := http.StatusText(resp.StatusCode)
		if decoded.Error != nil && decoded.Error.Message != "" {
			msg = decoded.Error.Message
		}
		return "", fmt.Errorf("cloudinary: upload failed with status %d: %s", resp.StatusCode, msg)
	}
	if decoded.SecureURL == "" {
		return "", errors.New("cloudinary: response has no secure_url")
	}

	zerolog.Ctx(ctx).Debug().
		Str("folder", folder).
		Dur("duration", time.Since(start)).
		Msg("asset uploaded")

	return decoded.SecureURL, nil
}

func (u *Uploader) buildForm(dataURI, folder string) (io.Reader, string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	if err := form.WriteField("file", dataURI); err != nil {
		return nil, "", err
	}
	if err := form.WriteField("upload_preset", u.preset); err != nil {
		return nil, "", err
	}
	if folder != "" {
		if err := form.WriteField("folder", folder); err != nil {
			return nil, "", err
		}
	}
	if err := form.Close(); err != nil {
		return nil, "", err
	}

	return &buf, form.FormDataContentType(), nil
}

// checkImage decodes the payload of dataURI and sniffs its content. The
// declared media type is ignored.
func checkImage(dataURI string) error {
	payload, err := decodeDataURI(dataURI)
	if err != nil {
		return err
	}

	mtype := mimetype.Detect(payload)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return fmt.Errorf("%w: %s", ErrNotImage, mtype.String())
	}
	return nil
}

func decodeDataURI(dataURI string) ([]byte, error) {
	meta, data, ok := strings.Cut(dataURI[len("data:"):], ",")
	if !ok || data == "" {
		return nil, ErrMalformedAsset
	}

	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		payload, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			payload, err = base64.RawStdEncoding.DecodeString(data)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAsset, err)
		}
		return payload, nil
	}

	payload, err := url.PathUnescape(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAsset, err)
	}
	return []byte(payload), nil
}
