// Package media talks to the Cloudinary REST API: signed direct-upload
// parameters for the admin UI, and asset destruction on delete.
package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/insomnia-fuel/cafe-api/pkg/config"
)

type Cloudinary struct {
	config     *config.CloudinaryConfig
	httpClient *http.Client
}

func NewCloudinary(cfg *config.CloudinaryConfig) *Cloudinary {
	return &Cloudinary{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Cloudinary) Configured() bool {
	return c.config.CloudName != "" && c.config.APIKey != "" && c.config.APISecret != ""
}

// UploadSignature is everything the browser needs for a signed direct upload.
type UploadSignature struct {
	CloudName string `json:"cloudName"`
	APIKey    string `json:"apiKey"`
	Folder    string `json:"folder"`
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
}

func (c *Cloudinary) SignUpload() (*UploadSignature, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("cloudinary is not configured")
	}

	folder := c.config.Folder
	if folder == "" {
		folder = "insomnia-fuel/gallery"
	}
	timestamp := time.Now().Unix()

	signature := signParams(map[string]string{
		"folder":    folder,
		"timestamp": fmt.Sprintf("%d", timestamp),
	}, c.config.APISecret)

	return &UploadSignature{
		CloudName: c.config.CloudName,
		APIKey:    c.config.APIKey,
		Folder:    folder,
		Timestamp: timestamp,
		Signature: signature,
	}, nil
}

// Destroy removes an uploaded asset. An already-deleted asset ("not found")
// is treated as success so record cleanup can proceed.
func (c *Cloudinary) Destroy(ctx context.Context, publicID string) error {
	if !c.Configured() {
		return fmt.Errorf("cloudinary is not configured")
	}

	timestamp := time.Now().Unix()
	signature := signParams(map[string]string{
		"public_id": publicID,
		"timestamp": fmt.Sprintf("%d", timestamp),
	}, c.config.APISecret)

	form := url.Values{
		"public_id": {publicID},
		"api_key":   {c.config.APIKey},
		"timestamp": {fmt.Sprintf("%d", timestamp)},
		"signature": {signature},
	}

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/destroy", c.config.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cloudinary destroy request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("cloudinary destroy failed (%d): %s", resp.StatusCode, body)
	}

	var out struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("decode cloudinary response: %w", err)
	}
	if out.Result != "ok" && out.Result != "not found" {
		return fmt.Errorf("cloudinary destroy failed (result: %s)", out.Result)
	}
	return nil
}

// signParams implements Cloudinary's signing scheme: parameters sorted by
// key, joined as k=v with &, the API secret appended, SHA-1 hex digest.
func signParams(params map[string]string, apiSecret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + apiSecret))
	return hex.EncodeToString(sum[:])
}
