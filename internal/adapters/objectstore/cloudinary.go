package objectstore

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultCloudinaryBase is the Cloudinary API root.
const DefaultCloudinaryBase = "https://api.cloudinary.com/v1_1"

// CloudinaryConfig holds the account credentials.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string // optional prefix for every public ID
	BaseURL   string // defaults to DefaultCloudinaryBase
}

// CloudinaryStore uploads images with signed requests to Cloudinary.
type CloudinaryStore struct {
	cfg    CloudinaryConfig
	client *http.Client
	now    func() time.Time
}

// NewCloudinaryStore creates a store for the given account.
// PRE: CloudName, APIKey and APISecret are set
// POST: Returns a store using a client with a 30 s timeout
func NewCloudinaryStore(cfg CloudinaryConfig) *CloudinaryStore {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultCloudinaryBase
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &CloudinaryStore{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		now:    time.Now,
	}
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Result    string `json:"result"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Put uploads body under the public ID derived from objectPath.
// PRE: objectPath is a relative slash-separated path
// POST: Returns the secure URL reported by Cloudinary
func (c *CloudinaryStore) Put(ctx context.Context, objectPath, _ string, body io.Reader) (string, error) {
	publicID, err := c.publicID(objectPath)
	if err != nil {
		return "", err
	}
	buf, err := readLimited(body)
	if err != nil {
		return "", err
	}

	params := c.signed(map[string]string{"public_id": publicID, "overwrite": "true"})
	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	for _, k := range sortedKeys(params) {
		if err := mw.WriteField(k, params[k]); err != nil {
			return "", err
		}
	}
	fw, err := mw.CreateFormFile("file", path.Base(objectPath))
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(buf); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	res, err := c.post(ctx, "image/upload", mw.FormDataContentType(), &form)
	if err != nil {
		return "", err
	}
	if res.SecureURL != "" {
		return res.SecureURL, nil
	}
	if res.URL != "" {
		return res.URL, nil
	}
	return "", fmt.Errorf("cloudinary upload %s: response carried no url", publicID)
}

// Delete destroys the image with the public ID derived from objectPath.
// PRE: objectPath is a relative slash-separated path
// POST: The image no longer exists; "not found" is treated as success
func (c *CloudinaryStore) Delete(ctx context.Context, objectPath string) error {
	publicID, err := c.publicID(objectPath)
	if err != nil {
		return err
	}
	form := url.Values{}
	for k, v := range c.signed(map[string]string{"public_id": publicID}) {
		form.Set(k, v)
	}
	res, err := c.post(ctx, "image/destroy", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("cloudinary destroy %s: result %q", publicID, res.Result)
	}
	return nil
}

func (c *CloudinaryStore) post(ctx context.Context, action, contentType string, body io.Reader) (cloudinaryResponse, error) {
	endpoint := c.cfg.BaseURL + "/" + c.cfg.CloudName + "/" + action
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return cloudinaryResponse{}, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return cloudinaryResponse{}, fmt.Errorf("cloudinary %s: %w", action, err)
	}
	defer resp.Body.Close()

	var out cloudinaryResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return cloudinaryResponse{}, fmt.Errorf("cloudinary %s: status %d: decode response: %w", action, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || out.Error.Message != "" {
		slog.Error("cloudinary_request_failed", "action", action, "status", resp.StatusCode, "message", out.Error.Message)
		return cloudinaryResponse{}, fmt.Errorf("cloudinary %s: status %d: %s", action, resp.StatusCode, out.Error.Message)
	}
	return out, nil
}

// publicID maps "posts/1-a.png" to "<folder>/posts/1-a".
func (c *CloudinaryStore) publicID(objectPath string) (string, error) {
	p, err := cleanPath(objectPath)
	if err != nil {
		return "", err
	}
	p = strings.TrimSuffix(p, path.Ext(p))
	if c.cfg.Folder != "" {
		p = strings.Trim(c.cfg.Folder, "/") + "/" + p
	}
	return p, nil
}

// signed adds timestamp, api_key and signature to params.
// The signature is SHA-1 over the sorted "k=v" pairs joined by "&" plus the secret.
func (c *CloudinaryStore) signed(params map[string]string) map[string]string {
	params["timestamp"] = strconv.FormatInt(c.now().Unix(), 10)
	pairs := make([]string, 0, len(params))
	for _, k := range sortedKeys(params) {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.cfg.APISecret))
	params["signature"] = hex.EncodeToString(sum[:])
	params["api_key"] = c.cfg.APIKey
	return params
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
