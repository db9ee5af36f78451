package distribution

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/madpaura/docker-webui/model"
	"github.com/madpaura/docker-webui/pkg/format"
	"github.com/madpaura/docker-webui/providers/registry"
)

const manifestV2MediaType = "application/vnd.docker.distribution.manifest.v2+json"

var _ registry.Registryer = new(Client)

// Client speaks the distribution v2 HTTP API directly, the way the
// registry container itself exposes it.
type Client struct {
	l        *logrus.Logger
	baseURL  string
	username string
	password string
	http     *http.Client
}

// NewClient normalizes the endpoint and prepares an HTTP client with a
// bounded timeout. Empty credentials mean anonymous access; TLS
// verification is usually off because the target is a self-signed local
// registry.
func NewClient(rawURL, username, password string, insecureSkipVerify bool, timeout time.Duration, l *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		l:        l,
		baseURL:  Normalize(rawURL),
		username: username,
		password: password,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: insecureSkipVerify},
			},
		},
	}
}

// Normalize gives a registry URL a scheme (http when missing) and
// exactly one trailing slash. Applying it to its own output returns the
// same string.
func Normalize(rawURL string) string {
	u := strings.TrimSpace(rawURL)
	if !strings.Contains(u, "://") {
		u = "http://" + u
	}
	return strings.TrimRight(u, "/") + "/"
}

func (c *Client) api(path string) string {
	return c.baseURL + "v2/" + path
}

func (c *Client) do(ctx context.Context, method, url, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	return c.http.Do(req)
}

func (c *Client) CheckConnection(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, c.api(""), "")
	if err != nil {
		return fmt.Errorf("connecting to registry %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registry %s answered %s", c.baseURL, resp.Status)
	}
	return nil
}

func (c *Client) ListRepositories(ctx context.Context) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, c.api("_catalog"), "")
	if err != nil {
		return nil, fmt.Errorf("listing repositories: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing repositories: registry answered %s", resp.Status)
	}

	var catalog struct {
		Repositories []string `json:"repositories"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return catalog.Repositories, nil
}

func (c *Client) ListTags(ctx context.Context, repository string) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, c.api(repository+"/tags/list"), "")
	if err != nil {
		return nil, fmt.Errorf("listing tags of %s: %w", repository, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", registry.ErrRepositoryNotFound, repository)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing tags of %s: registry answered %s", repository, resp.Status)
	}

	var tags struct {
		Name string   `json:"name"`
		Tags []string `json:"tags"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decoding tags of %s: %w", repository, err)
	}
	return tags.Tags, nil
}

func (c *Client) GetManifest(ctx context.Context, repository, tag string) (*registry.Manifest, error) {
	resp, err := c.do(ctx, http.MethodGet, c.api(repository+"/manifests/"+tag), manifestV2MediaType)
	if err != nil {
		return nil, fmt.Errorf("fetching manifest %s:%s: %w", repository, tag, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s:%s", registry.ErrImageNotFound, repository, tag)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching manifest %s:%s: registry answered %s", repository, tag, resp.Status)
	}

	manifest := &registry.Manifest{}
	if err := json.NewDecoder(resp.Body).Decode(manifest); err != nil {
		return nil, fmt.Errorf("decoding manifest %s:%s: %w", repository, tag, err)
	}
	return manifest, nil
}

// DeleteImage resolves the manifest of repository:tag and deletes it by
// its config digest. Registries answer 200 or 202 depending on
// version, both count as deleted.
func (c *Client) DeleteImage(ctx context.Context, repository, tag string) error {
	manifest, err := c.GetManifest(ctx, repository, tag)
	if err != nil {
		return err
	}
	if manifest.Config.Digest == "" {
		return fmt.Errorf("%w for %s:%s", registry.ErrDigestUnavailable, repository, tag)
	}

	resp, err := c.do(ctx, http.MethodDelete, c.api(repository+"/manifests/"+manifest.Config.Digest), "")
	if err != nil {
		return fmt.Errorf("deleting %s:%s: %w", repository, tag, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("deleting %s:%s: registry answered %s", repository, tag, resp.Status)
	}
	c.l.Infof("distribution.DeleteImage: deleted %s:%s (%s)", repository, tag, manifest.Config.Digest)
	return nil
}

// ListImages aggregates the whole registry: every tag of every
// repository with its compressed size and creation time. Repositories
// that fail to resolve are logged and skipped so one broken image does
// not hide the rest.
func (c *Client) ListImages(ctx context.Context) ([]model.RegistryImage, error) {
	repositories, err := c.ListRepositories(ctx)
	if err != nil {
		return nil, err
	}

	var images []model.RegistryImage
	for _, repo := range repositories {
		tags, err := c.ListTags(ctx, repo)
		if err != nil {
			c.l.Warnf("distribution.ListImages: skipping %s: %v", repo, err)
			continue
		}
		for _, tag := range tags {
			manifest, err := c.GetManifest(ctx, repo, tag)
			if err != nil {
				c.l.Warnf("distribution.ListImages: skipping %s:%s: %v", repo, tag, err)
				continue
			}
			images = append(images, model.RegistryImage{
				Repository: repo,
				Tag:        tag,
				Size:       format.ImageSize(manifest.TotalSize()),
				Created:    c.imageCreated(ctx, repo, manifest.Config.Digest),
			})
		}
	}
	return images, nil
}

// imageCreated reads the image config blob and extracts its created
// timestamp. Failures degrade to an empty string, the listing stays
// useful without it.
func (c *Client) imageCreated(ctx context.Context, repository, configDigest string) string {
	if configDigest == "" {
		return ""
	}
	resp, err := c.do(ctx, http.MethodGet, c.api(repository+"/blobs/"+configDigest), "")
	if err != nil {
		c.l.Debugf("distribution.imageCreated: %s: %v", repository, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}

	created := gjson.GetBytes(body, "created").String()
	if created == "" {
		return ""
	}
	if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
		return ts.Format("2006-01-02 15:04:05")
	}
	return created
}
