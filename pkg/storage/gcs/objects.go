package gcs

import (
	"bytes"
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
)

const (
	uploadEndpoint = "https://storage.googleapis.com/upload/storage/v1"
	apiEndpoint    = "https://storage.googleapis.com/storage/v1"
	publicEndpoint = "https://storage.googleapis.com"
)

// ErrObjectExists signals that an upload would have overwritten an
// existing object. Uploads always set ifGenerationMatch=0.
var ErrObjectExists = errors.New("object already exists")

// Upload writes data to the default bucket at the given object path. The
// precondition forbids overwriting, so a path collision fails instead of
// silently replacing a photo.
func (c *Client) Upload(ctx context.Context, object, contentType string, data []byte) error {
	if c == nil || c.tokenSource == nil {
		return errors.New("gcs client not initialized")
	}
	if object == "" {
		return errors.New("object path is required")
	}

	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return err
	}

	u := fmt.Sprintf(
		"%s/b/%s/o?uploadType=media&name=%s&ifGenerationMatch=0",
		uploadEndpoint,
		url.PathEscape(c.defaultBucket),
		url.QueryEscape(object),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.ContentLength = int64(len(data))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusPreconditionFailed:
		return fmt.Errorf("uploading %s: %w", object, ErrObjectExists)
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if len(b) > 0 {
			return fmt.Errorf("uploading %s: %s: %s", object, resp.Status, strings.TrimSpace(string(b)))
		}
		return fmt.Errorf("uploading %s: %s", object, resp.Status)
	}
}

// Delete removes an object from the default bucket. A missing object is
// treated as already deleted.
func (c *Client) Delete(ctx context.Context, object string) error {
	if c == nil || c.tokenSource == nil {
		return errors.New("gcs client not initialized")
	}
	if object == "" {
		return errors.New("object path is required")
	}

	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return err
	}

	u := fmt.Sprintf(
		"%s/b/%s/o/%s",
		apiEndpoint,
		url.PathEscape(c.defaultBucket),
		url.PathEscape(object),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK, http.StatusNotFound:
		return nil
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if len(b) > 0 {
			return fmt.Errorf("deleting %s: %s: %s", object, resp.Status, strings.TrimSpace(string(b)))
		}
		return fmt.Errorf("deleting %s: %s", object, resp.Status)
	}
}

// DeleteAll deletes every object, collecting failures instead of
// stopping at the first one.
func (c *Client) DeleteAll(ctx context.Context, objects []string) error {
	var errs error
	for _, object := range objects {
		if err := c.Delete(ctx, object); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// ObjectURL returns the public HTTPS URL for an object in the default bucket.
func (c *Client) ObjectURL(object string) string {
	return fmt.Sprintf("%s/%s/%s", publicEndpoint, c.defaultBucket, object)
}

// SignedDownloadURL produces a time-limited GET URL for the object.
// Requires service account credentials; the metadata token source has
// no local key to sign with.
func (c *Client) SignedDownloadURL(object string, expiry time.Duration) (string, error) {
	if c == nil {
		return "", errors.New("gcs client not initialized")
	}
	if c.signerKey == nil || c.signerEmail == "" {
		return "", errors.New("signed urls require service account credentials")
	}
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	expires := time.Now().Add(expiry).Unix()
	resource := fmt.Sprintf("/%s/%s", c.defaultBucket, object)
	stringToSign := strings.Join([]string{
		http.MethodGet,
		"",
		"",
		strconv.FormatInt(expires, 10),
		resource,
	}, "\n")

	hash := sha256.Sum256([]byte(stringToSign))
	signature, err := rsa.SignPKCS1v15(rand.Reader, c.signerKey, crypto.SHA256, hash[:])
	if err != nil {
		return "", fmt.Errorf("signing url: %w", err)
	}

	q := url.Values{}
	q.Set("GoogleAccessId", c.signerEmail)
	q.Set("Expires", strconv.FormatInt(expires, 10))
	q.Set("Signature", base64.StdEncoding.EncodeToString(signature))

	return fmt.Sprintf("%s%s?%s", publicEndpoint, resource, q.Encode()), nil
}
