package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/objectstorage"
)

type nopCloser struct {
	io.Reader
}

func (nopCloser) Close() error { return nil }

// OCI is a Storage backed by Oracle Cloud Infrastructure Object Storage.
type OCI struct {
	client    objectstorage.ObjectStorageClient
	namespace string
}

// OCIOptions tune the OCI backend.
type OCIOptions struct {
	// Host overrides the SDK resolved endpoint when set.
	Host string
	// Namespace is fetched from the service when empty.
	Namespace  string
	HTTPClient *http.Client
}

// NewOCI creates an OCI backend from a configuration provider.
func NewOCI(ctx context.Context, provider common.ConfigurationProvider, opts OCIOptions) (*OCI, error) {
	client, err := objectstorage.NewObjectStorageClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("create object storage client: %w", err)
	}
	if opts.HTTPClient != nil {
		client.HTTPClient = opts.HTTPClient
	}
	if opts.Host != "" {
		client.Host = opts.Host
	}

	namespace := opts.Namespace
	if namespace == "" {
		resp, err := client.GetNamespace(ctx, objectstorage.GetNamespaceRequest{})
		if err != nil {
			return nil, fmt.Errorf("get namespace: %w", classifyOCI("get namespace", err))
		}
		namespace = *resp.Value
	}

	return &OCI{client: client, namespace: namespace}, nil
}

// Namespace returns the object storage namespace in use.
func (o *OCI) Namespace() string { return o.namespace }

func (o *OCI) PutObject(ctx context.Context, bucket, key string, body []byte) error {
	_, err := o.client.PutObject(ctx, objectstorage.PutObjectRequest{
		NamespaceName: common.String(o.namespace),
		BucketName:    common.String(bucket),
		ObjectName:    common.String(key),
		ContentLength: common.Int64(int64(len(body))),
		PutObjectBody: nopCloser{bytes.NewReader(body)},
	})
	if err != nil {
		return classifyOCI("put object", err)
	}
	return nil
}

func (o *OCI) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	resp, err := o.client.GetObject(ctx, objectstorage.GetObjectRequest{
		NamespaceName: common.String(o.namespace),
		BucketName:    common.String(bucket),
		ObjectName:    common.String(key),
	})
	if err != nil {
		return nil, classifyOCI("get object", err)
	}
	return resp.Content, nil
}

func (o *OCI) ListObjects(ctx context.Context, bucket, prefix string, token *string) (Page, error) {
	resp, err := o.client.ListObjects(ctx, objectstorage.ListObjectsRequest{
		NamespaceName: common.String(o.namespace),
		BucketName:    common.String(bucket),
		Prefix:        common.String(prefix),
		Limit:         common.Int(1000),
		Start:         token,
	})
	if err != nil {
		return Page{}, classifyOCI("list objects", err)
	}
	page := Page{
		Keys:      make([]string, 0, len(resp.Objects)),
		NextToken: resp.NextStartWith,
	}
	for _, obj := range resp.Objects {
		if obj.Name != nil {
			page.Keys = append(page.Keys, *obj.Name)
		}
	}
	return page, nil
}

func classifyOCI(op string, err error) error {
	if serviceErr, ok := common.IsServiceError(err); ok {
		if serviceErr.GetHTTPStatusCode() == http.StatusNotFound {
			return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if isTransport(err) {
		return &DispatchError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
